// Package session models the signed-in portal user and validates it at the
// boundary: raw bytes go in, a typed Session or a ValidationError comes out.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Role is the user's role within the organisation.
type Role struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Session is what the portal keeps between page loads.
type Session struct {
	Token        string `json:"token" jsonschema:"description=Bearer token sent with every API request"`
	UserID       int64  `json:"user_id"`
	BusinessDate string `json:"business_date" jsonschema:"description=Clinic business date (YYYY-MM-DD)"`
	UserName     string `json:"user_name"`
	Logo         string `json:"logo"`
	Organisation any    `json:"organisation"`
	Role         Role   `json:"role"`
	DepartmentID int64  `json:"department_id"`
	Photo        string `json:"photo,omitempty"`
}

// OrganisationID returns organisation.id when the organisation is an object
// carrying one.
func (s Session) OrganisationID() (string, bool) {
	m, ok := s.Organisation.(map[string]any)
	if !ok {
		return "", false
	}
	switch v := m["id"].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	}
	return "", false
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid session: " + strings.Join(e.Fields, ", ")
}

// wire mirrors the stored shape with pointers so that presence, not
// non-emptiness, is what gets validated.
type wire struct {
	Token        *string   `json:"token" validate:"required"`
	UserID       *flexID   `json:"user_id" validate:"required"`
	BusinessDate *string   `json:"business_date" validate:"required"`
	UserName     *string   `json:"user_name" validate:"required"`
	Logo         *string   `json:"logo" validate:"required_without=Photo"`
	Photo        *string   `json:"photo"`
	Organisation any       `json:"organisation"`
	Role         *wireRole `json:"role" validate:"required"`
	DepartmentID *int64    `json:"department_id" validate:"required"`
}

type wireRole struct {
	Name *string `json:"name" validate:"required"`
	Code *string `json:"code" validate:"required"`
}

var errUserID = errors.New("user_id must be a number or numeric string")

// flexID accepts 42 and "42".
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return errUserID
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return errUserID
		}
		n = int64(fl)
	}
	*f = flexID(n)
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse validates raw session JSON and returns the normalised session:
// user_id as a number and logo falling back to photo.
func Parse(data []byte) (Session, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		var te *json.UnmarshalTypeError
		switch {
		case errors.Is(err, errUserID):
			return Session{}, &ValidationError{Fields: []string{"user_id"}}
		case errors.As(err, &te) && te.Field != "":
			return Session{}, &ValidationError{Fields: []string{te.Field}}
		}
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if err := validate.Struct(w); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return Session{}, &ValidationError{Fields: fieldNames(ve)}
		}
		return Session{}, err
	}

	s := Session{
		Token:        *w.Token,
		UserID:       int64(*w.UserID),
		BusinessDate: *w.BusinessDate,
		UserName:     *w.UserName,
		Organisation: w.Organisation,
		Role:         Role{Name: *w.Role.Name, Code: *w.Role.Code},
		DepartmentID: *w.DepartmentID,
	}
	if w.Photo != nil {
		s.Photo = *w.Photo
	}
	if w.Logo != nil {
		s.Logo = *w.Logo
	}
	if s.Logo == "" {
		s.Logo = s.Photo
	}
	return s, nil
}

func fieldNames(ve validator.ValidationErrors) []string {
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		// Namespace is "wire.role.name"; drop the root type name.
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Validate round-trips s through Parse.
func (s Session) Validate() error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = Parse(b)
	return err
}
