package session

import (
	"errors"
	"strconv"
	"time"
)

// ErrNoToken is returned when a login response carries no usable token.
var ErrNoToken = errors.New("token not received from server")

// DefaultRole is assigned when the login response names none.
var DefaultRole = Role{Name: "Patient", Code: "PATIENT"}

// FromLogin builds a session out of a login response, accepting the field
// aliases the backend has used over time. email stands in for a missing name
// and now supplies the business date when the response has none.
func FromLogin(data map[string]any, email string, now time.Time) (Session, error) {
	s := Session{
		Token:        firstString(data, "token", "access_token"),
		UserID:       firstInt(data, "user_id", "id", "patient_id"),
		BusinessDate: firstString(data, "business_date"),
		UserName:     firstString(data, "user_name", "name", "patient_name"),
		Logo:         firstString(data, "logo", "photo"),
		Photo:        firstString(data, "photo", "logo"),
		Organisation: data["organisation"],
		Role:         DefaultRole,
		DepartmentID: firstInt(data, "department_id"),
	}
	if s.Token == "" {
		return Session{}, ErrNoToken
	}
	if s.BusinessDate == "" {
		s.BusinessDate = now.Format("2006-01-02")
	}
	if s.UserName == "" {
		s.UserName = email
	}
	if r, ok := data["role"].(map[string]any); ok {
		name, _ := r["name"].(string)
		code, _ := r["code"].(string)
		if name != "" || code != "" {
			s.Role = Role{Name: name, Code: code}
		}
	}
	return s, nil
}

// PatientID picks the id the portal opens after login, or 0 when the
// response has none and the user must choose a patient.
func PatientID(data map[string]any) int64 {
	return firstInt(data, "patient_id", "id", "user_id")
}

func firstString(data map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := data[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func firstInt(data map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := data[k].(type) {
		case float64:
			if v != 0 {
				return int64(v)
			}
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n != 0 {
				return n
			}
		}
	}
	return 0
}
