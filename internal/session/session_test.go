package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"portalctl/internal/store"
)

const validJSON = `{
  "token": "tok",
  "user_id": "42",
  "business_date": "2026-10-15",
  "user_name": "Sam Doe",
  "photo": "https://cdn.example.test/p.png",
  "organisation": {"id": 7, "name": "Clinic"},
  "role": {"name": "Patient", "code": "PATIENT"},
  "department_id": 3
}`

func TestParse_Normalises(t *testing.T) {
	got, err := Parse([]byte(validJSON))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.UserID != 42 {
		t.Fatalf("user_id not normalised: %d", got.UserID)
	}
	if got.Logo != "https://cdn.example.test/p.png" {
		t.Fatalf("logo should fall back to photo, got %q", got.Logo)
	}
	if id, ok := got.OrganisationID(); !ok || id != "7" {
		t.Fatalf("organisation id %q ok=%v", id, ok)
	}
	if got.Role != (Role{Name: "Patient", Code: "PATIENT"}) {
		t.Fatalf("role %+v", got.Role)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"missing token", `{"user_id":1,"business_date":"d","user_name":"n","logo":"","role":{"name":"a","code":"b"},"department_id":1}`, []string{"token"}},
		{"token not a string", `{"token":5,"user_id":1,"business_date":"d","user_name":"n","logo":"","role":{"name":"a","code":"b"},"department_id":1}`, []string{"token"}},
		{"bad user id", `{"token":"t","user_id":"abc","business_date":"d","user_name":"n","logo":"","role":{"name":"a","code":"b"},"department_id":1}`, []string{"user_id"}},
		{"no logo or photo", `{"token":"t","user_id":1,"business_date":"d","user_name":"n","role":{"name":"a","code":"b"},"department_id":1}`, []string{"logo"}},
		{"role incomplete", `{"token":"t","user_id":1,"business_date":"d","user_name":"n","logo":"","role":{"name":"a"},"department_id":1}`, []string{"role.code"}},
		{"several", `{"token":"t","user_id":1,"logo":""}`, []string{"business_date", "department_id", "role", "user_name"}},
	}
	for _, tc := range cases {
		_, err := Parse([]byte(tc.in))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if diff := cmp.Diff(tc.want, ve.Fields); diff != "" {
			t.Fatalf("%s: fields mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFromLogin(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	data := map[string]any{
		"access_token": "abc",
		"patient_id":   float64(99),
		"name":         "Pat",
		"logo":         "l.png",
	}
	got, err := FromLogin(data, "pat@example.test", now)
	if err != nil {
		t.Fatalf("FromLogin error: %v", err)
	}
	want := Session{
		Token:        "abc",
		UserID:       99,
		BusinessDate: "2026-10-15",
		UserName:     "Pat",
		Logo:         "l.png",
		Photo:        "l.png",
		Role:         DefaultRole,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("login session should validate: %v", err)
	}
	if PatientID(data) != 99 {
		t.Fatalf("patient id %d", PatientID(data))
	}

	if _, err := FromLogin(map[string]any{"name": "x"}, "x@example.test", now); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	noName, _ := FromLogin(map[string]any{"token": "t"}, "x@example.test", now)
	if noName.UserName != "x@example.test" {
		t.Fatalf("email fallback not applied: %q", noName.UserName)
	}
}

func TestStore_RoundTripAndInvalidCleared(t *testing.T) {
	kv := store.NewMemory()
	var logs bytes.Buffer
	st := &Store{KV: kv, Logger: clog.New(&logs)}

	if _, err := st.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession on empty store, got %v", err)
	}
	sess, err := Parse([]byte(validJSON))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if err := st.Save(sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Token != "tok" || got.UserID != 42 {
		t.Fatalf("unexpected session %+v", got)
	}

	_ = kv.Save(Key, []byte(`{"token":"t"}`))
	if _, err := st.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected invalid session to read as absent, got %v", err)
	}
	if _, ok, _ := kv.Load(Key); ok {
		t.Fatalf("invalid session should have been cleared")
	}
	if !strings.Contains(logs.String(), "invalid stored session") {
		t.Fatalf("expected warning, logs:\n%s", logs.String())
	}

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
}

func TestSchema(t *testing.T) {
	b, err := MarshalSchema(Schema())
	if err != nil {
		t.Fatalf("MarshalSchema error: %v", err)
	}
	for _, want := range []string{`"token"`, `"business_date"`, `"department_id"`} {
		if !bytes.Contains(b, []byte(want)) {
			t.Fatalf("schema missing %s:\n%s", want, b)
		}
	}
}
