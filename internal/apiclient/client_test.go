package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type report struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestClient_BearerAndHooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type %q", got)
		}
		if r.URL.Path != "/v1/reports/7" {
			t.Errorf("path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(report{ID: 7, Title: "Assessment"})
	}))
	defer srv.Close()

	var started, ended atomic.Int32
	c := New(srv.URL+"/", WithToken("tok"), WithHooks(Hooks{
		OnStart: func(*http.Request) { started.Add(1) },
		OnEnd:   func(_ *http.Request, err error) { ended.Add(1) },
	}))

	var got report
	if err := c.Get(context.Background(), "/v1/reports/7", &got); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Title != "Assessment" {
		t.Fatalf("unexpected body %+v", got)
	}
	if started.Load() != 1 || ended.Load() != 1 {
		t.Fatalf("hooks fired start=%d end=%d", started.Load(), ended.Load())
	}
}

func TestClient_ServerErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"nope","code":"FORBIDDEN","details":{"field":"patient_id"}}`))
	}))
	defer srv.Close()

	var endErr error
	c := New(srv.URL, WithHooks(Hooks{OnEnd: func(_ *http.Request, err error) { endErr = err }}))
	err := c.Post(context.Background(), "/v1/homework", map[string]string{"a": "b"}, nil)
	ae, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if ae.Status != 403 || ae.Code != "FORBIDDEN" || ae.Message != "nope" {
		t.Fatalf("unexpected error %+v", ae)
	}
	if !errors.Is(endErr, err) {
		t.Fatalf("OnEnd should see the same error")
	}
	if title, _ := Describe(err); title != "Access Denied" {
		t.Fatalf("describe title %q", title)
	}
}

func TestClient_DefaultMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	err := New(srv.URL).Get(context.Background(), "/x", nil)
	ae, _ := AsAPIError(err)
	if ae == nil || ae.Message != "An error occurred" || ae.Status != 502 {
		t.Fatalf("unexpected error %+v", ae)
	}
	if title, desc := Describe(err); title != "Error" || desc != "An error occurred" {
		t.Fatalf("describe %q %q", title, desc)
	}
}

func TestClient_NoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	var ended bool
	err := New(url, WithHooks(Hooks{OnEnd: func(*http.Request, error) { ended = true }})).Get(context.Background(), "/x", nil)
	ae, ok := AsAPIError(err)
	if !ok || ae.Code != CodeNoResponse || ae.Status != 0 {
		t.Fatalf("unexpected error %+v", ae)
	}
	if !ended {
		t.Fatalf("OnEnd not fired on transport failure")
	}
	if title, _ := Describe(err); title != "Connection Error" {
		t.Fatalf("describe title %q", title)
	}
}

func TestClient_RequestError(t *testing.T) {
	err := New("http://localhost:1").Post(context.Background(), "/x", func() {}, nil)
	ae, ok := AsAPIError(err)
	if !ok || ae.Code != CodeRequestError {
		t.Fatalf("expected REQUEST_ERROR, got %v", err)
	}
}

func TestList_EnvelopeAndBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/reports":
			if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "10" || r.URL.Query().Get("patient_id") != "5" {
				t.Errorf("query %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"data":[{"id":1,"title":"a"},{"id":2,"title":"b"}],"count":23}`))
		case "/v1/appointments":
			_, _ = w.Write([]byte(`[{"id":3,"title":"c"}]`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	page, err := List[report](context.Background(), c, "/v1/reports?patient_id=5", 2, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if diff := cmp.Diff([]report{{1, "a"}, {2, "b"}}, page.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if page.Count != 23 || page.Pages(10) != 3 {
		t.Fatalf("count %d pages %d", page.Count, page.Pages(10))
	}

	bare, err := List[report](context.Background(), c, "/v1/appointments", 0, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if bare.Count != 1 || bare.Data[0].ID != 3 {
		t.Fatalf("unexpected bare page %+v", bare)
	}
}

func TestDescribe_Statuses(t *testing.T) {
	cases := map[int]string{
		401: "Authentication Failed",
		404: "Resource Not Found",
		500: "Server Error",
	}
	for status, want := range cases {
		if got, _ := Describe(&APIError{Status: status, Message: "x"}); got != want {
			t.Fatalf("%d: got %q want %q", status, got, want)
		}
	}
	if got, desc := Describe(errors.New("boom")); got != "Error" || desc != "boom" {
		t.Fatalf("plain error described as %q %q", got, desc)
	}
}
