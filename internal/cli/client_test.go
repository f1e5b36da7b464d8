package cli

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestAPIHooks_ConcurrentRequests(t *testing.T) {
	h := apiHooks()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/v1/reports", nil)
			h.OnStart(req)
			h.OnEnd(req, nil)
		}()
	}
	wg.Wait()

	// an end without a start must not panic
	h.OnEnd(httptest.NewRequest(http.MethodGet, "/v1/reports", nil), nil)
}
