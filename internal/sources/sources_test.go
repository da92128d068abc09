package sources

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// testNow is a Monday.
var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fakeClock() clockwork.Clock {
	return clockwork.NewFakeClockAt(testNow)
}

type graphQLCall struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
	Header    http.Header    `json:"-"`
}

// graphQLServer answers each POSTed GraphQL document with whatever respond
// returns, encoded as JSON.
func graphQLServer(t *testing.T, respond func(call graphQLCall) (int, any)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var call graphQLCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		call.Header = r.Header.Clone()
		status, body := respond(call)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}
