package sources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"devpulse-api/internal/models"

	"github.com/stretchr/testify/require"
)

func wakatimeServer(t *testing.T, apiKey string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != want {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		var body any
		switch r.URL.Path {
		case "/api/v1/users/current/status_bar/today":
			body = map[string]any{"data": map[string]any{
				"grand_total": map[string]any{"text": "2 hrs 5 mins", "total_seconds": 7500},
			}}
		case "/api/v1/users/current/stats/last_7_days":
			langs := make([]any, 0, 10)
			for i, name := range []string{"Go", "Zig", "Python", "Rust", "C", "SQL", "CSS", "HTML", "Shell", "Ruby"} {
				langs = append(langs, map[string]any{"name": name, "percent": 10 - i, "total_seconds": 1000 - i, "text": fmt.Sprintf("%d mins", 10-i)})
			}
			body = map[string]any{"data": map[string]any{
				"human_readable_total_including_other_language":         "14 hrs 2 mins",
				"total_seconds_including_other_language":                50520,
				"human_readable_daily_average_including_other_language": "2 hrs",
				"languages": langs,
				"editors":   []any{map[string]any{"name": "VS Code", "percent": 100, "text": "14 hrs"}},
				"projects":  []any{map[string]any{"name": "devpulse", "percent": 100, "total_seconds": 50520, "text": "14 hrs"}},
				"days":      []any{map[string]any{"date": "2025-03-09", "total": 3700}},
			}}
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no such endpoint"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestWakaTimeFetcher_Normalizes(t *testing.T) {
	srv, calls := wakatimeServer(t, "waka_key")
	f := NewWakaTimeFetcher(WakaTimeOptions{BaseURL: srv.URL + "/api/v1/", Clock: fakeClock()})

	stats, err := f.Fetch(context.Background(), models.UserConfig{UserID: "u1", WakaTimeAPIKey: "waka_key"})
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())

	require.Equal(t, models.CodingTime{Text: "2 hrs 5 mins", TotalSeconds: 7500}, stats.Today)
	require.Equal(t, models.WeeklyCoding{Text: "14 hrs 2 mins", TotalSeconds: 50520, DailyAverage: "2 hrs"}, stats.Week)

	require.Len(t, stats.Languages, maxLanguages)
	require.Equal(t, "#00ADD8", stats.Languages[0].Color)
	require.Equal(t, defaultLanguageColor, stats.Languages[1].Color)
	require.Len(t, stats.Editors, 1)
	require.Len(t, stats.Projects, 1)

	require.Len(t, stats.DailyCoding, 7)
	require.Equal(t, models.DailyCoding{Date: "2025-03-09", TotalSeconds: 3700, Text: "1h 1m"}, stats.DailyCoding[5])
	require.Equal(t, models.DailyCoding{Date: "2025-03-10", TotalSeconds: 0, Text: "0m"}, stats.DailyCoding[6])
}

func TestWakaTimeFetcher_UsesDefaultKey(t *testing.T) {
	srv, _ := wakatimeServer(t, "process_key")
	f := NewWakaTimeFetcher(WakaTimeOptions{BaseURL: srv.URL + "/api/v1", DefaultAPIKey: "process_key", Clock: fakeClock()})

	_, err := f.Fetch(context.Background(), models.UserConfig{UserID: "u1"})
	require.NoError(t, err)
}

func TestWakaTimeFetcher_MissingKey(t *testing.T) {
	srv, calls := wakatimeServer(t, "whatever")
	f := NewWakaTimeFetcher(WakaTimeOptions{BaseURL: srv.URL + "/api/v1"})

	_, err := f.Fetch(context.Background(), models.UserConfig{UserID: "u1"})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, SourceWakaTime, upstream.Source)
	require.Zero(t, calls.Load())
}

func TestWakaTimeFetcher_Unauthorized(t *testing.T) {
	srv, _ := wakatimeServer(t, "right")
	f := NewWakaTimeFetcher(WakaTimeOptions{BaseURL: srv.URL + "/api/v1"})

	_, err := f.Fetch(context.Background(), models.UserConfig{UserID: "u1", WakaTimeAPIKey: "wrong"})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	require.Equal(t, "Unauthorized", upstream.Message)
}

func TestNormalizeWakaTime_Defaults(t *testing.T) {
	stats := normalizeWakaTime(testNow, wakatimeToday{}, wakatimeWeek{})
	require.Equal(t, "0 hrs 0 mins", stats.Today.Text)
	require.Equal(t, "0 hrs", stats.Week.Text)
	require.Equal(t, "0 hrs", stats.Week.DailyAverage)
	require.NotNil(t, stats.Languages)
	require.NotNil(t, stats.Editors)
	require.NotNil(t, stats.Projects)
	require.Len(t, stats.DailyCoding, 7)
}
