package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"devpulse-api/internal/models"

	"github.com/stretchr/testify/require"
)

func githubContributionsBody() map[string]any {
	counts := []int{1, 1, 1, 1, 0, 0, 3, 5, 2, 4}
	days := make([]map[string]any, 0, len(counts))
	for i, c := range counts {
		level := "NONE"
		switch {
		case c >= 5:
			level = "FOURTH_QUARTILE"
		case c > 0:
			level = "FIRST_QUARTILE"
		}
		days = append(days, map[string]any{
			"date":              time.Date(2025, 3, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			"contributionCount": c,
			"contributionLevel": level,
		})
	}
	return map[string]any{"data": map[string]any{"user": map[string]any{
		"name":         nil,
		"login":        "octo",
		"avatarUrl":    "https://avatars.example/octo.png",
		"createdAt":    "2019-05-01T00:00:00Z",
		"repositories": map[string]any{"totalCount": 12},
		"contributionsCollection": map[string]any{
			"totalCommitContributions": 321,
			"contributionCalendar": map[string]any{"weeks": []any{
				map[string]any{"contributionDays": days[:7]},
				map[string]any{"contributionDays": days[7:]},
			}},
		},
		"pullRequests": map[string]any{"nodes": []any{
			map[string]any{"state": "OPEN"},
			map[string]any{"state": "MERGED"},
			map[string]any{"state": "MERGED"},
			map[string]any{"state": "CLOSED"},
		}},
		"issues": map[string]any{"nodes": []any{
			map[string]any{"state": "OPEN"},
			map[string]any{"state": "CLOSED"},
			map[string]any{"state": "CLOSED"},
		}},
	}}}
}

func githubReposBody() map[string]any {
	return map[string]any{"data": map[string]any{"user": map[string]any{
		"repositories": map[string]any{"nodes": []any{
			map[string]any{
				"name":             "devpulse",
				"primaryLanguage":  map[string]any{"name": "Go", "color": "#00ADD8"},
				"stargazerCount":   5,
				"defaultBranchRef": map[string]any{"target": map[string]any{"history": map[string]any{"totalCount": 42}}},
				"updatedAt":        "2025-03-10T09:00:00Z",
			},
			map[string]any{
				"name":             "notes",
				"primaryLanguage":  nil,
				"stargazerCount":   2,
				"defaultBranchRef": nil,
				"updatedAt":        "2025-02-20T12:00:00Z",
			},
		}},
	}}}
}

func TestGitHubFetcher_Normalizes(t *testing.T) {
	srv, calls := graphQLServer(t, func(call graphQLCall) (int, any) {
		if call.Header.Get("Authorization") != "bearer pat-123" {
			return http.StatusUnauthorized, map[string]any{"message": "Bad credentials"}
		}
		if call.Variables["username"] != "octo" {
			return http.StatusOK, map[string]any{"data": map[string]any{"user": nil}}
		}
		if strings.Contains(call.Query, "contributionsCollection") {
			return http.StatusOK, githubContributionsBody()
		}
		return http.StatusOK, githubReposBody()
	})

	f := NewGitHubFetcher(GitHubOptions{Endpoint: srv.URL, Token: "pat-123", Clock: fakeClock()})
	stats, err := f.Fetch(context.Background(), models.UserConfig{UserID: "u1", GitHubUsername: "octo"})
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())

	u := stats.User
	require.Equal(t, "octo", u.Name)
	require.Equal(t, "octo", u.Username)
	require.Equal(t, 4, u.Streak)
	require.Equal(t, 4, u.LongestStreak)
	require.Equal(t, 321, u.TotalCommits)
	require.Equal(t, 12, u.TotalRepos)
	require.Equal(t, 7, u.TotalStars)
	require.Equal(t, "2019-05-01T00:00:00Z", u.JoinedDate)

	s := stats.Stats
	require.Equal(t, 4, s.TodayCommits)
	require.Equal(t, []models.DailyCommits{
		{Day: "Tue", Commits: 1},
		{Day: "Wed", Commits: 0},
		{Day: "Thu", Commits: 0},
		{Day: "Fri", Commits: 3},
		{Day: "Sat", Commits: 5},
		{Day: "Sun", Commits: 2},
		{Day: "Mon", Commits: 4},
	}, s.WeeklyCommits)
	require.Len(t, s.MonthlyContributions, 10)
	require.Equal(t, models.ContributionDay{Date: "2025-03-08", Count: 5, Level: 4}, s.MonthlyContributions[7])

	require.Equal(t, []models.RepoSummary{
		{Name: "devpulse", Language: "Go", LanguageColor: "#00ADD8", Stars: 5, Commits: 42, LastActive: "3h ago"},
		{Name: "notes", Language: "Unknown", LanguageColor: "#888888", Stars: 2, Commits: 0, LastActive: "2w ago"},
	}, s.RecentRepos)
	require.Equal(t, models.PullRequestBreakdown{Open: 1, Merged: 2, Closed: 1}, s.PullRequests)
	require.Equal(t, models.IssueBreakdown{Open: 1, Closed: 2}, s.Issues)
}

func TestGitHubFetcher_FallsBackToDefaultUsername(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []any
	)
	srv, _ := graphQLServer(t, func(call graphQLCall) (int, any) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, call.Variables["username"])
		return http.StatusOK, map[string]any{"data": map[string]any{"user": nil}}
	})

	f := NewGitHubFetcher(GitHubOptions{Endpoint: srv.URL, Clock: fakeClock()})
	require.Equal(t, DefaultGitHubUsername, f.Username(models.UserConfig{}))
	_, err := f.Fetch(context.Background(), models.UserConfig{UserID: "u1"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, SourceGitHub, upstream.Source)
	require.Contains(t, upstream.Message, "not found")
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	for _, u := range seen {
		require.Equal(t, DefaultGitHubUsername, u)
	}

	f = NewGitHubFetcher(GitHubOptions{Endpoint: srv.URL, DefaultUsername: "from-env"})
	require.Equal(t, "from-env", f.Username(models.UserConfig{}))
	require.Equal(t, "mine", f.Username(models.UserConfig{GitHubUsername: "mine"}))
}

func TestGitHubFetcher_UpstreamFailures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv, _ := graphQLServer(t, func(graphQLCall) (int, any) {
			return http.StatusBadGateway, map[string]any{"message": "upstream down"}
		})
		_, err := NewGitHubFetcher(GitHubOptions{Endpoint: srv.URL}).Fetch(context.Background(), models.UserConfig{})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.Equal(t, http.StatusBadGateway, upstream.StatusCode)
		require.Equal(t, "upstream down", upstream.Message)
	})

	t.Run("graphql errors", func(t *testing.T) {
		srv, _ := graphQLServer(t, func(graphQLCall) (int, any) {
			return http.StatusOK, map[string]any{"data": nil, "errors": []any{map[string]any{"message": "rate limited"}}}
		})
		_, err := NewGitHubFetcher(GitHubOptions{Endpoint: srv.URL}).Fetch(context.Background(), models.UserConfig{})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.Equal(t, "rate limited", upstream.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		t.Cleanup(srv.Close)
		_, err := NewGitHubFetcher(GitHubOptions{Endpoint: srv.URL}).Fetch(context.Background(), models.UserConfig{})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.Contains(t, upstream.Message, "malformed response")
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		client := &http.Client{Timeout: 50 * time.Millisecond}
		_, err := NewGitHubFetcher(GitHubOptions{Endpoint: srv.URL, HTTPClient: client}).Fetch(context.Background(), models.UserConfig{})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.True(t, upstream.IsTimeout(), "got %v", err)
	})

	t.Run("context deadline", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		_, err := NewGitHubFetcher(GitHubOptions{Endpoint: "http://127.0.0.1:1"}).Fetch(ctx, models.UserConfig{})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.True(t, upstream.IsTimeout())
		require.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}
