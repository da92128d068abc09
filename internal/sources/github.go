package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"devpulse-api/internal/models"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultGitHubEndpoint = "https://api.github.com/graphql"
	DefaultGitHubUsername = "octocat"
)

// Pull request and issue counts are rolled up from the 100 most recent items.
const githubContributionsQuery = `
query($username: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $username) {
    name
    login
    avatarUrl
    createdAt
    repositories(first: 1, ownerAffiliations: OWNER, privacy: PUBLIC) { totalCount }
    contributionsCollection(from: $from, to: $to) {
      totalCommitContributions
      contributionCalendar {
        weeks {
          contributionDays { date contributionCount contributionLevel }
        }
      }
    }
    pullRequests(first: 100, orderBy: {field: CREATED_AT, direction: DESC}) { nodes { state } }
    issues(first: 100, orderBy: {field: CREATED_AT, direction: DESC}) { nodes { state } }
  }
}`

const githubReposQuery = `
query($username: String!) {
  user(login: $username) {
    repositories(first: 10, ownerAffiliations: OWNER, orderBy: {field: UPDATED_AT, direction: DESC}, privacy: PUBLIC) {
      nodes {
        name
        primaryLanguage { name color }
        stargazerCount
        defaultBranchRef { target { ... on Commit { history(first: 1) { totalCount } } } }
        updatedAt
      }
    }
  }
}`

var contributionLevels = map[string]int{
	"NONE":            0,
	"FIRST_QUARTILE":  1,
	"SECOND_QUARTILE": 2,
	"THIRD_QUARTILE":  3,
	"FOURTH_QUARTILE": 4,
}

type githubDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
	ContributionLevel string `json:"contributionLevel"`
}

type githubStateNodes struct {
	Nodes []struct {
		State string `json:"state"`
	} `json:"nodes"`
}

type githubContributionsData struct {
	User *struct {
		Name         *string `json:"name"`
		Login        string  `json:"login"`
		AvatarURL    string  `json:"avatarUrl"`
		CreatedAt    string  `json:"createdAt"`
		Repositories struct {
			TotalCount int `json:"totalCount"`
		} `json:"repositories"`
		ContributionsCollection struct {
			TotalCommitContributions int `json:"totalCommitContributions"`
			ContributionCalendar     struct {
				Weeks []struct {
					ContributionDays []githubDay `json:"contributionDays"`
				} `json:"weeks"`
			} `json:"contributionCalendar"`
		} `json:"contributionsCollection"`
		PullRequests githubStateNodes `json:"pullRequests"`
		Issues       githubStateNodes `json:"issues"`
	} `json:"user"`
}

type githubRepoNode struct {
	Name            string `json:"name"`
	PrimaryLanguage *struct {
		Name  string  `json:"name"`
		Color *string `json:"color"`
	} `json:"primaryLanguage"`
	StargazerCount   int `json:"stargazerCount"`
	DefaultBranchRef *struct {
		Target *struct {
			History *struct {
				TotalCount int `json:"totalCount"`
			} `json:"history"`
		} `json:"target"`
	} `json:"defaultBranchRef"`
	UpdatedAt string `json:"updatedAt"`
}

type githubReposData struct {
	User *struct {
		Repositories struct {
			Nodes []githubRepoNode `json:"nodes"`
		} `json:"repositories"`
	} `json:"user"`
}

// GitHubOptions configures a GitHubFetcher.
type GitHubOptions struct {
	Endpoint        string
	Token           string
	DefaultUsername string
	HTTPClient      *http.Client
	Clock           clockwork.Clock
}

// GitHubFetcher reads contribution and repository data from the GitHub
// GraphQL API.
type GitHubFetcher struct {
	client          *upstreamClient
	endpoint        string
	token           string
	defaultUsername string
	clock           clockwork.Clock
}

func NewGitHubFetcher(opts GitHubOptions) *GitHubFetcher {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &GitHubFetcher{
		client:          newUpstreamClient(SourceGitHub, opts.HTTPClient),
		endpoint:        firstNonEmpty(opts.Endpoint, DefaultGitHubEndpoint),
		token:           opts.Token,
		defaultUsername: opts.DefaultUsername,
		clock:           opts.Clock,
	}
}

func (f *GitHubFetcher) Source() Source { return SourceGitHub }

// Username resolves which GitHub account cfg refers to.
func (f *GitHubFetcher) Username(cfg models.UserConfig) string {
	return firstNonEmpty(cfg.GitHubUsername, f.defaultUsername, DefaultGitHubUsername)
}

func (f *GitHubFetcher) Fetch(ctx context.Context, cfg models.UserConfig) (models.GitHubStats, error) {
	username := f.Username(cfg)
	now := f.clock.Now().UTC()
	header := http.Header{}
	if f.token != "" {
		header.Set("Authorization", "bearer "+f.token)
	}

	var (
		contrib githubContributionsData
		repos   githubReposData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contrib, err = postGraphQL[githubContributionsData](gctx, f.client, f.endpoint, githubContributionsQuery, map[string]any{
			"username": username,
			"from":     now.AddDate(-1, 0, 0).Format(time.RFC3339),
			"to":       now.Format(time.RFC3339),
		}, header)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = postGraphQL[githubReposData](gctx, f.client, f.endpoint, githubReposQuery, map[string]any{
			"username": username,
		}, header)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.GitHubStats{}, err
	}
	if contrib.User == nil || repos.User == nil {
		return models.GitHubStats{}, &UpstreamError{Source: SourceGitHub, Message: fmt.Sprintf("user %q not found", username)}
	}
	return normalizeGitHub(now, username, contrib, repos), nil
}

func normalizeGitHub(now time.Time, username string, contrib githubContributionsData, repos githubReposData) models.GitHubStats {
	user := contrib.User

	var days []githubDay
	for _, w := range user.ContributionsCollection.ContributionCalendar.Weeks {
		days = append(days, w.ContributionDays...)
	}
	counts := make([]int, len(days))
	byDate := make(map[string]int, len(days))
	for i, d := range days {
		counts[i] = d.ContributionCount
		byDate[d.Date] = d.ContributionCount
	}

	weekly := make([]models.DailyCommits, 0, 7)
	for _, day := range TrailingWeek(now) {
		weekly = append(weekly, models.DailyCommits{
			Day:     DayName(day),
			Commits: byDate[DateKey(day)],
		})
	}

	monthStart := max(0, len(days)-30)
	monthly := make([]models.ContributionDay, 0, len(days)-monthStart)
	for _, d := range days[monthStart:] {
		monthly = append(monthly, models.ContributionDay{
			Date:  d.Date,
			Count: d.ContributionCount,
			Level: contributionLevels[d.ContributionLevel],
		})
	}

	totalStars := 0
	recent := make([]models.RepoSummary, 0, len(repos.User.Repositories.Nodes))
	for _, r := range repos.User.Repositories.Nodes {
		totalStars += r.StargazerCount
		summary := models.RepoSummary{
			Name:          r.Name,
			Language:      "Unknown",
			LanguageColor: "#888888",
			Stars:         r.StargazerCount,
			LastActive:    "unknown",
		}
		if r.PrimaryLanguage != nil {
			summary.Language = firstNonEmpty(r.PrimaryLanguage.Name, summary.Language)
			if r.PrimaryLanguage.Color != nil {
				summary.LanguageColor = firstNonEmpty(*r.PrimaryLanguage.Color, summary.LanguageColor)
			}
		}
		if ref := r.DefaultBranchRef; ref != nil && ref.Target != nil && ref.Target.History != nil {
			summary.Commits = ref.Target.History.TotalCount
		}
		if updated, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
			summary.LastActive = TimeAgo(now, updated)
		}
		recent = append(recent, summary)
	}

	var prs models.PullRequestBreakdown
	for _, n := range user.PullRequests.Nodes {
		switch n.State {
		case "OPEN":
			prs.Open++
		case "MERGED":
			prs.Merged++
		case "CLOSED":
			prs.Closed++
		}
	}
	var issues models.IssueBreakdown
	for _, n := range user.Issues.Nodes {
		switch n.State {
		case "OPEN":
			issues.Open++
		case "CLOSED":
			issues.Closed++
		}
	}

	name := username
	if user.Name != nil && *user.Name != "" {
		name = *user.Name
	}
	streak := CurrentStreak(counts)

	return models.GitHubStats{
		User: models.GitHubUser{
			Name:          name,
			Username:      firstNonEmpty(user.Login, username),
			Avatar:        user.AvatarURL,
			Streak:        streak,
			LongestStreak: max(streak, LongestStreak(counts)),
			TotalCommits:  user.ContributionsCollection.TotalCommitContributions,
			TotalRepos:    user.Repositories.TotalCount,
			TotalStars:    totalStars,
			JoinedDate:    user.CreatedAt,
		},
		Stats: models.GitHubUsage{
			TodayCommits:         byDate[DateKey(now)],
			WeeklyCommits:        weekly,
			MonthlyContributions: monthly,
			RecentRepos:          recent,
			PullRequests:         prs,
			Issues:               issues,
		},
	}
}
