package sources

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"devpulse-api/internal/models"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLeetCodeEndpoint = "https://leetcode.com/graphql"
	DefaultLeetCodeUsername = "leetcode"

	recentSubmissionLimit = 10
	// The submissions feed carries no difficulty.
	defaultSubmissionDifficulty = "Medium"
)

const leetcodeProfileQuery = `
query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile { ranking }
    submitStatsGlobal { acSubmissionNum { difficulty count } }
    badges { name }
  }
  allQuestionsCount { difficulty count }
}`

const leetcodeSubmissionsQuery = `
query getRecentSubmissions($username: String!, $limit: Int!) {
  recentAcSubmissionList(username: $username, limit: $limit) {
    id
    title
    titleSlug
    timestamp
    statusDisplay
    lang
  }
}`

const leetcodeContestQuery = `
query getUserContestRanking($username: String!) {
  userContestRanking(username: $username) {
    attendedContestsCount
    rating
    globalRanking
  }
}`

type leetcodeDifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

type leetcodeProfileData struct {
	MatchedUser *struct {
		Username string `json:"username"`
		Profile  struct {
			Ranking *int `json:"ranking"`
		} `json:"profile"`
		SubmitStatsGlobal struct {
			AcSubmissionNum []leetcodeDifficultyCount `json:"acSubmissionNum"`
		} `json:"submitStatsGlobal"`
		Badges []struct {
			Name string `json:"name"`
		} `json:"badges"`
	} `json:"matchedUser"`
	AllQuestionsCount []leetcodeDifficultyCount `json:"allQuestionsCount"`
}

type leetcodeSubmission struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	TitleSlug     string `json:"titleSlug"`
	Timestamp     string `json:"timestamp"`
	StatusDisplay string `json:"statusDisplay"`
	Lang          string `json:"lang"`
}

type leetcodeSubmissionsData struct {
	RecentAcSubmissionList []leetcodeSubmission `json:"recentAcSubmissionList"`
}

type leetcodeContestData struct {
	UserContestRanking *struct {
		AttendedContestsCount int      `json:"attendedContestsCount"`
		Rating                *float64 `json:"rating"`
		GlobalRanking         int      `json:"globalRanking"`
	} `json:"userContestRanking"`
}

// LeetCodeOptions configures a LeetCodeFetcher.
type LeetCodeOptions struct {
	Endpoint        string
	DefaultUsername string
	HTTPClient      *http.Client
	Clock           clockwork.Clock
}

// LeetCodeFetcher reads profile, submissions and contest data from the
// public LeetCode GraphQL endpoint.
type LeetCodeFetcher struct {
	client          *upstreamClient
	endpoint        string
	defaultUsername string
	clock           clockwork.Clock
}

func NewLeetCodeFetcher(opts LeetCodeOptions) *LeetCodeFetcher {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &LeetCodeFetcher{
		client:          newUpstreamClient(SourceLeetCode, opts.HTTPClient),
		endpoint:        firstNonEmpty(opts.Endpoint, DefaultLeetCodeEndpoint),
		defaultUsername: opts.DefaultUsername,
		clock:           opts.Clock,
	}
}

func (f *LeetCodeFetcher) Source() Source { return SourceLeetCode }

// Username resolves which LeetCode account cfg refers to.
func (f *LeetCodeFetcher) Username(cfg models.UserConfig) string {
	return firstNonEmpty(cfg.LeetCodeUsername, f.defaultUsername, DefaultLeetCodeUsername)
}

func (f *LeetCodeFetcher) Fetch(ctx context.Context, cfg models.UserConfig) (models.LeetCodeStats, error) {
	username := f.Username(cfg)
	header := http.Header{}
	header.Set("Referer", "https://leetcode.com")

	var (
		profile     leetcodeProfileData
		submissions leetcodeSubmissionsData
		contest     leetcodeContestData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = postGraphQL[leetcodeProfileData](gctx, f.client, f.endpoint, leetcodeProfileQuery,
			map[string]any{"username": username}, header)
		return err
	})
	g.Go(func() error {
		var err error
		submissions, err = postGraphQL[leetcodeSubmissionsData](gctx, f.client, f.endpoint, leetcodeSubmissionsQuery,
			map[string]any{"username": username, "limit": recentSubmissionLimit}, header)
		return err
	})
	g.Go(func() error {
		var err error
		contest, err = postGraphQL[leetcodeContestData](gctx, f.client, f.endpoint, leetcodeContestQuery,
			map[string]any{"username": username}, header)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.LeetCodeStats{}, err
	}
	if profile.MatchedUser == nil {
		return models.LeetCodeStats{}, &UpstreamError{Source: SourceLeetCode, Message: fmt.Sprintf("user %q not found", username)}
	}
	return normalizeLeetCode(f.clock.Now().UTC(), profile, submissions, contest), nil
}

func countFor(counts []leetcodeDifficultyCount, difficulty string) (int, bool) {
	for _, c := range counts {
		if c.Difficulty == difficulty {
			return c.Count, true
		}
	}
	return 0, false
}

// difficultyTotals reads Easy/Medium/Hard and the "All" roll-up, deriving
// the latter from the parts when the upstream omits it.
func difficultyTotals(counts []leetcodeDifficultyCount) (all, easy, medium, hard int) {
	easy, _ = countFor(counts, "Easy")
	medium, _ = countFor(counts, "Medium")
	hard, _ = countFor(counts, "Hard")
	all, ok := countFor(counts, "All")
	if !ok {
		all = easy + medium + hard
	}
	return all, easy, medium, hard
}

func normalizeLeetCode(now time.Time, profile leetcodeProfileData, submissions leetcodeSubmissionsData, contest leetcodeContestData) models.LeetCodeStats {
	user := profile.MatchedUser

	solved, easySolved, mediumSolved, hardSolved := difficultyTotals(user.SubmitStatsGlobal.AcSubmissionNum)
	total, easyTotal, mediumTotal, hardTotal := difficultyTotals(profile.AllQuestionsCount)

	acceptance := 0.0
	if total > 0 {
		acceptance = math.Round(float64(solved)/float64(total)*10000) / 100
	}

	// Submissions outside the trailing week land on keys nobody reads.
	week := TrailingWeek(now)
	perDay := make(map[string]int, len(submissions.RecentAcSubmissionList))
	recent := make([]models.Submission, 0, len(submissions.RecentAcSubmissionList))
	for i, s := range submissions.RecentAcSubmissionList {
		id, err := strconv.Atoi(s.ID)
		if err != nil {
			id = i
		}
		sub := models.Submission{
			ID:         id,
			Title:      s.Title,
			Difficulty: defaultSubmissionDifficulty,
			Status:     firstNonEmpty(s.StatusDisplay, "Accepted"),
			Time:       "unknown",
			Runtime:    s.Lang,
		}
		if secs, err := strconv.ParseInt(s.Timestamp, 10, 64); err == nil {
			at := time.Unix(secs, 0).UTC()
			sub.Time = TimeAgo(now, at)
			perDay[DateKey(at)]++
		}
		recent = append(recent, sub)
	}

	weekly := make([]models.DailySolved, 0, len(week))
	for _, day := range week {
		weekly = append(weekly, models.DailySolved{Day: DayName(day), Solved: perDay[DateKey(day)]})
	}

	ranking := 0
	if user.Profile.Ranking != nil {
		ranking = *user.Profile.Ranking
	}
	rating := 0
	if contest.UserContestRanking != nil && contest.UserContestRanking.Rating != nil {
		rating = int(math.Round(*contest.UserContestRanking.Rating))
	}

	return models.LeetCodeStats{
		TotalSolved:       solved,
		TotalQuestions:    total,
		Ranking:           ranking,
		AcceptanceRate:    acceptance,
		Easy:              models.DifficultyProgress{Solved: easySolved, Total: easyTotal},
		Medium:            models.DifficultyProgress{Solved: mediumSolved, Total: mediumTotal},
		Hard:              models.DifficultyProgress{Solved: hardSolved, Total: hardTotal},
		RecentSubmissions: recent,
		ContestRating:     rating,
		Badges:            len(user.Badges),
		WeeklyProgress:    weekly,
	}
}
