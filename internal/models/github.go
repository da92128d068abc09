package models

// GitHubStats is the normalized GitHub payload.
type GitHubStats struct {
	User  GitHubUser  `json:"user"`
	Stats GitHubUsage `json:"stats"`
}

type GitHubUser struct {
	Name          string `json:"name"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar"`
	Streak        int    `json:"streak"`
	LongestStreak int    `json:"longestStreak"`
	TotalCommits  int    `json:"totalCommits"`
	TotalRepos    int    `json:"totalRepos"`
	TotalStars    int    `json:"totalStars"`
	JoinedDate    string `json:"joinedDate"`
}

type GitHubUsage struct {
	TodayCommits         int                  `json:"todayCommits"`
	WeeklyCommits        []DailyCommits       `json:"weeklyCommits"`
	MonthlyContributions []ContributionDay    `json:"monthlyContributions"`
	RecentRepos          []RepoSummary        `json:"recentRepos"`
	PullRequests         PullRequestBreakdown `json:"pullRequests"`
	Issues               IssueBreakdown       `json:"issues"`
}

type DailyCommits struct {
	Day     string `json:"day"`
	Commits int    `json:"commits"`
}

// ContributionDay is one cell of the contribution grid. Level is 0-4.
type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type RepoSummary struct {
	Name          string `json:"name"`
	Language      string `json:"language"`
	LanguageColor string `json:"languageColor"`
	Stars         int    `json:"stars"`
	Commits       int    `json:"commits"`
	LastActive    string `json:"lastActive"`
}

type PullRequestBreakdown struct {
	Open   int `json:"open"`
	Merged int `json:"merged"`
	Closed int `json:"closed"`
}

type IssueBreakdown struct {
	Open   int `json:"open"`
	Closed int `json:"closed"`
}
