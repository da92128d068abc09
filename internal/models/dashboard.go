package models

// DashboardPayload merges every source for one user. A nil source means that
// source failed for the request that built the payload.
type DashboardPayload struct {
	GitHub    *GitHubStats   `json:"github"`
	LeetCode  *LeetCodeStats `json:"leetcode"`
	WakaTime  *WakaTimeStats `json:"wakatime"`
	Timestamp string         `json:"timestamp"`
}
