package models

// LeetCodeStats is the normalized LeetCode payload.
type LeetCodeStats struct {
	TotalSolved       int                `json:"totalSolved"`
	TotalQuestions    int                `json:"totalQuestions"`
	Ranking           int                `json:"ranking"`
	AcceptanceRate    float64            `json:"acceptanceRate"`
	Easy              DifficultyProgress `json:"easy"`
	Medium            DifficultyProgress `json:"medium"`
	Hard              DifficultyProgress `json:"hard"`
	RecentSubmissions []Submission       `json:"recentSubmissions"`
	ContestRating     int                `json:"contestRating"`
	Badges            int                `json:"badges"`
	WeeklyProgress    []DailySolved      `json:"weeklyProgress"`
}

type DifficultyProgress struct {
	Solved int `json:"solved"`
	Total  int `json:"total"`
}

type Submission struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Status     string `json:"status"`
	Time       string `json:"time"`
	// Runtime carries the submission language; the client renders it in
	// the runtime slot.
	Runtime string `json:"runtime"`
}

type DailySolved struct {
	Day    string `json:"day"`
	Solved int    `json:"solved"`
}
