package models

import "time"

// User is an account plus the upstream handles its dashboard is built from.
type User struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	Username         string    `json:"username" gorm:"unique;not null"`
	PasswordHash     string    `json:"-" gorm:"not null"`
	GitHubUsername   string    `json:"githubUsername" gorm:"column:github_username"`
	LeetCodeUsername string    `json:"leetcodeUsername" gorm:"column:leetcode_username"`
	WakaTimeAPIKey   string    `json:"-" gorm:"column:wakatime_api_key"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// Config projects the user onto the per-request fetch configuration.
func (u User) Config() UserConfig {
	return UserConfig{
		UserID:           u.ID,
		GitHubUsername:   u.GitHubUsername,
		LeetCodeUsername: u.LeetCodeUsername,
		WakaTimeAPIKey:   u.WakaTimeAPIKey,
	}
}

// UserConfig identifies whose metrics to fetch. Empty handles fall back to
// process-wide defaults inside each fetcher.
type UserConfig struct {
	UserID           string
	GitHubUsername   string
	LeetCodeUsername string
	WakaTimeAPIKey   string
}
