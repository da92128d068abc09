package models

// WakaTimeStats is the normalized WakaTime payload.
type WakaTimeStats struct {
	Today       CodingTime     `json:"today"`
	Week        WeeklyCoding   `json:"week"`
	Languages   []LanguageTime `json:"languages"`
	Editors     []EditorTime   `json:"editors"`
	Projects    []ProjectTime  `json:"projects"`
	DailyCoding []DailyCoding  `json:"dailyCoding"`
}

type CodingTime struct {
	Text         string  `json:"text"`
	TotalSeconds float64 `json:"totalSeconds"`
}

type WeeklyCoding struct {
	Text         string  `json:"text"`
	TotalSeconds float64 `json:"totalSeconds"`
	DailyAverage string  `json:"dailyAverage"`
}

type LanguageTime struct {
	Name         string  `json:"name"`
	Percent      float64 `json:"percent"`
	TotalSeconds float64 `json:"totalSeconds"`
	Text         string  `json:"text"`
	Color        string  `json:"color"`
}

type EditorTime struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Text    string  `json:"text"`
}

type ProjectTime struct {
	Name         string  `json:"name"`
	Percent      float64 `json:"percent"`
	TotalSeconds float64 `json:"totalSeconds"`
	Text         string  `json:"text"`
}

type DailyCoding struct {
	Date         string  `json:"date"`
	TotalSeconds float64 `json:"totalSeconds"`
	Text         string  `json:"text"`
}
