package sources

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"devpulse-api/internal/models"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const DefaultWakaTimeBaseURL = "https://wakatime.com/api/v1"

const (
	maxLanguages = 8
	maxEditors   = 5
	maxProjects  = 8

	defaultLanguageColor = "#888888"
)

var languageColors = map[string]string{
	"Dart":       "#00B4AB",
	"Python":     "#3572A5",
	"JavaScript": "#F1E05A",
	"TypeScript": "#3178C6",
	"Java":       "#B07219",
	"Kotlin":     "#A97BFF",
	"C++":        "#F34B7D",
	"C":          "#555555",
	"Go":         "#00ADD8",
	"Rust":       "#DEA584",
	"Swift":      "#FA7343",
	"HTML":       "#E34C26",
	"CSS":        "#563D7C",
	"SQL":        "#E38C00",
	"Shell":      "#89E051",
	"Ruby":       "#701516",
	"PHP":        "#4F5D95",
}

// LanguageColor returns the display color for a language name.
func LanguageColor(name string) string {
	if c, ok := languageColors[name]; ok {
		return c
	}
	return defaultLanguageColor
}

type wakatimeToday struct {
	Data *struct {
		GrandTotal *struct {
			Text         string  `json:"text"`
			TotalSeconds float64 `json:"total_seconds"`
		} `json:"grand_total"`
	} `json:"data"`
}

type wakatimeBreakdown struct {
	Name         string  `json:"name"`
	Percent      float64 `json:"percent"`
	TotalSeconds float64 `json:"total_seconds"`
	Text         string  `json:"text"`
}

type wakatimeWeek struct {
	Data *struct {
		HumanReadableTotal        string              `json:"human_readable_total_including_other_language"`
		TotalSeconds              float64             `json:"total_seconds_including_other_language"`
		HumanReadableDailyAverage string              `json:"human_readable_daily_average_including_other_language"`
		Languages                 []wakatimeBreakdown `json:"languages"`
		Editors                   []wakatimeBreakdown `json:"editors"`
		Projects                  []wakatimeBreakdown `json:"projects"`
		Days                      []struct {
			Date  string  `json:"date"`
			Total float64 `json:"total"`
		} `json:"days"`
	} `json:"data"`
}

// WakaTimeOptions configures a WakaTimeFetcher.
type WakaTimeOptions struct {
	BaseURL       string
	DefaultAPIKey string
	HTTPClient    *http.Client
	Clock         clockwork.Clock
}

// WakaTimeFetcher reads today's and the trailing week's coding time.
type WakaTimeFetcher struct {
	client        *upstreamClient
	baseURL       string
	defaultAPIKey string
	clock         clockwork.Clock
}

func NewWakaTimeFetcher(opts WakaTimeOptions) *WakaTimeFetcher {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &WakaTimeFetcher{
		client:        newUpstreamClient(SourceWakaTime, opts.HTTPClient),
		baseURL:       strings.TrimRight(firstNonEmpty(opts.BaseURL, DefaultWakaTimeBaseURL), "/"),
		defaultAPIKey: opts.DefaultAPIKey,
		clock:         opts.Clock,
	}
}

func (f *WakaTimeFetcher) Source() Source { return SourceWakaTime }

func (f *WakaTimeFetcher) Fetch(ctx context.Context, cfg models.UserConfig) (models.WakaTimeStats, error) {
	key := firstNonEmpty(cfg.WakaTimeAPIKey, f.defaultAPIKey)
	if key == "" {
		return models.WakaTimeStats{}, &UpstreamError{Source: SourceWakaTime, Message: "api key not configured"}
	}
	header := http.Header{}
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(key)))

	var (
		today wakatimeToday
		week  wakatimeWeek
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.client.get(gctx, f.baseURL+"/users/current/status_bar/today", header, &today)
	})
	g.Go(func() error {
		return f.client.get(gctx, f.baseURL+"/users/current/stats/last_7_days", header, &week)
	})
	if err := g.Wait(); err != nil {
		return models.WakaTimeStats{}, err
	}
	return normalizeWakaTime(f.clock.Now().UTC(), today, week), nil
}

func normalizeWakaTime(now time.Time, today wakatimeToday, week wakatimeWeek) models.WakaTimeStats {
	out := models.WakaTimeStats{
		Today:       models.CodingTime{Text: "0 hrs 0 mins"},
		Week:        models.WeeklyCoding{Text: "0 hrs", DailyAverage: "0 hrs"},
		Languages:   []models.LanguageTime{},
		Editors:     []models.EditorTime{},
		Projects:    []models.ProjectTime{},
		DailyCoding: make([]models.DailyCoding, 0, 7),
	}

	if today.Data != nil && today.Data.GrandTotal != nil {
		out.Today.Text = firstNonEmpty(today.Data.GrandTotal.Text, out.Today.Text)
		out.Today.TotalSeconds = today.Data.GrandTotal.TotalSeconds
	}

	perDay := map[string]float64{}
	if w := week.Data; w != nil {
		out.Week.Text = firstNonEmpty(w.HumanReadableTotal, out.Week.Text)
		out.Week.TotalSeconds = w.TotalSeconds
		out.Week.DailyAverage = firstNonEmpty(w.HumanReadableDailyAverage, out.Week.DailyAverage)

		for _, l := range w.Languages[:min(len(w.Languages), maxLanguages)] {
			out.Languages = append(out.Languages, models.LanguageTime{
				Name:         l.Name,
				Percent:      l.Percent,
				TotalSeconds: l.TotalSeconds,
				Text:         l.Text,
				Color:        LanguageColor(l.Name),
			})
		}
		for _, e := range w.Editors[:min(len(w.Editors), maxEditors)] {
			out.Editors = append(out.Editors, models.EditorTime{Name: e.Name, Percent: e.Percent, Text: e.Text})
		}
		for _, p := range w.Projects[:min(len(w.Projects), maxProjects)] {
			out.Projects = append(out.Projects, models.ProjectTime{
				Name:         p.Name,
				Percent:      p.Percent,
				TotalSeconds: p.TotalSeconds,
				Text:         p.Text,
			})
		}
		for _, d := range w.Days {
			perDay[d.Date] += d.Total
		}
	}

	for _, day := range TrailingWeek(now) {
		secs := perDay[DateKey(day)]
		out.DailyCoding = append(out.DailyCoding, models.DailyCoding{
			Date:         DateKey(day),
			TotalSeconds: secs,
			Text:         FormatSeconds(secs),
		})
	}
	return out
}
