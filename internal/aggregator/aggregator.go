package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devpulse-api/internal/cache"
	"devpulse-api/internal/models"
	"devpulse-api/internal/sources"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Namespace prefixes dashboard cache keys.
const Namespace = "dashboard"

// TimestampLayout is the capture-time format: RFC 3339 in UTC with millis.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// StatsSource is one cached metrics provider.
type StatsSource[T any] interface {
	Source() sources.Source
	Stats(ctx context.Context, cfg models.UserConfig) (T, error)
}

// AggregationError is returned when the aggregation itself could not run.
// Failing sources never produce one.
type AggregationError struct {
	UserID string
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate dashboard for %q: %v", e.UserID, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// allFailed carries a payload in which every source failed. It is handed
// back to the caller but kept out of the cache.
type allFailed struct {
	payload models.DashboardPayload
}

func (*allFailed) Error() string { return "every source failed" }

type Options struct {
	GitHub   StatsSource[models.GitHubStats]
	LeetCode StatsSource[models.LeetCodeStats]
	WakaTime StatsSource[models.WakaTimeStats]

	Loader *cache.Loader[any]
	// TTL of the composed payload. It should not exceed the shortest
	// source TTL.
	TTL time.Duration
	// SourceTimeout bounds each source call. Zero means no extra bound.
	SourceTimeout time.Duration

	Clock  clockwork.Clock
	Logger *slog.Logger
}

// Aggregator composes every source into one cached dashboard payload.
type Aggregator struct {
	github   StatsSource[models.GitHubStats]
	leetcode StatsSource[models.LeetCodeStats]
	wakatime StatsSource[models.WakaTimeStats]

	loader        *cache.Loader[any]
	ttl           time.Duration
	sourceTimeout time.Duration
	clock         clockwork.Clock
	logger        *slog.Logger
}

func New(opts Options) *Aggregator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Aggregator{
		github:        opts.GitHub,
		leetcode:      opts.LeetCode,
		wakatime:      opts.WakaTime,
		loader:        opts.Loader,
		ttl:           opts.TTL,
		sourceTimeout: opts.SourceTimeout,
		clock:         opts.Clock,
		logger:        opts.Logger,
	}
}

// Key is the cache key of userID's dashboard.
func (a *Aggregator) Key(userID string) string {
	return Namespace + "_" + userID
}

// Invalidate drops userID's cached dashboard.
func (a *Aggregator) Invalidate(userID string) {
	a.loader.Invalidate(a.Key(userID))
}

// Aggregate returns cfg's dashboard, from cache when fresh. Sources that fail
// are reported as nil; the call still succeeds.
func (a *Aggregator) Aggregate(ctx context.Context, cfg models.UserConfig) (models.DashboardPayload, error) {
	if cfg.UserID == "" {
		return models.DashboardPayload{}, &AggregationError{Err: errors.New("missing user id")}
	}
	if err := ctx.Err(); err != nil {
		return models.DashboardPayload{}, &AggregationError{UserID: cfg.UserID, Err: err}
	}

	v, hit, err := a.loader.Get(ctx, a.Key(cfg.UserID), a.ttl, func(ctx context.Context) (any, error) {
		payload := a.collect(ctx, cfg)
		if payload.GitHub == nil && payload.LeetCode == nil && payload.WakaTime == nil {
			return nil, &allFailed{payload: payload}
		}
		return payload, nil
	})
	var failed *allFailed
	if errors.As(err, &failed) {
		a.logger.Warn("dashboard sources all failed", "user_id", cfg.UserID)
		return failed.payload, nil
	}
	if err != nil {
		return models.DashboardPayload{}, &AggregationError{UserID: cfg.UserID, Err: err}
	}
	payload, ok := v.(models.DashboardPayload)
	if !ok {
		return models.DashboardPayload{}, &AggregationError{UserID: cfg.UserID, Err: fmt.Errorf("cache holds %T", v)}
	}
	if hit {
		a.logger.Debug("dashboard cache hit", "user_id", cfg.UserID)
	}
	return payload, nil
}

// collect fans out to every source and waits for all of them to settle.
func (a *Aggregator) collect(ctx context.Context, cfg models.UserConfig) models.DashboardPayload {
	var (
		payload models.DashboardPayload
		g       errgroup.Group
	)
	g.Go(func() error {
		payload.GitHub = settle(ctx, a, a.github, cfg)
		return nil
	})
	g.Go(func() error {
		payload.LeetCode = settle(ctx, a, a.leetcode, cfg)
		return nil
	})
	g.Go(func() error {
		payload.WakaTime = settle(ctx, a, a.wakatime, cfg)
		return nil
	})
	_ = g.Wait()

	payload.Timestamp = a.clock.Now().UTC().Format(TimestampLayout)
	return payload
}

// settle runs one source and converts any failure, including a panic, into
// a nil result.
func settle[T any](ctx context.Context, a *Aggregator, src StatsSource[T], cfg models.UserConfig) (out *T) {
	if src == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("dashboard source panicked", "source", src.Source(), "user_id", cfg.UserID, "panic", r)
			out = nil
		}
	}()

	if a.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.sourceTimeout)
		defer cancel()
	}
	v, err := src.Stats(ctx, cfg)
	if err != nil {
		a.logger.Warn("dashboard source failed", "source", src.Source(), "user_id", cfg.UserID, "err", err)
		return nil
	}
	return &v
}
