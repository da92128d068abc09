package sources

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Source names an upstream metrics provider.
type Source string

const (
	SourceGitHub   Source = "github"
	SourceLeetCode Source = "leetcode"
	SourceWakaTime Source = "wakatime"
)

// DisplayName is the provider name as shown to clients.
func (s Source) DisplayName() string {
	switch s {
	case SourceGitHub:
		return "GitHub"
	case SourceLeetCode:
		return "LeetCode"
	case SourceWakaTime:
		return "WakaTime"
	}
	return string(s)
}

// UpstreamError reports a failed call to a provider: transport failure,
// timeout, non-2xx status, GraphQL error or undecodable body.
type UpstreamError struct {
	Source     Source
	StatusCode int // zero when no response was received
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the call was abandoned because it ran too long.
func (e *UpstreamError) IsTimeout() bool {
	return e.Message == "timeout"
}

func wrapTransportError(source Source, err error) error {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &UpstreamError{Source: source, Message: "timeout", Err: err}
	}
	return &UpstreamError{Source: source, Message: err.Error(), Err: err}
}
