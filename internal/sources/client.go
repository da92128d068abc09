package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 4 << 20

// upstreamClient performs JSON calls against one provider and converts every
// failure into an *UpstreamError for that provider.
type upstreamClient struct {
	source Source
	http   *http.Client
}

func newUpstreamClient(source Source, hc *http.Client) *upstreamClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &upstreamClient{source: source, http: hc}
}

func (c *upstreamClient) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTransportError(c.source, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return wrapTransportError(c.source, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{
			Source:     c.source,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.Status),
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Source: c.source, Message: "malformed response: " + err.Error(), Err: err}
	}
	return nil
}

func (c *upstreamClient) get(ctx context.Context, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return wrapTransportError(c.source, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, out)
}

// errorMessage prefers the provider's own {"message": ...} body.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return status
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse[T any] struct {
	Data   T `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// postGraphQL runs one GraphQL document and returns its data member. A
// response carrying GraphQL errors is a failure even on HTTP 200.
func postGraphQL[T any](ctx context.Context, c *upstreamClient, endpoint, query string, vars map[string]any, header http.Header) (T, error) {
	var zero T
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return zero, &UpstreamError{Source: c.source, Message: "encode request: " + err.Error(), Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return zero, wrapTransportError(c.source, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	var resp graphQLResponse[T]
	if err := c.doJSON(req, &resp); err != nil {
		return zero, err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return zero, &UpstreamError{Source: c.source, Message: strings.Join(msgs, "; ")}
	}
	return resp.Data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
