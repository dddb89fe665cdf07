package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"falbackend/internal/infra/metrics"
)

// ErrMissingCredentials indicates the client was configured without an API key.
var ErrMissingCredentials = errors.New("fal: credentials are required")

// AuthScheme selects how credentials are presented to the upstream.
type AuthScheme string

const (
	// AuthKey sends "Key <id>:<secret>", the fal.ai API format.
	AuthKey AuthScheme = "key"
	// AuthBearer sends "Bearer <id>"; the secret is unused.
	AuthBearer AuthScheme = "bearer"
)

// defaultPollWaits is the per-attempt wait schedule. The first wait is shorter
// because jobs are rarely ready immediately but often ready soon after.
var defaultPollWaits = []time.Duration{
	3 * time.Second,
	5 * time.Second,
	5 * time.Second,
	5 * time.Second,
	5 * time.Second,
}

// inProgressMarkers are matched case-insensitively against a poll body that
// yielded no URL; any hit means the job is still being worked on. Unknown
// states are treated the same way rather than failing the loop.
var inProgressMarkers = []string{"pending", "running", "processing", "in_progress", "in_queue", "queued"}

// Options configures the upstream client.
type Options struct {
	KeyID     string
	KeySecret string
	Scheme    AuthScheme
	// ResultBase is the per-job result endpoint; the job id is appended.
	ResultBase string
	// SubmitTimeout bounds one submission call. Defaults to two minutes.
	SubmitTimeout time.Duration
	HTTPClient    *http.Client
	Logger        zerolog.Logger
	// PollWaits overrides the attempt schedule, for tests.
	PollWaits []time.Duration
}

// Client talks to the fal.ai submission and result endpoints.
type Client struct {
	keyID         string
	keySecret     string
	scheme        AuthScheme
	resultBase    string
	submitTimeout time.Duration
	httpClient    *http.Client
	logger        zerolog.Logger
	pollWaits     []time.Duration
}

// NewClient constructs a client with defaults applied.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.SubmitTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	scheme := opts.Scheme
	if scheme == "" {
		scheme = AuthKey
	}
	waits := opts.PollWaits
	if len(waits) == 0 {
		waits = defaultPollWaits
	}
	return &Client{
		keyID:         strings.TrimSpace(opts.KeyID),
		keySecret:     strings.TrimSpace(opts.KeySecret),
		scheme:        scheme,
		resultBase:    strings.TrimRight(opts.ResultBase, "/"),
		submitTimeout: timeout,
		httpClient:    httpClient,
		logger:        opts.Logger,
		pollWaits:     waits,
	}
}

// HasCredentials reports whether the client can authenticate upstream calls.
func (c *Client) HasCredentials() bool {
	if c.scheme == AuthBearer {
		return c.keyID != ""
	}
	return c.keyID != "" && c.keySecret != ""
}

func (c *Client) authorize(req *http.Request) {
	switch c.scheme {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+c.keyID)
	default:
		req.Header.Set("Authorization", fmt.Sprintf("Key %s:%s", c.keyID, c.keySecret))
	}
}

// Submit posts one generation request to endpoint with the model selector
// injected into the body. Synchronous upstream flows yield a ready outcome
// directly; otherwise the caller gets a pending outcome, with a request id
// when the upstream returned one.
func (c *Client) Submit(ctx context.Context, endpoint, model string, body map[string]any) Outcome {
	if !c.HasCredentials() {
		return failedOutcome(http.StatusUnauthorized, ErrMissingCredentials.Error())
	}
	payload := make(map[string]any, len(body)+1)
	for k, v := range body {
		payload[k] = v
	}
	payload["model"] = model
	raw, err := json.Marshal(payload)
	if err != nil {
		return failedOutcome(http.StatusBadRequest, fmt.Sprintf("encode request: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return failedOutcome(http.StatusBadGateway, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return failedOutcome(http.StatusBadGateway, "Upstream timeout")
		}
		return failedOutcome(http.StatusBadGateway, err.Error())
	}
	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return failedOutcome(http.StatusBadGateway, fmt.Sprintf("read response: %v", err))
	}

	norm := Normalize(resp.StatusCode, bodyBytes)
	if !norm.OK() {
		return failedOutcome(norm.Status, norm.ErrorMessage())
	}
	if url := ExtractResultURL(&norm.Data); url != "" {
		return readyOutcome(url, norm.Payload())
	}
	if id := ExtractJobID(&norm.Data); id != "" {
		c.logger.Debug().Str("request_id", id).Str("model", model).Msg("fal: job accepted")
		return pendingOutcome(id, norm.Payload())
	}
	// Accepted but untrackable: surfaced to the caller as an indeterminate
	// success rather than an error.
	return pendingOutcome("", norm.Payload())
}

// FetchResult performs one GET against the per-job result endpoint and
// normalizes whatever comes back.
func (c *Client) FetchResult(ctx context.Context, requestID string) (Response, error) {
	if c.resultBase == "" {
		return Response{}, errors.New("fal: result endpoint not configured")
	}
	return c.Passthrough(ctx, c.resultBase+"/"+requestID)
}

// Passthrough issues an authenticated GET against an upstream URL and
// normalizes the reply. Used for the result and voice-listing endpoints.
func (c *Client) Passthrough(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, fmt.Errorf("fal: build request: %w", err)
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("fal: http request: %w", err)
	}
	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("fal: read response: %w", err)
	}
	return Normalize(resp.StatusCode, bodyBytes), nil
}

// Poll repeatedly checks the per-job result endpoint until a playable URL
// appears or the attempt schedule is exhausted. Attempts are strictly
// sequential; a transport failure skips that attempt instead of aborting the
// loop. Exhaustion yields a pending outcome carrying the handle, never a
// failure: the client can keep re-polling through the result passthrough.
func (c *Client) Poll(ctx context.Context, requestID string) Outcome {
	var last json.RawMessage
	for i, wait := range c.pollWaits {
		if err := sleep(ctx, wait); err != nil {
			return pendingOutcome(requestID, last)
		}
		metrics.PollAttemptsTotal.Inc()
		resp, err := c.FetchResult(ctx, requestID)
		if err != nil {
			c.logger.Warn().Err(err).Int("attempt", i+1).Str("request_id", requestID).Msg("fal: poll attempt failed")
			continue
		}
		last = resp.Payload()
		if !resp.OK() {
			continue
		}
		if url := ExtractResultURL(&resp.Data); url != "" {
			c.logger.Info().Int("attempt", i+1).Str("request_id", requestID).Msg("fal: job ready")
			return readyOutcome(url, last)
		}
		if !hasInProgressMarker(resp.Raw) {
			// Ambiguous upstream state. Keep going: the next attempt may
			// resolve it, and giving up here would strand the job.
			c.logger.Debug().Int("attempt", i+1).Str("request_id", requestID).Msg("fal: unrecognized job state")
		}
	}
	return pendingOutcome(requestID, last)
}

func hasInProgressMarker(body []byte) bool {
	text := strings.ToLower(string(body))
	for _, marker := range inProgressMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
