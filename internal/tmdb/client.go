package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bassista/go_flix/internal/logger"
	"github.com/bassista/go_flix/internal/metrics"
	"github.com/bassista/go_flix/internal/notify"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/"
	DefaultLanguage     = "en-US"
	defaultTimeout      = 30 * time.Second
	userAgent           = "go_flix/1.0"

	// limit response size to prevent memory issue
	maxResponseSize = 5 * 1024 * 1024
)

// ClientConfig configures a Client. Only APIKey is required.
type ClientConfig struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	Language     string
	Timeout      time.Duration

	// RequestsPerSecond throttles outgoing calls; 0 disables throttling.
	RequestsPerSecond float64
	Burst             int

	Retry      *RetryPolicy
	Notifier   notify.Notifier
	HTTPClient *http.Client
}

// Client talks to the TMDB v3 API. It attaches the shared query parameters to
// every call and applies a single retry policy to all of them.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	httpClient   *http.Client
	limiter      *rate.Limiter
	retry        RetryPolicy
	notifier     notify.Notifier
	log          *logrus.Entry
}

// NewClient builds a Client from cfg, filling defaults for everything but the API key.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("tmdb API key is required")
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: cfg.ImageBaseURL,
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		httpClient:   cfg.HTTPClient,
		retry:        DefaultRetryPolicy(),
		notifier:     cfg.Notifier,
		log:          logger.WithComponent("tmdb"),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.imageBaseURL == "" {
		c.imageBaseURL = DefaultImageBaseURL
	}
	if c.language == "" {
		c.language = DefaultLanguage
	}
	if cfg.Retry != nil {
		c.retry = *cfg.Retry
	}
	if c.notifier == nil {
		c.notifier = notify.Nop{}
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return c, nil
}

// Request performs a GET on endpoint and decodes the JSON body into out.
// Caller params are sent as-is, except api_key and language which the client always sets.
// Failures are returned as *Error after the retry policy has been applied.
func (c *Client) Request(ctx context.Context, endpoint string, params url.Values, out any) error {
	b := &tableBackOff{}
	attempt := 0
	var lastKind Kind

	operation := func() error {
		attempt++
		err := c.do(ctx, endpoint, params, out)
		if err == nil {
			metrics.ProviderRequests.WithLabelValues(endpointLabel(endpoint), "ok").Inc()
			return nil
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			return backoff.Permanent(err)
		}
		lastKind = apiErr.Kind
		metrics.ProviderRequests.WithLabelValues(endpointLabel(endpoint), string(apiErr.Kind)).Inc()

		delay, retryable := c.retry.delayFor(apiErr.Kind)
		if !retryable || attempt >= c.retry.maxAttempts() {
			return backoff.Permanent(err)
		}
		b.next = delay
		return err
	}

	onRetry := func(err error, delay time.Duration) {
		metrics.ProviderRetries.WithLabelValues(string(lastKind)).Inc()
		c.log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt,
			"delay":    delay,
			"error":    err.Error(),
		}).Warn("API request failed, retrying...")
		c.notifyRetry(lastKind)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), onRetry)
	if err != nil {
		c.notifyFailure(endpoint, err)
	}
	return err
}

// do performs a single attempt.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	fullURL := c.buildURL(endpoint, params)
	c.log.WithFields(logrus.Fields{
		"method":   http.MethodGet,
		"endpoint": endpoint,
	}).Debug("Making TMDB API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &Error{Kind: KindNetwork, Endpoint: endpoint, Message: "no response received", Err: err}
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxResponseSize)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Kind:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    statusMessage(resp.StatusCode, body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Endpoint: endpoint, Message: "failed to decode response", Err: err}
	}
	return nil
}

func (c *Client) buildURL(endpoint string, params url.Values) string {
	query := url.Values{}
	for k, vs := range params {
		query[k] = append([]string(nil), vs...)
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)

	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint + "?" + query.Encode()
}

// statusMessage extracts TMDB's status_message from an error body, falling back to the status text.
func statusMessage(status int, body io.Reader) string {
	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	raw, _ := io.ReadAll(body)
	if err := json.Unmarshal(raw, &payload); err == nil && payload.StatusMessage != "" {
		return payload.StatusMessage
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(status)
}

func (c *Client) notifyRetry(kind Kind) {
	switch kind {
	case KindRateLimited:
		c.notifier.Notify(notify.LevelWarning, "Too many requests. Retrying...")
	case KindServer:
		c.notifier.Notify(notify.LevelInfo, "Server error. Retrying...")
	case KindNetwork:
		c.notifier.Notify(notify.LevelInfo, "Network error. Retrying...")
	}
}

// notifyFailure raises the terminal notice for err. Not-found is silent.
func (c *Client) notifyFailure(endpoint string, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		c.notifier.Notify(notify.LevelError, "An unexpected error occurred.")
		return
	}

	switch apiErr.Kind {
	case KindNotFound:
		c.log.WithField("endpoint", endpoint).Warn("Resource not found")
	case KindAuth:
		if apiErr.StatusCode == http.StatusForbidden {
			c.notifier.Notify(notify.LevelError, "Access forbidden. You do not have permission.")
		} else {
			c.notifier.Notify(notify.LevelError, "Authentication failed. Please check your API key.")
		}
	case KindRateLimited:
		c.notifier.Notify(notify.LevelWarning, "Too many requests. Please try again later.")
	case KindServer:
		c.notifier.Notify(notify.LevelError, "Server error. Please try again later.")
	case KindNetwork:
		c.notifier.Notify(notify.LevelError, "Network error. Please check your connection.")
	default:
		c.notifier.Notify(notify.LevelError, "Error: "+apiErr.Error())
	}
}

// endpointLabel collapses numeric path segments so metric labels stay bounded.
func endpointLabel(endpoint string) string {
	parts := strings.Split(endpoint, "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
