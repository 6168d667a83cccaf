package wiki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/mediawiki-bot/metrics"
	"github.com/olgasafonova/mediawiki-bot/tracing"
)

// Sleeps before retrying a server-signalled transient condition. The
// lag wait applies when the response carries no Retry-After header.
// Package variables so tests can shorten them.
var (
	lagWaitDefault = 10 * time.Second
	transientWait  = 10 * time.Second
)

// apiRequest sends one logical request and returns the raw response
// text. get is merged over the session defaults, caller values winning.
// A nil post sends a GET; a post map containing a []byte value switches
// the body to multipart, otherwise it is URL-form-encoded using the
// stringify rules.
//
// The loop retries transport failures up to the session's budget.
// Three server-signalled conditions retry without consuming that
// budget: replication lag at or over maxlag (sleeping for the advised
// Retry-After), a rate-limit code and a read-only database, the latter
// two sleeping a flat ten seconds. Cancelling ctx aborts any of those
// sleeps immediately.
//
// Non-transient error elements are left in the returned text for
// checkErrors, which knows the calling operation's overrides.
func (c *Client) apiRequest(ctx context.Context, get url.Values, post map[string]any, caller string) (string, error) {
	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled while waiting for request slot: %w", ctx.Err())
	}

	merged := c.requestDefaults()
	for k, vs := range get {
		merged[k] = vs
	}
	endpoint := c.apiURL + "?" + merged.Encode()
	action := merged.Get("action")

	ctx, span := tracing.StartSpan(ctx, "wiki.api")
	defer span.End()
	span.SetAttributes(
		attribute.String("wiki.action", action),
		attribute.String("wiki.caller", caller),
		attribute.String("server.address", c.host),
	)

	maxRetries := c.MaxRetries()
	start := time.Now()
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= maxRetries; {
		attempts++
		if attempt > 0 {
			// Quadratic backoff between transport retries
			backoff := time.Duration(attempt*attempt) * 100 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			}
		}

		// Fresh request per attempt; bodies are consumed on send
		req, err := c.newAPIRequest(ctx, endpoint, post)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.logger.Warn("API request failed, retrying",
				"caller", caller,
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"error", err)
			metrics.RecordRetry("network")
			attempt++
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			metrics.RecordRetry("network")
			attempt++
			continue
		}

		if resp.StatusCode != http.StatusOK {
			// Client errors other than 429 will not improve on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				err := fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				metrics.RecordAPICall(caller, time.Since(start).Seconds(), false)
				return "", err
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				wait := retryAfter(resp, transientWait)
				c.logger.Warn("Rate limited, waiting",
					"caller", caller,
					"retry_after", wait)
				metrics.RecordRetry("ratelimited")
				if err := sleepCtx(ctx, wait); err != nil {
					return "", err
				}
				continue
			}
			lastErr = fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
			c.logger.Warn("API returned non-OK status",
				"caller", caller,
				"status", resp.StatusCode,
				"attempt", attempt+1)
			metrics.RecordRetry("server")
			attempt++
			continue
		}

		text := string(body)
		if text == "" {
			err := &ProtocolError{Info: "empty response body from " + c.host}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordAPICall(caller, time.Since(start).Seconds(), false)
			return "", err
		}

		// Server-signalled transient conditions retry without touching
		// the transport budget.
		if code, info, ok := transientError(text); ok {
			wait := transientWait
			if code == "maxlag" {
				wait = retryAfter(resp, lagWaitDefault)
				c.logger.Warn("Database lagged, waiting",
					"caller", caller,
					"retry_after", wait,
					"info", info)
				metrics.RecordLagWait(wait.Seconds())
			} else {
				c.logger.Warn("Transient API condition, waiting",
					"caller", caller,
					"code", code,
					"info", info)
			}
			metrics.RecordRetry(code)
			if err := sleepCtx(ctx, wait); err != nil {
				return "", err
			}
			continue
		}

		span.SetAttributes(attribute.Int("wiki.attempts", attempts))
		span.SetStatus(codes.Ok, "")
		metrics.RecordAPICall(caller, time.Since(start).Seconds(), true)
		return text, nil
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	metrics.RecordAPICall(caller, time.Since(start).Seconds(), false)
	return "", fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// newAPIRequest builds one attempt's HTTP request. GET when post is
// nil, multipart POST when post holds file bytes, form POST otherwise.
func (c *Client) newAPIRequest(ctx context.Context, endpoint string, post map[string]any) (*http.Request, error) {
	if post == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		return req, nil
	}

	if hasBinary(post) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range post {
			if b, ok := v.([]byte); ok {
				part, err := w.CreateFormFile(k, k)
				if err != nil {
					return nil, fmt.Errorf("failed to build multipart body: %w", err)
				}
				if _, err := part.Write(b); err != nil {
					return nil, fmt.Errorf("failed to build multipart body: %w", err)
				}
				continue
			}
			if err := w.WriteField(k, stringify(v)); err != nil {
				return nil, fmt.Errorf("failed to build multipart body: %w", err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("User-Agent", c.userAgent)
		return req, nil
	}

	form := url.Values{}
	for k, v := range post {
		form.Set(k, stringify(v))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// transientError reports whether the response's error element, if any,
// carries a code the request loop handles itself.
func transientError(text string) (code, info string, ok bool) {
	i := strings.Index(text, "<error ")
	if i < 0 {
		return "", "", false
	}
	code, _ = scanAttribute(text, "code", i)
	info, _ = scanAttribute(text, "info", i)
	switch code {
	case "maxlag", "ratelimited", "readonly":
		return code, info, true
	}
	return "", "", false
}

// retryAfter reads the Retry-After header, falling back when absent or
// unparsable.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(h)
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled during wait: %w", ctx.Err())
	}
}

func hasBinary(post map[string]any) bool {
	for _, v := range post {
		if _, ok := v.([]byte); ok {
			return true
		}
	}
	return false
}

// stringify converts a post value to its wire form: numbers in decimal,
// timestamps in ISO 8601, lists pipe-joined.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case time.Time:
		return t.UTC().Format(apiTimestamp)
	case []string:
		return strings.Join(t, "|")
	default:
		return fmt.Sprint(v)
	}
}
