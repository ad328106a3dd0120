package mastodon

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// errRateLimited is returned by the transport when the instance still
// answers 429 after every allowed retry, or asks for a longer pause than the
// policy accepts.
var errRateLimited = errors.New("rate limited")

// RetryPolicy bounds how long a request waits out a 429 answer.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// MaxWait caps a single pause. A longer Retry-After gives up at once.
	MaxWait time.Duration
	// InitialInterval is the first exponential pause when the instance sends
	// no reset hint.
	InitialInterval time.Duration
}

// DefaultRetryPolicy covers Mastodon's five-minute rate limit window.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	MaxWait:         5 * time.Minute,
	InitialInterval: time.Second,
}

// rateLimitTransport retries requests the instance answered with 429. The
// pause comes from Retry-After (seconds or HTTP date) or Mastodon's
// X-RateLimit-Reset (ISO 8601), falling back to exponential backoff.
type rateLimitTransport struct {
	base   http.RoundTripper
	policy RetryPolicy
	now    func() time.Time
}

func newRateLimitTransport(base http.RoundTripper, policy RetryPolicy) *rateLimitTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &rateLimitTransport{base: base, policy: policy, now: time.Now}
}

// hintedBackOff prefers the server's reset hint over the exponential step.
type hintedBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return backoff.Stop
	}
	if b.hint > 0 {
		next, b.hint = b.hint, 0
	}
	return next
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(t.policy.InitialInterval),
		backoff.WithMaxInterval(t.policy.MaxWait),
		backoff.WithMaxElapsedTime(0),
	)
	policy := &hintedBackOff{BackOff: backoff.WithMaxRetries(exp, t.policy.MaxRetries)}

	attempt := 0
	operation := func() (*http.Response, error) {
		attempt++
		r := req
		if attempt > 1 {
			if req.Body != nil && req.GetBody == nil {
				return nil, backoff.Permanent(fmt.Errorf("%w: request body cannot be replayed", errRateLimited))
			}
			r = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, backoff.Permanent(err)
				}
				r.Body = body
			}
		}

		resp, err := t.base.RoundTrip(r)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		wait := retryHint(resp.Header, t.now())
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()

		limitErr := fmt.Errorf("%w: %s %s: HTTP 429", errRateLimited, req.Method, req.URL.Path)
		if wait > t.policy.MaxWait {
			return nil, backoff.Permanent(fmt.Errorf("%w, reset in %s", limitErr, wait.Round(time.Second)))
		}
		policy.hint = wait
		return nil, limitErr
	}

	notify := func(err error, next time.Duration) {
		slog.Warn("mastodon rate limit hit, waiting",
			"host", req.URL.Host,
			"path", req.URL.Path,
			"wait", next.Round(time.Millisecond),
			"attempt", attempt,
			"error", err,
		)
	}

	return backoff.RetryNotifyWithData(operation, backoff.WithContext(policy, req.Context()), notify)
}

// retryHint returns how long the instance asks the client to wait, or 0
// when it gives no usable hint.
func retryHint(h http.Header, now time.Time) time.Duration {
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			if secs > 0 {
				return time.Duration(secs) * time.Second
			}
			return 0
		}
		if at, err := http.ParseTime(v); err == nil {
			return clampWait(at.Sub(now))
		}
	}

	if v := strings.TrimSpace(h.Get("X-RateLimit-Reset")); v != "" {
		if at, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return clampWait(at.Sub(now))
		}
	}

	return 0
}

func clampWait(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
