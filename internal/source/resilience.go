package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// doer executes provider requests with cooperative pacing, bounded retry on
// 429, and a circuit breaker that opens on repeated transport/5xx failures.
type doer struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retry   RetryPolicy
}

// newDoer paces requests at most one per interval (interval <= 0 disables
// pacing, e.g. for single-shot bundle downloads).
func newDoer(client *http.Client, name string, interval time.Duration, retry RetryPolicy) *doer {
	d := &doer{
		client: client,
		retry:  retry,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	if interval > 0 {
		d.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return d
}

// get runs one logical request, retrying only on 429. Any error it returns
// is either one of the package sentinels or a transport-level failure.
func (d *doer) get(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	attempt := 0
	for {
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := d.breaker.Execute(func() (any, error) {
			resp, doErr := d.client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if resp.StatusCode >= 500 {
				discard(resp)
				return nil, fmt.Errorf("server error: status %d", resp.StatusCode)
			}
			return resp, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, fmt.Errorf("circuit open: %w", err)
			}
			return nil, err
		}

		resp := result.(*http.Response)
		cerr := classifyStatus(resp.StatusCode)
		if cerr == nil {
			return resp, nil
		}
		discard(resp)

		if errors.Is(cerr, ErrRateLimited) {
			if attempt >= d.retry.MaxAttempts {
				return nil, fmt.Errorf("%w after %d attempts", ErrRateLimited, attempt+1)
			}
			attempt++
			wait := retryAfter(resp, d.retry.Backoff)
			log.Printf(`{"msg":"rate-limited","attempt":%d,"wait":%q}`, attempt, wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		return nil, cerr
	}
}

// retryAfter prefers the provider's Retry-After (seconds form) over the
// configured backoff.
func retryAfter(resp *http.Response, def time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
