package retryfetch

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	// DefaultMaxTries is the number of attempts, including the first, that
	// callers without an opinion should ask for
	DefaultMaxTries = 3

	// InitialDelay is the wait before the second attempt. Every later wait is
	// double the one before it.
	InitialDelay = time.Second
)

// A Doer sends a single HTTP request. *http.Client is a Doer; cancellation
// travels on the request's context.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// A Fetcher GETs a url through Sender, retrying failed attempts with
// exponential backoff.
//
// The zero value is usable, and sends requests with a non-pooled client from
// go-cleanhttp.
type Fetcher struct {
	Sender Doer

	// Notify, if set, is called after every failed attempt that will be
	// retried, with the attempt's error and how long we're about to wait.
	// It is the place to hang logging; the Fetcher itself never logs.
	Notify func(err error, wait time.Duration)

	// initialDelay overrides InitialDelay; only tests touch it
	initialDelay time.Duration
}

// New returns a Fetcher which sends requests with a fresh, non-pooled client
func New() *Fetcher {
	return &Fetcher{
		Sender: cleanhttp.DefaultClient(),
	}
}

// FetchWithRetries GETs url through sender, making at most maxTries attempts,
// and returns the body of the first response in the 2xx range.
//
// It is shorthand for a Fetcher with no Notify hook; see
// Fetcher.FetchWithRetries.
func FetchWithRetries(ctx context.Context, sender Doer, url string, maxTries int) (string, error) {
	f := &Fetcher{Sender: sender}

	return f.FetchWithRetries(ctx, url, maxTries)
}

// FetchWithRetries GETs url, making at most maxTries attempts, and returns the
// body of the first response in the 2xx range.
//
// maxTries counts the first attempt, and must be at least 2; anything lower
// returns an *InvalidMaxTriesError without sending a request. The wait before
// the second attempt is one second, doubling before each attempt after that.
//
// Transport errors and non-2xx responses (as a *StatusError) are retried
// alike. Should every attempt fail, the error from the final attempt is
// returned as-is. Cancelling ctx stops both in-flight requests and waits
// between attempts, and returns the context's error.
func (f *Fetcher) FetchWithRetries(ctx context.Context, url string, maxTries int) (string, error) {
	metadata, ok := getFetchMetadata(ctx)
	if !ok {
		// A context without a metadata slot is fine, we just have
		// nowhere to put metadata
		metadata = new(fetchMetadata)
	}

	// Reset before validating, so a rejected fetch reports zero attempts
	metadata.attempts = 0
	metadata.successfulDuration = 0

	if maxTries < 2 {
		return "", &InvalidMaxTriesError{MaxTries: maxTries}
	}

	if url == "" {
		return "", fmt.Errorf("%w: url must not be empty", ErrInvalidConfiguration)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	sender := f.Sender
	if sender == nil {
		sender = cleanhttp.DefaultClient()
	}

	operation := func() (string, error) {
		if ctx.Err() != nil {
			return "", context.Cause(ctx)
		}

		metadata.attempts++

		start := time.Now()
		body, err := send(sender, req.Clone(ctx))
		if err != nil {
			// An aborted request is a cancellation, not a transport failure
			if ctx.Err() != nil {
				return "", context.Cause(ctx)
			}

			return "", err
		}

		metadata.successfulDuration = time.Since(start)

		return body, nil
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(f.newBackOff()),
		backoff.WithMaxTries(uint(maxTries)),
		backoff.WithMaxElapsedTime(0),
	}

	if f.Notify != nil {
		opts = append(opts, backoff.WithNotify(f.Notify))
	}

	return backoff.Retry(ctx, operation, opts...)
}

// newBackOff returns a fresh, unjittered, uncapped doubling backoff. Backoffs
// carry state, so every fetch gets its own.
func (f *Fetcher) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()

	bo.InitialInterval = InitialDelay
	if f.initialDelay > 0 {
		bo.InitialInterval = f.initialDelay
	}

	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = time.Duration(math.MaxInt64)

	return bo
}

// send makes a single attempt, turning anything outside of the 2xx range
// into a *StatusError
func send(sender Doer, req *http.Request) (string, error) {
	resp, err := sender.Do(req)
	if err != nil {
		return "", err
	}

	if resp == nil || resp.Body == nil {
		return "", ErrNoResponse
	}

	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		// Drain so the connection may be reused
		_, _ = io.Copy(io.Discard, resp.Body)

		return "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
