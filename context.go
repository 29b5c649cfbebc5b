package retryfetch

import (
	"context"
	"time"
)

// fetchMetadata is what a fetch reports about itself. Every call to
// FetchWithRetries starts by zeroing it, so it only ever describes the latest
// fetch made with the context.
type fetchMetadata struct {
	attempts           int
	successfulDuration time.Duration
}

type fetchMetadataContextKey struct{}

// NewContext returns a background context with room for fetch metadata.
func NewContext() context.Context {
	return WithMetadata(context.Background())
}

// WithMetadata derives a context from parent with room for fetch metadata,
// keeping parent's deadline, cancellation and values. Sharing the result
// between concurrent fetches is a race.
func WithMetadata(parent context.Context) context.Context {
	return context.WithValue(parent, fetchMetadataContextKey{}, new(fetchMetadata))
}

func getFetchMetadata(ctx context.Context) (*fetchMetadata, bool) {
	md, ok := ctx.Value(fetchMetadataContextKey{}).(*fetchMetadata)

	return md, ok
}

// NumberOfAttemptsFromContext reports how many requests the latest fetch on ctx
// put on the wire. A fetch rejected for bad arguments, or cancelled before its
// first request, reports zero. ok is false if ctx came from neither NewContext
// nor WithMetadata.
func NumberOfAttemptsFromContext(ctx context.Context) (attempts int, ok bool) {
	md, ok := getFetchMetadata(ctx)
	if !ok {
		return 0, false
	}

	return md.attempts, true
}

// SuccessfulRequestDurationFromContext reports how long the winning attempt of
// the latest fetch on ctx took, body read included; earlier failed attempts and
// the waits between them are not counted. It is zero unless the fetch
// succeeded.
func SuccessfulRequestDurationFromContext(ctx context.Context) (d time.Duration, ok bool) {
	md, ok := getFetchMetadata(ctx)
	if !ok {
		return 0, false
	}

	return md.successfulDuration, true
}
