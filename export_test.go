package retryfetch

import "time"

// SetInitialDelay shrinks the backoff schedule so tests needn't wait seconds
func (f *Fetcher) SetInitialDelay(d time.Duration) {
	f.initialDelay = d
}
