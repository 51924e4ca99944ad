package queuesync

import "time"

// Backoff is a bounded exponential delay for transient fetch failures.
// It is not safe for concurrent use; each retry loop owns one.
type Backoff struct {
	Base time.Duration
	Max  time.Duration

	attempts int
}

func NewBackoff() *Backoff {
	return &Backoff{Base: 200 * time.Millisecond, Max: 30 * time.Second}
}

// Next returns the delay for the coming attempt and advances the counter.
func (b *Backoff) Next() time.Duration {
	d := b.Base << b.attempts
	if d > b.Max || d <= 0 {
		d = b.Max
	} else {
		b.attempts++
	}
	return d
}

func (b *Backoff) Attempts() int {
	return b.attempts
}

func (b *Backoff) Reset() {
	b.attempts = 0
}
