package subscriber

import (
	"math/rand"
	"time"
)

// Reconnect backoff bounds. Transport failures retry with exponential
// delay from backoffBase doubling up to backoffCap.
const (
	backoffBase = 100 * time.Millisecond
	backoffCap  = 30 * time.Second
)

// backoff produces the delay sequence for reconnect attempts. It is not
// safe for concurrent use; each subscriber's reader goroutine owns one.
type backoff struct {
	next time.Duration
}

func newBackoff() *backoff {
	return &backoff{next: backoffBase}
}

// Next returns the current delay with up to 25% positive jitter, then
// doubles the base delay for the following attempt.
func (b *backoff) Next() time.Duration {
	d := b.next

	b.next *= 2
	if b.next > backoffCap {
		b.next = backoffCap
	}

	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))

	return d + jitter
}

// Reset restores the initial delay after a successful reconnect.
func (b *backoff) Reset() {
	b.next = backoffBase
}
