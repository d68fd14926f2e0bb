package subscriber

import (
	"fmt"
	"time"

	"github.com/dbydd/go-dolphindb/types"
)

// config carries the knobs a Subscriber is built with.
type config struct {
	user        string
	password    string
	filter      types.Constant
	queueSize   int
	dialTimeout time.Duration
	readBufSize int
}

func defaultConfig() config {
	return config{
		queueSize:   1024,
		dialTimeout: 10 * time.Second,
		readBufSize: 64 * 1024,
	}
}

// Option configures a Subscriber at construction time.
type Option func(*config) error

func applyOptions(cfg *config, opts ...Option) error {
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}

	return nil
}

// WithCredentials sets the user and password sent with the subscription
// request.
func WithCredentials(user, password string) Option {
	return func(cfg *config) error {
		cfg.user = user
		cfg.password = password

		return nil
	}
}

// WithFilter restricts the subscription to rows matching filter, a
// server-interpreted value (typically a vector of partitioning column
// values).
func WithFilter(filter types.Constant) Option {
	return func(cfg *config) error {
		cfg.filter = filter

		return nil
	}
}

// WithQueueSize sets the capacity of the internal message queue. A full
// queue exerts backpressure on the reader rather than dropping messages.
func WithQueueSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("subscriber: queue size must be positive, got %d", n)
		}
		cfg.queueSize = n

		return nil
	}
}

// WithDialTimeout bounds each TCP dial, including reconnect dials. Zero
// disables the bound.
func WithDialTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return fmt.Errorf("subscriber: negative dial timeout %v", d)
		}
		cfg.dialTimeout = d

		return nil
	}
}
