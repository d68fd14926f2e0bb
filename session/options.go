package session

import (
	"fmt"
	"time"

	"github.com/dbydd/go-dolphindb/compress"
)

// config carries the knobs a Session is built with. It exists before
// the Session does, so options apply to it rather than to the Session.
type config struct {
	user        string
	password    string
	dialTimeout time.Duration
	readBufSize int
	priority    int
	parallelism int
	compression compress.Type
	compressOn  bool
}

func defaultConfig() config {
	return config{
		dialTimeout: 10 * time.Second,
		readBufSize: 64 * 1024,
		priority:    4,
		parallelism: 2,
		compression: compress.None,
	}
}

// Option configures a Session at construction time.
type Option func(*config) error

func applyOptions(cfg *config, opts ...Option) error {
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}

	return nil
}

// WithCredentials sets the user and password for the post-handshake
// login exchange. Without credentials the Session skips login and is
// Ready immediately after the handshake.
func WithCredentials(user, password string) Option {
	return func(cfg *config) error {
		cfg.user = user
		cfg.password = password

		return nil
	}
}

// WithDialTimeout bounds the TCP dial. Zero disables the bound.
func WithDialTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return fmt.Errorf("session: negative dial timeout %v", d)
		}
		cfg.dialTimeout = d

		return nil
	}
}

// WithReadBufferSize sets the size of the buffered reader over the
// socket. Larger buffers cut syscalls for bulk replies at the cost of
// per-session memory.
func WithReadBufferSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("session: read buffer size must be positive, got %d", n)
		}
		cfg.readBufSize = n

		return nil
	}
}

// WithPriority sets the job priority carried in every request's flag
// field.
func WithPriority(p int) Option {
	return func(cfg *config) error {
		if p < 0 || p > 0xff {
			return fmt.Errorf("session: priority %d out of range [0, 255]", p)
		}
		cfg.priority = p

		return nil
	}
}

// WithParallelism sets the job parallelism carried in every request's
// flag field.
func WithParallelism(p int) Option {
	return func(cfg *config) error {
		if p < 0 || p > 0xff {
			return fmt.Errorf("session: parallelism %d out of range [0, 255]", p)
		}
		cfg.parallelism = p

		return nil
	}
}

// WithCompression enables the compress flag bit and selects the codec
// applied to request and reply object payloads; compress.None selects no
// codec and leaves the bit off. Both peers must agree on
// the algorithm out of band; the wire carries only the on/off bit.
func WithCompression(t compress.Type) Option {
	return func(cfg *config) error {
		if _, err := compress.GetCodec(t); err != nil {
			return fmt.Errorf("session: %w", err)
		}
		cfg.compression = t
		cfg.compressOn = t != compress.None

		return nil
	}
}
