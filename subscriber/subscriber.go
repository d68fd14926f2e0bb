// Package subscriber implements the stream-table subscription channel:
// a long-lived connection of its own, an ordered lazy sequence of pushed
// messages, and transparent reconnect with offset resume.
package subscriber

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/dbydd/go-dolphindb/codec"
	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/internal/pool"
	"github.com/dbydd/go-dolphindb/types"
)

// Offset sentinels for Subscribe. Positive values request an absolute
// offset.
const (
	// OffsetTail starts the subscription at the current end of the
	// stream table.
	OffsetTail int64 = -1
	// OffsetBeginning replays the stream table from its first message.
	OffsetBeginning int64 = 0
)

// Subscriber owns one subscription to a server stream table. Messages
// arrive on an internal bounded queue in server push order; a full
// queue blocks the reader, exerting backpressure on the connection
// rather than dropping or reordering.
//
// Transport failures are retried with exponential backoff and the
// subscription is resumed from the last delivered offset plus one, so
// delivery is at-least-once across reconnects. The sequence ends only
// on Close or on a server-rejected resubscription.
type Subscriber struct {
	addr   string
	table  string
	action string
	cfg    config

	initialOffset int64

	msgs chan Message
	done chan struct{}

	mu        sync.Mutex
	conn      net.Conn
	closeOnce sync.Once

	errMu sync.Mutex
	err   error

	// Owned by the reader goroutine.
	lastDelivered int64
	hasDelivered  bool
}

// Subscribe opens a connection to addr, subscribes to the named stream
// table under action, and starts delivering pushed messages. The offset
// chooses where the subscription starts: OffsetTail, OffsetBeginning,
// or an absolute position.
//
// The first connection and subscription are performed synchronously so
// an unreachable server or a rejected subscription surfaces here; later
// failures are retried internally.
func Subscribe(addr, table, action string, offset int64, opts ...Option) (*Subscriber, error) {
	if table == "" {
		return nil, fmt.Errorf("subscriber: empty table name: %w", errs.ErrInvalidName)
	}

	if action == "" {
		return nil, fmt.Errorf("subscriber: empty action name: %w", errs.ErrInvalidName)
	}

	cfg := defaultConfig()
	if err := applyOptions(&cfg, opts...); err != nil {
		return nil, err
	}

	s := &Subscriber{
		addr:          addr,
		table:         table,
		action:        action,
		cfg:           cfg,
		initialOffset: offset,
		msgs:          make(chan Message, cfg.queueSize),
		done:          make(chan struct{}),
	}

	sc, err := s.connect(offset)
	if err != nil {
		return nil, err
	}

	go s.run(sc)

	return s, nil
}

// Messages returns the delivery channel. It is closed when the
// Subscriber terminates; see Err for the reason.
func (s *Subscriber) Messages() <-chan Message { return s.msgs }

// All returns the subscription as a lazy sequence of messages in the
// exact order received. The sequence is finite only on Close or
// terminal failure; breaking out of the range does not cancel the
// subscription, call Close for that.
func (s *Subscriber) All() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for m := range s.msgs {
			if !yield(m) {
				return
			}
		}
	}
}

// Close cancels the subscription: the connection is shut down, the
// message channel is closed after any in-flight delivery, and Err
// reports ErrCancelled.
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() {
		s.setErr(errs.ErrCancelled)
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.mu.Unlock()
	})

	return nil
}

// Err returns why the subscription terminated: ErrCancelled after
// Close, the terminal error otherwise, or nil while the subscription is
// live.
func (s *Subscriber) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	return s.err
}

func (s *Subscriber) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	if s.err == nil {
		s.err = err
	}
}

// subConn is one live connection's read state.
type subConn struct {
	conn   net.Conn
	r      *bufio.Reader
	engine endian.EndianEngine
}

// run is the reader task: it drains pushed messages from the current
// connection, reconnecting with backoff on transport failure, until
// cancelled or until a resubscription is rejected outright.
func (s *Subscriber) run(sc *subConn) {
	defer close(s.msgs)

	bo := newBackoff()

	for {
		err := s.readLoop(sc)
		_ = sc.conn.Close()

		if s.cancelled() {
			return
		}

		// Transport and wire-format failures are transient here;
		// resubscribe from the next undelivered offset.
		_ = err

		next, reconnectErr := s.reconnect(bo)
		if reconnectErr != nil {
			s.setErr(reconnectErr)
			return
		}

		if next == nil {
			return // cancelled while waiting
		}

		sc = next
		bo.Reset()
	}
}

// readLoop delivers messages from one connection until it fails or the
// subscription is cancelled.
func (s *Subscriber) readLoop(sc *subConn) error {
	for {
		m, err := readMessage(sc.r, sc.engine)
		if err != nil {
			return err
		}

		select {
		case s.msgs <- m:
			s.lastDelivered = m.Offset
			s.hasDelivered = true
		case <-s.done:
			return errs.ErrCancelled
		}
	}
}

// reconnect dials and resubscribes until it succeeds or the
// subscription is cancelled. A server-rejected subscription is
// terminal: retrying it would replay the same rejection forever.
func (s *Subscriber) reconnect(bo *backoff) (*subConn, error) {
	for {
		select {
		case <-s.done:
			return nil, nil
		case <-time.After(bo.Next()):
		}

		offset := s.initialOffset
		if s.hasDelivered {
			offset = s.lastDelivered + 1
		}

		sc, err := s.connect(offset)
		if err == nil {
			return sc, nil
		}

		var srvErr *errs.ServerError
		if errors.As(err, &srvErr) {
			return nil, err
		}

		if s.cancelled() {
			return nil, nil
		}
	}
}

func (s *Subscriber) cancelled() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// connect dials, performs the handshake, logs in when credentials are
// configured, and issues the subscription request from the given
// offset.
func (s *Subscriber) connect(offset int64) (*subConn, error) {
	dialer := net.Dialer{Timeout: s.cfg.dialTimeout}
	conn, err := dialer.Dial("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("subscriber: dial %s: %w: %v", s.addr, errs.ErrIO, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	sc := &subConn{
		conn:   conn,
		r:      bufio.NewReaderSize(conn, s.cfg.readBufSize),
		engine: endian.GetLittleEndianEngine(),
	}

	sessionID, err := sc.handshake()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if s.cfg.user != "" {
		err = sc.request(sessionID, "function login 3\n",
			types.NewString(s.cfg.user),
			types.NewString(s.cfg.password),
			types.NewBool(false),
		)
		if err != nil {
			_ = conn.Close()
			var srvErr *errs.ServerError
			if errors.As(err, &srvErr) {
				return nil, fmt.Errorf("subscriber: login rejected: %s: %w", srvErr.Message, errs.ErrAuth)
			}

			return nil, err
		}
	}

	filter := s.cfg.filter
	if filter == nil {
		filter = types.NewVoid()
	}

	err = sc.request(sessionID, "function subscribe 4\n",
		types.NewString(s.table),
		types.NewString(s.action),
		types.NewLong(offset),
		filter,
	)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return sc, nil
}

// handshake mirrors the session greeting: the subscription connection
// negotiates its own endianness.
func (sc *subConn) handshake() (string, error) {
	if _, err := sc.conn.Write([]byte("API 0 8\n")); err != nil {
		return "", ioErr("write handshake", err)
	}

	line, err := readLine(sc.r)
	if err != nil {
		return "", ioErr("read handshake reply", err)
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", &errs.InvalidDataError{
			Expected: "handshake reply with 3 tokens",
			Actual:   fmt.Sprintf("%q", line),
		}
	}

	sc.engine = endian.FromWireByte(fields[2][0] - '0')

	return fields[0], nil
}

// request issues one request on the subscription connection and
// consumes its reply, discarding any reply objects.
func (sc *subConn) request(sessionID, bodyText string, args ...types.Constant) error {
	buf := pool.GetRequestBuffer()
	defer pool.PutRequestBuffer(buf)

	fmt.Fprintf(buf, "%s 1 %d %d\n", sessionID, len(args), 1)
	buf.B = append(buf.B, bodyText...)

	for _, arg := range args {
		if err := codec.EncodeLE(buf, arg); err != nil {
			return err
		}
	}

	if _, err := sc.conn.Write(buf.Bytes()); err != nil {
		return ioErr("write request", err)
	}

	header, err := readLine(sc.r)
	if err != nil {
		return ioErr("read reply envelope", err)
	}

	fields := strings.Fields(header)
	if len(fields) < 3 {
		return &errs.InvalidDataError{
			Expected: "reply envelope with 3 tokens",
			Actual:   fmt.Sprintf("%q", header),
		}
	}

	status, err := readLine(sc.r)
	if err != nil {
		return ioErr("read status line", err)
	}

	if status != "OK" {
		return &errs.ServerError{Message: status}
	}

	count := 0
	fmt.Sscanf(fields[1], "%d", &count)
	engine := endian.FromWireByte(fields[2][0] - '0')
	for i := 0; i < count; i++ {
		if _, err := codec.Decode(sc.r, engine); err != nil {
			return err
		}
	}

	return nil
}

// readMessage reads one pushed message: topic cstr, offset i64, then a
// complete body value.
func readMessage(r *bufio.Reader, engine endian.EndianEngine) (Message, error) {
	topic, err := r.ReadString(0)
	if err != nil {
		return Message{}, ioErr("read topic", err)
	}
	topic = topic[:len(topic)-1]

	var raw [8]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Message{}, ioErr("read offset", err)
	}
	offset := int64(engine.Uint64(raw[:]))

	body, err := codec.Decode(r, engine)
	if err != nil {
		return Message{}, err
	}

	return Message{Topic: topic, Offset: offset, Body: body}, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func ioErr(op string, err error) error {
	return fmt.Errorf("subscriber: %s: %w: %v", op, errs.ErrIO, err)
}
