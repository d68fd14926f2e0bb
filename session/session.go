// Package session implements the connection-oriented request/reply
// engine of the wire protocol: one TCP connection, a text handshake with
// endian negotiation, optional plaintext login, and single-flight
// script, function, and upload exchanges carrying codec payloads.
package session

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"

	"github.com/dbydd/go-dolphindb/compress"
	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/types"
)

// State is the lifecycle position of a Session.
type State uint8

const (
	StateUnconnected State = iota
	StateConnecting
	StateHandshaking
	StateAuthenticating
	StateReady
	StateInFlight
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "Unconnected"
	case StateConnecting:
		return "Connecting"
	case StateHandshaking:
		return "Handshaking"
	case StateAuthenticating:
		return "Authenticating"
	case StateReady:
		return "Ready"
	case StateInFlight:
		return "InFlight"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// handshake is the fixed client greeting: protocol name, a zero session
// id, and the flag set 8 (little-endian capable, compressed-payload
// capability off).
const handshake = "API 0 8\n"

// Session owns one TCP connection to the server. It is not safe for
// concurrent requests: a second request while one is in flight fails
// with ErrBusy rather than queueing. Fan out across multiple Sessions
// for parallelism.
type Session struct {
	cfg config

	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	state atomic.Int32
	reqID atomic.Int64

	sessionID    string
	serverEngine endian.EndianEngine
	codec        compress.Codec
}

// Connect dials addr (host:port), performs the handshake and endian
// negotiation, and logs in when credentials were configured. The
// returned Session is in StateReady.
func Connect(addr string, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	if err := applyOptions(&cfg, opts...); err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, serverEngine: endian.GetLittleEndianEngine()}
	s.state.Store(int32(StateConnecting))

	dialer := net.Dialer{Timeout: cfg.dialTimeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		s.state.Store(int32(StateClosed))
		return nil, fmt.Errorf("session: dial %s: %w: %v", addr, errs.ErrIO, err)
	}

	s.conn = conn
	s.r = bufio.NewReaderSize(conn, cfg.readBufSize)
	s.w = bufio.NewWriter(conn)

	if cfg.compressOn {
		s.codec, _ = compress.GetCodec(cfg.compression)
	}

	s.state.Store(int32(StateHandshaking))
	if err := s.doHandshake(); err != nil {
		s.closeConn()
		return nil, err
	}

	if cfg.user != "" {
		s.state.Store(int32(StateAuthenticating))
		if err := s.login(); err != nil {
			s.closeConn()
			return nil, err
		}
	}

	s.state.Store(int32(StateReady))

	return s, nil
}

// doHandshake sends the greeting and parses the server's three-token
// reply: session id, object count, and the endianness byte (0 little,
// 1 big) that selects the decode engine for every later reply.
func (s *Session) doHandshake() error {
	if _, err := s.w.WriteString(handshake); err != nil {
		return ioErr("write handshake", err)
	}

	if err := s.w.Flush(); err != nil {
		return ioErr("flush handshake", err)
	}

	line, err := s.readLine()
	if err != nil {
		return ioErr("read handshake reply", err)
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return &errs.InvalidDataError{
			Expected: "handshake reply with 3 tokens",
			Actual:   fmt.Sprintf("%q", line),
		}
	}

	s.sessionID = fields[0]
	s.serverEngine = endian.FromWireByte(fields[2][0] - '0')

	return nil
}

// login issues the credential exchange as an ordinary request. Any
// server rejection maps to ErrAuth and closes the Session.
func (s *Session) login() error {
	_, err := s.exchange(
		"function login 3\n",
		[]types.Constant{
			types.NewString(s.cfg.user),
			types.NewString(s.cfg.password),
			types.NewBool(false),
		},
	)
	if err != nil {
		var srvErr *errs.ServerError
		if errors.As(err, &srvErr) {
			return fmt.Errorf("session: login rejected: %s: %w", srvErr.Message, errs.ErrAuth)
		}

		return err
	}

	return nil
}

// SessionID returns the server-assigned session identifier from the
// handshake.
func (s *Session) SessionID() string { return s.sessionID }

// ServerEngine returns the byte order negotiated at handshake, used to
// decode every reply on this connection.
func (s *Session) ServerEngine() endian.EndianEngine { return s.serverEngine }

// State returns the Session's current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Close shuts the connection down and moves the Session to StateClosed.
// A pending half-received reply is discarded. Close is idempotent.
func (s *Session) Close() error {
	prev := State(s.state.Swap(int32(StateClosed)))
	if prev == StateClosed || s.conn == nil {
		return nil
	}

	return s.conn.Close()
}

// closeConn is the internal failure path: it marks the Session closed
// and releases the socket without surfacing the close error.
func (s *Session) closeConn() {
	s.state.Store(int32(StateClosed))
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// acquire claims the single request slot, failing with ErrBusy when
// another request is in flight and ErrClosed after Close.
func (s *Session) acquire() error {
	for {
		switch State(s.state.Load()) {
		case StateReady:
			if s.state.CompareAndSwap(int32(StateReady), int32(StateInFlight)) {
				return nil
			}
			// Lost the race; re-read the state.
		case StateClosed:
			return errs.ErrClosed
		default:
			return errs.ErrBusy
		}
	}
}

// release returns the slot unless the request moved the Session to
// Closed in the meantime.
func (s *Session) release() {
	s.state.CompareAndSwap(int32(StateInFlight), int32(StateReady))
}

func (s *Session) readLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func ioErr(op string, err error) error {
	return fmt.Errorf("session: %s: %w: %v", op, errs.ErrIO, err)
}
