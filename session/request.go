package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbydd/go-dolphindb/codec"
	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/internal/pool"
	"github.com/dbydd/go-dolphindb/types"
)

// Flag bits of the request envelope. The upper bytes carry the job
// priority (<<8) and parallelism (<<16).
const (
	flagLittleEndian = 1 << 0
	flagCompressed   = 1 << 1
)

// maxNameLen bounds an upload variable name in bytes of UTF-8.
const maxNameLen = 255

// RunScript executes a script on the server and returns its result, or
// nil when the server returned no objects.
func (s *Session) RunScript(script string) (types.Constant, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	return s.exchange("script\n"+script, nil)
}

// RunFunction invokes a server-side function with the given ordered
// arguments and returns its result, or nil when the server returned no
// objects. A nil argument fails with an arity error: the invocation
// does not match the slot count it declares.
func (s *Session) RunFunction(name string, args ...types.Constant) (types.Constant, error) {
	if name == "" {
		return nil, fmt.Errorf("session: empty function name: %w", errs.ErrInvalidName)
	}

	for i, arg := range args {
		if arg == nil {
			return nil, &errs.ArityError{Name: name, Expected: len(args), Got: i}
		}
	}

	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	return s.exchange(fmt.Sprintf("function %s %d\n", name, len(args)), args)
}

// Upload binds each value to a server-side variable of the given name.
// Names must be non-empty, NUL-free, and at most 255 bytes of UTF-8.
// Variables are uploaded in lexical name order so repeated calls with
// the same map produce identical requests.
func (s *Session) Upload(vars map[string]types.Constant) error {
	names := make([]string, 0, len(vars))
	for name := range vars {
		if err := checkName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]types.Constant, len(names))
	for i, name := range names {
		values[i] = vars[name]
	}

	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	var body strings.Builder
	fmt.Fprintf(&body, "variables %d\n", len(names))

	_, err := s.exchangeNamed(body.String(), names, values)

	return err
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("session: empty variable name: %w", errs.ErrInvalidName)
	}

	if len(name) > maxNameLen {
		return fmt.Errorf("session: variable name %q exceeds %d bytes: %w", name, maxNameLen, errs.ErrInvalidName)
	}

	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("session: variable name contains NUL: %w", errs.ErrInvalidName)
	}

	return nil
}

// flag packs the request flag field: priority<<8 | parallelism<<16 |
// endian_bit | compress_bit. Requests are always encoded little-endian,
// as advertised in the handshake greeting.
func (s *Session) flag() int {
	f := s.cfg.priority<<8 | s.cfg.parallelism<<16 | flagLittleEndian
	if s.cfg.compressOn {
		f |= flagCompressed
	}

	return f
}

// exchange writes one request (envelope line, body text, encoded
// objects) and reads its reply. It assumes the caller holds the request
// slot. Objects are encoded little-endian; the reply is decoded with
// the engine named in its own envelope.
func (s *Session) exchange(bodyText string, objects []types.Constant) (types.Constant, error) {
	return s.exchangeNamed(bodyText, nil, objects)
}

// exchangeNamed is exchange with an optional NUL-terminated name
// prefixed to each object, as the upload body requires.
func (s *Session) exchangeNamed(bodyText string, names []string, objects []types.Constant) (types.Constant, error) {
	buf := pool.GetRequestBuffer()
	defer pool.PutRequestBuffer(buf)

	for i, obj := range objects {
		if names != nil {
			buf.B = append(buf.B, names[i]...)
			buf.B = append(buf.B, 0)
		}

		if err := codec.EncodeLE(buf, obj); err != nil {
			return nil, err
		}
	}

	payload := buf.Bytes()
	if s.codec != nil && len(objects) > 0 {
		compressed, err := s.codec.Compress(payload)
		if err != nil {
			s.closeConn()
			return nil, fmt.Errorf("session: compress request payload: %w", err)
		}

		// The frame length shares the request's little-endian encoding,
		// not the reply engine.
		framed := pool.GetRequestBuffer()
		defer pool.PutRequestBuffer(framed)
		framed.B = endian.GetLittleEndianEngine().AppendUint32(framed.B, uint32(len(compressed)))
		framed.B = append(framed.B, compressed...)
		payload = framed.Bytes()
	}

	envelope := fmt.Sprintf("%s %d %d %d\n", s.sessionID, s.reqID.Add(1), len(objects), s.flag())

	if _, err := s.w.WriteString(envelope); err != nil {
		s.closeConn()
		return nil, ioErr("write envelope", err)
	}

	if _, err := s.w.WriteString(bodyText); err != nil {
		s.closeConn()
		return nil, ioErr("write body", err)
	}

	if _, err := s.w.Write(payload); err != nil {
		s.closeConn()
		return nil, ioErr("write objects", err)
	}

	if err := s.w.Flush(); err != nil {
		s.closeConn()
		return nil, ioErr("flush request", err)
	}

	return s.readReply()
}
