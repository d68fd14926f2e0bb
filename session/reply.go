package session

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dbydd/go-dolphindb/codec"
	"github.com/dbydd/go-dolphindb/endian"
	"github.com/dbydd/go-dolphindb/errs"
	"github.com/dbydd/go-dolphindb/types"
)

// readReply consumes one reply: an envelope line (session id, object
// count, endianness byte), a status line, then the announced number of
// objects. It returns the first object, or nil when the reply carried
// none.
//
// A server-reported error leaves the Session Ready; any transport or
// wire-format failure closes it, since the connection position is no
// longer trustworthy.
func (s *Session) readReply() (types.Constant, error) {
	header, err := s.readLine()
	if err != nil {
		s.closeConn()
		return nil, ioErr("read reply envelope", err)
	}

	fields := strings.Fields(header)
	if len(fields) < 3 {
		s.closeConn()
		return nil, &errs.InvalidDataError{
			Expected: "reply envelope with 3 tokens",
			Actual:   fmt.Sprintf("%q", header),
		}
	}

	count, err := strconv.Atoi(fields[1])
	if err != nil || count < 0 {
		s.closeConn()
		return nil, &errs.InvalidDataError{
			Expected: "non-negative reply object count",
			Actual:   fmt.Sprintf("%q", fields[1]),
		}
	}

	engine := endian.FromWireByte(fields[2][0] - '0')

	status, err := s.readLine()
	if err != nil {
		s.closeConn()
		return nil, ioErr("read status line", err)
	}

	if status != "OK" {
		// The reply is complete; the server reports errors instead of
		// objects. The Session stays Ready.
		return nil, &errs.ServerError{Message: status}
	}

	if count == 0 {
		return nil, nil
	}

	objects, err := s.readObjects(count, engine)
	if err != nil {
		s.closeConn()
		return nil, err
	}

	return objects[0], nil
}

// readObjects decodes count constants from the reply body, undoing the
// compression framing first when this Session negotiated it.
func (s *Session) readObjects(count int, engine endian.EndianEngine) ([]types.Constant, error) {
	r := s.r

	if s.codec != nil {
		size, err := readU32(s.r, engine)
		if err != nil {
			return nil, ioErr("read compressed payload length", err)
		}

		compressed := make([]byte, size)
		if _, err := io.ReadFull(s.r, compressed); err != nil {
			return nil, ioErr("read compressed payload", err)
		}

		payload, err := s.codec.Decompress(compressed)
		if err != nil {
			return nil, fmt.Errorf("session: decompress reply payload: %w", err)
		}

		r = bufio.NewReader(bytes.NewReader(payload))
	}

	objects := make([]types.Constant, count)
	for i := range objects {
		obj, err := codec.Decode(r, engine)
		if err != nil {
			return nil, err
		}
		objects[i] = obj
	}

	return objects, nil
}

func readU32(r *bufio.Reader, engine endian.EndianEngine) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return engine.Uint32(b[:]), nil
}
