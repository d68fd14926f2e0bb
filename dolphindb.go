// Package dolphindb is a client for the native binary wire protocol of
// a columnar time-series database server. It establishes authenticated
// TCP sessions, runs scripts and server-side functions, uploads typed
// values into server variables, batches rows into stream tables, and
// subscribes to stream-table pushes as a lazy message sequence.
//
// # Basic Usage
//
// Connecting and running a script:
//
//	import dolphindb "github.com/dbydd/go-dolphindb"
//
//	sess, err := dolphindb.Connect("127.0.0.1:8848",
//	    dolphindb.WithCredentials("admin", "123456"))
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	result, err := sess.RunScript("1+1")
//
// Batched inserts through a table writer:
//
//	writer, _ := dolphindb.NewTableWriter(sess, "trades",
//	    []string{"price", "volume"}, 1024)
//	writer.AppendRow(types.NewDouble(101.5), types.NewInt(200))
//	writer.Close()
//
// Subscribing to a stream table:
//
//	sub, _ := dolphindb.Subscribe("127.0.0.1:8848", "trades_stream",
//	    "archiver", dolphindb.OffsetBeginning)
//	defer sub.Close()
//	for msg := range sub.All() {
//	    fmt.Println(msg.Topic, msg.Offset)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the
// session, tablewriter, and subscriber packages, simplifying the most
// common use cases. The types and codec packages hold the value
// universe and its wire encoding; all subpackages remain independently
// usable.
package dolphindb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dbydd/go-dolphindb/session"
	"github.com/dbydd/go-dolphindb/subscriber"
	"github.com/dbydd/go-dolphindb/tablewriter"
)

// Offset sentinels for Subscribe, re-exported from the subscriber
// package.
const (
	OffsetTail      = subscriber.OffsetTail
	OffsetBeginning = subscriber.OffsetBeginning
)

// WithCredentials configures the user and password for the
// post-handshake login exchange.
func WithCredentials(user, password string) session.Option {
	return session.WithCredentials(user, password)
}

// Connect opens an authenticated session to addr (host:port). See the
// session package for the full option surface.
func Connect(addr string, opts ...session.Option) (*session.Session, error) {
	return session.Connect(addr, opts...)
}

// NewTableWriter builds a buffered row inserter into the named table
// over an established session, flushing every batchSize rows.
func NewTableWriter(sess *session.Session, table string, columns []string, batchSize int) (*tablewriter.Writer, error) {
	return tablewriter.New(sess, table, columns, batchSize)
}

// Subscribe opens an independent subscription connection to the named
// stream table. See the subscriber package for offset semantics and the
// full option surface.
func Subscribe(addr, table, action string, offset int64, opts ...subscriber.Option) (*subscriber.Subscriber, error) {
	return subscriber.Subscribe(addr, table, action, offset, opts...)
}

// ParseConnectString splits the user@password@host:port convenience
// grammar used by command-line drivers into its structured fields. The
// credential parts are optional: host:port alone is accepted, and the
// password may be empty (user@@host:port).
func ParseConnectString(s string) (host string, port int, user, password string, err error) {
	hostPort := s

	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		creds := s[:i]
		hostPort = s[i+1:]

		j := strings.IndexByte(creds, '@')
		if j < 0 {
			return "", 0, "", "", fmt.Errorf("dolphindb: connect string %q: want user@password@host:port", s)
		}

		user = creds[:j]
		password = creds[j+1:]
		if user == "" {
			return "", 0, "", "", fmt.Errorf("dolphindb: connect string %q: empty user", s)
		}
	}

	colon := strings.LastIndexByte(hostPort, ':')
	if colon <= 0 || colon == len(hostPort)-1 {
		return "", 0, "", "", fmt.Errorf("dolphindb: connect string %q: want host:port", s)
	}

	host = hostPort[:colon]
	port, err = strconv.Atoi(hostPort[colon+1:])
	if err != nil || port <= 0 || port > 0xffff {
		return "", 0, "", "", fmt.Errorf("dolphindb: connect string %q: bad port %q", s, hostPort[colon+1:])
	}

	return host, port, user, password, nil
}
