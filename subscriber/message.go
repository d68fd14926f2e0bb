package subscriber

import (
	"fmt"

	"github.com/dbydd/go-dolphindb/types"
)

// Message is one server-pushed stream-table update: the topic that
// produced it, its monotonically increasing offset within that topic,
// and the decoded body (normally a single-row table or a vector of
// cells).
type Message struct {
	Topic  string
	Offset int64
	Body   types.Constant
}

func (m Message) String() string {
	return fmt.Sprintf("Message(%s@%d)", m.Topic, m.Offset)
}
