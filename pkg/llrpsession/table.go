package llrpsession

import (
	"sync"

	"github.com/openllrp/llrp/pkg/llrptlv"
)

// correlationTable maps an outstanding request's message ID to the
// completion slot waiting on its reply (Spec 4.6, 5: "outstanding-
// request table maps message_id -> completion_slot", protected by a
// mutex the way the teacher's pkg/session/table.go guards session-ID
// allocation).
type correlationTable struct {
	mu      sync.Mutex
	pending map[uint32]chan pendingResult
}

type pendingResult struct {
	msg *llrptlv.Message
	err error
}

func newCorrelationTable() *correlationTable {
	return &correlationTable{pending: make(map[uint32]chan pendingResult)}
}

// register opens a completion slot for messageID. The caller must
// remove() it once done waiting, successfully or not.
func (t *correlationTable) register(messageID uint32) chan pendingResult {
	ch := make(chan pendingResult, 1)
	t.mu.Lock()
	t.pending[messageID] = ch
	t.mu.Unlock()
	return ch
}

func (t *correlationTable) remove(messageID uint32) {
	t.mu.Lock()
	delete(t.pending, messageID)
	t.mu.Unlock()
}

// complete delivers msg to the waiter registered for its message ID, if
// any is still outstanding. Reports false for an unmatched reply, which
// the reader loop then hands to the async handler (Spec 4.6 "READY").
func (t *correlationTable) complete(messageID uint32, msg *llrptlv.Message) bool {
	t.mu.Lock()
	ch, ok := t.pending[messageID]
	if ok {
		delete(t.pending, messageID)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- pendingResult{msg: msg}
	return true
}

// cancelAll wakes every outstanding waiter with err, used when the
// session drops its connection (Spec 4.6 "Cancellation").
func (t *correlationTable) cancelAll(err error) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[uint32]chan pendingResult)
	t.mu.Unlock()
	for _, ch := range pending {
		ch <- pendingResult{err: err}
	}
}
