package mail

import (
	"context"
	"sync"
)

// Recorder is an in-memory Sender used by development builds and tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, is returned from every Send.
	Err error
}

// Send records msg or returns r.Err.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of every delivered message.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}
