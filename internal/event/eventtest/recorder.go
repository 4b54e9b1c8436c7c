// Package eventtest provides an in-memory event.Publisher for tests.
package eventtest

import (
	"sync"
	"time"

	"iqscalar-service/internal/event"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []event.Message
}

var _ event.Publisher = (*Recorder)(nil)

func (r *Recorder) Publish(eventType string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event.Message{Type: eventType, Payload: payload, Timestamp: time.Now()})
	return nil
}

func (r *Recorder) Close() {}

// Types returns the recorded event types in order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}
