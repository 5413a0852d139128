// Package hermestest provides an in-process hermes.Client for tests.
package hermestest

import (
	"encoding/json"
	"sync"

	"github.com/MikeSquared-Agency/Quotes/internal/hermes"
)

var _ hermes.Client = (*Recorder)(nil)

// Message is one published event captured by a Recorder.
type Message struct {
	Subject string
	Data    []byte
}

// Recorder is an in-process Client that keeps everything published to it.
// Subscribers registered on an exact subject are invoked synchronously.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	handlers map[string][]func(string, []byte)
}

func NewRecorder() *Recorder {
	return &Recorder{handlers: make(map[string][]func(string, []byte))}
}

func (r *Recorder) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.messages = append(r.messages, Message{Subject: subject, Data: payload})
	handlers := append([]func(string, []byte){}, r.handlers[subject]...)
	r.mu.Unlock()

	for _, h := range handlers {
		h(subject, payload)
	}
	return nil
}

func (r *Recorder) Subscribe(subject string, handler func(string, []byte)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[subject] = append(r.handlers[subject], handler)
	return nil
}

func (r *Recorder) Close() {}

// Messages returns a copy of everything published so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Subjects returns the subjects published so far, in order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Subject
	}
	return out
}
