package fetch

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

const callbackPrefix = "painel_cb_"

// Registry maps generated callback names to pending fallback requests.
// Entries are created by Register and removed by the release function it
// returns; callers defer the release so no entry outlives its request.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// Entry is a single registered callback. It settles at most once.
type Entry struct {
	name string
	once sync.Once
	done chan struct{}
	raw  json.RawMessage
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register creates an entry under a fresh name. The returned release is
// safe to call more than once.
func (r *Registry) Register() (*Entry, func()) {
	e := &Entry{
		name: callbackPrefix + strings.ToLower(ulid.Make().String()),
		done: make(chan struct{}),
	}

	r.mu.Lock()
	r.entries[e.name] = e
	r.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.entries, e.name)
			r.mu.Unlock()
		})
	}
	return e, release
}

// Invoke settles the named entry with raw. Invoking an already settled
// entry is a no-op.
func (r *Registry) Invoke(name string, raw json.RawMessage) error {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownCallback
	}
	e.settle(raw)
	return nil
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (e *Entry) settle(raw json.RawMessage) {
	e.once.Do(func() {
		e.raw = append(json.RawMessage(nil), raw...)
		close(e.done)
	})
}

// Name is the identifier sent as the callback query parameter.
func (e *Entry) Name() string {
	return e.name
}

// Done is closed once the entry has been invoked.
func (e *Entry) Done() <-chan struct{} {
	return e.done
}

// Payload returns the argument the entry was invoked with. It is only
// meaningful after Done is closed.
func (e *Entry) Payload() json.RawMessage {
	<-e.done
	return e.raw
}
