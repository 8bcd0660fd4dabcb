package dashboard

import (
	"context"
	"sync"
	"time"
)

// Store keeps one State per session. Update must apply fn atomically with
// respect to other Updates of the same session; when fn returns an error
// nothing is written and that error is returned.
type Store interface {
	Load(ctx context.Context, session string) (State, error)
	Update(ctx context.Context, session string, fn func(*State) error) (State, error)
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	state   State
	expires time.Time
}

// MemoryStore is an in-process Store. Sessions idle longer than ttl are
// forgotten.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	swept    time.Time
	now      func() time.Time
}

// NewMemoryStore constructs a MemoryStore with the given idle ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// Load returns the session state, or a zero State for unknown sessions.
func (m *MemoryStore) Load(_ context.Context, session string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(session), nil
}

// Update applies fn under the store lock.
func (m *MemoryStore) Update(_ context.Context, session string, fn func(*State) error) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.get(session)
	if err := fn(&s); err != nil {
		return m.get(session), err
	}
	m.sessions[session] = memoryEntry{state: s, expires: m.now().Add(m.ttl)}
	m.sweep()
	return s, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) get(session string) State {
	e, ok := m.sessions[session]
	if !ok {
		return State{}
	}
	if m.now().After(e.expires) {
		delete(m.sessions, session)
		return State{}
	}
	return e.state
}

// sweep drops expired sessions at most once per ttl.
func (m *MemoryStore) sweep() {
	now := m.now()
	if now.Sub(m.swept) < m.ttl {
		return
	}
	m.swept = now
	for id, e := range m.sessions {
		if now.After(e.expires) {
			delete(m.sessions, id)
		}
	}
}
