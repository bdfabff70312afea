package predict

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Its contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*Prediction
	targets map[int]int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[int64]*Prediction),
		targets: make(map[int]int64),
	}
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, p *Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.targets[p.Target]; ok {
		return fmt.Errorf("%w: game %d", ErrDuplicate, p.Target)
	}
	m.nextID++
	p.ID = m.nextID
	p.Status = StatusPending
	cp := *p
	m.byID[cp.ID] = &cp
	m.targets[cp.Target] = cp.ID
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id int64) (Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return Prediction{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return *p, nil
}

// Pending implements Store.
func (m *MemoryStore) Pending(_ context.Context) ([]Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Prediction
	for _, p := range m.byID {
		if p.Status == StatusPending {
			out = append(out, *p)
		}
	}
	slices.SortFunc(out, func(a, b Prediction) int {
		return cmp.Or(cmp.Compare(a.Target, b.Target), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// Exists implements Store.
func (m *MemoryStore) Exists(_ context.Context, target int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.targets[target]
	return ok, nil
}

// Resolve implements Store.
func (m *MemoryStore) Resolve(_ context.Context, id int64, status Status, attempt int, at time.Time) error {
	if !status.Terminal() {
		return fmt.Errorf("predict: cannot resolve to status %q", status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if p.Status != StatusPending {
		return fmt.Errorf("%w: id %d is %s", ErrResolved, id, p.Status)
	}
	p.Status = status
	p.Attempt = attempt
	p.ResolvedAt = at
	return nil
}

// SetMessage implements Store.
func (m *MemoryStore) SetMessage(_ context.Context, id, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	p.MessageID = messageID
	return nil
}

// Recent implements Store.
func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Prediction, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Prediction) int { return cmp.Compare(b.ID, a.ID) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{WinsByAttempt: make(map[int]int)}
	for _, p := range m.byID {
		s.Total++
		switch p.Status {
		case StatusPending:
			s.Pending++
		case StatusWon:
			s.Won++
			s.WinsByAttempt[p.Attempt]++
		case StatusLost:
			s.Lost++
		case StatusExpired:
			s.Expired++
		}
	}
	return s, nil
}

// PruneBefore implements Store.
func (m *MemoryStore) PruneBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, p := range m.byID {
		if p.Status.Terminal() && p.ResolvedAt.Before(cutoff) {
			delete(m.byID, id)
			delete(m.targets, p.Target)
			n++
		}
	}
	return n, nil
}

// Reset implements Store.
func (m *MemoryStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.byID)
	clear(m.targets)
	return nil
}
