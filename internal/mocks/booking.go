package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

var (
	_ ports.AttemptSlots  = (*MemoryAttemptSlots)(nil)
	_ ports.BookingLedger = (*MemoryLedger)(nil)
)

// MemoryAttemptSlots is an in-process ports.AttemptSlots for tests and single-node runs.
type MemoryAttemptSlots struct {
	mu     sync.Mutex
	held   map[string]slotHold
	booked map[string]struct{}
	now    func() time.Time
}

type slotHold struct {
	owner   string
	expires time.Time
}

// NewMemoryAttemptSlots creates an empty slot table.
func NewMemoryAttemptSlots() *MemoryAttemptSlots {
	return &MemoryAttemptSlots{
		held:   make(map[string]slotHold),
		booked: make(map[string]struct{}),
		now:    time.Now,
	}
}

func (s *MemoryAttemptSlots) Acquire(_ context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if key == "" || owner == "" {
		return false, errors.New("slot key and owner are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if h, ok := s.held[key]; ok && now.Before(h.expires) {
		return false, nil
	}
	s.held[key] = slotHold{owner: owner, expires: now.Add(ttl)}
	return true, nil
}

func (s *MemoryAttemptSlots) Release(_ context.Context, key, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.held[key]; ok && h.owner == owner {
		delete(s.held, key)
	}
	return nil
}

func (s *MemoryAttemptSlots) MarkBooked(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.booked[key] = struct{}{}
	return nil
}

func (s *MemoryAttemptSlots) IsBooked(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.booked[key]
	return ok, nil
}

// Held reports whether key is currently held.
func (s *MemoryAttemptSlots) Held(key string) bool {
	return s.Holder(key) != ""
}

// Holder returns the owner of key, or "" when it is free or expired.
func (s *MemoryAttemptSlots) Holder(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.held[key]
	if !ok || !s.now().Before(h.expires) {
		return ""
	}
	return h.owner
}

// MemoryLedger records attempt snapshots in order.
type MemoryLedger struct {
	mu      sync.Mutex
	records []booking.Attempt
	Err     error
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger { return &MemoryLedger{} }

func (l *MemoryLedger) Record(_ context.Context, a booking.Attempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.records = append(l.records, a)
	return nil
}

func (l *MemoryLedger) ListByState(_ context.Context, state booking.State, limit int) ([]booking.Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	latest := make(map[string]booking.Attempt)
	var order []string
	for _, r := range l.records {
		if _, seen := latest[r.ID]; !seen {
			order = append(order, r.ID)
		}
		latest[r.ID] = r
	}
	var out []booking.Attempt
	for _, id := range order {
		if a := latest[id]; a.State == state {
			out = append(out, a)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// States returns the recorded states for one attempt, in order.
func (l *MemoryLedger) States(attemptID string) []booking.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []booking.State
	for _, r := range l.records {
		if r.ID == attemptID {
			out = append(out, r.State)
		}
	}
	return out
}

// MemoryCache is an in-process ports.Cache. Err, when set, fails every call.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	Err     error
}

var _ ports.Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache. TTLs are ignored.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	return c.entries[key], nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return false, c.Err
	}
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok, nil
}

// Has reports whether key is cached.
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
