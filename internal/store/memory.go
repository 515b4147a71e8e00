package store

import (
	"context"
	"sort"
	"sync"

	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// MemoryStore is an in-process Store used by unit tests and for running the
// service without a Redis server. Scans paginate deterministically over the
// ids in sorted order, with the cursor being the index of the next record.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[string]model.Contact
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contacts: make(map[string]model.Contact)}
}

func (s *MemoryStore) Initialize(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contact, ok := s.contacts[id]
	if !ok {
		return nil, nil
	}
	return &contact, nil
}

func (s *MemoryStore) Put(ctx context.Context, contact model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.Id] = contact
	return nil
}

func (s *MemoryStore) DeleteReturning(ctx context.Context, id string) (*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.contacts[id]
	if !ok {
		return nil, nil
	}
	delete(s.contacts, id)
	return &contact, nil
}

func (s *MemoryStore) ScanPage(ctx context.Context, cursor uint64, count int64) ([]model.Contact, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.contacts))
	for id := range s.contacts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	start := int(cursor)
	if start >= len(ids) {
		return nil, 0, nil
	}
	end := start + int(count)
	if end > len(ids) {
		end = len(ids)
	}
	page := make([]model.Contact, 0, end-start)
	for _, id := range ids[start:end] {
		page = append(page, s.contacts[id])
	}
	var next uint64
	if end < len(ids) {
		next = uint64(end)
	}
	return page, next, nil
}

func (s *MemoryStore) QueryTag(ctx context.Context, tag string) ([]model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Contact
	for _, contact := range s.contacts {
		if contact.Tag == tag {
			result = append(result, contact)
		}
	}
	return result, nil
}
