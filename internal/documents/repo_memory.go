package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores document records in memory and is safe for concurrent use.
// Used when no DATABASE_URL is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Document)}
}

// Create stores the document record.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	return nil
}

// GetByID returns a document record by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// Delete removes a document record.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// ListByOwner lists an owner's documents ordered newest-first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, doc := range r.byID {
		if doc.UploadedBy == ownerID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)

// MemorySlotStore tracks slot references in memory.
type MemorySlotStore struct {
	mu    sync.RWMutex
	slots map[slotKey]string
}

type slotKey struct {
	ownerID  string
	category Category
}

// NewMemorySlotStore constructs a MemorySlotStore.
func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{slots: make(map[slotKey]string)}
}

// GetSlotReference returns the document currently filling a slot, or "" when empty.
func (s *MemorySlotStore) GetSlotReference(ctx context.Context, ownerID string, category Category) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[slotKey{ownerID, category}], nil
}

// SetSlotReference points a slot at a document; an empty documentID unsets it.
func (s *MemorySlotStore) SetSlotReference(ctx context.Context, ownerID string, category Category, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey{ownerID, category}
	if documentID == "" {
		delete(s.slots, key)
		return nil
	}
	s.slots[key] = documentID
	return nil
}

var _ SlotStore = (*MemorySlotStore)(nil)
