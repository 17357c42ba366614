package documents

import "context"

// Repo persists document metadata records.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
}

// SlotStore tracks which document currently fills each (owner, category) slot.
// SetSlotReference with an empty documentID unsets the slot.
type SlotStore interface {
	GetSlotReference(ctx context.Context, ownerID string, category Category) (string, error)
	SetSlotReference(ctx context.Context, ownerID string, category Category, documentID string) error
}
