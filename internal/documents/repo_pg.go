package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document record.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
	id, file_name, original_name, mime_type, size_bytes, category,
	storage_provider, storage_key, public_url, checksum, checksum_algo,
	uploaded_by, related_entity_type, related_entity_id, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.FileName,
		doc.OriginalName,
		doc.MimeType,
		doc.SizeBytes,
		doc.Category,
		doc.StorageProvider,
		doc.StorageKey,
		nullIfEmpty(doc.PublicURL),
		doc.Checksum,
		doc.ChecksumAlgo,
		doc.UploadedBy,
		nullIfEmpty(doc.RelatedEntityType),
		nullIfEmpty(doc.RelatedEntityID),
		doc.CreatedAt,
	)
	return err
}

// GetByID returns a document record by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT id, file_name, original_name, mime_type, size_bytes, category,
       storage_provider, storage_key, public_url, checksum, checksum_algo,
       uploaded_by, related_entity_type, related_entity_id, created_at
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Delete removes a document record.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner lists an owner's documents ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	const query = `
SELECT id, file_name, original_name, mime_type, size_bytes, category,
       storage_provider, storage_key, public_url, checksum, checksum_algo,
       uploaded_by, related_entity_type, related_entity_id, created_at
FROM documents
WHERE uploaded_by = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

// PGSlotStore implements SlotStore using Postgres.
type PGSlotStore struct {
	DB *sql.DB
}

// GetSlotReference returns the document currently filling a slot, or "" when empty.
func (s *PGSlotStore) GetSlotReference(ctx context.Context, ownerID string, category Category) (string, error) {
	const query = `
SELECT document_id FROM slot_refs
WHERE owner_id = $1 AND category = $2
LIMIT 1`
	var documentID string
	err := s.DB.QueryRowContext(ctx, query, ownerID, category).Scan(&documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return documentID, nil
}

// SetSlotReference points a slot at a document; an empty documentID unsets it.
func (s *PGSlotStore) SetSlotReference(ctx context.Context, ownerID string, category Category, documentID string) error {
	if documentID == "" {
		_, err := s.DB.ExecContext(ctx, `DELETE FROM slot_refs WHERE owner_id = $1 AND category = $2`, ownerID, category)
		return err
	}
	const query = `
INSERT INTO slot_refs (owner_id, category, document_id, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (owner_id, category)
DO UPDATE SET document_id = EXCLUDED.document_id, updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query, ownerID, category, documentID)
	return err
}

var _ SlotStore = (*PGSlotStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var publicURL sql.NullString
	var relatedType sql.NullString
	var relatedID sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.FileName,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.Category,
		&doc.StorageProvider,
		&doc.StorageKey,
		&publicURL,
		&doc.Checksum,
		&doc.ChecksumAlgo,
		&doc.UploadedBy,
		&relatedType,
		&relatedID,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if publicURL.Valid {
		doc.PublicURL = publicURL.String
	}
	if relatedType.Valid {
		doc.RelatedEntityType = relatedType.String
	}
	if relatedID.Valid {
		doc.RelatedEntityID = relatedID.String
	}
	return doc, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
