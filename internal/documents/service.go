package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/authz"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/storage/object"
	"recruit-backend/internal/shared/telemetry"
	"recruit-backend/internal/shared/util"
)

// Service contains business logic for document storage and retrieval.
//
// Remote is the durable object store and may be nil when not configured.
// Local is the on-box fallback store and is always present. Durable
// categories require Remote; optional categories fall back to Local when
// Remote is down or absent.
type Service struct {
	Repo   Repo
	Slots  SlotStore
	Remote object.ObjectStore
	Local  object.ObjectStore
	Policy authz.Policy

	// RemoteURL derives a public URL for a remote key, when the bucket
	// serves objects publicly. Nil means records carry no public URL.
	RemoteURL func(key string) string
}

// UploadInput carries everything needed to store one document.
type UploadInput struct {
	OwnerID           string
	Category          Category
	FileName          string
	MimeType          string
	Data              []byte
	RelatedEntityType string
	RelatedEntityID   string
}

// Upload validates, stores and records a single document. The record is
// written only after the bytes land on a backend, so a failed upload never
// leaves a dangling record.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, error) {
	if in.OwnerID == "" {
		return Document{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	safeName, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		metrics.IncUploadRejected()
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := ValidateUpload(int64(len(in.Data)), in.MimeType, in.Category); err != nil {
		metrics.IncUploadRejected()
		return Document{}, err
	}

	digest, algo := Checksum(in.Data)
	id := uuid.NewString()
	now := time.Now().UTC()
	key := buildStorageKey(in.Category, now, id, safeName)

	provider, publicURL, err := s.putObject(ctx, in.Category, key, in.MimeType, in.Data)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:                id,
		FileName:          key,
		OriginalName:      in.FileName,
		MimeType:          in.MimeType,
		SizeBytes:         int64(len(in.Data)),
		Category:          in.Category,
		StorageProvider:   provider,
		StorageKey:        key,
		PublicURL:         publicURL,
		Checksum:          digest,
		ChecksumAlgo:      algo,
		UploadedBy:        in.OwnerID,
		RelatedEntityType: in.RelatedEntityType,
		RelatedEntityID:   in.RelatedEntityID,
		CreatedAt:         now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		// The bytes are already on the backend; remove them so a failed
		// record write does not leave unreferenced objects behind.
		s.deleteObject(ctx, doc)
		return Document{}, err
	}

	metrics.IncUpload()
	return doc, nil
}

// Replace uploads a new document into an (owner, category) slot, then points
// the slot at it and finally removes the displaced document. The new copy is
// fully stored before the old one is touched, so a crash mid-replace leaves
// the slot serving a complete document.
func (s *Service) Replace(ctx context.Context, in UploadInput) (Document, error) {
	prevID, err := s.Slots.GetSlotReference(ctx, in.OwnerID, in.Category)
	if err != nil {
		return Document{}, err
	}

	doc, err := s.Upload(ctx, in)
	if err != nil {
		return Document{}, err
	}

	if err := s.Slots.SetSlotReference(ctx, in.OwnerID, in.Category, doc.ID); err != nil {
		s.deleteObject(ctx, doc)
		if repoErr := s.Repo.Delete(ctx, doc.ID); repoErr != nil && !errors.Is(repoErr, ErrNotFound) {
			telemetry.Error("slot rollback record delete failed", map[string]any{
				"document_id": doc.ID,
				"error":       repoErr.Error(),
			})
		}
		return Document{}, err
	}

	if prevID != "" && prevID != doc.ID {
		s.bestEffortDelete(ctx, prevID)
	}
	return doc, nil
}

// Clear empties an (owner, category) slot. The reference is unset first so
// readers never resolve to a half-deleted document; removal of the displaced
// document is best-effort. Clearing an empty slot is a no-op.
func (s *Service) Clear(ctx context.Context, ownerID string, category Category) error {
	prevID, err := s.Slots.GetSlotReference(ctx, ownerID, category)
	if err != nil {
		return err
	}
	if prevID == "" {
		return nil
	}
	if err := s.Slots.SetSlotReference(ctx, ownerID, category, ""); err != nil {
		return err
	}
	s.bestEffortDelete(ctx, prevID)
	return nil
}

// Resolve fetches a document record and enforces the access policy.
func (s *Service) Resolve(ctx context.Context, documentID string, requester authz.Identity) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if !s.Policy.CanAccess(requester.UserID, requester.Role, doc.UploadedBy) {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// ResolveSlot returns the document currently filling an (owner, category) slot.
func (s *Service) ResolveSlot(ctx context.Context, ownerID string, category Category, requester authz.Identity) (Document, error) {
	documentID, err := s.Slots.GetSlotReference(ctx, ownerID, category)
	if err != nil {
		return Document{}, err
	}
	if documentID == "" {
		return Document{}, ErrNotFound
	}
	return s.Resolve(ctx, documentID, requester)
}

// List returns the requester's own documents, newest first.
func (s *Service) List(ctx context.Context, requester authz.Identity) ([]Document, error) {
	return s.Repo.ListByOwner(ctx, requester.UserID)
}

// OpenStream opens the document's bytes for reading. When the recorded
// backend cannot serve them, one local probe is attempted before giving up.
// The caller must close the returned reader.
func (s *Service) OpenStream(ctx context.Context, doc Document) (io.ReadCloser, error) {
	primary := s.storeFor(doc.StorageProvider)
	if primary == nil {
		return s.probeLocal(ctx, doc, fmt.Errorf("%w: backend %s not configured", ErrBackendUnavailable, doc.StorageProvider))
	}

	rc, err := primary.Open(ctx, doc.StorageKey)
	if err == nil {
		metrics.IncStream()
		return rc, nil
	}
	if doc.StorageProvider == ProviderLocal {
		if errors.Is(err, object.ErrNotFound) {
			return nil, fmt.Errorf("%w: bytes missing for document %s", ErrNotFound, doc.ID)
		}
		return nil, fmt.Errorf("%w (%v)", ErrBackendUnavailable, err)
	}
	switch {
	case errors.Is(err, object.ErrNotFound):
		return s.probeLocal(ctx, doc, fmt.Errorf("%w: bytes missing for document %s", ErrNotFound, doc.ID))
	default:
		return s.probeLocal(ctx, doc, fmt.Errorf("%w (%v)", ErrBackendUnavailable, err))
	}
}

// LocalPath returns the on-disk path for a locally stored document's bytes,
// when the local store can name one and the bytes are present. Callers use it
// to read the file in place instead of streaming a copy.
func (s *Service) LocalPath(ctx context.Context, doc Document) (string, bool) {
	if doc.StorageProvider != ProviderLocal {
		return "", false
	}
	pr, ok := s.Local.(interface{ PathFor(key string) (string, error) })
	if !ok {
		return "", false
	}
	path, err := pr.PathFor(doc.StorageKey)
	if err != nil {
		return "", false
	}
	if exists, err := s.Local.Exists(ctx, doc.StorageKey); err != nil || !exists {
		return "", false
	}
	return path, true
}

// probeLocal tries the local store once for a document whose recorded
// backend failed. orig is returned when the probe also comes up empty.
func (s *Service) probeLocal(ctx context.Context, doc Document, orig error) (io.ReadCloser, error) {
	rc, err := s.Local.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, orig
	}
	telemetry.Warn("stream served by local fallback", map[string]any{
		"document_id": doc.ID,
		"provider":    string(doc.StorageProvider),
	})
	metrics.IncStream()
	metrics.IncStreamFallback()
	return rc, nil
}

// putObject places the bytes on a backend according to the category policy.
func (s *Service) putObject(ctx context.Context, category Category, key, mimeType string, data []byte) (Provider, string, error) {
	if s.Remote != nil {
		_, err := s.Remote.Put(ctx, key, mimeType, bytes.NewReader(data))
		if err == nil {
			var publicURL string
			if s.RemoteURL != nil {
				publicURL = s.RemoteURL(key)
			}
			return ProviderS3, publicURL, nil
		}
		if category.Durable() {
			return "", "", fmt.Errorf("%w: %s uploads require the object store (%v)", ErrStorageUnavailable, category, err)
		}
		telemetry.Warn("remote store unavailable, falling back to local", map[string]any{
			"category": string(category),
			"error":    err.Error(),
		})
	} else if category.Durable() {
		return "", "", fmt.Errorf("%w: %s uploads require the object store and none is configured", ErrStorageUnavailable, category)
	}

	if _, err := s.Local.Put(ctx, key, mimeType, bytes.NewReader(data)); err != nil {
		return "", "", fmt.Errorf("%w (%v)", ErrBackendUnavailable, err)
	}
	if s.Remote != nil {
		metrics.IncUploadFallback()
	}
	return ProviderLocal, "", nil
}

// bestEffortDelete removes a displaced document's bytes and record. Failures
// are logged and counted but never surfaced; slot updates must not fail
// because cleanup did.
func (s *Service) bestEffortDelete(ctx context.Context, documentID string) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Warn("displaced document lookup failed", map[string]any{
				"document_id": documentID,
				"error":       err.Error(),
			})
		}
		return
	}
	s.deleteObject(ctx, doc)
	if err := s.Repo.Delete(ctx, doc.ID); err != nil && !errors.Is(err, ErrNotFound) {
		telemetry.Warn("displaced document record delete failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		metrics.IncOrphanedDocument()
		return
	}
	metrics.IncDocumentDeleted()
}

// deleteObject removes the stored bytes for a document, logging failures.
func (s *Service) deleteObject(ctx context.Context, doc Document) {
	store := s.storeFor(doc.StorageProvider)
	if store == nil {
		telemetry.Warn("cannot delete bytes, backend not configured", map[string]any{
			"document_id": doc.ID,
			"provider":    string(doc.StorageProvider),
		})
		metrics.IncOrphanedDocument()
		return
	}
	if err := store.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("object delete failed", map[string]any{
			"document_id": doc.ID,
			"key":         doc.StorageKey,
			"error":       err.Error(),
		})
		metrics.IncOrphanedDocument()
	}
}

func (s *Service) storeFor(provider Provider) object.ObjectStore {
	switch provider {
	case ProviderS3:
		return s.Remote
	case ProviderLocal:
		return s.Local
	default:
		return nil
	}
}

// buildStorageKey lays documents out by category and upload date so backends
// stay browsable and prefixes shard naturally.
func buildStorageKey(category Category, at time.Time, id, safeName string) string {
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s_%s",
		category, at.Year(), int(at.Month()), at.Day(), id, safeName)
}
