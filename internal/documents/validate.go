package documents

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ChecksumAlgo identifies the content hash stored on every record.
const ChecksumAlgo = "sha256"

const (
	maxDocumentBytes = 5 << 20
	maxImageBytes    = 2 << 20
)

const (
	mimePDF   = "application/pdf"
	mimeDOC   = "application/msword"
	mimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePlain = "text/plain"
)

var allowedMimeTypes = map[Category]map[string]struct{}{
	CategoryResume: {
		mimePDF: {}, mimeDOC: {}, mimeDOCX: {}, mimePlain: {},
	},
	CategoryJobDescription: {
		mimePDF: {}, mimeDOC: {}, mimeDOCX: {}, mimePlain: {},
	},
	CategoryCoverLetter: {
		mimePDF: {}, mimeDOC: {}, mimeDOCX: {}, mimePlain: {},
	},
	CategoryProfileImage: {
		"image/jpeg": {}, "image/png": {}, "image/webp": {},
	},
}

// MaxSizeFor returns the upload size limit for a category in bytes.
func MaxSizeFor(category Category) int64 {
	if category == CategoryProfileImage {
		return maxImageBytes
	}
	return maxDocumentBytes
}

// ValidateUpload enforces the per-category size limit and mimetype allow-list.
// Rejection messages state the corrective action.
func ValidateUpload(sizeBytes int64, mimeType string, category Category) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if limit := MaxSizeFor(category); sizeBytes > limit {
		return fmt.Errorf("%w: file exceeds %d MB limit for %s", ErrInvalidInput, limit>>20, category)
	}
	allowed, ok := allowedMimeTypes[category]
	if !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	if _, ok := allowed[mimeType]; !ok {
		return fmt.Errorf("%w: %s is not an accepted file type for %s", ErrInvalidInput, mimeType, category)
	}
	return nil
}

// Checksum computes the deterministic content hash stored on each record.
func Checksum(data []byte) (digest string, algo string) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), ChecksumAlgo
}

// VerifyChecksum recomputes the hash of data against the record. Available for
// integrity checks; not invoked automatically on reads.
func VerifyChecksum(doc Document, data []byte) error {
	digest, algo := Checksum(data)
	if algo != doc.ChecksumAlgo || digest != doc.Checksum {
		return fmt.Errorf("checksum mismatch for document %s", doc.ID)
	}
	return nil
}
