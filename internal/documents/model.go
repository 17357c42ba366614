package documents

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies what a stored document is used for.
type Category string

const (
	CategoryResume         Category = "resume"
	CategoryJobDescription Category = "job-description"
	CategoryCoverLetter    Category = "cover-letter"
	CategoryProfileImage   Category = "profile-image"
)

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryResume:
		return CategoryResume, nil
	case CategoryJobDescription:
		return CategoryJobDescription, nil
	case CategoryCoverLetter:
		return CategoryCoverLetter, nil
	case CategoryProfileImage:
		return CategoryProfileImage, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, raw)
	}
}

// Durable reports whether the category requires an off-box primary copy.
// Durable categories never fall back to local storage on upload.
func (c Category) Durable() bool {
	return c == CategoryResume
}

// Provider names the backend that holds a document's bytes.
type Provider string

const (
	ProviderS3    Provider = "s3"
	ProviderLocal Provider = "local"
)

// Document represents one stored binary object's metadata. Records are
// immutable once written; replacement creates a new record and deletes the old.
type Document struct {
	ID                string
	FileName          string
	OriginalName      string
	MimeType          string
	SizeBytes         int64
	Category          Category
	StorageProvider   Provider
	StorageKey        string
	PublicURL         string
	Checksum          string
	ChecksumAlgo      string
	UploadedBy        string
	RelatedEntityType string
	RelatedEntityID   string
	CreatedAt         time.Time
}
