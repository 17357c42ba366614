package documents

import "time"

// DocumentResponse is the outward-facing representation of a document record.
type DocumentResponse struct {
	DocumentID        string    `json:"documentId"`
	FileName          string    `json:"fileName"`
	Category          string    `json:"category"`
	MimeType          string    `json:"mimeType"`
	SizeBytes         int64     `json:"sizeBytes"`
	StorageProvider   string    `json:"storageProvider"`
	PublicURL         string    `json:"publicUrl,omitempty"`
	Checksum          string    `json:"checksum"`
	ChecksumAlgo      string    `json:"checksumAlgo"`
	RelatedEntityType string    `json:"relatedEntityType,omitempty"`
	RelatedEntityID   string    `json:"relatedEntityId,omitempty"`
	UploadedAt        time.Time `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:        doc.ID,
		FileName:          doc.OriginalName,
		Category:          string(doc.Category),
		MimeType:          doc.MimeType,
		SizeBytes:         doc.SizeBytes,
		StorageProvider:   string(doc.StorageProvider),
		PublicURL:         doc.PublicURL,
		Checksum:          doc.Checksum,
		ChecksumAlgo:      doc.ChecksumAlgo,
		RelatedEntityType: doc.RelatedEntityType,
		RelatedEntityID:   doc.RelatedEntityID,
		UploadedAt:        doc.CreatedAt,
	}
}
