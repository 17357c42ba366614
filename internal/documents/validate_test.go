package documents

import (
	"errors"
	"strings"
	"testing"
)

func TestChecksumDeterministic(t *testing.T) {
	first, algo := Checksum([]byte("identical payload"))
	second, _ := Checksum([]byte("identical payload"))
	if first != second {
		t.Fatalf("expected identical digests, got %s and %s", first, second)
	}
	if algo != "sha256" {
		t.Fatalf("expected sha256 algo, got %s", algo)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}

	other, _ := Checksum([]byte("different payload"))
	if other == first {
		t.Fatal("expected different digests for different payloads")
	}
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("resume body")
	digest, algo := Checksum(data)
	doc := Document{ID: "doc-1", Checksum: digest, ChecksumAlgo: algo}

	if err := VerifyChecksum(doc, data); err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	if err := VerifyChecksum(doc, []byte("tampered")); err == nil {
		t.Fatal("expected mismatch error for tampered bytes")
	}
}

func TestValidateUploadSizeLimits(t *testing.T) {
	if err := ValidateUpload(5<<20, "application/pdf", CategoryResume); err != nil {
		t.Fatalf("5MB resume should pass: %v", err)
	}
	if err := ValidateUpload(5<<20+1, "application/pdf", CategoryResume); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized resume, got %v", err)
	}
	if err := ValidateUpload(2<<20+1, "image/png", CategoryProfileImage); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized image, got %v", err)
	}
	if err := ValidateUpload(0, "application/pdf", CategoryResume); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty file, got %v", err)
	}
}

func TestValidateUploadMimeTypes(t *testing.T) {
	if err := ValidateUpload(100, "text/plain", CategoryJobDescription); err != nil {
		t.Fatalf("text job description should pass: %v", err)
	}
	err := ValidateUpload(100, "application/x-msdownload", CategoryResume)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for executable, got %v", err)
	}
	if !strings.Contains(err.Error(), "not an accepted file type") {
		t.Fatalf("rejection should name the problem, got %q", err.Error())
	}
	if err := ValidateUpload(100, "image/png", CategoryResume); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for image resume, got %v", err)
	}
	if err := ValidateUpload(100, "application/pdf", CategoryProfileImage); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for pdf image, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	if got, err := ParseCategory(" Resume "); err != nil || got != CategoryResume {
		t.Fatalf("expected resume, got %q err %v", got, err)
	}
	if _, err := ParseCategory("contract"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDurableCategories(t *testing.T) {
	if !CategoryResume.Durable() {
		t.Fatal("resume must be durable")
	}
	for _, c := range []Category{CategoryJobDescription, CategoryCoverLetter, CategoryProfileImage} {
		if c.Durable() {
			t.Fatalf("%s should not be durable", c)
		}
	}
}
