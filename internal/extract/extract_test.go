package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func TestTextFromBytesPlainText(t *testing.T) {
	text, err := TextFromBytes([]byte("plain resume text"), "text/plain; charset=utf-8", "resume.txt")
	if err != nil {
		t.Fatalf("TextFromBytes: %v", err)
	}
	if text != "plain resume text" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestTextFromBytesUnsupported(t *testing.T) {
	_, err := TextFromBytes([]byte("GIF89a"), "image/gif", "avatar.gif")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestTextFromBytesCorruptPDF(t *testing.T) {
	_, err := TextFromBytes([]byte("not a pdf at all"), "application/pdf", "resume.pdf")
	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("expected ErrParseFailed, got %v", err)
	}
}

func TestNormalizeMimeTypeZipWithDocxPayload(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(`<w:document><w:body/></w:document>`)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if got := normalizeMimeType("application/zip", "upload.bin", buf.Bytes()); got != mimeDOCX {
		t.Fatalf("expected docx mime for zip with document.xml, got %s", got)
	}
}

func TestNormalizeMimeTypeZipByExtension(t *testing.T) {
	if got := normalizeMimeType("application/zip", "resume.DOCX", nil); got != mimeDOCX {
		t.Fatalf("expected docx mime by extension, got %s", got)
	}
	if got := normalizeMimeType("application/zip", "archive.zip", nil); got != "application/zip" {
		t.Fatalf("expected plain zip to stay, got %s", got)
	}
}

func TestNormalizeMimeTypeStripsParameters(t *testing.T) {
	if got := normalizeMimeType("Text/Plain; charset=utf-8", "a.txt", nil); got != "text/plain" {
		t.Fatalf("expected text/plain, got %s", got)
	}
}

func TestStripDocxXML(t *testing.T) {
	raw := `<w:document><w:body><w:p><w:r><w:t>First line</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second line</w:t></w:r></w:p></w:body></w:document>`
	got := stripDocxXML(raw)
	want := "First line\nSecond line"
	if got != want {
		t.Fatalf("stripDocxXML = %q, want %q", got, want)
	}
}
