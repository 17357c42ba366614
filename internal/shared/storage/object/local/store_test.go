package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"recruit-backend/internal/shared/storage/object"
)

func TestPutOpenDeleteRoundtrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	key := "resume/2026/09/01/doc-1_resume.pdf"

	n, err := store.Put(ctx, key, "application/pdf", bytes.NewReader([]byte("payload")))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != int64(len("payload")) {
		t.Fatalf("expected %d bytes written, got %d", len("payload"), n)
	}

	exists, err := store.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatal("expected key to exist after Put")
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content: %q", string(data))
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, err = store.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists after delete: %v", err)
	}
	if exists {
		t.Fatal("expected key to be gone after Delete")
	}
}

func TestOpenMissingKey(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Open(context.Background(), "nope/missing.txt")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected object.ErrNotFound, got %v", err)
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Delete(context.Background(), "nope/missing.txt"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestPathFor(t *testing.T) {
	base := t.TempDir()
	store := New(base)

	path, err := store.PathFor("resume/2026/09/01/doc-1_resume.pdf")
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	want := filepath.Join(base, "resume", "2026", "09", "01", "doc-1_resume.pdf")
	if path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}

	if _, err := store.PathFor("../escape.txt"); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"../escape.txt", "a/../../escape.txt", "/etc/passwd", "."} {
		if _, err := store.Put(ctx, key, "text/plain", bytes.NewReader([]byte("x"))); err == nil {
			t.Fatalf("expected traversal key %q to be rejected", key)
		}
	}
}
