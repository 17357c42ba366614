package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit-backend/internal/authz"
	"recruit-backend/internal/shared/storage/object"
	localstore "recruit-backend/internal/shared/storage/object/local"
)

// fakeStore is an in-memory ObjectStore with failure injection.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	openErr   error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	if f.putErr != nil {
		return 0, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return int64(len(data)), nil
}

func (f *fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

var _ object.ObjectStore = (*fakeStore)(nil)

func newTestService(remote object.ObjectStore) (*Service, *fakeStore) {
	local := newFakeStore()
	return &Service{
		Repo:   NewMemoryRepo(),
		Slots:  NewMemorySlotStore(),
		Remote: remote,
		Local:  local,
		Policy: authz.NewRolePolicy("admin", "recruiter"),
	}, local
}

func resumeInput(owner string) UploadInput {
	return UploadInput{
		OwnerID:  owner,
		Category: CategoryResume,
		FileName: "resume.pdf",
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4 fake resume body"),
	}
}

func TestUploadResumeUsesRemote(t *testing.T) {
	remote := newFakeStore()
	svc, local := newTestService(remote)

	doc, err := svc.Upload(context.Background(), resumeInput("user-1"))
	require.NoError(t, err)

	assert.Equal(t, ProviderS3, doc.StorageProvider)
	assert.Equal(t, 1, remote.count())
	assert.Equal(t, 0, local.count())
	assert.NotEmpty(t, doc.Checksum)
	assert.Equal(t, "sha256", doc.ChecksumAlgo)
	assert.Contains(t, doc.StorageKey, "resume/")
	assert.Contains(t, doc.StorageKey, doc.ID)

	stored, err := svc.Repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.StorageKey, stored.StorageKey)
}

func TestUploadResumeFailsWhenRemoteDown(t *testing.T) {
	remote := newFakeStore()
	remote.putErr = errors.New("connection refused")
	svc, local := newTestService(remote)

	_, err := svc.Upload(context.Background(), resumeInput("user-1"))
	require.ErrorIs(t, err, ErrStorageUnavailable)

	// No record and no local copy may exist after a rejected durable upload.
	docs, err := svc.Repo.ListByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 0, local.count())
}

func TestUploadResumeFailsWithoutRemote(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Upload(context.Background(), resumeInput("user-1"))
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestUploadOptionalCategoryFallsBackToLocal(t *testing.T) {
	remote := newFakeStore()
	remote.putErr = errors.New("connection refused")
	svc, local := newTestService(remote)

	doc, err := svc.Upload(context.Background(), UploadInput{
		OwnerID:  "user-1",
		Category: CategoryCoverLetter,
		FileName: "letter.txt",
		MimeType: "text/plain",
		Data:     []byte("dear hiring manager"),
	})
	require.NoError(t, err)

	assert.Equal(t, ProviderLocal, doc.StorageProvider)
	assert.Equal(t, 1, local.count())
}

func TestUploadBothBackendsDown(t *testing.T) {
	remote := newFakeStore()
	remote.putErr = errors.New("remote down")
	svc, local := newTestService(remote)
	local.putErr = errors.New("disk full")

	_, err := svc.Upload(context.Background(), UploadInput{
		OwnerID:  "user-1",
		Category: CategoryCoverLetter,
		FileName: "letter.txt",
		MimeType: "text/plain",
		Data:     []byte("dear hiring manager"),
	})
	require.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestReplaceStoresNewBeforeRemovingOld(t *testing.T) {
	remote := newFakeStore()
	svc, _ := newTestService(remote)
	ctx := context.Background()

	first, err := svc.Replace(ctx, resumeInput("user-1"))
	require.NoError(t, err)

	second, err := svc.Replace(ctx, resumeInput("user-1"))
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	ref, err := svc.Slots.GetSlotReference(ctx, "user-1", CategoryResume)
	require.NoError(t, err)
	assert.Equal(t, second.ID, ref)

	// The displaced record and bytes are gone; only the new copy remains.
	_, err = svc.Repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, remote.count())
}

func TestReplaceKeepsOldWhenNewUploadFails(t *testing.T) {
	remote := newFakeStore()
	svc, _ := newTestService(remote)
	ctx := context.Background()

	first, err := svc.Replace(ctx, resumeInput("user-1"))
	require.NoError(t, err)

	remote.putErr = errors.New("remote down")
	_, err = svc.Replace(ctx, resumeInput("user-1"))
	require.ErrorIs(t, err, ErrStorageUnavailable)

	// Slot still serves the old document.
	ref, err := svc.Slots.GetSlotReference(ctx, "user-1", CategoryResume)
	require.NoError(t, err)
	assert.Equal(t, first.ID, ref)
	exists, err := remote.Exists(ctx, first.StorageKey)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReplaceSucceedsWhenOldDeleteFails(t *testing.T) {
	remote := newFakeStore()
	svc, _ := newTestService(remote)
	ctx := context.Background()

	_, err := svc.Replace(ctx, resumeInput("user-1"))
	require.NoError(t, err)

	remote.deleteErr = errors.New("remote flake")
	second, err := svc.Replace(ctx, resumeInput("user-1"))
	require.NoError(t, err)

	ref, err := svc.Slots.GetSlotReference(ctx, "user-1", CategoryResume)
	require.NoError(t, err)
	assert.Equal(t, second.ID, ref)
}

func TestClearUnsetsSlotAndRemovesDocument(t *testing.T) {
	remote := newFakeStore()
	svc, _ := newTestService(remote)
	ctx := context.Background()

	doc, err := svc.Replace(ctx, resumeInput("user-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "user-1", CategoryResume))

	ref, err := svc.Slots.GetSlotReference(ctx, "user-1", CategoryResume)
	require.NoError(t, err)
	assert.Empty(t, ref)
	_, err = svc.Repo.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, remote.count())

	// Clearing an already-empty slot is a no-op.
	require.NoError(t, svc.Clear(ctx, "user-1", CategoryResume))
}

func TestResolveEnforcesPolicy(t *testing.T) {
	svc, _ := newTestService(newFakeStore())
	ctx := context.Background()

	doc, err := svc.Upload(ctx, resumeInput("user-1"))
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, doc.ID, authz.Identity{UserID: "user-1", Role: "member"})
	assert.NoError(t, err)

	_, err = svc.Resolve(ctx, doc.ID, authz.Identity{UserID: "user-2", Role: "member"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Resolve(ctx, doc.ID, authz.Identity{UserID: "user-2", Role: "recruiter"})
	assert.NoError(t, err)

	_, err = svc.Resolve(ctx, "missing", authz.Identity{UserID: "user-1", Role: "member"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenStreamLocalFallback(t *testing.T) {
	remote := newFakeStore()
	svc, local := newTestService(remote)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, resumeInput("user-1"))
	require.NoError(t, err)

	// Seed the local copy, then take the remote offline.
	_, err = local.Put(ctx, doc.StorageKey, doc.MimeType, bytes.NewReader([]byte("%PDF-1.4 fake resume body")))
	require.NoError(t, err)
	remote.openErr = errors.New("remote down")

	rc, err := svc.OpenStream(ctx, doc)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake resume body"), data)
}

func TestOpenStreamMissingEverywhere(t *testing.T) {
	remote := newFakeStore()
	svc, _ := newTestService(remote)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, resumeInput("user-1"))
	require.NoError(t, err)
	require.NoError(t, remote.Delete(ctx, doc.StorageKey))

	_, err = svc.OpenStream(ctx, doc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenStreamRemoteDownNoLocalCopy(t *testing.T) {
	remote := newFakeStore()
	svc, _ := newTestService(remote)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, resumeInput("user-1"))
	require.NoError(t, err)
	remote.openErr = errors.New("remote down")

	_, err = svc.OpenStream(ctx, doc)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestLocalPathForLocalDocuments(t *testing.T) {
	svc, _ := newTestService(nil)
	svc.Local = localstore.New(t.TempDir())
	ctx := context.Background()

	doc, err := svc.Upload(ctx, UploadInput{
		OwnerID:  "user-1",
		Category: CategoryJobDescription,
		FileName: "jd.txt",
		MimeType: "text/plain",
		Data:     []byte("Senior Go engineer, Berlin office."),
	})
	require.NoError(t, err)
	require.Equal(t, ProviderLocal, doc.StorageProvider)

	path, ok := svc.LocalPath(ctx, doc)
	require.True(t, ok)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer, Berlin office.", string(data))
}

func TestLocalPathNotAvailable(t *testing.T) {
	ctx := context.Background()

	// Remote documents never read from disk.
	svc, _ := newTestService(newFakeStore())
	doc, err := svc.Upload(ctx, resumeInput("user-1"))
	require.NoError(t, err)
	_, ok := svc.LocalPath(ctx, doc)
	assert.False(t, ok)

	// Local stores without an on-disk layout yield no path either.
	svcFake, _ := newTestService(nil)
	fakeDoc, err := svcFake.Upload(ctx, UploadInput{
		OwnerID:  "user-1",
		Category: CategoryJobDescription,
		FileName: "jd.txt",
		MimeType: "text/plain",
		Data:     []byte("Senior Go engineer, Berlin office."),
	})
	require.NoError(t, err)
	_, ok = svcFake.LocalPath(ctx, fakeDoc)
	assert.False(t, ok)
}
