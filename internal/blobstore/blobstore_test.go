package blobstore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"drivebox/internal/blobstore"
	"drivebox/internal/drive"
)

// The memory and filesystem stores share the same contract; both run the
// same suite. The S3 store is exercised against real buckets only.

func TestMemoryBlobStore(t *testing.T) {
	runBlobTests(t, func(t *testing.T) drive.BlobStore {
		t.Helper()
		return blobstore.NewMemoryBlobStore()
	})
}

func TestFileSystemBlobStore(t *testing.T) {
	runBlobTests(t, func(t *testing.T) drive.BlobStore {
		t.Helper()
		store, err := blobstore.NewFileSystemBlobStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemBlobStore() error = %v", err)
		}
		return store
	})

	t.Run("rejects keys escaping the root", func(t *testing.T) {
		store, err := blobstore.NewFileSystemBlobStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemBlobStore() error = %v", err)
		}

		for _, key := range []string{"../outside", "/etc/passwd"} {
			if err := store.Put(context.Background(), key, strings.NewReader("x"), 1, ""); err == nil {
				t.Errorf("Put(%q) succeeded, want error", key)
			}
		}
	})

	t.Run("rejects keys aliasing another owner's object", func(t *testing.T) {
		store, err := blobstore.NewFileSystemBlobStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemBlobStore() error = %v", err)
		}
		ctx := context.Background()

		original := []byte("alice's report")
		if err := store.Put(ctx, "alice/docs/report.pdf", bytes.NewReader(original), int64(len(original)), ""); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		tampered := "bob tampered!"
		if err := store.Put(ctx, "bob/../alice/docs/report.pdf", strings.NewReader(tampered), int64(len(tampered)), ""); err == nil {
			t.Error("Put() with a parent-reference segment succeeded, want error")
		}
		if _, err := store.Open(ctx, "bob/../alice/docs/report.pdf"); err == nil {
			t.Error("Open() with a parent-reference segment succeeded, want error")
		}

		rc, err := store.Open(ctx, "alice/docs/report.pdf")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer rc.Close()

		got, _ := io.ReadAll(rc)
		if !bytes.Equal(got, original) {
			t.Errorf("content = %q, want %q", got, original)
		}
	})
}

func runBlobTests(t *testing.T, newStore func(t *testing.T) drive.BlobStore) {
	t.Run("put and open round-trips content", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		content := []byte("blob payload")
		if err := store.Put(ctx, "u1/docs/a.txt", bytes.NewReader(content), int64(len(content)), "text/plain"); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		rc, err := store.Open(ctx, "u1/docs/a.txt")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer rc.Close()

		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("content = %q, want %q", got, content)
		}
	})

	t.Run("put replaces content under the same key", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if err := store.Put(ctx, "k", strings.NewReader("old"), 3, ""); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := store.Put(ctx, "k", strings.NewReader("newer"), 5, ""); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		rc, err := store.Open(ctx, "k")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer rc.Close()

		got, _ := io.ReadAll(rc)
		if string(got) != "newer" {
			t.Errorf("content = %q, want %q", got, "newer")
		}
	})

	t.Run("put rejects a size mismatch", func(t *testing.T) {
		store := newStore(t)

		err := store.Put(context.Background(), "k", strings.NewReader("abc"), 5, "")
		if err == nil {
			t.Error("Put() with wrong size succeeded, want error")
		}
	})

	t.Run("open missing key is ErrMissingInStorage", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Open(context.Background(), "nope")
		if !errors.Is(err, drive.ErrMissingInStorage) {
			t.Errorf("Open() error = %v, want ErrMissingInStorage", err)
		}
	})

	t.Run("exists reflects presence", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		ok, err := store.Exists(ctx, "k")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if ok {
			t.Error("Exists() = true before put")
		}

		if err := store.Put(ctx, "k", strings.NewReader("x"), 1, ""); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		ok, err = store.Exists(ctx, "k")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if !ok {
			t.Error("Exists() = false after put")
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if err := store.Put(ctx, "k", strings.NewReader("x"), 1, ""); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		if err := store.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := store.Delete(ctx, "k"); err != nil {
			t.Errorf("second Delete() error = %v, want nil", err)
		}

		ok, err := store.Exists(ctx, "k")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if ok {
			t.Error("Exists() = true after delete")
		}
	})

	t.Run("download URL requires a present object", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if _, err := store.DownloadURL(ctx, "nope", time.Minute); !errors.Is(err, drive.ErrMissingInStorage) {
			t.Errorf("DownloadURL() error = %v, want ErrMissingInStorage", err)
		}

		if err := store.Put(ctx, "k", strings.NewReader("x"), 1, ""); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		url, err := store.DownloadURL(ctx, "k", time.Minute)
		if err != nil {
			t.Fatalf("DownloadURL() error = %v", err)
		}
		if url == "" {
			t.Error("DownloadURL() returned an empty URL")
		}
	})
}
