package drive_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"drivebox/internal/drive"
	"drivebox/internal/testutil"
)

func TestService_Upload(t *testing.T) {
	t.Run("stores content and records the fingerprint", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		content := []byte("the quick brown fox")
		file := f.PutFile(t, u.ID, "/", "fox.txt", content)

		if file.ContentHash != testutil.SHA256Hex(content) {
			t.Errorf("ContentHash = %q, want %q", file.ContentHash, testutil.SHA256Hex(content))
		}
		if file.Size != int64(len(content)) {
			t.Errorf("Size = %d, want %d", file.Size, len(content))
		}
		if file.Path != "/" {
			t.Errorf("Path = %q, want %q", file.Path, "/")
		}

		var buf bytes.Buffer
		if err := f.Service.Download(context.Background(), u.ID, "/", "fox.txt", &buf); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if !bytes.Equal(buf.Bytes(), content) {
			t.Errorf("Download() = %q, want %q", buf.Bytes(), content)
		}
	})

	t.Run("rejects a name collision without overwrite", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		f.PutFile(t, u.ID, "/", "note.txt", []byte("v1"))

		_, err := f.Service.Upload(context.Background(), drive.UploadRequest{
			OwnerID:     u.ID,
			Path:        "/",
			Name:        "note.txt",
			Content:     strings.NewReader("v2"),
			Size:        2,
			ContentType: "text/plain",
		})
		if !errors.Is(err, drive.ErrAlreadyExists) {
			t.Fatalf("Upload() error = %v, want ErrAlreadyExists", err)
		}

		// The losing upload must leave the original content intact.
		var buf bytes.Buffer
		if err := f.Service.Download(context.Background(), u.ID, "/", "note.txt", &buf); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if buf.String() != "v1" {
			t.Errorf("content after rejected upload = %q, want %q", buf.String(), "v1")
		}
	})

	t.Run("overwrite replaces content and metadata", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ctx := context.Background()
		f.PutFile(t, u.ID, "/", "note.txt", []byte("v1"))

		file, err := f.Service.Upload(ctx, drive.UploadRequest{
			OwnerID:     u.ID,
			Path:        "/",
			Name:        "note.txt",
			Content:     strings.NewReader("version two"),
			Size:        11,
			ContentType: "text/plain",
			Overwrite:   true,
		})
		if err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if file.ContentHash != testutil.SHA256Hex([]byte("version two")) {
			t.Errorf("ContentHash not recomputed on overwrite")
		}

		entries, err := f.Service.ListFiles(ctx, u.ID, "/")
		if err != nil {
			t.Fatalf("ListFiles() error = %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("ListFiles() returned %d entries after overwrite, want 1", len(entries))
		}

		var buf bytes.Buffer
		if err := f.Service.Download(ctx, u.ID, "/", "note.txt", &buf); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if buf.String() != "version two" {
			t.Errorf("content after overwrite = %q, want %q", buf.String(), "version two")
		}
	})

	t.Run("same name in different directories is allowed", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ctx := context.Background()
		if _, err := f.Service.CreateDirectory(ctx, u.ID, "/", "docs"); err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}

		f.PutFile(t, u.ID, "/", "note.txt", []byte("root copy"))
		f.PutFile(t, u.ID, "/docs/", "note.txt", []byte("docs copy"))

		var buf bytes.Buffer
		if err := f.Service.Download(ctx, u.ID, "/docs/", "note.txt", &buf); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if buf.String() != "docs copy" {
			t.Errorf("Download() = %q, want %q", buf.String(), "docs copy")
		}
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		_, err := f.Service.Upload(context.Background(), drive.UploadRequest{
			OwnerID: u.ID,
			Path:    "/",
			Name:    "a/b",
			Content: strings.NewReader("x"),
			Size:    1,
		})
		if !errors.Is(err, drive.ErrInvalidName) {
			t.Errorf("Upload() error = %v, want ErrInvalidName", err)
		}
	})
}

func TestService_ListFiles(t *testing.T) {
	t.Run("flags duplicate content within the directory", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		same := []byte("identical payload")
		f.PutFile(t, u.ID, "/", "a.txt", same)
		f.PutFile(t, u.ID, "/", "b.txt", same)
		f.PutFile(t, u.ID, "/", "c.txt", []byte("different payload"))

		entries, err := f.Service.ListFiles(context.Background(), u.ID, "/")
		if err != nil {
			t.Fatalf("ListFiles() error = %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("ListFiles() returned %d entries, want 3", len(entries))
		}

		for _, e := range entries {
			wantDup := e.Name == "a.txt" || e.Name == "b.txt"
			if e.IsDuplicate != wantDup {
				t.Errorf("IsDuplicate for %s = %v, want %v", e.Name, e.IsDuplicate, wantDup)
			}
		}
	})

	t.Run("flag clears when one copy is deleted", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ctx := context.Background()
		same := []byte("identical payload")
		f.PutFile(t, u.ID, "/", "a.txt", same)
		f.PutFile(t, u.ID, "/", "b.txt", same)

		if _, err := f.Service.DeleteFile(ctx, u.ID, "/", "b.txt"); err != nil {
			t.Fatalf("DeleteFile() error = %v", err)
		}

		entries, err := f.Service.ListFiles(ctx, u.ID, "/")
		if err != nil {
			t.Fatalf("ListFiles() error = %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("ListFiles() returned %d entries, want 1", len(entries))
		}
		if entries[0].IsDuplicate {
			t.Error("IsDuplicate = true for the sole remaining copy")
		}
	})
}

func TestService_FileExists(t *testing.T) {
	f := testutil.NewFixture(t)
	u := f.NewUser(t, "alice@example.com")

	ctx := context.Background()
	f.PutFile(t, u.ID, "/", "note.txt", []byte("x"))

	ok, err := f.Service.FileExists(ctx, u.ID, "/", "note.txt")
	if err != nil {
		t.Fatalf("FileExists() error = %v", err)
	}
	if !ok {
		t.Error("FileExists() = false for an existing file")
	}

	ok, err = f.Service.FileExists(ctx, u.ID, "/", "other.txt")
	if err != nil {
		t.Fatalf("FileExists() error = %v", err)
	}
	if ok {
		t.Error("FileExists() = true for a missing file")
	}
}

func TestService_DeleteFile(t *testing.T) {
	t.Run("removes metadata and blob", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ctx := context.Background()
		file := f.PutFile(t, u.ID, "/", "note.txt", []byte("x"))

		ok, err := f.Service.DeleteFile(ctx, u.ID, "/", "note.txt")
		if err != nil {
			t.Fatalf("DeleteFile() error = %v", err)
		}
		if !ok {
			t.Error("DeleteFile() = false, want true")
		}

		exists, err := f.Blobs.Exists(ctx, file.StorageKey)
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if exists {
			t.Error("blob still present after delete")
		}
	})

	t.Run("returns false for a missing file", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ok, err := f.Service.DeleteFile(context.Background(), u.ID, "/", "nope.txt")
		if err != nil {
			t.Fatalf("DeleteFile() error = %v", err)
		}
		if ok {
			t.Error("DeleteFile() = true, want false")
		}
	})
}

func TestService_Download(t *testing.T) {
	t.Run("missing file is ErrNotFound", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		var buf bytes.Buffer
		err := f.Service.Download(context.Background(), u.ID, "/", "nope.txt", &buf)
		if !errors.Is(err, drive.ErrNotFound) {
			t.Errorf("Download() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("other owner's file is not visible", func(t *testing.T) {
		f := testutil.NewFixture(t)
		alice := f.NewUser(t, "alice@example.com")
		bob := f.NewUser(t, "bob@example.com")

		f.PutFile(t, alice.ID, "/", "secret.txt", []byte("x"))

		var buf bytes.Buffer
		err := f.Service.Download(context.Background(), bob.ID, "/", "secret.txt", &buf)
		if !errors.Is(err, drive.ErrNotFound) {
			t.Errorf("Download() error = %v, want ErrNotFound", err)
		}
	})
}

func TestService_FileDownloadURL(t *testing.T) {
	f := testutil.NewFixture(t)
	u := f.NewUser(t, "alice@example.com")

	f.PutFile(t, u.ID, "/", "note.txt", []byte("x"))

	url, err := f.Service.FileDownloadURL(context.Background(), u.ID, "/", "note.txt", 15*time.Minute)
	if err != nil {
		t.Fatalf("FileDownloadURL() error = %v", err)
	}
	if url == "" {
		t.Error("FileDownloadURL() returned an empty URL")
	}
}
