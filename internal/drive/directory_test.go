package drive_test

import (
	"context"
	"errors"
	"testing"

	"drivebox/internal/drive"
	"drivebox/internal/testutil"
)

func TestService_EnsureRoot(t *testing.T) {
	t.Run("creates the root once", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		// NewUser already ran EnsureRoot; a second call must not add another.
		if err := f.Service.EnsureRoot(context.Background(), u.ID); err != nil {
			t.Fatalf("EnsureRoot() error = %v", err)
		}

		roots, err := f.Store.FindDirectories(context.Background(), u.ID, "/")
		if err != nil {
			t.Fatalf("FindDirectories() error = %v", err)
		}
		if len(roots) != 1 {
			t.Errorf("root directory count = %d, want 1", len(roots))
		}
		if roots[0].ParentPath != "" {
			t.Errorf("root ParentPath = %q, want empty", roots[0].ParentPath)
		}
	})
}

func TestService_CreateDirectory(t *testing.T) {
	t.Run("creates a directory under the root", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		dir, err := f.Service.CreateDirectory(context.Background(), u.ID, "/", "docs")
		if err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}
		if dir.Path != "/docs/" {
			t.Errorf("Path = %q, want %q", dir.Path, "/docs/")
		}
		if dir.ParentPath != "/" {
			t.Errorf("ParentPath = %q, want %q", dir.ParentPath, "/")
		}
		if dir.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
	})

	t.Run("normalizes the parent path", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		if _, err := f.Service.CreateDirectory(context.Background(), u.ID, "/", "docs"); err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}

		dir, err := f.Service.CreateDirectory(context.Background(), u.ID, "docs", "reports")
		if err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}
		if dir.Path != "/docs/reports/" {
			t.Errorf("Path = %q, want %q", dir.Path, "/docs/reports/")
		}
	})

	t.Run("rejects a duplicate path", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		if _, err := f.Service.CreateDirectory(context.Background(), u.ID, "/", "docs"); err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}

		_, err := f.Service.CreateDirectory(context.Background(), u.ID, "/", "docs")
		if !errors.Is(err, drive.ErrAlreadyExists) {
			t.Errorf("CreateDirectory() error = %v, want ErrAlreadyExists", err)
		}

		dirs, err := f.Store.FindDirectories(context.Background(), u.ID, "/docs/")
		if err != nil {
			t.Fatalf("FindDirectories() error = %v", err)
		}
		if len(dirs) != 1 {
			t.Errorf("record count after rejected create = %d, want 1", len(dirs))
		}
	})

	t.Run("allows the same path for different owners", func(t *testing.T) {
		f := testutil.NewFixture(t)
		alice := f.NewUser(t, "alice@example.com")
		bob := f.NewUser(t, "bob@example.com")

		if _, err := f.Service.CreateDirectory(context.Background(), alice.ID, "/", "docs"); err != nil {
			t.Fatalf("CreateDirectory() for alice error = %v", err)
		}
		if _, err := f.Service.CreateDirectory(context.Background(), bob.ID, "/", "docs"); err != nil {
			t.Errorf("CreateDirectory() for bob error = %v", err)
		}
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		for _, name := range []string{"", "a/b", ".."} {
			_, err := f.Service.CreateDirectory(context.Background(), u.ID, "/", name)
			if !errors.Is(err, drive.ErrInvalidName) {
				t.Errorf("CreateDirectory(%q) error = %v, want ErrInvalidName", name, err)
			}
		}
	})
}

func TestService_ListDirectories(t *testing.T) {
	t.Run("lists direct children only", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ctx := context.Background()
		for _, name := range []string{"docs", "photos"} {
			if _, err := f.Service.CreateDirectory(ctx, u.ID, "/", name); err != nil {
				t.Fatalf("CreateDirectory(%q) error = %v", name, err)
			}
		}
		if _, err := f.Service.CreateDirectory(ctx, u.ID, "/docs/", "reports"); err != nil {
			t.Fatalf("CreateDirectory(reports) error = %v", err)
		}

		dirs, err := f.Service.ListDirectories(ctx, u.ID, "/")
		if err != nil {
			t.Fatalf("ListDirectories() error = %v", err)
		}
		if len(dirs) != 2 {
			t.Fatalf("ListDirectories() returned %d directories, want 2", len(dirs))
		}
		for _, d := range dirs {
			if d.Name == "reports" {
				t.Error("nested directory leaked into root listing")
			}
		}
	})

	t.Run("empty directory lists nothing", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		dirs, err := f.Service.ListDirectories(context.Background(), u.ID, "/")
		if err != nil {
			t.Fatalf("ListDirectories() error = %v", err)
		}
		if len(dirs) != 0 {
			t.Errorf("ListDirectories() returned %d directories, want 0", len(dirs))
		}
	})
}

func TestService_DeleteDirectory(t *testing.T) {
	t.Run("deletes an empty directory", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ctx := context.Background()
		if _, err := f.Service.CreateDirectory(ctx, u.ID, "/", "docs"); err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}

		ok, err := f.Service.DeleteDirectory(ctx, u.ID, "/docs/")
		if err != nil {
			t.Fatalf("DeleteDirectory() error = %v", err)
		}
		if !ok {
			t.Error("DeleteDirectory() = false, want true")
		}

		dirs, err := f.Store.FindDirectories(ctx, u.ID, "/docs/")
		if err != nil {
			t.Fatalf("FindDirectories() error = %v", err)
		}
		if len(dirs) != 0 {
			t.Errorf("directory still present after delete: %d records", len(dirs))
		}
	})

	t.Run("refuses a directory with subdirectories", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ctx := context.Background()
		if _, err := f.Service.CreateDirectory(ctx, u.ID, "/", "docs"); err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}
		if _, err := f.Service.CreateDirectory(ctx, u.ID, "/docs/", "reports"); err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}

		_, err := f.Service.DeleteDirectory(ctx, u.ID, "/docs/")
		if !errors.Is(err, drive.ErrNotEmpty) {
			t.Errorf("DeleteDirectory() error = %v, want ErrNotEmpty", err)
		}
	})

	t.Run("refuses a directory with files", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ctx := context.Background()
		if _, err := f.Service.CreateDirectory(ctx, u.ID, "/", "docs"); err != nil {
			t.Fatalf("CreateDirectory() error = %v", err)
		}
		f.PutFile(t, u.ID, "/docs/", "note.txt", []byte("hello"))

		_, err := f.Service.DeleteDirectory(ctx, u.ID, "/docs/")
		if !errors.Is(err, drive.ErrNotEmpty) {
			t.Errorf("DeleteDirectory() error = %v, want ErrNotEmpty", err)
		}
	})

	t.Run("refuses the root", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		_, err := f.Service.DeleteDirectory(context.Background(), u.ID, "/")
		if !errors.Is(err, drive.ErrInvalidName) {
			t.Errorf("DeleteDirectory(/) error = %v, want ErrInvalidName", err)
		}
	})

	t.Run("returns false for a missing directory", func(t *testing.T) {
		f := testutil.NewFixture(t)
		u := f.NewUser(t, "alice@example.com")

		ok, err := f.Service.DeleteDirectory(context.Background(), u.ID, "/nope/")
		if err != nil {
			t.Fatalf("DeleteDirectory() error = %v", err)
		}
		if ok {
			t.Error("DeleteDirectory() = true, want false")
		}
	})
}
