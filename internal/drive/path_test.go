package drive_test

import (
	"errors"
	"testing"

	"drivebox/internal/drive"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	t.Run("accepts ordinary names", func(t *testing.T) {
		for _, name := range []string{"docs", "report.pdf", "a b c", "2024 taxes", ".hidden"} {
			if err := drive.ValidateName(name); err != nil {
				t.Errorf("ValidateName(%q) error = %v", name, err)
			}
		}
	})

	t.Run("rejects reserved and malformed names", func(t *testing.T) {
		for _, name := range []string{"", "/", "..", "a/b", "docs/"} {
			if err := drive.ValidateName(name); !errors.Is(err, drive.ErrInvalidName) {
				t.Errorf("ValidateName(%q) error = %v, want ErrInvalidName", name, err)
			}
		}
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"docs", "/docs/"},
		{"/docs", "/docs/"},
		{"/docs/", "/docs/"},
		{"docs/reports", "/docs/reports/"},
		{"//docs//reports//", "/docs/reports/"},
	}
	for _, c := range cases {
		if got := drive.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	cases := []struct {
		parent, name, want string
	}{
		{"/", "docs", "/docs/"},
		{"/docs/", "reports", "/docs/reports/"},
		{"docs", "reports", "/docs/reports/"},
	}
	for _, c := range cases {
		if got := drive.Join(c.parent, c.name); got != c.want {
			t.Errorf("Join(%q, %q) = %q, want %q", c.parent, c.name, got, c.want)
		}
	}
}

func TestParentOf(t *testing.T) {
	t.Parallel()

	t.Run("root has no parent", func(t *testing.T) {
		if _, ok := drive.ParentOf("/"); ok {
			t.Error("ParentOf(/) ok = true, want false")
		}
	})

	t.Run("walks one level up", func(t *testing.T) {
		cases := []struct {
			in, want string
		}{
			{"/docs/", "/"},
			{"/docs/reports/", "/docs/"},
			{"docs/reports", "/docs/"},
		}
		for _, c := range cases {
			got, ok := drive.ParentOf(c.in)
			if !ok || got != c.want {
				t.Errorf("ParentOf(%q) = %q, %v, want %q, true", c.in, got, ok, c.want)
			}
		}
	})
}

func TestLeafName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/docs/", "docs"},
		{"/docs/reports/", "reports"},
	}
	for _, c := range cases {
		if got := drive.LeafName(c.in); got != c.want {
			t.Errorf("LeafName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStorageKey(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic in owner, path and name", func(t *testing.T) {
		a := drive.StorageKey("u1", "/docs/", "report.pdf")
		b := drive.StorageKey("u1", "docs", "report.pdf")
		if a != b {
			t.Errorf("StorageKey not path-normalized: %q != %q", a, b)
		}
		if a != "u1/docs/report.pdf" {
			t.Errorf("StorageKey = %q, want %q", a, "u1/docs/report.pdf")
		}
	})

	t.Run("differs across owners", func(t *testing.T) {
		if drive.StorageKey("u1", "/", "a") == drive.StorageKey("u2", "/", "a") {
			t.Error("StorageKey identical for two owners")
		}
	})
}
