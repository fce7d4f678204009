package drive

import (
	"fmt"
	"strings"
)

// Separator is the namespace path separator. Paths are virtual: they index
// metadata records and never touch a host filesystem.
const Separator = "/"

// parentToken is rejected in names at creation time. It is never
// interpreted as traversal; the namespace has no relative paths.
const parentToken = ".."

// ValidateName checks a directory or file name. Names are literal leaf
// segments: non-empty, no separator, not the parent-reference token.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if strings.Contains(name, Separator) {
		return fmt.Errorf("%w: name %q contains %q", ErrInvalidName, name, Separator)
	}
	if name == parentToken {
		return fmt.Errorf("%w: name %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// Normalize returns the canonical form of a directory path: a leading
// separator, a single trailing separator, and no repeated separators.
// The empty string normalizes to the root. Equality on normalized paths is
// byte-exact; there is no case folding or Unicode normalization.
func Normalize(path string) string {
	segments := strings.Split(path, Separator)
	kept := segments[:0]
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return Separator
	}
	return Separator + strings.Join(kept, Separator) + Separator
}

// Join computes the normalized path of a child named name under parent.
func Join(parent, name string) string {
	return Normalize(parent) + name + Separator
}

// ParentOf strips the trailing segment of a normalized directory path.
// The root has no parent; ok is false for it.
func ParentOf(path string) (parent string, ok bool) {
	p := Normalize(path)
	if p == Separator {
		return "", false
	}
	trimmed := strings.TrimSuffix(p, Separator)
	idx := strings.LastIndex(trimmed, Separator)
	return trimmed[:idx+1], true
}

// LeafName returns the last segment of a normalized directory path, or the
// separator itself for the root.
func LeafName(path string) string {
	p := Normalize(path)
	if p == Separator {
		return Separator
	}
	trimmed := strings.TrimSuffix(p, Separator)
	idx := strings.LastIndex(trimmed, Separator)
	return trimmed[idx+1:]
}

// StorageKey derives the blob store key for a file. The key is
// deterministic in (owner, directory, name), so overwriting a file replaces
// its blob in place.
func StorageKey(ownerID, dirPath, name string) string {
	return ownerID + Normalize(dirPath) + name
}
