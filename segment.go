package capfs

import (
	"strings"

	"github.com/mwantia/capfs/data/errors"
)

// ValidateSegment decides whether name is a legal one-hop navigation step.
// It operates on the literal string only, with no filesystem lookup: a
// segment is legal iff it is non-empty, contains no separator (forward or
// back slash), is not "." or "..", and does not begin with a separator.
//
// This is the sole sandbox enforcement mechanism. Because it never resolves
// symlinks, a symlink below the cap can still point outside of it; that is
// a known, accepted limitation.
func ValidateSegment(op, name string) (string, error) {
	if name == "" {
		return "", errors.Bounds(op, name, "is empty")
	}

	if name == "." || name == ".." {
		return "", errors.Bounds(op, name, "traverses the directory tree")
	}

	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return "", errors.Bounds(op, name, "is an absolute path")
	}

	if strings.ContainsAny(name, `/\`) {
		return "", errors.Bounds(op, name, "contains a path separator")
	}

	return name, nil
}
