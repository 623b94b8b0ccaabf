package capfs

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/mwantia/capfs/data"
)

// ToAbsolutePath ensures the path always starts with a leading slash.
func ToAbsolutePath(p string) (string, error) {
	if len(p) == 0 {
		return "", data.ErrInvalidPath
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return path.Clean(p), nil
}

// Resolve composes a cap's real absolute path with a chain of validated
// segments. No segment may contain separators or traversal tokens, so the
// result can never leave base.
func Resolve(base string, segments ...string) string {
	return path.Join(append([]string{base}, segments...)...)
}

// RelativeOrAbsolute returns the path of to relative to from, preferring
// the relative form. When the relative form would have to ascend above
// from (or the two share no usable ancestor), the absolute path of to is
// returned instead.
func RelativeOrAbsolute(from, to string) string {
	rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash(to))
	if err != nil {
		return to
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return to
	}

	return rel
}

// MergePaths combines two path fragments that may share a trailing/leading
// run of segments, without duplicating the shared run. Combining
// "/work/project" with "project/src/file" yields "/work/project/src/file".
func MergePaths(base, frag string) string {
	base = path.Clean(base)
	frag = strings.Trim(path.Clean("/"+frag), "/")
	if frag == "" {
		return base
	}

	baseParts := strings.Split(strings.Trim(base, "/"), "/")
	fragParts := strings.Split(frag, "/")

	overlap := len(baseParts)
	if len(fragParts) < overlap {
		overlap = len(fragParts)
	}

	for ; overlap > 0; overlap-- {
		if matchRun(baseParts[len(baseParts)-overlap:], fragParts[:overlap]) {
			break
		}
	}

	return path.Join(append([]string{base}, fragParts[overlap:]...)...)
}

func matchRun(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
