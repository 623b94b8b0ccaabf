package capfs_test

import (
	"testing"

	"github.com/mwantia/capfs"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		base     string
		segments []string
		expected string
	}{
		{"/tmp/cap", []string{"data", "x.txt"}, "/tmp/cap/data/x.txt"},
		{"/tmp/cap", nil, "/tmp/cap"},
		{"/", []string{"a"}, "/a"},
	}

	for _, tc := range cases {
		if got := capfs.Resolve(tc.base, tc.segments...); got != tc.expected {
			t.Errorf("Resolve(%q, %v): expected %q, got %q", tc.base, tc.segments, tc.expected, got)
		}
	}
}

func TestRelativeOrAbsolute(t *testing.T) {
	cases := []struct {
		from     string
		to       string
		expected string
	}{
		// Descendant stays relative
		{"/work/project", "/work/project/src/main.go", "src/main.go"},
		{"/work/project", "/work/project", "."},
		// Ascending falls back to absolute
		{"/work/project", "/work/other", "/work/other"},
		{"/work/project", "/etc/passwd", "/etc/passwd"},
	}

	for _, tc := range cases {
		if got := capfs.RelativeOrAbsolute(tc.from, tc.to); got != tc.expected {
			t.Errorf("RelativeOrAbsolute(%q, %q): expected %q, got %q", tc.from, tc.to, tc.expected, got)
		}
	}
}

func TestMergePaths(t *testing.T) {
	cases := []struct {
		base     string
		frag     string
		expected string
	}{
		// Shared run is merged, not duplicated
		{"/work/project", "project/src/file", "/work/project/src/file"},
		{"/work/project", "work/project/src", "/work/project/src"},
		// No overlap appends
		{"/work/project", "src/file", "/work/project/src/file"},
		{"/work", "other/file", "/work/other/file"},
		// Full overlap
		{"/work/project", "project", "/work/project"},
		{"/work/project", "", "/work/project"},
	}

	for _, tc := range cases {
		if got := capfs.MergePaths(tc.base, tc.frag); got != tc.expected {
			t.Errorf("MergePaths(%q, %q): expected %q, got %q", tc.base, tc.frag, tc.expected, got)
		}
	}
}
