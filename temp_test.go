package capfs_test

import (
	"context"
	"errors"
	"path"
	"strings"
	"testing"

	"github.com/mwantia/capfs"
	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/store/ephemeral"
)

// TestTempDirectory_EagerCreation verifies that the real directory exists
// the moment the factory returns, with a unique name derived from the
// requested one.
func TestTempDirectory_EagerCreation(t *testing.T) {
	ctx := t.Context()

	temp, err := capfs.NewTempDirectory("scratch", capfs.WithStore(ephemeral.NewEphemeralStore()))
	if err != nil {
		t.Fatalf("NewTempDirectory failed: %v", err)
	}

	exists, err := temp.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected temp directory to exist right after construction")
	}

	base := path.Base(temp.RealPath())
	if !strings.HasPrefix(base, "scratch-") {
		t.Errorf("Expected real name to start with 'scratch-', got %q", base)
	}
	if path.Dir(temp.RealPath()) != "/tmp" {
		t.Errorf("Expected temp root under /tmp, got %q", temp.RealPath())
	}

	if temp.Cap() != &temp.Directory {
		t.Error("Expected temp root to be its own cap")
	}
	if temp.Parent() != nil {
		t.Error("Expected temp root to have no parent")
	}
	if !temp.IsTemporary() {
		t.Error("Expected IsTemporary true")
	}

	// Two roots with the same name never collide
	other, err := capfs.NewTempDirectory("scratch", capfs.WithStore(ephemeral.NewEphemeralStore()))
	if err != nil {
		t.Fatalf("NewTempDirectory failed: %v", err)
	}
	if other.RealPath() == temp.RealPath() {
		t.Errorf("Expected distinct real paths, both got %q", temp.RealPath())
	}
}

// TestTempDirectory_InvalidParents verifies the construction-time rejections.
func TestTempDirectory_InvalidParents(t *testing.T) {
	if _, err := capfs.NewTempDirectoryFromCwd(); !errors.Is(err, data.ErrUnsupported) {
		t.Errorf("Expected unsupported error, got %v", err)
	}

	if _, err := capfs.NewTempSubdirectory(nil, "sub"); !errors.Is(err, data.ErrInvalidParent) {
		t.Errorf("Expected invalid parent error for nil parent, got %v", err)
	}

	// A plain capped directory is not part of a temp tree
	root, err := capfs.NewDirectory("/cap", capfs.WithStore(ephemeral.NewEphemeralStore()))
	if err != nil {
		t.Fatalf("NewDirectory failed: %v", err)
	}
	if _, err := capfs.NewTempSubdirectory(root, "sub"); !errors.Is(err, data.ErrInvalidParent) {
		t.Errorf("Expected invalid parent error for non-temp parent, got %v", err)
	}

	if _, err := capfs.NewTempDirectory("a/b"); !errors.Is(err, data.ErrBounds) {
		t.Errorf("Expected bounds error for multi-segment name, got %v", err)
	}
}

// TestTempDirectory_SubtreeKeepsType verifies that navigation and reads
// below a temp root stay within the temp type and the shared cap.
func TestTempDirectory_SubtreeKeepsType(t *testing.T) {
	ctx := t.Context()

	temp, err := capfs.NewTempDirectory("tree", capfs.WithStore(ephemeral.NewEphemeralStore()))
	if err != nil {
		t.Fatalf("NewTempDirectory failed: %v", err)
	}

	sub, err := temp.GetDirectory("nested")
	if err != nil {
		t.Fatalf("GetDirectory failed: %v", err)
	}
	if sub.Cap() != temp.Cap() {
		t.Error("Expected subdirectory to share the temp cap")
	}
	if !sub.IsTemporary() {
		t.Error("Expected subdirectory to stay temporary")
	}
	if err := sub.AssureExists(ctx); err != nil {
		t.Fatalf("AssureExists failed: %v", err)
	}

	listing, err := temp.Read(ctx, "")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	count := 0
	for dir := range listing.Directories() {
		count++
		if dir.Cap() != temp.Cap() {
			t.Error("Expected read-back directory to share the temp cap")
		}
		if !dir.IsTemporary() {
			t.Error("Expected read-back directory to stay temporary")
		}
		if dir.VirtualPath() != "/nested" {
			t.Errorf("Expected virtual path '/nested', got %q", dir.VirtualPath())
		}
	}
	if count != 1 {
		t.Errorf("Expected 1 directory, got %d", count)
	}
}

// TestTempDirectory_Scenario covers the common work cycle: build a nested
// structure inside a fresh temp root, verify content, tear everything down
// with one call.
func TestTempDirectory_Scenario(t *testing.T) {
	ctx := t.Context()

	temp, err := capfs.NewTempDirectory("work", capfs.WithStore(ephemeral.NewEphemeralStore()))
	if err != nil {
		t.Fatalf("NewTempDirectory failed: %v", err)
	}

	dir, err := temp.GetDirectory("data")
	if err != nil {
		t.Fatalf("GetDirectory failed: %v", err)
	}
	file, err := dir.GetFile("x.txt")
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if err := file.Write(ctx, "hi"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content, err := file.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if content != "hi" {
		t.Errorf("Expected 'hi', got %q", content)
	}

	if file.RealPath() != path.Join(temp.RealPath(), "data", "x.txt") {
		t.Errorf("Unexpected real path %q", file.RealPath())
	}
	if file.Cap() != temp.Cap() {
		t.Error("Expected file to share the temp cap")
	}

	if err := temp.Remove(ctx); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	for _, probe := range []interface {
		Exists(ctx context.Context) (bool, error)
	}{temp, dir, file} {
		exists, err := probe.Exists(ctx)
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if exists {
			t.Errorf("Expected %v gone after Remove", probe)
		}
	}
}
