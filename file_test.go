package capfs_test

import (
	"errors"
	"path"
	"testing"

	"github.com/mwantia/capfs"
	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/store/ephemeral"
)

// TestFile_RequiresParent verifies that a file can never be created as its
// own root.
func TestFile_RequiresParent(t *testing.T) {
	if _, err := capfs.NewFile(nil, "orphan.txt"); !errors.Is(err, data.ErrInvalidParent) {
		t.Errorf("Expected invalid parent error, got %v", err)
	}
}

// TestFile_Membership verifies path presentation and sandbox membership of
// capped files.
func TestFile_Membership(t *testing.T) {
	root, err := capfs.NewDirectory("/cap", capfs.WithStore(ephemeral.NewEphemeralStore()))
	if err != nil {
		t.Fatalf("NewDirectory failed: %v", err)
	}

	dir, err := root.GetDirectory("data")
	if err != nil {
		t.Fatalf("GetDirectory failed: %v", err)
	}
	file, err := dir.GetFile("x.txt")
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}

	if file.Cap() != root {
		t.Error("Expected file to share the cap")
	}
	if file.Parent() != dir {
		t.Error("Expected file parent to be the directory it was derived from")
	}
	if file.VirtualPath() != "/data/x.txt" {
		t.Errorf("Expected virtual path '/data/x.txt', got %q", file.VirtualPath())
	}
	if file.RealPath() != path.Join(root.RealPath(), "data", "x.txt") {
		t.Errorf("Unexpected real path %q", file.RealPath())
	}
	if !file.IsCapped() || !file.IsVirtual() || file.IsDir() {
		t.Error("Expected a capped, virtual, non-directory node")
	}

	var visited []capfs.Node
	for node := range file.WalkUp() {
		visited = append(visited, node)
	}
	if len(visited) != 3 {
		t.Fatalf("Expected walk of 3 nodes, got %d", len(visited))
	}
	if visited[0] != capfs.Node(file) {
		t.Error("Expected walk to start at the file")
	}
	if visited[2].Parent() != nil {
		t.Error("Expected walk to end at the cap")
	}
}

// TestFile_ContentRoundtrip verifies that content I/O passes through the
// sandbox unchanged, including writes into a directory that was never
// explicitly created.
func TestFile_ContentRoundtrip(t *testing.T) {
	for name, factory := range GetTestCapFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()

			root, err := factory(tst)
			if err != nil {
				tst.Fatalf("Factory failed: %v", err)
			}

			dir, err := root.GetDirectory("data")
			if err != nil {
				tst.Fatalf("GetDirectory failed: %v", err)
			}
			file, err := dir.GetFile("x.txt")
			if err != nil {
				tst.Fatalf("GetFile failed: %v", err)
			}

			// No AssureExists on dir: the write materializes the path
			if err := file.Write(ctx, "hi"); err != nil {
				tst.Fatalf("Write failed: %v", err)
			}

			content, err := file.Read(ctx)
			if err != nil {
				tst.Fatalf("Read failed: %v", err)
			}
			if content != "hi" {
				tst.Errorf("Expected 'hi', got %q", content)
			}

			size, err := file.Size(ctx)
			if err != nil {
				tst.Fatalf("Size failed: %v", err)
			}
			if size != 2 {
				tst.Errorf("Expected size 2, got %d", size)
			}

			exists, err := dir.Exists(ctx)
			if err != nil {
				tst.Fatalf("Exists failed: %v", err)
			}
			if !exists {
				tst.Error("Expected parent directory to exist after the write")
			}

			if !file.CanRead(ctx) {
				tst.Error("Expected CanRead true")
			}
			if !file.CanWrite(ctx) {
				tst.Error("Expected CanWrite true")
			}

			raw, err := file.ReadBinary(ctx)
			if err != nil {
				tst.Fatalf("ReadBinary failed: %v", err)
			}
			if string(raw) != "hi" {
				tst.Errorf("Expected binary 'hi', got %q", raw)
			}

			if err := file.Delete(ctx); err != nil {
				tst.Fatalf("Delete failed: %v", err)
			}
			if _, err := file.Read(ctx); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist after delete, got %v", err)
			}
		})
	}
}

// TestFile_LoadData verifies decoding through the capped handle.
func TestFile_LoadData(t *testing.T) {
	ctx := t.Context()

	root, err := capfs.NewDirectory("/cap", capfs.WithStore(ephemeral.NewEphemeralStore()))
	if err != nil {
		t.Fatalf("NewDirectory failed: %v", err)
	}

	file, err := root.GetFile("config.yaml")
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if err := file.Write(ctx, "name: capfs\nretries: 3\n"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	value, err := file.LoadData(ctx, data.FormatYAML)
	if err != nil {
		t.Fatalf("LoadData failed: %v", err)
	}

	config, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("Expected map result, got %T", value)
	}
	if config["name"] != "capfs" {
		t.Errorf("Expected name 'capfs', got %v", config["name"])
	}
}
