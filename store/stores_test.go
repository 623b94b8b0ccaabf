package store_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/store"
	"github.com/mwantia/capfs/store/direct"
	"github.com/mwantia/capfs/store/ephemeral"
	"github.com/mwantia/capfs/store/sqlite"
)

// TestStoreFactory creates a new store instance for testing.
type TestStoreFactory func(t *testing.T) (store.ObjectStore, error)

// GetTestStoreFactories returns all store implementations that run without
// external services. The s3, consul and postgres stores need their servers
// and are covered by the same contract once pointed at one.
func GetTestStoreFactories() map[string]TestStoreFactory {
	return map[string]TestStoreFactory{
		"direct": func(t *testing.T) (store.ObjectStore, error) {
			return direct.NewDirectStore(t.TempDir()), nil
		},
		"ephemeral": func(t *testing.T) (store.ObjectStore, error) {
			return ephemeral.NewEphemeralStore(), nil
		},
		"sqlite": func(t *testing.T) (store.ObjectStore, error) {
			return sqlite.NewSQLiteStore(":memory:")
		},
	}
}

// TestAllStores_FileOperations verifies object create, overwrite, read and
// delete across all store implementations.
func TestAllStores_FileOperations(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()

			st, err := factory(tst)
			if err != nil {
				tst.Fatalf("Store init failed: %v", err)
			}
			if err := st.Open(ctx); err != nil {
				tst.Fatalf("Open failed: %v", err)
			}
			defer st.Close(ctx)

			content := []byte("hello world")
			if _, err := st.WriteObject(ctx, "/test.txt", content); err != nil {
				tst.Fatalf("WriteObject failed: %v", err)
			}

			stat, err := st.HeadObject(ctx, "/test.txt")
			if err != nil {
				tst.Fatalf("HeadObject failed: %v", err)
			}
			if stat.IsDir() {
				tst.Error("Expected a file, got a directory")
			}
			if stat.Size != int64(len(content)) {
				tst.Errorf("Expected size %d, got %d", len(content), stat.Size)
			}

			got, err := st.ReadObject(ctx, "/test.txt")
			if err != nil {
				tst.Fatalf("ReadObject failed: %v", err)
			}
			if !bytes.Equal(got, content) {
				tst.Errorf("Expected %q, got %q", content, got)
			}

			// Overwrite shrinks the object
			if _, err := st.WriteObject(ctx, "/test.txt", []byte("hi")); err != nil {
				tst.Fatalf("Overwrite failed: %v", err)
			}
			stat, err = st.HeadObject(ctx, "/test.txt")
			if err != nil {
				tst.Fatalf("HeadObject after overwrite failed: %v", err)
			}
			if stat.Size != 2 {
				tst.Errorf("Expected size 2 after overwrite, got %d", stat.Size)
			}

			if err := st.DeleteObject(ctx, "/test.txt", false); err != nil {
				tst.Fatalf("DeleteObject failed: %v", err)
			}

			if _, err := st.HeadObject(ctx, "/test.txt"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist after delete, got %v", err)
			}
		})
	}
}

// TestAllStores_DirectoryOperations verifies directory creation, one-level
// listing and empty/non-empty delete semantics.
func TestAllStores_DirectoryOperations(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()

			st, err := factory(tst)
			if err != nil {
				tst.Fatalf("Store init failed: %v", err)
			}
			if err := st.Open(ctx); err != nil {
				tst.Fatalf("Open failed: %v", err)
			}
			defer st.Close(ctx)

			if err := st.CreateDirectory(ctx, "/mydir"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}
			// Idempotent for a pre-existing directory
			if err := st.CreateDirectory(ctx, "/mydir"); err != nil {
				tst.Fatalf("CreateDirectory (repeat) failed: %v", err)
			}

			for _, child := range []string{"a.txt", "b.txt", "c.txt"} {
				if _, err := st.WriteObject(ctx, "/mydir/"+child, []byte(child)); err != nil {
					tst.Fatalf("WriteObject %s failed: %v", child, err)
				}
			}
			// Nested write; /mydir/sub must appear as a single child
			if _, err := st.WriteObject(ctx, "/mydir/sub/deep.txt", []byte("deep")); err != nil {
				tst.Fatalf("Nested WriteObject failed: %v", err)
			}

			stats, err := st.ListObjects(ctx, "/mydir")
			if err != nil {
				tst.Fatalf("ListObjects failed: %v", err)
			}
			if len(stats) != 4 {
				tst.Errorf("Expected 4 entries, got %d", len(stats))
			}

			dirs := 0
			for _, stat := range stats {
				if stat.IsDir() {
					dirs++
				}
			}
			if dirs != 1 {
				tst.Errorf("Expected 1 directory entry, got %d", dirs)
			}

			if err := st.DeleteObject(ctx, "/mydir", false); !errors.Is(err, data.ErrNotEmpty) {
				tst.Errorf("Expected ErrNotEmpty, got %v", err)
			}

			if err := st.DeleteObject(ctx, "/mydir", true); err != nil {
				tst.Fatalf("Forced delete failed: %v", err)
			}
			if _, err := st.HeadObject(ctx, "/mydir"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist after forced delete, got %v", err)
			}
			if _, err := st.HeadObject(ctx, "/mydir/sub/deep.txt"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected descendant gone after forced delete, got %v", err)
			}
		})
	}
}

// TestAllStores_TypeErrors verifies the error taxonomy for mismatched
// object types.
func TestAllStores_TypeErrors(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()

			st, err := factory(tst)
			if err != nil {
				tst.Fatalf("Store init failed: %v", err)
			}
			if err := st.Open(ctx); err != nil {
				tst.Fatalf("Open failed: %v", err)
			}
			defer st.Close(ctx)

			if err := st.CreateDirectory(ctx, "/dir"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}
			if _, err := st.WriteObject(ctx, "/file.txt", []byte("x")); err != nil {
				tst.Fatalf("WriteObject failed: %v", err)
			}

			if _, err := st.ReadObject(ctx, "/dir"); !errors.Is(err, data.ErrIsDirectory) {
				tst.Errorf("Expected ErrIsDirectory reading a directory, got %v", err)
			}
			if _, err := st.WriteObject(ctx, "/dir", []byte("x")); !errors.Is(err, data.ErrIsDirectory) {
				tst.Errorf("Expected ErrIsDirectory writing a directory, got %v", err)
			}
			if _, err := st.ListObjects(ctx, "/file.txt"); !errors.Is(err, data.ErrNotDirectory) {
				tst.Errorf("Expected ErrNotDirectory listing a file, got %v", err)
			}
			if err := st.CreateDirectory(ctx, "/file.txt"); !errors.Is(err, data.ErrNotDirectory) {
				tst.Errorf("Expected ErrNotDirectory creating over a file, got %v", err)
			}
			if _, err := st.ReadObject(ctx, "/missing.txt"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist reading missing file, got %v", err)
			}
			if err := st.DeleteObject(ctx, "/missing.txt", false); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist deleting missing file, got %v", err)
			}
		})
	}
}
