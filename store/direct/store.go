package direct

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/store"
)

// DirectStore passes every operation straight to the local filesystem.
// Keys are absolute, slash-separated paths; an optional root is prepended
// so the store can be confined to a subtree for tests.
type DirectStore struct {
	mu   sync.RWMutex
	root string
}

// NewDirectStore creates a store over the local filesystem.
// With an empty root, keys address the filesystem directly.
func NewDirectStore(root string) *DirectStore {
	if root != "" {
		root = filepath.Clean(root)
	}

	return &DirectStore{
		root: root,
	}
}

// Name returns the identifier name defined for this store
func (*DirectStore) Name() string {
	return "direct"
}

// Open is part of the lifecycle behaviour and gets called before first use.
func (ds *DirectStore) Open(ctx context.Context) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.root == "" {
		return nil
	}

	info, err := os.Stat(ds.root)
	if err != nil {
		return mapOsError(err)
	}
	if !info.IsDir() {
		return data.ErrNotDirectory
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this store.
func (ds *DirectStore) Close(ctx context.Context) error {
	// The underlying filesystem persists independently
	return nil
}

// GetCapabilities returns a list of capabilities supported by this store.
func (ds *DirectStore) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityObjectStorage,
			store.CapabilityPersistent,
			store.CapabilityPermissions,
		},
	}
}

// resolvePath joins the store root with the slash-separated key.
func (ds *DirectStore) resolvePath(key string) string {
	native := filepath.FromSlash(path.Clean("/" + key))
	if ds.root == "" {
		return native
	}

	return filepath.Join(ds.root, native)
}

func (ds *DirectStore) toFileStat(info fs.FileInfo, key string) *data.FileStat {
	mode := data.FileMode(info.Mode().Perm())
	if info.IsDir() {
		mode |= data.ModeDir
	}

	return &data.FileStat{
		Key:        key,
		Mode:       mode,
		Size:       info.Size(),
		ModifyTime: info.ModTime(),
		CreateTime: info.ModTime(),
	}
}

func mapOsError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return data.ErrNotExist
	case errors.Is(err, fs.ErrExist):
		return data.ErrExist
	case errors.Is(err, fs.ErrPermission):
		return data.ErrPermission
	default:
		return err
	}
}

// HeadObject returns the stat for key.
func (ds *DirectStore) HeadObject(ctx context.Context, key string) (*data.FileStat, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	info, err := os.Stat(ds.resolvePath(key))
	if err != nil {
		return nil, mapOsError(err)
	}

	return ds.toFileStat(info, key), nil
}

// ListObjects returns the immediate children of the directory at key.
func (ds *DirectStore) ListObjects(ctx context.Context, key string) ([]*data.FileStat, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	fullPath := ds.resolvePath(key)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapOsError(err)
	}
	if !info.IsDir() {
		return nil, data.ErrNotDirectory
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, mapOsError(err)
	}

	stats := make([]*data.FileStat, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// Entry vanished between ReadDir and Info
			continue
		}

		stats = append(stats, ds.toFileStat(info, path.Join(key, entry.Name())))
	}

	return stats, nil
}

// ReadObject returns the full content of the file at key.
func (ds *DirectStore) ReadObject(ctx context.Context, key string) ([]byte, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	fullPath := ds.resolvePath(key)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapOsError(err)
	}
	if info.IsDir() {
		return nil, data.ErrIsDirectory
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, mapOsError(err)
	}

	return content, nil
}

// WriteObject replaces the full content of the file at key.
// Missing parent directories are created on the way.
func (ds *DirectStore) WriteObject(ctx context.Context, key string, content []byte) (*data.FileStat, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	fullPath := ds.resolvePath(key)

	if info, err := os.Stat(fullPath); err == nil && info.IsDir() {
		return nil, data.ErrIsDirectory
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, mapOsError(err)
	}

	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return nil, mapOsError(err)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapOsError(err)
	}

	return ds.toFileStat(info, key), nil
}

// CreateDirectory creates the directory at key, including missing parents.
func (ds *DirectStore) CreateDirectory(ctx context.Context, key string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	fullPath := ds.resolvePath(key)

	if info, err := os.Stat(fullPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return data.ErrNotDirectory
	}

	return mapOsError(os.MkdirAll(fullPath, 0o755))
}

// DeleteObject removes the object at key.
func (ds *DirectStore) DeleteObject(ctx context.Context, key string, force bool) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	fullPath := ds.resolvePath(key)

	info, err := os.Stat(fullPath)
	if err != nil {
		return mapOsError(err)
	}

	if info.IsDir() {
		if force {
			return mapOsError(os.RemoveAll(fullPath))
		}

		entries, err := os.ReadDir(fullPath)
		if err != nil {
			return mapOsError(err)
		}
		if len(entries) > 0 {
			return data.ErrNotEmpty
		}
	}

	return mapOsError(os.Remove(fullPath))
}
