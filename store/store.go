package store

import (
	"context"

	"github.com/mwantia/capfs/data"
)

// Store is the lifecycle entrypoint every object store implements.
type Store interface {
	// Name returns the identifier name defined for this store
	Name() string
	// Open is part of the lifecycle behaviour and gets called before first use.
	Open(ctx context.Context) error
	// Close is part of the lifecycle behaviour and gets called when closing this store.
	Close(ctx context.Context) error

	// GetCapabilities returns a list of capabilities supported by this store.
	GetCapabilities() *Capabilities
}

// ObjectStore provides whole-object storage keyed by absolute, slash-separated
// paths. It is the surface the plain handles translate their operations onto.
type ObjectStore interface {
	Store

	// HeadObject returns the stat for key.
	// Returns data.ErrNotExist if the key is not present.
	HeadObject(ctx context.Context, key string) (*data.FileStat, error)

	// ListObjects returns the immediate children of the directory at key.
	// Returns data.ErrNotExist for a missing key and data.ErrNotDirectory
	// when key names a file. An empty directory yields an empty slice.
	ListObjects(ctx context.Context, key string) ([]*data.FileStat, error)

	// ReadObject returns the full content of the file at key.
	ReadObject(ctx context.Context, key string) ([]byte, error)

	// WriteObject replaces the full content of the file at key,
	// creating the file if it does not exist.
	WriteObject(ctx context.Context, key string, content []byte) (*data.FileStat, error)

	// CreateDirectory creates the directory at key, including missing
	// parents. An already existing directory is a no-op.
	CreateDirectory(ctx context.Context, key string) error

	// DeleteObject removes the object at key. Directories are only removed
	// when empty unless force is set, in which case the whole subtree goes.
	DeleteObject(ctx context.Context, key string, force bool) error
}
