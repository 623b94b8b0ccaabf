package handle

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/mwantia/capfs/data"
	caperrors "github.com/mwantia/capfs/data/errors"
	"github.com/mwantia/capfs/store"
)

// Directory is a plain, uncapped directory handle bound to an absolute key
// within an object store. It owns no sandbox knowledge; the capped layer
// delegates all real I/O here.
type Directory struct {
	store store.ObjectStore
	path  string
}

// Entries holds the split result of a directory read.
type Entries struct {
	Directories []*data.FileStat
	Files       []*data.FileStat
}

// NewDirectory binds a directory handle to an absolute path within st.
func NewDirectory(st store.ObjectStore, dirPath string) *Directory {
	return &Directory{
		store: st,
		path:  path.Clean("/" + dirPath),
	}
}

// Path returns the absolute path this handle is bound to.
func (d *Directory) Path() string {
	return d.path
}

// Name returns the base name of the directory.
func (d *Directory) Name() string {
	return path.Base(d.path)
}

// Store returns the object store backing this handle.
func (d *Directory) Store() store.ObjectStore {
	return d.store
}

// Exists reports whether the directory is present.
// Absence is reported as false, never as an error.
func (d *Directory) Exists(ctx context.Context) (bool, error) {
	stat, err := d.store.HeadObject(ctx, d.path)
	if errors.Is(err, data.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, caperrors.IO(err, "exists", d.path)
	}

	return stat.IsDir(), nil
}

// Read lists the immediate children, optionally filtered by a glob-style
// name pattern matched only at this level.
func (d *Directory) Read(ctx context.Context, pattern string) (*Entries, error) {
	stats, err := d.store.ListObjects(ctx, d.path)
	if err != nil {
		if errors.Is(err, data.ErrNotExist) {
			return nil, caperrors.NotFound("read directory", d.path)
		}
		return nil, caperrors.IO(err, "read directory", d.path)
	}

	entries := &Entries{}
	for _, stat := range stats {
		if pattern != "" {
			match, err := path.Match(pattern, stat.Name())
			if err != nil {
				return nil, caperrors.IO(err, "match pattern", pattern)
			}
			if !match {
				continue
			}
		}

		if stat.IsDir() {
			entries.Directories = append(entries.Directories, stat)
		} else {
			entries.Files = append(entries.Files, stat)
		}
	}

	return entries, nil
}

// AssureExists idempotently ensures the directory exists.
// A pre-existing directory is a no-op.
func (d *Directory) AssureExists(ctx context.Context) error {
	if err := d.store.CreateDirectory(ctx, d.path); err != nil {
		return caperrors.IO(err, "assure exists", d.path)
	}

	return nil
}

// Delete removes the directory. It fails when the directory is missing or
// non-empty; the existence check runs first to give a clear message.
func (d *Directory) Delete(ctx context.Context) error {
	exists, err := d.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return caperrors.NotFound("delete directory", d.path)
	}

	if err := d.store.DeleteObject(ctx, d.path, false); err != nil {
		if errors.Is(err, data.ErrNotEmpty) {
			return caperrors.NotEmpty(d.path)
		}
		return caperrors.IO(err, "delete directory", d.path)
	}

	return nil
}

// Remove recursively deletes the directory and everything beneath it.
func (d *Directory) Remove(ctx context.Context) error {
	exists, err := d.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return caperrors.NotFound("remove directory", d.path)
	}

	if err := d.store.DeleteObject(ctx, d.path, true); err != nil {
		return caperrors.IO(err, "remove directory", d.path)
	}

	return nil
}

// HasDirectory reports whether name exists below this directory as a directory.
func (d *Directory) HasDirectory(ctx context.Context, name string) (bool, error) {
	stat, err := d.store.HeadObject(ctx, path.Join(d.path, name))
	if errors.Is(err, data.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, caperrors.IO(err, "has directory", d.path)
	}

	return stat.IsDir(), nil
}

// HasFile reports whether name exists below this directory as a file.
func (d *Directory) HasFile(ctx context.Context, name string) (bool, error) {
	stat, err := d.store.HeadObject(ctx, path.Join(d.path, name))
	if errors.Is(err, data.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, caperrors.IO(err, "has file", d.path)
	}

	return !stat.IsDir(), nil
}

// GetDirectory returns a handle for a child directory. Plain handles place
// no restriction on rel; it may contain separators or upward traversal.
func (d *Directory) GetDirectory(rel string) *Directory {
	return NewDirectory(d.store, path.Join(d.path, rel))
}

// GetFile returns a handle for a child file.
func (d *Directory) GetFile(rel string) *File {
	return NewFile(d.store, path.Join(d.path, rel))
}

func (d *Directory) String() string {
	return fmt.Sprintf("directory '%s' (%s)", d.path, d.store.Name())
}
