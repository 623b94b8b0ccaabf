package handle

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/mwantia/capfs/data"
	caperrors "github.com/mwantia/capfs/data/errors"
	"github.com/mwantia/capfs/store"
)

// File is a plain, uncapped file handle bound to an absolute key within an
// object store.
type File struct {
	store store.ObjectStore
	path  string
}

// NewFile binds a file handle to an absolute path within st.
func NewFile(st store.ObjectStore, filePath string) *File {
	return &File{
		store: st,
		path:  path.Clean("/" + filePath),
	}
}

// Path returns the absolute path this handle is bound to.
func (f *File) Path() string {
	return f.path
}

// Name returns the base name of the file.
func (f *File) Name() string {
	return path.Base(f.path)
}

// Store returns the object store backing this handle.
func (f *File) Store() store.ObjectStore {
	return f.store
}

// Exists reports whether the file is present.
// Absence is reported as false, never as an error.
func (f *File) Exists(ctx context.Context) (bool, error) {
	stat, err := f.store.HeadObject(ctx, f.path)
	if errors.Is(err, data.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, caperrors.IO(err, "exists", f.path)
	}

	return !stat.IsDir(), nil
}

// Read returns the file content as a string.
func (f *File) Read(ctx context.Context) (string, error) {
	content, err := f.ReadBinary(ctx)
	if err != nil {
		return "", err
	}

	return string(content), nil
}

// ReadBinary returns the raw file content.
func (f *File) ReadBinary(ctx context.Context) ([]byte, error) {
	content, err := f.store.ReadObject(ctx, f.path)
	if err != nil {
		if errors.Is(err, data.ErrNotExist) {
			return nil, caperrors.NotFound("read file", f.path)
		}
		return nil, caperrors.IO(err, "read file", f.path)
	}

	return content, nil
}

// Write replaces the file content with a string, creating the file and any
// missing parent directories.
func (f *File) Write(ctx context.Context, content string) error {
	return f.WriteBinary(ctx, []byte(content))
}

// WriteBinary replaces the file content with raw bytes.
func (f *File) WriteBinary(ctx context.Context, content []byte) error {
	if _, err := f.store.WriteObject(ctx, f.path, content); err != nil {
		return caperrors.IO(err, "write file", f.path)
	}

	return nil
}

// LoadData reads the file and decodes it according to format. FormatAny
// consults the file extension before falling back to trial decoding.
func (f *File) LoadData(ctx context.Context, format data.Format) (any, error) {
	content, err := f.ReadBinary(ctx)
	if err != nil {
		return nil, err
	}

	if format == data.FormatAny {
		if hint := data.ParseFormat(path.Ext(f.path)); hint != data.FormatAny {
			if value, err := Decode(content, hint); err == nil {
				return value, nil
			}
		}
	}

	value, err := Decode(content, format)
	if err != nil {
		return nil, caperrors.IO(err, "load data", f.path)
	}

	return value, nil
}

// Delete removes the file. The existence check runs first to give a clear
// message instead of a raw store error.
func (f *File) Delete(ctx context.Context) error {
	exists, err := f.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return caperrors.NotFound("delete file", f.path)
	}

	if err := f.store.DeleteObject(ctx, f.path, false); err != nil {
		return caperrors.IO(err, "delete file", f.path)
	}

	return nil
}

// CanRead reports whether the file exists and is readable.
func (f *File) CanRead(ctx context.Context) bool {
	exists, err := f.Exists(ctx)
	return err == nil && exists
}

// CanWrite reports whether the file could be written: either it already
// exists as a regular file, or its parent is a directory.
func (f *File) CanWrite(ctx context.Context) bool {
	stat, err := f.store.HeadObject(ctx, f.path)
	if err == nil {
		return !stat.IsDir()
	}
	if !errors.Is(err, data.ErrNotExist) {
		return false
	}

	parent, err := f.store.HeadObject(ctx, path.Dir(f.path))
	if err != nil {
		// Stores create missing parents on write
		return errors.Is(err, data.ErrNotExist)
	}

	return parent.IsDir()
}

// Size returns the file size in bytes.
func (f *File) Size(ctx context.Context) (int64, error) {
	stat, err := f.stat(ctx)
	if err != nil {
		return 0, err
	}

	return stat.Size, nil
}

// Modified returns the last modification time.
func (f *File) Modified(ctx context.Context) (time.Time, error) {
	stat, err := f.stat(ctx)
	if err != nil {
		return time.Time{}, err
	}

	return stat.ModifyTime, nil
}

func (f *File) stat(ctx context.Context) (*data.FileStat, error) {
	stat, err := f.store.HeadObject(ctx, f.path)
	if err != nil {
		if errors.Is(err, data.ErrNotExist) {
			return nil, caperrors.NotFound("stat file", f.path)
		}
		return nil, caperrors.IO(err, "stat file", f.path)
	}
	if stat.IsDir() {
		return nil, caperrors.IO(data.ErrIsDirectory, "stat file", f.path)
	}

	return stat, nil
}

func (f *File) String() string {
	return fmt.Sprintf("file '%s' (%s)", f.path, f.store.Name())
}
