package capfs

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/data/errors"
	"github.com/mwantia/capfs/handle"
)

// File is a sandboxed file handle. Content I/O is delegated verbatim to
// the plain real delegate; the only difference to an uncapped file is path
// presentation and sandbox membership.
type File struct {
	name        string
	virtualPath string

	cap    *Directory
	parent *Directory

	real *handle.File
}

// NewFile creates a capped file below parent. Files cannot be cap roots,
// so a parent is mandatory and must be a capped directory.
func NewFile(parent *Directory, name string) (*File, error) {
	if parent == nil {
		return nil, errors.InvalidParent("new file", "parent must be a capped directory")
	}

	segment, err := ValidateSegment("get file", name)
	if err != nil {
		parent.logger.Warn("rejected file segment '%s' below '%s'", name, parent.virtualPath)
		return nil, err
	}

	return &File{
		name:        segment,
		virtualPath: Resolve(parent.virtualPath, segment),
		cap:         parent.cap,
		parent:      parent,
		real:        parent.real.GetFile(segment),
	}, nil
}

// Exists reports whether the real file is present.
func (f *File) Exists(ctx context.Context) (bool, error) {
	return f.real.Exists(ctx)
}

// Read returns the file content as a string.
func (f *File) Read(ctx context.Context) (string, error) {
	return f.real.Read(ctx)
}

// ReadBinary returns the raw file content.
func (f *File) ReadBinary(ctx context.Context) ([]byte, error) {
	return f.real.ReadBinary(ctx)
}

// Write replaces the file content, creating the file if needed.
func (f *File) Write(ctx context.Context, content string) error {
	return f.real.Write(ctx, content)
}

// WriteBinary replaces the file content with raw bytes.
func (f *File) WriteBinary(ctx context.Context, content []byte) error {
	return f.real.WriteBinary(ctx, content)
}

// LoadData reads and decodes the file content according to format.
func (f *File) LoadData(ctx context.Context, format data.Format) (any, error) {
	return f.real.LoadData(ctx, format)
}

// Delete removes the real file.
func (f *File) Delete(ctx context.Context) error {
	return f.real.Delete(ctx)
}

// CanRead reports whether the file exists and is readable.
func (f *File) CanRead(ctx context.Context) bool {
	return f.real.CanRead(ctx)
}

// CanWrite reports whether the file could be written.
func (f *File) CanWrite(ctx context.Context) bool {
	return f.real.CanWrite(ctx)
}

// Size returns the file size in bytes.
func (f *File) Size(ctx context.Context) (int64, error) {
	return f.real.Size(ctx)
}

// Modified returns the last modification time.
func (f *File) Modified(ctx context.Context) (time.Time, error) {
	return f.real.Modified(ctx)
}

// Name returns the file name.
func (f *File) Name() string {
	return f.name
}

// VirtualPath returns the cap-relative path.
func (f *File) VirtualPath() string {
	return f.virtualPath
}

// RealPath returns the absolute path of the real delegate.
func (f *File) RealPath() string {
	return f.real.Path()
}

// Real returns the plain file handle this node delegates I/O to.
func (f *File) Real() *handle.File {
	return f.real
}

// Cap returns the topmost directory of the sandbox tree.
func (f *File) Cap() *Directory {
	return f.cap
}

// Parent returns the owning capped directory, never nil.
func (f *File) Parent() *Directory {
	return f.parent
}

// IsCapped is always true for sandboxed handles.
func (f *File) IsCapped() bool {
	return true
}

// IsVirtual distinguishes this handle from an uncapped file with the same
// shape. Always true.
func (f *File) IsVirtual() bool {
	return true
}

// IsDir is always false for files.
func (f *File) IsDir() bool {
	return false
}

// WalkUp yields this file, then each ancestor directory, stopping at and
// including the cap.
func (f *File) WalkUp() iter.Seq[Node] {
	return walkUp(f)
}

func (f *File) String() string {
	real := f.RealPath()
	if cwd, err := os.Getwd(); err == nil {
		real = RelativeOrAbsolute(filepath.ToSlash(cwd), real)
	}

	return fmt.Sprintf("capped file '%s' => '%s'", f.virtualPath, real)
}

func (f *File) MarshalJSON() ([]byte, error) {
	return marshalNode(f)
}
