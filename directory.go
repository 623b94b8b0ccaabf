package capfs

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"

	"github.com/mwantia/capfs/data/errors"
	"github.com/mwantia/capfs/handle"
	"github.com/mwantia/capfs/log"
	"github.com/mwantia/capfs/store"
	"github.com/mwantia/capfs/store/direct"
)

// Directory is a sandboxed directory handle. It presents a virtual,
// cap-relative path to callers while mapping to a real location that can
// never leave the cap: every navigation step passes ValidateSegment, so no
// descendant path can contain traversal tokens or separators smuggled in
// through a single name.
type Directory struct {
	name        string
	virtualPath string

	// cap points at the topmost directory of the tree; for a root it is
	// the directory itself. Never mutated after construction.
	cap    *Directory
	parent *Directory

	real      *handle.Directory
	temporary bool
	logger    *log.Logger
}

// NewDirectory creates a new sandbox root at dirPath. The directory
// becomes its own cap; a relative dirPath is resolved against the current
// process location, merging any segments it shares with it.
func NewDirectory(dirPath string, opts ...Option) (*Directory, error) {
	options, err := buildOptions(opts...)
	if err != nil {
		return nil, err
	}

	realPath, err := rootRealPath(dirPath, options.Store)
	if err != nil {
		return nil, err
	}

	if err := options.Store.Open(context.Background()); err != nil {
		return nil, errors.IO(err, "open store", realPath)
	}

	d := &Directory{
		name:        path.Base(realPath),
		virtualPath: "/",
		real:        handle.NewDirectory(options.Store, realPath),
		logger:      options.Logger,
	}
	d.cap = d

	d.logger.Debug("new cap root at '%s' (%s)", realPath, options.Store.Name())
	return d, nil
}

// DirectoryFromCwd creates a new sandbox root at the current working
// directory.
func DirectoryFromCwd(opts ...Option) (*Directory, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.IO(err, "from cwd", "")
	}

	return NewDirectory(filepath.ToSlash(cwd), opts...)
}

// NewSubdirectory creates a capped child directory below parent. The
// parent must be a capped directory; name must be a single legal segment.
func NewSubdirectory(parent *Directory, name string) (*Directory, error) {
	if parent == nil {
		return nil, errors.InvalidParent("new subdirectory", "parent must be a capped directory")
	}

	return parent.GetDirectory(name)
}

// rootRealPath resolves the real location of a new cap root. Only the
// direct store anchors against the OS working directory; other stores
// interpret the path within their own namespace.
func rootRealPath(dirPath string, st store.ObjectStore) (string, error) {
	if _, ok := st.(*direct.DirectStore); ok {
		native := filepath.FromSlash(dirPath)
		if filepath.IsAbs(native) {
			return filepath.ToSlash(filepath.Clean(native)), nil
		}

		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.IO(err, "resolve root", dirPath)
		}

		return MergePaths(filepath.ToSlash(cwd), dirPath), nil
	}

	return ToAbsolutePath(dirPath)
}

// child derives a capped child directory from a validated segment.
func (d *Directory) child(name string) *Directory {
	return &Directory{
		name:        name,
		virtualPath: Resolve(d.virtualPath, name),
		cap:         d.cap,
		parent:      d,
		real:        d.real.GetDirectory(name),
		temporary:   d.temporary,
		logger:      d.logger,
	}
}

// GetDirectory navigates one hop down and returns the capped child
// directory. Multi-segment or traversing names are rejected with a bounds
// error; nested placement requires chained calls.
func (d *Directory) GetDirectory(name string) (*Directory, error) {
	segment, err := ValidateSegment("get directory", name)
	if err != nil {
		d.logger.Warn("rejected directory segment '%s' below '%s'", name, d.virtualPath)
		return nil, err
	}

	child := d.child(segment)
	d.logger.Debug("navigate '%s' -> '%s'", d.virtualPath, child.virtualPath)

	return child, nil
}

// GetFile navigates one hop down and returns the capped child file.
func (d *Directory) GetFile(name string) (*File, error) {
	return NewFile(d, name)
}

// Read lists the real directory's immediate children, optionally filtered
// by a glob-style name pattern matched only at this level. Each entry is
// re-wrapped as a capped node with this directory as parent.
func (d *Directory) Read(ctx context.Context, pattern string) (*Listing, error) {
	entries, err := d.real.Read(ctx, pattern)
	if err != nil {
		return nil, err
	}

	return &Listing{parent: d, entries: entries}, nil
}

// HasDirectory probes whether name exists below this directory as a
// directory. A missing entry reports false, never an error.
func (d *Directory) HasDirectory(ctx context.Context, name string) (bool, error) {
	segment, err := ValidateSegment("has directory", name)
	if err != nil {
		return false, err
	}

	return d.real.HasDirectory(ctx, segment)
}

// HasFile probes whether name exists below this directory as a file.
func (d *Directory) HasFile(ctx context.Context, name string) (bool, error) {
	segment, err := ValidateSegment("has file", name)
	if err != nil {
		return false, err
	}

	return d.real.HasFile(ctx, segment)
}

// Exists reports whether the real directory is present.
func (d *Directory) Exists(ctx context.Context) (bool, error) {
	return d.real.Exists(ctx)
}

// AssureExists idempotently ensures the real directory exists.
func (d *Directory) AssureExists(ctx context.Context) error {
	return d.real.AssureExists(ctx)
}

// Delete removes the real directory. It fails when the directory is
// missing or not empty; there is no implicit recursion.
func (d *Directory) Delete(ctx context.Context) error {
	return d.real.Delete(ctx)
}

// Name returns the last segment of the virtual path.
func (d *Directory) Name() string {
	return d.name
}

// VirtualPath returns the cap-relative path; "/" for the cap itself.
func (d *Directory) VirtualPath() string {
	return d.virtualPath
}

// RealPath returns the absolute path of the real delegate.
func (d *Directory) RealPath() string {
	return d.real.Path()
}

// Real returns the plain directory handle this node delegates I/O to.
func (d *Directory) Real() *handle.Directory {
	return d.real
}

// Cap returns the topmost directory of the sandbox tree.
func (d *Directory) Cap() *Directory {
	return d.cap
}

// Parent returns the owning directory, or nil exactly when this directory
// is its own cap.
func (d *Directory) Parent() *Directory {
	return d.parent
}

// IsCapped is always true for sandboxed handles.
func (d *Directory) IsCapped() bool {
	return true
}

// IsDir is always true for directories.
func (d *Directory) IsDir() bool {
	return true
}

// IsTemporary reports whether this directory belongs to a temp tree.
func (d *Directory) IsTemporary() bool {
	return d.temporary
}

// WalkUp yields this directory, then each ancestor, stopping at and
// including the cap.
func (d *Directory) WalkUp() iter.Seq[Node] {
	return walkUp(d)
}

func (d *Directory) String() string {
	real := d.RealPath()
	if cwd, err := os.Getwd(); err == nil {
		real = RelativeOrAbsolute(filepath.ToSlash(cwd), real)
	}

	return fmt.Sprintf("capped directory '%s' => '%s'", d.virtualPath, real)
}

func (d *Directory) MarshalJSON() ([]byte, error) {
	return marshalNode(d)
}
