package capfs

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mwantia/capfs/data/errors"
	"github.com/mwantia/capfs/handle"
	"github.com/mwantia/capfs/store"
	"github.com/mwantia/capfs/store/direct"
)

// TempDirectory is a capped directory that is its own cap, backed by an
// ephemeral, uniquely named real directory under the OS temporary-files
// area. The real directory is created inside the factory, before the
// handle is returned, so an existence check immediately after construction
// always observes true.
//
// Cleanup is explicit: Remove destroys the whole real subtree. Delete only
// removes the directory when it is already empty.
type TempDirectory struct {
	Directory
}

// NewTempDirectory creates a fresh temp sandbox root. The real directory
// name combines the given name with a unique suffix so two roots never
// collide.
func NewTempDirectory(name string, opts ...Option) (*TempDirectory, error) {
	options, err := buildOptions(opts...)
	if err != nil {
		return nil, err
	}

	segment, err := ValidateSegment("new temp directory", name)
	if err != nil {
		return nil, err
	}

	realPath := path.Join(tempBase(options.Store),
		fmt.Sprintf("%s-%s", segment, uuid.Must(uuid.NewV7()).String()))

	ctx := context.Background()
	if err := options.Store.Open(ctx); err != nil {
		return nil, errors.IO(err, "open store", realPath)
	}

	t := &TempDirectory{
		Directory: Directory{
			name:        segment,
			virtualPath: "/",
			real:        handle.NewDirectory(options.Store, realPath),
			temporary:   true,
			logger:      options.Logger,
		},
	}
	t.cap = &t.Directory

	// Construction-time side effect: the real directory exists before the
	// factory returns
	if err := t.real.AssureExists(ctx); err != nil {
		return nil, err
	}

	t.logger.Debug("new temp root at '%s' (%s)", realPath, options.Store.Name())
	return t, nil
}

// NewTempDirectoryFromCwd always fails: a temp root's identity is defined
// by its eager creation under the temp area, not by adoption of the
// current working directory.
func NewTempDirectoryFromCwd(opts ...Option) (*TempDirectory, error) {
	return nil, errors.Unsupported("from cwd",
		"temp directories are created under the OS temp area")
}

// NewTempSubdirectory creates a temp child below parent. The parent must
// itself belong to a temp tree; attaching an ephemeral subtree to a
// non-ephemeral cap is rejected.
func NewTempSubdirectory(parent *Directory, name string) (*TempDirectory, error) {
	if parent == nil {
		return nil, errors.InvalidParent("new temp subdirectory", "parent must be a temp directory")
	}
	if !parent.temporary {
		return nil, errors.InvalidParent("new temp subdirectory",
			fmt.Sprintf("'%s' is not part of a temp tree", parent.VirtualPath()))
	}

	base, err := parent.GetDirectory(name)
	if err != nil {
		return nil, err
	}

	return &TempDirectory{Directory: *base}, nil
}

// tempBase locates the temp area: the OS temp directory for the direct
// store, a conventional /tmp namespace for everything else.
func tempBase(st store.ObjectStore) string {
	if _, ok := st.(*direct.DirectStore); ok {
		return filepath.ToSlash(os.TempDir())
	}

	return "/tmp"
}

// GetDirectory navigates one hop down, keeping the temp type for the
// child so further descendants stay inside the ephemeral tree.
func (t *TempDirectory) GetDirectory(name string) (*TempDirectory, error) {
	return NewTempSubdirectory(&t.Directory, name)
}

// Read lists the immediate children, re-wrapping directories as temp
// directories of this tree.
func (t *TempDirectory) Read(ctx context.Context, pattern string) (*TempListing, error) {
	listing, err := t.Directory.Read(ctx, pattern)
	if err != nil {
		return nil, err
	}

	return &TempListing{parent: t, listing: listing}, nil
}

// Remove recursively destroys the entire real subtree rooted at this
// directory. This is the only sanctioned way to reclaim a temp tree.
func (t *TempDirectory) Remove(ctx context.Context) error {
	t.logger.Debug("remove temp tree at '%s'", t.RealPath())
	return t.real.Remove(ctx)
}

// TempListing mirrors Listing with directories of the temp type.
type TempListing struct {
	parent  *TempDirectory
	listing *Listing
}

// Directories yields each child directory as a TempDirectory.
func (l *TempListing) Directories() iter.Seq[*TempDirectory] {
	return func(yield func(*TempDirectory) bool) {
		for _, stat := range l.listing.entries.Directories {
			child, err := l.parent.GetDirectory(stat.Name())
			if err != nil {
				continue
			}
			if !yield(child) {
				return
			}
		}
	}
}

// Files yields each child file as a capped File.
func (l *TempListing) Files() iter.Seq[*File] {
	return l.listing.Files()
}

// IsEmpty reports whether the listing holds no entries at all.
func (l *TempListing) IsEmpty() bool {
	return l.listing.IsEmpty()
}
