package capfs

import (
	"iter"

	"github.com/mwantia/capfs/handle"
)

// Listing is the lazy result of Directory.Read. Entries are wrapped into
// capped nodes on demand, each with the read directory as parent and the
// shared cap inherited.
type Listing struct {
	parent  *Directory
	entries *handle.Entries
}

// Directories yields each child directory as a capped Directory.
func (l *Listing) Directories() iter.Seq[*Directory] {
	return func(yield func(*Directory) bool) {
		for _, stat := range l.entries.Directories {
			child, err := l.parent.GetDirectory(stat.Name())
			if err != nil {
				// Store-provided names are single segments; anything
				// else is not representable inside the cap
				continue
			}
			if !yield(child) {
				return
			}
		}
	}
}

// Files yields each child file as a capped File.
func (l *Listing) Files() iter.Seq[*File] {
	return func(yield func(*File) bool) {
		for _, stat := range l.entries.Files {
			child, err := l.parent.GetFile(stat.Name())
			if err != nil {
				continue
			}
			if !yield(child) {
				return
			}
		}
	}
}

// IsEmpty reports whether the listing holds no entries at all.
func (l *Listing) IsEmpty() bool {
	return len(l.entries.Directories) == 0 && len(l.entries.Files) == 0
}
