package capfs

import (
	"encoding/json"
	"iter"
)

// Node is the behaviour shared by every sandboxed handle, directory or
// file. A node presents a virtual, cap-relative path to callers while
// transparently mapping to a real location inside its cap.
type Node interface {
	// Name returns the last segment of the node's virtual path.
	Name() string

	// VirtualPath returns the cap-relative path. The cap itself reports
	// the root token "/", never an empty string.
	VirtualPath() string

	// RealPath returns the absolute path of the real delegate.
	RealPath() string

	// Cap returns the topmost directory of the sandbox tree. Every node
	// in a tree shares the exact same cap instance.
	Cap() *Directory

	// Parent returns the owning directory, or nil exactly when the node
	// is its own cap.
	Parent() *Directory

	// IsCapped reports whether the node is sandboxed. Always true for
	// capped nodes; the method exists to tell them apart from plain
	// handles with the same shape.
	IsCapped() bool

	// IsDir reports whether the node is a directory.
	IsDir() bool

	// WalkUp yields the node, then each ancestor, stopping at and
	// including the cap. The sequence is restartable.
	WalkUp() iter.Seq[Node]

	String() string
	json.Marshaler
}

// nodeJSON is the structured dump shared by String/MarshalJSON on all
// capped nodes.
type nodeJSON struct {
	Capped      bool   `json:"capped"`
	Cap         string `json:"cap"`
	Real        string `json:"real"`
	IsDirectory bool   `json:"is_directory"`
	IsFile      bool   `json:"is_file"`
	Path        string `json:"path"`
	Name        string `json:"name"`
}

func marshalNode(n Node) ([]byte, error) {
	return json.Marshal(nodeJSON{
		Capped:      n.IsCapped(),
		Cap:         n.Cap().RealPath(),
		Real:        n.RealPath(),
		IsDirectory: n.IsDir(),
		IsFile:      !n.IsDir(),
		Path:        n.VirtualPath(),
		Name:        n.Name(),
	})
}

// walkUp yields start, then each ancestor directory, stopping at and
// including the cap. The cap has a nil parent, so the loop terminates
// there and never leaves the sandbox.
func walkUp(start Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if !yield(start) {
			return
		}

		for current := start.Parent(); current != nil; current = current.Parent() {
			if !yield(current) {
				return
			}
		}
	}
}
