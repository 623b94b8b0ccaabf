package ephemeral

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/store"
	"github.com/tidwall/btree"
)

type object struct {
	stat    *data.FileStat
	content []byte
}

// EphemeralStore keeps all objects in memory, ordered by key in a B-tree
// so directory listings reduce to a bounded ascend over a key prefix.
// Nothing survives Close.
type EphemeralStore struct {
	mu   sync.RWMutex
	keys *btree.Map[string, *object]
}

func NewEphemeralStore() *EphemeralStore {
	return &EphemeralStore{
		keys: btree.NewMap[string, *object](0),
	}
}

// Name returns the identifier name defined for this store
func (*EphemeralStore) Name() string {
	return "ephemeral"
}

// Open is part of the lifecycle behaviour and gets called before first use.
func (es *EphemeralStore) Open(ctx context.Context) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	// Root directory always exists
	es.setLocked("/", &object{stat: data.NewFileStat("/", 0, data.ModeDir|0o755)})
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this store.
func (es *EphemeralStore) Close(ctx context.Context) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.keys.Clear()
	return nil
}

// GetCapabilities returns a list of capabilities supported by this store.
func (es *EphemeralStore) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityObjectStorage,
		},
	}
}

func cleanKey(key string) string {
	return path.Clean("/" + key)
}

func (es *EphemeralStore) setLocked(key string, obj *object) {
	if _, exists := es.keys.Get(key); !exists {
		es.keys.Set(key, obj)
	}
}

// HeadObject returns the stat for key.
func (es *EphemeralStore) HeadObject(ctx context.Context, key string) (*data.FileStat, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	obj, exists := es.keys.Get(cleanKey(key))
	if !exists {
		return nil, data.ErrNotExist
	}

	return obj.stat, nil
}

// ListObjects returns the immediate children of the directory at key.
func (es *EphemeralStore) ListObjects(ctx context.Context, key string) ([]*data.FileStat, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	key = cleanKey(key)

	obj, exists := es.keys.Get(key)
	if !exists {
		return nil, data.ErrNotExist
	}
	if !obj.stat.IsDir() {
		return nil, data.ErrNotDirectory
	}

	prefix := key
	if prefix != "/" {
		prefix += "/"
	}

	var stats []*data.FileStat
	es.keys.Ascend(prefix, func(k string, o *object) bool {
		if !strings.HasPrefix(k, prefix) {
			return false
		}
		// Skip grandchildren; only one level deep
		if rest := k[len(prefix):]; rest != "" && !strings.Contains(rest, "/") {
			stats = append(stats, o.stat)
		}
		return true
	})

	return stats, nil
}

// ReadObject returns the full content of the file at key.
func (es *EphemeralStore) ReadObject(ctx context.Context, key string) ([]byte, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	obj, exists := es.keys.Get(cleanKey(key))
	if !exists {
		return nil, data.ErrNotExist
	}
	if obj.stat.IsDir() {
		return nil, data.ErrIsDirectory
	}

	content := make([]byte, len(obj.content))
	copy(content, obj.content)

	return content, nil
}

// WriteObject replaces the full content of the file at key.
// Missing parent directories are created on the way.
func (es *EphemeralStore) WriteObject(ctx context.Context, key string, content []byte) (*data.FileStat, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	key = cleanKey(key)

	if obj, exists := es.keys.Get(key); exists {
		if obj.stat.IsDir() {
			return nil, data.ErrIsDirectory
		}

		obj.content = make([]byte, len(content))
		copy(obj.content, content)
		obj.stat.Size = int64(len(content))
		obj.stat.ModifyTime = time.Now()

		return obj.stat, nil
	}

	es.createParentsLocked(key)

	obj := &object{
		stat:    data.NewFileStat(key, int64(len(content)), 0o644),
		content: append([]byte(nil), content...),
	}
	es.keys.Set(key, obj)

	return obj.stat, nil
}

// CreateDirectory creates the directory at key, including missing parents.
func (es *EphemeralStore) CreateDirectory(ctx context.Context, key string) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	key = cleanKey(key)

	if obj, exists := es.keys.Get(key); exists {
		if obj.stat.IsDir() {
			return nil
		}
		return data.ErrNotDirectory
	}

	es.createParentsLocked(key)
	es.keys.Set(key, &object{stat: data.NewFileStat(key, 0, data.ModeDir|0o755)})

	return nil
}

func (es *EphemeralStore) createParentsLocked(key string) {
	parent := path.Dir(key)
	for parent != "/" && parent != "." {
		es.setLocked(parent, &object{stat: data.NewFileStat(parent, 0, data.ModeDir|0o755)})
		parent = path.Dir(parent)
	}
	es.setLocked("/", &object{stat: data.NewFileStat("/", 0, data.ModeDir|0o755)})
}

// DeleteObject removes the object at key.
func (es *EphemeralStore) DeleteObject(ctx context.Context, key string, force bool) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	key = cleanKey(key)

	obj, exists := es.keys.Get(key)
	if !exists {
		return data.ErrNotExist
	}

	if obj.stat.IsDir() {
		prefix := key
		if prefix != "/" {
			prefix += "/"
		}

		var children []string
		es.keys.Ascend(prefix, func(k string, _ *object) bool {
			if !strings.HasPrefix(k, prefix) {
				return false
			}
			children = append(children, k)
			return true
		})

		if len(children) > 0 {
			if !force {
				return data.ErrNotEmpty
			}
			for _, child := range children {
				es.keys.Delete(child)
			}
		}
	}

	es.keys.Delete(key)
	return nil
}
