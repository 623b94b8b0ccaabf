package consul

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/store"
)

// Consul KV caps a single value at 512KB.
const maxValueSize = 512 * 1024

// ConsulStore keeps objects in the Consul KV store under a configurable
// prefix. Directories are virtual; they exist exactly when keys live
// beneath them. Best suited for configuration files and small assets.
type ConsulStore struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config *ConsulStoreConfig
}

// ConsulStoreConfig contains configuration options for the Consul store.
type ConsulStoreConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys in Consul KV (default: "capfs")
	Prefix string
}

func NewConsulStore(config *ConsulStoreConfig) (*ConsulStore, error) {
	if config == nil {
		config = &ConsulStoreConfig{}
	}
	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "capfs"
	}

	apiConfig := api.DefaultConfig()
	apiConfig.Address = config.Address
	apiConfig.Token = config.Token
	apiConfig.Datacenter = config.Datacenter

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulStore{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Name returns the identifier name defined for this store
func (*ConsulStore) Name() string {
	return "consul"
}

// Open is part of the lifecycle behaviour and gets called before first use.
func (cb *ConsulStore) Open(ctx context.Context) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	// Verify the agent is reachable
	_, err := cb.client.Agent().Self()
	return err
}

// Close is part of the lifecycle behaviour and gets called when closing this store.
func (cb *ConsulStore) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this store.
func (cb *ConsulStore) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityObjectStorage,
			store.CapabilityPersistent,
		},
		MaxObjectSize: maxValueSize,
	}
}

// buildKey converts an absolute slash key into a prefixed Consul KV key.
func (cb *ConsulStore) buildKey(key string) string {
	rel := strings.TrimPrefix(path.Clean("/"+key), "/")
	if rel == "" {
		return cb.config.Prefix
	}

	return cb.config.Prefix + "/" + rel
}

func (cb *ConsulStore) queryOptions(ctx context.Context) *api.QueryOptions {
	return (&api.QueryOptions{}).WithContext(ctx)
}

func (cb *ConsulStore) writeOptions(ctx context.Context) *api.WriteOptions {
	return (&api.WriteOptions{}).WithContext(ctx)
}

// statLocked resolves a key as either a file (a KV pair) or a virtual
// directory (a prefix with at least one key below it).
func (cb *ConsulStore) statLocked(ctx context.Context, key string) (*data.FileStat, error) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" {
		return data.NewFileStat("/", 0, data.ModeDir|0o755), nil
	}

	consulKey := cb.buildKey(cleaned)

	pair, _, err := cb.kv.Get(consulKey, cb.queryOptions(ctx))
	if err != nil {
		return nil, err
	}
	if pair != nil {
		return &data.FileStat{
			Key:        cleaned,
			Mode:       0o644,
			Size:       int64(len(pair.Value)),
			ModifyTime: time.Now(),
			CreateTime: time.Now(),
		}, nil
	}

	keys, _, err := cb.kv.Keys(consulKey+"/", "", cb.queryOptions(ctx))
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, data.ErrNotExist
	}

	return data.NewFileStat(cleaned, 0, data.ModeDir|0o755), nil
}

// HeadObject returns the stat for key.
func (cb *ConsulStore) HeadObject(ctx context.Context, key string) (*data.FileStat, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.statLocked(ctx, key)
}

// ListObjects returns the immediate children of the directory at key.
func (cb *ConsulStore) ListObjects(ctx context.Context, key string) ([]*data.FileStat, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	stat, err := cb.statLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, data.ErrNotDirectory
	}

	prefix := cb.buildKey(stat.Key) + "/"
	if stat.Key == "/" {
		prefix = cb.config.Prefix + "/"
	}

	// Keys with the separator as delimiter yields one level only;
	// virtual directories come back with a trailing slash.
	keys, _, err := cb.kv.Keys(prefix, "/", cb.queryOptions(ctx))
	if err != nil {
		return nil, err
	}

	stats := make([]*data.FileStat, 0, len(keys))
	for _, consulKey := range keys {
		if consulKey == prefix {
			continue
		}

		name := strings.TrimPrefix(consulKey, prefix)
		childKey := path.Join(stat.Key, strings.TrimSuffix(name, "/"))

		if strings.HasSuffix(name, "/") {
			stats = append(stats, data.NewFileStat(childKey, 0, data.ModeDir|0o755))
			continue
		}

		pair, _, err := cb.kv.Get(consulKey, cb.queryOptions(ctx))
		if err != nil {
			return nil, err
		}
		size := int64(0)
		if pair != nil {
			size = int64(len(pair.Value))
		}

		stats = append(stats, data.NewFileStat(childKey, size, 0o644))
	}

	return stats, nil
}

// ReadObject returns the full content of the file at key.
func (cb *ConsulStore) ReadObject(ctx context.Context, key string) ([]byte, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	stat, err := cb.statLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, data.ErrIsDirectory
	}

	pair, _, err := cb.kv.Get(cb.buildKey(key), cb.queryOptions(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, data.ErrNotExist
	}

	return pair.Value, nil
}

// WriteObject replaces the full content of the file at key.
// Directories are virtual, so no parents need creating.
func (cb *ConsulStore) WriteObject(ctx context.Context, key string, content []byte) (*data.FileStat, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if len(content) > maxValueSize {
		return nil, data.ErrValueTooLarge
	}

	if stat, err := cb.statLocked(ctx, key); err == nil && stat.IsDir() {
		return nil, data.ErrIsDirectory
	}

	pair := &api.KVPair{
		Key:   cb.buildKey(key),
		Value: content,
	}
	if _, err := cb.kv.Put(pair, cb.writeOptions(ctx)); err != nil {
		return nil, err
	}

	return data.NewFileStat(path.Clean("/"+key), int64(len(content)), 0o644), nil
}

// CreateDirectory is a no-op beyond conflict checking; directories in
// Consul exist as prefixes only.
func (cb *ConsulStore) CreateDirectory(ctx context.Context, key string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if stat, err := cb.statLocked(ctx, key); err == nil && !stat.IsDir() {
		return data.ErrNotDirectory
	}

	return nil
}

// DeleteObject removes the object at key.
func (cb *ConsulStore) DeleteObject(ctx context.Context, key string, force bool) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	stat, err := cb.statLocked(ctx, key)
	if err != nil {
		return err
	}

	consulKey := cb.buildKey(stat.Key)

	if !stat.IsDir() {
		_, err := cb.kv.Delete(consulKey, cb.writeOptions(ctx))
		return err
	}

	keys, _, err := cb.kv.Keys(consulKey+"/", "", cb.queryOptions(ctx))
	if err != nil {
		return err
	}

	if len(keys) > 0 && !force {
		return data.ErrNotEmpty
	}

	_, err = cb.kv.DeleteTree(consulKey+"/", cb.writeOptions(ctx))
	return err
}
