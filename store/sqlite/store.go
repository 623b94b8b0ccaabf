package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/store"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists objects in a single SQLite table.
// The dbPath can be ":memory:" for an in-memory database or a file path.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := st.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return st, nil
}

func (st *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS capfs_objects (
		key TEXT PRIMARY KEY,
		is_dir INTEGER NOT NULL DEFAULT 0,
		content BLOB,
		size INTEGER NOT NULL DEFAULT 0,
		mode INTEGER NOT NULL,
		modify_time INTEGER NOT NULL,
		create_time INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_capfs_objects_key ON capfs_objects(key);
	`

	_, err := st.db.Exec(schema)
	return err
}

// Name returns the identifier name defined for this store
func (*SQLiteStore) Name() string {
	return "sqlite"
}

// Open is part of the lifecycle behaviour and gets called before first use.
func (st *SQLiteStore) Open(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	// Root directory always exists
	return st.insertDirLocked(ctx, "/")
}

// Close is part of the lifecycle behaviour and gets called when closing this store.
func (st *SQLiteStore) Close(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.db == nil {
		return data.ErrStoreClosed
	}

	err := st.db.Close()
	st.db = nil
	return err
}

// GetCapabilities returns a list of capabilities supported by this store.
func (st *SQLiteStore) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityObjectStorage,
			store.CapabilityPersistent,
		},
	}
}

func cleanKey(key string) string {
	return path.Clean("/" + key)
}

func (st *SQLiteStore) insertDirLocked(ctx context.Context, key string) error {
	now := time.Now().Unix()
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO capfs_objects (key, is_dir, size, mode, modify_time, create_time)
		 VALUES (?, 1, 0, ?, ?, ?) ON CONFLICT(key) DO NOTHING`,
		key, uint32(data.ModeDir|0o755), now, now)
	return err
}

func (st *SQLiteStore) headLocked(ctx context.Context, key string) (*data.FileStat, error) {
	var (
		isDir              int
		size               int64
		mode               uint32
		modifyTime, create int64
	)

	err := st.db.QueryRowContext(ctx,
		"SELECT is_dir, size, mode, modify_time, create_time FROM capfs_objects WHERE key = ?",
		key).Scan(&isDir, &size, &mode, &modifyTime, &create)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	if err != nil {
		return nil, err
	}

	return &data.FileStat{
		Key:        key,
		Mode:       data.FileMode(mode),
		Size:       size,
		ModifyTime: time.Unix(modifyTime, 0),
		CreateTime: time.Unix(create, 0),
	}, nil
}

// HeadObject returns the stat for key.
func (st *SQLiteStore) HeadObject(ctx context.Context, key string) (*data.FileStat, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.headLocked(ctx, cleanKey(key))
}

// ListObjects returns the immediate children of the directory at key.
func (st *SQLiteStore) ListObjects(ctx context.Context, key string) ([]*data.FileStat, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	key = cleanKey(key)

	stat, err := st.headLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, data.ErrNotDirectory
	}

	prefix := key
	if prefix != "/" {
		prefix += "/"
	}

	rows, err := st.db.QueryContext(ctx,
		`SELECT key, is_dir, size, mode, modify_time, create_time FROM capfs_objects
		 WHERE key LIKE ? ESCAPE '\' AND key != ? ORDER BY key`,
		likePattern(prefix)+"%", key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*data.FileStat
	for rows.Next() {
		var (
			childKey           string
			isDir              int
			size               int64
			mode               uint32
			modifyTime, create int64
		)
		if err := rows.Scan(&childKey, &isDir, &size, &mode, &modifyTime, &create); err != nil {
			return nil, err
		}

		// Skip grandchildren; only one level deep
		if rest := childKey[len(prefix):]; rest == "" || strings.Contains(rest, "/") {
			continue
		}

		stats = append(stats, &data.FileStat{
			Key:        childKey,
			Mode:       data.FileMode(mode),
			Size:       size,
			ModifyTime: time.Unix(modifyTime, 0),
			CreateTime: time.Unix(create, 0),
		})
	}

	return stats, rows.Err()
}

// likePattern escapes LIKE metacharacters in a key prefix.
func likePattern(prefix string) string {
	prefix = strings.ReplaceAll(prefix, `\`, `\\`)
	prefix = strings.ReplaceAll(prefix, `%`, `\%`)
	return strings.ReplaceAll(prefix, `_`, `\_`)
}

// ReadObject returns the full content of the file at key.
func (st *SQLiteStore) ReadObject(ctx context.Context, key string) ([]byte, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	key = cleanKey(key)

	var (
		isDir   int
		content []byte
	)
	err := st.db.QueryRowContext(ctx,
		"SELECT is_dir, content FROM capfs_objects WHERE key = ?",
		key).Scan(&isDir, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	if isDir != 0 {
		return nil, data.ErrIsDirectory
	}

	return content, nil
}

// WriteObject replaces the full content of the file at key.
// Missing parent directories are created on the way.
func (st *SQLiteStore) WriteObject(ctx context.Context, key string, content []byte) (*data.FileStat, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	key = cleanKey(key)

	if stat, err := st.headLocked(ctx, key); err == nil && stat.IsDir() {
		return nil, data.ErrIsDirectory
	}

	parent := path.Dir(key)
	for parent != "/" && parent != "." {
		if err := st.insertDirLocked(ctx, parent); err != nil {
			return nil, err
		}
		parent = path.Dir(parent)
	}

	now := time.Now().Unix()
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO capfs_objects (key, is_dir, content, size, mode, modify_time, create_time)
		 VALUES (?, 0, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET content = excluded.content,
		 size = excluded.size, modify_time = excluded.modify_time`,
		key, content, len(content), uint32(0o644), now, now)
	if err != nil {
		return nil, err
	}

	return st.headLocked(ctx, key)
}

// CreateDirectory creates the directory at key, including missing parents.
func (st *SQLiteStore) CreateDirectory(ctx context.Context, key string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	key = cleanKey(key)

	if stat, err := st.headLocked(ctx, key); err == nil {
		if stat.IsDir() {
			return nil
		}
		return data.ErrNotDirectory
	}

	parent := path.Dir(key)
	for parent != "/" && parent != "." {
		if err := st.insertDirLocked(ctx, parent); err != nil {
			return err
		}
		parent = path.Dir(parent)
	}

	return st.insertDirLocked(ctx, key)
}

// DeleteObject removes the object at key.
func (st *SQLiteStore) DeleteObject(ctx context.Context, key string, force bool) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	key = cleanKey(key)

	stat, err := st.headLocked(ctx, key)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		prefix := key
		if prefix != "/" {
			prefix += "/"
		}

		var children int
		err := st.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM capfs_objects WHERE key LIKE ? ESCAPE '\'`,
			likePattern(prefix)+"%").Scan(&children)
		if err != nil {
			return err
		}

		if children > 0 {
			if !force {
				return data.ErrNotEmpty
			}
			if _, err := st.db.ExecContext(ctx,
				`DELETE FROM capfs_objects WHERE key LIKE ? ESCAPE '\'`,
				likePattern(prefix)+"%"); err != nil {
				return err
			}
		}
	}

	_, err = st.db.ExecContext(ctx, "DELETE FROM capfs_objects WHERE key = ?", key)
	return err
}
