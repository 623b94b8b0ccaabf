package data

import (
	"encoding/json"
	"path"
	"time"
)

// FileStat is the low-level representation of an object inside a store.
// Stores return it from HeadObject and ListObjects; handles re-expose it.
type FileStat struct {
	// Absolute key within the store
	Key string `json:"key"`

	// Unix-style mode and permissions
	Mode FileMode `json:"mode"`

	// Size in bytes (0 for directories)
	Size int64 `json:"size"`

	ModifyTime time.Time `json:"modify_time"`
	CreateTime time.Time `json:"create_time"`

	// Content MIME type, if the store tracks one
	ContentType string `json:"content_type,omitempty"`
}

// Name returns the base name of the object's key.
func (fs *FileStat) Name() string {
	return path.Base(fs.Key)
}

// IsDir reports whether the stat describes a directory.
func (fs *FileStat) IsDir() bool {
	return fs.Mode.IsDir()
}

// Marshal provides JSON serialization for FileStat.
func (fs *FileStat) Marshal() ([]byte, error) {
	return json.Marshal(fs)
}

// NewFileStat creates a FileStat for a freshly created object.
func NewFileStat(key string, size int64, mode FileMode) *FileStat {
	now := time.Now()
	return &FileStat{
		Key:        key,
		Mode:       mode,
		Size:       size,
		ModifyTime: now,
		CreateTime: now,
	}
}
