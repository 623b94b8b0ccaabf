package s3

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/capfs/data"
	"github.com/mwantia/capfs/data/errors"
	"github.com/mwantia/capfs/store"
)

const directoryContentType = "application/x-directory"

// S3Store keeps objects in a single bucket. Directories are zero-byte
// marker objects whose key carries a trailing slash.
type S3Store struct {
	mu sync.RWMutex

	client     *minio.Client
	bucketName string
}

func NewS3Store(endpoint, bucketName, accessKey, secretKey string, useSsl bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	return &S3Store{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Name returns the identifier name defined for this store
func (*S3Store) Name() string {
	return "s3"
}

// Open is part of the lifecycle behaviour and gets called before first use.
func (sb *S3Store) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	exists, err := sb.client.BucketExists(ctx, sb.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return data.ErrNotExist
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this store.
func (sb *S3Store) Close(ctx context.Context) error {
	return nil
}

// GetCapabilities returns a list of capabilities supported by this store.
func (sb *S3Store) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityObjectStorage,
			store.CapabilityPersistent,
			store.CapabilityContentType,
		},
	}
}

// objectKey strips the leading slash; S3 keys are rootless.
func objectKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

func toFileStat(info minio.ObjectInfo, key string) *data.FileStat {
	mode := data.FileMode(0o644)
	if strings.HasSuffix(info.Key, "/") || info.ContentType == directoryContentType {
		mode = data.ModeDir | 0o755
	}

	return &data.FileStat{
		Key:         "/" + strings.TrimSuffix(key, "/"),
		Mode:        mode,
		Size:        info.Size,
		ModifyTime:  info.LastModified,
		CreateTime:  info.LastModified,
		ContentType: info.ContentType,
	}
}

func (sb *S3Store) statLocked(ctx context.Context, key string) (*data.FileStat, error) {
	if key == "" {
		// Bucket root is always a directory
		return data.NewFileStat("/", 0, data.ModeDir|0o755), nil
	}

	// Try as a file first
	info, err := sb.client.StatObject(ctx, sb.bucketName, key, minio.StatObjectOptions{})
	if err == nil {
		return toFileStat(info, key), nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return nil, err
	}

	// Then as a directory marker
	info, err = sb.client.StatObject(ctx, sb.bucketName, key+"/", minio.StatObjectOptions{})
	if err == nil {
		return toFileStat(info, key), nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil, data.ErrNotExist
	}

	return nil, err
}

// HeadObject returns the stat for key.
func (sb *S3Store) HeadObject(ctx context.Context, key string) (*data.FileStat, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	return sb.statLocked(ctx, objectKey(key))
}

// ListObjects returns the immediate children of the directory at key.
func (sb *S3Store) ListObjects(ctx context.Context, key string) ([]*data.FileStat, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	objKey := objectKey(key)

	stat, err := sb.statLocked(ctx, objKey)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, data.ErrNotDirectory
	}

	prefix := ""
	if objKey != "" {
		prefix = objKey + "/"
	}

	var stats []*data.FileStat
	for info := range sb.client.ListObjects(ctx, sb.bucketName, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if info.Err != nil {
			return nil, info.Err
		}
		// Skip the directory marker itself
		if info.Key == prefix {
			continue
		}

		childKey := strings.TrimSuffix(info.Key, "/")
		stats = append(stats, toFileStat(info, childKey))
	}

	return stats, nil
}

// ReadObject returns the full content of the file at key.
func (sb *S3Store) ReadObject(ctx context.Context, key string) ([]byte, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	objKey := objectKey(key)

	stat, err := sb.statLocked(ctx, objKey)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, data.ErrIsDirectory
	}

	obj, err := sb.client.GetObject(ctx, sb.bucketName, objKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(obj)
}

// WriteObject replaces the full content of the file at key.
// S3 has no real directories, so no parents need creating.
func (sb *S3Store) WriteObject(ctx context.Context, key string, content []byte) (*data.FileStat, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	objKey := objectKey(key)

	if stat, err := sb.statLocked(ctx, objKey); err == nil && stat.IsDir() {
		return nil, data.ErrIsDirectory
	}

	_, err := sb.client.PutObject(ctx, sb.bucketName, objKey,
		bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{})
	if err != nil {
		return nil, err
	}

	return &data.FileStat{
		Key:        "/" + objKey,
		Mode:       0o644,
		Size:       int64(len(content)),
		ModifyTime: time.Now(),
		CreateTime: time.Now(),
	}, nil
}

// CreateDirectory creates the directory marker at key.
func (sb *S3Store) CreateDirectory(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	objKey := objectKey(key)
	if objKey == "" {
		return nil
	}

	if stat, err := sb.statLocked(ctx, objKey); err == nil {
		if stat.IsDir() {
			return nil
		}
		return data.ErrNotDirectory
	}

	_, err := sb.client.PutObject(ctx, sb.bucketName, objKey+"/",
		bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{
			ContentType: directoryContentType,
		})
	return err
}

// DeleteObject removes the object at key.
func (sb *S3Store) DeleteObject(ctx context.Context, key string, force bool) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	objKey := objectKey(key)

	stat, err := sb.statLocked(ctx, objKey)
	if err != nil {
		return err
	}

	if !stat.IsDir() {
		return sb.client.RemoveObject(ctx, sb.bucketName, objKey, minio.RemoveObjectOptions{})
	}

	prefix := objKey + "/"
	var children []string
	for info := range sb.client.ListObjects(ctx, sb.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return info.Err
		}
		if info.Key == prefix {
			continue
		}
		children = append(children, info.Key)
	}

	if len(children) > 0 && !force {
		return data.ErrNotEmpty
	}

	// Keep deleting on partial failure and report everything that went wrong
	errs := errors.Errors{}
	for _, child := range children {
		if err := sb.client.RemoveObject(ctx, sb.bucketName, child, minio.RemoveObjectOptions{}); err != nil {
			errs.Add(err)
		}
	}
	if err := errs.Errors(); err != nil {
		return err
	}

	return sb.client.RemoveObject(ctx, sb.bucketName, prefix, minio.RemoveObjectOptions{})
}
