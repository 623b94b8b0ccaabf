package data

import "errors"

// Standard capfs errors shared by handles, stores and the capped layer.
var (
	// Sandbox errors
	ErrBounds        = errors.New("capfs: navigation outside sandbox bounds")
	ErrInvalidParent = errors.New("capfs: invalid parent")
	ErrUnsupported   = errors.New("capfs: operation unsupported")

	// Object errors
	ErrNotExist     = errors.New("capfs: object does not exist")
	ErrExist        = errors.New("capfs: object already exists")
	ErrIsDirectory  = errors.New("capfs: is a directory")
	ErrNotDirectory = errors.New("capfs: not a directory")
	ErrNotEmpty     = errors.New("capfs: directory not empty")

	// I/O errors
	ErrPermission    = errors.New("capfs: permission denied")
	ErrValueTooLarge = errors.New("capfs: value exceeds store limit")
	ErrInvalidPath   = errors.New("capfs: invalid path detected")
	ErrStoreClosed   = errors.New("capfs: store already closed")
)
