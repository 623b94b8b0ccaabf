package errors

import "github.com/mwantia/capfs/data"

// NotFound reports an operation against a resource that does not exist.
func NotFound(op, path string) error {
	return newError(data.ErrNotExist, "%s: '%s'", op, path)
}

// NotEmpty reports a non-recursive delete against a non-empty directory.
func NotEmpty(path string) error {
	return newError(data.ErrNotEmpty, "delete directory: '%s'", path)
}

// IO wraps an underlying filesystem or store failure with the operation
// and path so the caller can tell what was being attempted.
func IO(err error, op, path string) error {
	if err == nil {
		return nil
	}

	return newError(err, "%s failed for '%s'", op, path)
}
