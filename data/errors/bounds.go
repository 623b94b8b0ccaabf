package errors

import "github.com/mwantia/capfs/data"

// Bounds reports a navigation segment that could escape or ambiguously
// traverse the sandbox. The offending segment and the attempted operation
// are both part of the message.
func Bounds(op, segment, reason string) error {
	return newError(data.ErrBounds, "%s: segment '%s' %s", op, segment, reason)
}

// InvalidParent reports a wrong parent value supplied to a constructor.
func InvalidParent(op, detail string) error {
	return newError(data.ErrInvalidParent, "%s: %s", op, detail)
}

// Unsupported reports an operation a type explicitly refuses to provide.
func Unsupported(op, reason string) error {
	return newError(data.ErrUnsupported, "%s: %s", op, reason)
}
