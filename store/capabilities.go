package store

import "slices"

// Capability represents a feature that a store can provide.
type Capability string

const (
	CapabilityObjectStorage Capability = "object_storage"
	CapabilityPersistent    Capability = "persistent"
	CapabilityPermissions   Capability = "permissions"
	CapabilityContentType   Capability = "content_type"
)

// Capabilities describes what a store supports.
type Capabilities struct {
	Capabilities []Capability `json:"capabilities"`

	// MaxObjectSize caps the size of a single object, 0 means unbounded.
	MaxObjectSize int64 `json:"max_object_size"`
}

// Contains checks if a capability is supported.
func (c *Capabilities) Contains(cap Capability) bool {
	return slices.Contains(c.Capabilities, cap)
}
