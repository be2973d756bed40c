// Package storage persists user-uploaded assets such as character portraits.
package storage

import (
	"io"
)

// AssetStore saves and removes binary assets keyed by a relative path.
type AssetStore interface {
	// Save writes the asset and returns the public URL path it is served at.
	Save(name string, r io.Reader) (string, error)
	// Remove deletes the asset. Removing an asset that does not exist is not
	// an error.
	Remove(name string) error
}
