// Package store provides single-key durable storage for the scan pipeline's
// small JSON documents (the offline queue, the recently-resolved history).
//
// Each document is rewritten wholesale on every mutation; there is no
// partial patching. Backends: bbolt (production), plain file, in-memory.
package store

import "context"

// Store reads and writes one durable document.
//
// Load returns (nil, nil) when the document has never been written.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
