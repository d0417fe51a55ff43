package storage

import (
	"context"
	"time"
)

// StoredObject is the result of persisting a file.
type StoredObject struct {
	Key       string
	Location  string
	SizeBytes int64
}

// ObjectStorage is the contract the attachment ledger depends on. Delete
// failures are swallowed by callers (logged, never surfaced), so an orphaned
// stored object is possible; that window is accepted.
type ObjectStorage interface {
	Store(ctx context.Context, data []byte, fileName, mimeType string, uploaderID int64) (StoredObject, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
