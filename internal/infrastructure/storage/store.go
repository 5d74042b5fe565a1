package storage

import "context"

// Store is the durable key/value boundary the dashboard persists into. Values
// are opaque JSON blobs; shape validation happens in the persistence layer.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
