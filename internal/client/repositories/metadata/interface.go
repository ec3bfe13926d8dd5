// Package metadata persists small client-side key/value pairs (such as the
// session credential) in the local SQLite database.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value stored under key; found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
