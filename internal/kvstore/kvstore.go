// Package kvstore is the durable key-value boundary behind the design
// store. The whole saved-design collection is one value under one key, so a
// backend only needs Get and Set; Set is the atomic unit of persistence.
package kvstore

import (
	"context"
	"errors"
)

// ErrOutOfSpace is returned by Set when the backing medium rejects the
// write for capacity reasons. Backends must guarantee the previous value is
// still intact when they return it.
var ErrOutOfSpace = errors.New("kvstore: out of space")

type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set replaces the value under key, all-or-nothing.
	Set(ctx context.Context, key, value string) error
}
