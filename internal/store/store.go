// Package store defines the per-owner document store the service persists
// into: one JSON array of records per (owner, collection), replaced wholesale
// on every mutation. There is no partial update and no concurrency token;
// concurrent writers to the same key race and the last write wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names, one per entity type.
const (
	Clients     = "clients"
	Projects    = "projects"
	Tasks       = "tasks"
	TimeEntries = "timeEntries"
	Activity    = "activity"
)

// ErrUnavailable signals that the backing storage could not be reached.
var ErrUnavailable = errors.New("storage unavailable")

// Store is the raw document contract. List returns the serialized record
// array for (owner, collection), nil when nothing was ever written. Replace
// overwrites the whole array.
type Store interface {
	List(ctx context.Context, ownerID, collection string) ([]byte, error)
	Replace(ctx context.Context, ownerID, collection string, data []byte) error
}

// Load reads and decodes the full record slice for one owner and collection.
func Load[T any](ctx context.Context, s Store, ownerID, collection string) ([]T, error) {
	raw, err := s.List(ctx, ownerID, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return items, nil
}

// Save encodes and writes back the full record slice. A nil slice is stored
// as an empty array so subsequent reads stay well-formed.
func Save[T any](ctx context.Context, s Store, ownerID, collection string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := s.Replace(ctx, ownerID, collection, raw); err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}
