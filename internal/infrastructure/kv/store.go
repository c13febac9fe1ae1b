package kv

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUpdateConflict is returned when an optimistic Update keeps losing
// the race past the retry budget.
var ErrUpdateConflict = errors.New("kv: update conflict, retries exhausted")

// Store is the generic key-value accessor: opaque string keys, JSON
// values. A single Set/Delete on one key is atomic; sequences across
// keys are not. Update is an optimistic read-modify-write on one key
// and is the only primitive index lists may be maintained through.
type Store interface {
	// Get unmarshals the value at key into dest. The bool reports
	// whether the key existed.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set marshals value as JSON and stores it at key.
	Set(ctx context.Context, key string, value any) error
	// Delete removes key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// GetByPrefix returns the raw JSON values of every key under prefix.
	GetByPrefix(ctx context.Context, prefix string) ([][]byte, error)
	// MGet returns raw values aligned with keys; missing keys yield nil slots.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	// Update applies fn to the current raw value (nil if absent) and
	// stores the result, retrying on concurrent modification.
	Update(ctx context.Context, key string, fn func(cur []byte) (any, error)) error
}

// List fetches and unmarshals every record under prefix.
func List[T any](ctx context.Context, s Store, prefix string) ([]T, error) {
	raws, err := s.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FetchAll multi-gets keys and unmarshals the present values, silently
// skipping index entries whose target record is missing.
func FetchAll[T any](ctx context.Context, s Store, keys []string) ([]T, error) {
	if len(keys) == 0 {
		return []T{}, nil
	}
	raws, err := s.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AppendID is an Update callback mutator for the stored id lists.
func AppendID(cur []byte, id string) (any, error) {
	var ids []string
	if cur != nil {
		if err := json.Unmarshal(cur, &ids); err != nil {
			return nil, err
		}
	}
	return append(ids, id), nil
}

// RemoveID drops id from the stored list, preserving order.
func RemoveID(cur []byte, id string) (any, error) {
	var ids []string
	if cur != nil {
		if err := json.Unmarshal(cur, &ids); err != nil {
			return nil, err
		}
	}
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out, nil
}
