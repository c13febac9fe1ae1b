package kv

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var out record
	found, err := s.Get(ctx, "records:missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "records:1", record{ID: "1", Name: "one"}))

	found, err = s.Get(ctx, "records:1", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "one", out.Name)

	deleted, err := s.Delete(ctx, "records:1")
	require.NoError(t, err)
	assert.True(t, deleted)

	// second delete reports the key was already gone
	deleted, err = s.Delete(ctx, "records:1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStoreGetByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "users:b", record{ID: "b"}))
	require.NoError(t, s.Set(ctx, "users:a", record{ID: "a"}))
	require.NoError(t, s.Set(ctx, "user_products:a", []string{"p1"}))
	require.NoError(t, s.Set(ctx, "orders:1", record{ID: "1"}))

	raws, err := s.GetByPrefix(ctx, "users:")
	require.NoError(t, err)
	require.Len(t, raws, 2)

	// the user_products: keyspace must not bleed into users:
	recs, err := List[record](ctx, s, "users:")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, "b", recs[1].ID)
}

func TestMemoryStoreMGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "orders:1", record{ID: "1"}))
	require.NoError(t, s.Set(ctx, "orders:3", record{ID: "3"}))

	raws, err := s.MGet(ctx, []string{"orders:1", "orders:2", "orders:3"})
	require.NoError(t, err)
	require.Len(t, raws, 3)
	assert.NotNil(t, raws[0])
	assert.Nil(t, raws[1])
	assert.NotNil(t, raws[2])
}

func TestFetchAllSkipsMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "orders:1", record{ID: "1"}))
	require.NoError(t, s.Set(ctx, "orders:3", record{ID: "3"}))

	out, err := FetchAll[record](ctx, s, []string{"orders:1", "orders:2", "orders:3"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "3", out[1].ID)
}

func TestMemoryStoreUpdateConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			err := s.Update(ctx, "user_products:u1", func(cur []byte) (any, error) {
				return AppendID(cur, fmt.Sprintf("p%d", i))
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var ids []string
	found, err := s.Get(ctx, "user_products:u1", &ids)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, ids, n)
}

func TestAppendRemoveID(t *testing.T) {
	next, err := AppendID(nil, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, next)

	next, err = RemoveID([]byte(`["a","b","a","c"]`), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, next)

	// removing from an absent list yields an empty list, not an error
	next, err = RemoveID(nil, "x")
	require.NoError(t, err)
	assert.Empty(t, next)
}
