package daoism

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "USERS:find:7", CacheKey{Table: "USERS", Operation: "find", ID: int64(7)}.String())
	assert.Equal(t, "USERS:find:a-1", CacheKey{Table: "USERS", Operation: "find", ID: "a-1"}.String())
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "USERS:find:1", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "USERS:find:2", []byte("b"), 0))
	require.NoError(t, c.Set(ctx, "POSTS:find:1", []byte("c"), 0))

	v, err = c.Get(ctx, "USERS:find:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)

	now = now.Add(time.Minute)
	v, err = c.Get(ctx, "USERS:find:1")
	require.NoError(t, err)
	assert.Nil(t, v, "expired")
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.DeletePrefix(ctx, "USERS:"))
	assert.Equal(t, 1, c.Len())
	require.NoError(t, c.Delete(ctx, "POSTS:find:1"))
	assert.Zero(t, c.Len())

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Clear(ctx))
	assert.Zero(t, c.Len())
}

func TestMemoryCacheCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	b := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", b, 0))
	b[0] = 'x'
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)
}

func TestCachedRow(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 10, time.FixedZone("", 2*60*60))
	b, err := encodeRow(map[string]any{
		"ID":      int64(7),
		"NEG":     int64(-3),
		"NAME":    "pen",
		"DATA":    []byte{1, 2},
		"PRICE":   2.5,
		"ENABLED": true,
		"GONE":    nil,
		"AT":      at,
		"UTC":     at.UTC(),
	})
	require.NoError(t, err)
	row, err := decodeRow(b)
	require.NoError(t, err)

	assert.Equal(t, int64(7), row["ID"])
	assert.Equal(t, int64(-3), row["NEG"])
	assert.Equal(t, "pen", row["NAME"])
	assert.Equal(t, []byte{1, 2}, row["DATA"])
	assert.Equal(t, 2.5, row["PRICE"])
	assert.Equal(t, true, row["ENABLED"])
	require.Contains(t, row, "GONE")
	assert.Nil(t, row["GONE"])

	got, ok := row["AT"].(time.Time)
	require.True(t, ok)
	assert.True(t, at.Equal(got))
	_, offset := got.Zone()
	assert.Equal(t, 2*60*60, offset)
	got, ok = row["UTC"].(time.Time)
	require.True(t, ok)
	assert.True(t, at.Equal(got))
	assert.Equal(t, time.UTC, got.Location())
}

// failingCache fails reads and writes.
type failingCache struct{ *MemoryCache }

func (failingCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("unavailable")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("unavailable")
}

func TestDAOCache(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		d := newTestDAO(t, &recorder{})
		d.cache = NewMemoryCache()
		row := map[string]any{"ID": int64(300), "NAME": []byte("pen"), "PRICE": 2.5, "ENABLED": int64(1)}
		d.store(ctx, int64(300), row)
		e := d.cached(ctx, int64(300))
		require.NotNil(t, e)
		assert.Equal(t, d.toEntity(row, nil).Values, e.Values)
		assert.Equal(t, Values{"id": int64(300), "name": "pen", "price": 2.5, "enabled": true}, e.Values)

		d.evictAll(ctx)
		assert.Nil(t, d.cached(ctx, int64(300)))
	})

	t.Run("Corrupt", func(t *testing.T) {
		d := newTestDAO(t, &recorder{})
		c := NewMemoryCache()
		d.cache = c
		require.NoError(t, c.Set(ctx, d.cacheKey(1), []byte{0xc1}, 0))
		assert.Nil(t, d.cached(ctx, 1))

		b, err := msgpack.Marshal("not a row")
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, d.cacheKey(2), b, 0))
		assert.Nil(t, d.cached(ctx, 2))

		b, err = msgpack.Marshal(map[string]any{"t": map[string][]byte{"AT": {0}}})
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, d.cacheKey(3), b, 0))
		assert.Nil(t, d.cached(ctx, 3))
	})

	t.Run("Failing", func(t *testing.T) {
		rec := &recorder{rows: []map[string]any{{"ID": int64(1), "NAME": "pen"}}}
		d := newTestDAO(t, rec)
		d.cache = failingCache{NewMemoryCache()}
		e, err := d.Find(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "pen", e.Get("name"))
		assert.Len(t, rec.calls, 1, "cache failures fall back to the executor")
	})

	t.Run("Disabled", func(t *testing.T) {
		d := newTestDAO(t, &recorder{})
		d.store(ctx, 1, map[string]any{"ID": int64(1)})
		assert.Nil(t, d.cached(ctx, 1))
		d.evictAll(ctx)
	})
}
