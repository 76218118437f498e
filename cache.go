package daoism

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores encoded result rows. Implementations may be backed by Redis,
// Memcached or memory.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies a cached entity.
type CacheKey struct {
	Table     string
	Operation string
	ID        any
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Table + ":" + k.Operation + ":" + fmt.Sprint(k.ID)
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

var _ Cache = (*MemoryCache)(nil)

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return bytes.Clone(e.value), nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: bytes.Clone(value)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// DeletePrefix implements Cache.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (d *DAO) cacheKey(id any) string {
	return CacheKey{Table: d.table, Operation: opFind, ID: id}.String()
}

// cachedRow is the encoded form of a result row. Times are kept apart in
// their binary form, which retains the zone offset msgpack drops.
type cachedRow struct {
	Columns map[string]any    `msgpack:"c"`
	Times   map[string][]byte `msgpack:"t,omitempty"`
}

func encodeRow(row map[string]any) ([]byte, error) {
	cr := cachedRow{Columns: make(map[string]any, len(row))}
	for k, v := range row {
		t, ok := v.(time.Time)
		if !ok {
			cr.Columns[k] = v
			continue
		}
		b, err := t.MarshalBinary()
		if err != nil {
			return nil, err
		}
		if cr.Times == nil {
			cr.Times = make(map[string][]byte)
		}
		cr.Times[k] = b
	}
	return msgpack.Marshal(&cr)
}

func decodeRow(b []byte) (map[string]any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	var cr cachedRow
	if err := dec.Decode(&cr); err != nil {
		return nil, err
	}
	if cr.Columns == nil {
		return nil, errors.New("daoism: cached row has no columns")
	}
	row := make(map[string]any, len(cr.Columns)+len(cr.Times))
	for k, v := range cr.Columns {
		// Drivers report integers as int64.
		if u, ok := v.(uint64); ok && u <= math.MaxInt64 {
			v = int64(u)
		}
		row[k] = v
	}
	for k, b := range cr.Times {
		var t time.Time
		if err := t.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		row[k] = t
	}
	return row, nil
}

// cached returns the entity of the cached row of id, or nil on a miss. The
// row is mapped like a row read from the store, so hits and reads agree.
// Cache failures are logged and treated as misses.
func (d *DAO) cached(ctx context.Context, id any) *Entity {
	if d.cache == nil {
		return nil
	}
	b, err := d.cache.Get(ctx, d.cacheKey(id))
	if err != nil {
		d.log.WarnContext(ctx, "reading cache failed", "id", id, "err", err)
		return nil
	}
	if b == nil {
		return nil
	}
	row, err := decodeRow(b)
	if err != nil {
		d.log.WarnContext(ctx, "decoding cached row failed", "id", id, "err", err)
		return nil
	}
	d.log.DebugContext(ctx, "entity served from cache", "id", id)
	return d.toEntity(row, nil)
}

// store caches the result row of id.
func (d *DAO) store(ctx context.Context, id any, row map[string]any) {
	if d.cache == nil || row == nil {
		return
	}
	b, err := encodeRow(row)
	if err != nil {
		d.log.WarnContext(ctx, "encoding row failed", "id", id, "err", err)
		return
	}
	if err := d.cache.Set(ctx, d.cacheKey(id), b, d.cacheTTL); err != nil {
		d.log.WarnContext(ctx, "writing cache failed", "id", id, "err", err)
	}
}

// evictAll drops every cached entity of the table. Writes evict the whole
// table since callers may name a row by any form of its key.
func (d *DAO) evictAll(ctx context.Context) {
	if d.cache == nil {
		return
	}
	if err := d.cache.DeletePrefix(ctx, d.table+":"); err != nil {
		d.log.WarnContext(ctx, "evicting cache failed", "err", err)
	}
}
