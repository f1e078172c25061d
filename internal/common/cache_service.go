package common

import (
	"fmt"

	"github.com/patrickmn/go-cache"
)

// MemoryStore is the in-process Store backed by go-cache. Items are
// stored without expiration and the janitor is disabled.
type MemoryStore[K comparable, V any] struct {
	cache *cache.Cache
}

func NewMemoryStore[K comparable, V any]() *MemoryStore[K, V] {
	return &MemoryStore[K, V]{cache: cache.New(cache.NoExpiration, 0)}
}

func (ms *MemoryStore[K, V]) Get(key K) (V, bool) {
	var zero V
	raw, found := ms.cache.Get(storeKey(key))
	if !found {
		return zero, false
	}
	val, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return val, true
}

func (ms *MemoryStore[K, V]) Set(key K, value V) {
	ms.cache.Set(storeKey(key), value, cache.NoExpiration)
}

func (ms *MemoryStore[K, V]) Has(key K) bool {
	_, found := ms.cache.Get(storeKey(key))
	return found
}

func (ms *MemoryStore[K, V]) Clear() {
	ms.cache.Flush()
}

func (ms *MemoryStore[K, V]) Size() int {
	return ms.cache.ItemCount()
}

// storeKey renders a key for string-keyed backends. Each store holds a
// single key type so the rendering cannot collide within a store.
func storeKey[K comparable](key K) string {
	return fmt.Sprint(key)
}
