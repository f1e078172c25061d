package common

// Store defines the contract for result cache implementations.
// Entries never expire; Clear is the only removal path.
type Store[K comparable, V any] interface {
	// Get retrieves a value by key.
	// Returns the value and true if found, the zero value and false otherwise
	Get(key K) (V, bool)

	// Set stores a value, overwriting any previous value for the key
	Set(key K, value V)

	// Has reports whether the key is present
	Has(key K) bool

	// Clear removes every entry
	Clear()

	// Size returns the number of entries, for diagnostics only
	Size() int
}

// CacheHandle is the type-erased view of a Loader used by diagnostics
// and the admin clear endpoint.
type CacheHandle interface {
	Name() string
	Size() int
	Clear()
}

var _ CacheHandle = (*Loader[string, int])(nil)
