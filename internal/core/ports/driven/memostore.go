package driven

// MemoStore memoises the result of an expensive lookup per key.
// Implementations must be safe for concurrent use.
type MemoStore[V any] interface {
	// Get returns the memoised value and whether one exists.
	Get(key string) (V, bool)

	// Put records a value. Bounded implementations may evict older keys.
	Put(key string, value V)

	// Len returns the number of memoised keys.
	Len() int
}
