package cache

// Store is a Cache of entities keyed by ID with an idempotent Add.
type Store[D any, V any] struct {
	*Cache[string, V]

	id    func(*D) string
	build func(*D) V
	patch func(V, *D)
}

// NewStore returns a Store. id extracts the key from a record, build
// constructs a fresh entity and patch applies a record to a cached one.
func NewStore[D any, V any](id func(*D) string, build func(*D) V, patch func(V, *D), opts ...Option) *Store[D, V] {
	return &Store[D, V]{
		Cache: New[string, V](opts...),
		id:    id,
		build: build,
		patch: patch,
	}
}

// Add caches the entity for data. When an entity with the same ID is already
// cached it is patched in place and returned, so the result is the same
// instance every time.
func (s *Store[D, V]) Add(data *D) V {
	v, _ := s.Upsert(data)
	return v
}

// Upsert is Add that also reports whether a new entity was created.
func (s *Store[D, V]) Upsert(data *D) (V, bool) {
	key := s.id(data)
	if existing, ok := s.Get(key); ok {
		if s.patch != nil {
			s.patch(existing, data)
		}
		return existing, false
	}
	v := s.build(data)
	s.Set(key, v)
	return v, true
}

// Resolve returns the cached entity for id.
func (s *Store[D, V]) Resolve(id string) (V, bool) {
	return s.Get(id)
}

// Remove drops the entity for id and returns it.
func (s *Store[D, V]) Remove(id string) (V, bool) {
	return s.Delete(id)
}
