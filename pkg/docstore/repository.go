package docstore

// Repository runs typed operations for documents of type T against any index
// of its Store. T may be a struct, a pointer to a struct or map[string]any.
//
// Documents carry their identifier through property.Identifiable or an
// attribute named ID; documents without one are still accepted wherever the
// engine can assign or ignore the identifier.
type Repository[T any] struct {
	store *Store
}

// NewRepository returns a Repository for T backed by store.
func NewRepository[T any](store *Store) *Repository[T] {
	return &Repository[T]{store: store}
}

// Store returns the store the repository runs on.
func (r *Repository[T]) Store() *Store {
	return r.store
}
