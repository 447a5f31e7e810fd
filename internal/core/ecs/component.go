package ecs

// Removable is implemented by every component store so the Registry can
// strip a destroyed entity from all of them.
type Removable interface {
	Remove(id EntityID)
}

// Store holds one component type as a dense array with an id index.
// Iteration follows insertion order, except that Remove moves the last
// element into the hole.
type Store[T any] struct {
	ids   []EntityID
	items []*T
	index map[EntityID]int
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		ids:   make([]EntityID, 0, 64),
		items: make([]*T, 0, 64),
		index: make(map[EntityID]int, 64),
	}
}

// Set adds or replaces id's component.
func (s *Store[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.items[i] = c
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.items = append(s.items, c)
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.ids) - 1
	if i != last {
		s.ids[i] = s.ids[last]
		s.items[i] = s.items[last]
		s.index[s.ids[i]] = i
	}
	s.ids[last] = 0
	s.items[last] = nil
	s.ids = s.ids[:last]
	s.items = s.items[:last]
	delete(s.index, id)
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store[T]) Len() int { return len(s.ids) }

// Each visits every component. fn must not add or remove components of
// this store.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.items[i])
	}
}

// Each2 visits entities that carry both A and B, walking the smaller store.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for i, id := range sa.ids {
			if b, ok := sb.Get(id); ok {
				fn(id, sa.items[i], b)
			}
		}
		return
	}
	for i, id := range sb.ids {
		if a, ok := sa.Get(id); ok {
			fn(id, a, sb.items[i])
		}
	}
}
