package ecs

// Removable is implemented by every component store so the Registry can
// drop a destroyed entity from all of them at once.
type Removable interface {
	// Remove reports whether id had a component.
	Remove(id EntityID) bool
}

// PtrComponentStore maps entity IDs to component pointers. Components sit
// in a dense slice so iteration order only depends on the order of Set and
// Remove calls, which keeps seeded simulations reproducible.
type PtrComponentStore[T any] struct {
	index map[EntityID]int
	ids   []EntityID
	comps []*T
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		index: make(map[EntityID]int, 256),
		ids:   make([]EntityID, 0, 256),
		comps: make([]*T, 0, 256),
	}
}

// Set adds or replaces the component of id. A replaced component keeps
// its place in iteration order.
func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.comps[i] = c
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.comps = append(s.comps, c)
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.comps[i], true
}

// Remove moves the last component into the freed slot.
func (s *PtrComponentStore[T]) Remove(id EntityID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	last := len(s.ids) - 1
	if i != last {
		s.ids[i] = s.ids[last]
		s.comps[i] = s.comps[last]
		s.index[s.ids[i]] = i
	}
	s.comps[last] = nil
	s.ids = s.ids[:last]
	s.comps = s.comps[:last]
	delete(s.index, id)
	return true
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.ids)
}

// Each visits components in dense order. fn must not add to or remove from
// the store.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.comps[i])
	}
}

// Registry tracks component stores for bulk removal on destroy.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 8),
	}
}

func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// RemoveAll drops id from every registered store and returns how many
// stores held it.
func (r *Registry) RemoveAll(id EntityID) int {
	n := 0
	for _, s := range r.stores {
		if s.Remove(id) {
			n++
		}
	}
	return n
}
