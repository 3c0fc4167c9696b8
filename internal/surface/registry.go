package surface

import "sync"

// Registry tracks attached surfaces, the way a document tracks its canvases.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	live   map[uint64]*Surface
	total  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[uint64]*Surface)}
}

// Create allocates a new attached surface of the given size.
func (r *Registry) Create(width, height int) *Surface {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.total++
	s := &Surface{id: r.nextID, registry: r, img: newRGBA(width, height)}
	r.live[s.id] = s
	return s
}

// Live returns how many surfaces are currently attached.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Created returns how many surfaces have ever been allocated.
func (r *Registry) Created() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

func (r *Registry) detach(id uint64) {
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
}
