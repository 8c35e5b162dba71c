package backoffice

import (
	"slices"
	"sync"
)

// Registry holds the search services by resource name.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*SearchService
}

// NewRegistry creates a registry holding services.
func NewRegistry(services ...*SearchService) *Registry {
	r := &Registry{services: map[string]*SearchService{}}
	for _, s := range services {
		r.Register(s)
	}
	return r
}

// Register adds or replaces the service of its resource.
func (r *Registry) Register(s *SearchService) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.Resource()] = s
}

// Get returns the service of a resource.
func (r *Registry) Get(resource string) (*SearchService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[resource]
	return s, ok
}

// Resources returns the registered resource names, sorted.
func (r *Registry) Resources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
