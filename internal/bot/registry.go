package bot

import (
	"slices"
	"sync"
)

// Registry holds registered services.
type Registry struct {
	mu       sync.RWMutex
	services []Service
}

// NewRegistry creates a new service registry.
func NewRegistry() *Registry {
	return &Registry{
		services: make([]Service, 0),
	}
}

// Register adds a service to the registry.
func (r *Registry) Register(s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = append(r.services, s)
}

// Services returns a snapshot of all registered services.
func (r *Registry) Services() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.services)
}

// Lookup returns the service registered under name.
func (r *Registry) Lookup(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.services {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Global registry instance for service self-registration via init()
var globalRegistry = NewRegistry()

// Register adds a service to the global registry.
// This is typically called from service init() functions.
func Register(s Service) {
	globalRegistry.Register(s)
}

// Services returns all services from the global registry.
func Services() []Service {
	return globalRegistry.Services()
}

// Lookup finds a service in the global registry.
func Lookup(name string) (Service, bool) {
	return globalRegistry.Lookup(name)
}

// ResetGlobalRegistry resets the global registry.
// This is intended for testing purposes only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
