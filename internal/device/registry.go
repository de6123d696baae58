package device

import (
	"sync"
)

// Registry maps identities to connected devices. A device is present
// exactly between its connect and disconnect. OnFirst is called when
// the registry goes from empty to non-empty.
type Registry struct {
	mu      sync.Mutex
	devices map[Identity]*Device
	order   []Identity

	onFirst func()
}

// NewRegistry returns an empty Registry. onFirst may be nil.
func NewRegistry(onFirst func()) *Registry {
	return &Registry{
		devices: make(map[Identity]*Device),
		onFirst: onFirst,
	}
}

// Add registers d. It reports false when a device with the same identity is
// already registered, in which case the registry is unchanged.
func (r *Registry) Add(d *Device) bool {
	r.mu.Lock()
	if _, ok := r.devices[d.ID()]; ok {
		r.mu.Unlock()
		return false
	}
	first := len(r.devices) == 0
	r.devices[d.ID()] = d
	r.order = append(r.order, d.ID())
	r.mu.Unlock()

	if first && r.onFirst != nil {
		r.onFirst()
	}
	return true
}

// Remove unregisters the device with identity id and returns it, or nil
// when no such device is registered.
func (r *Registry) Remove(id Identity) *Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return nil
	}
	delete(r.devices, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return d
}

// Get returns the device registered for id.
func (r *Registry) Get(id Identity) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	return d, ok
}

// FindByEndpoint returns the first registered device at endpoint,
// regardless of peer.
func (r *Registry) FindByEndpoint(endpoint string) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if id.Endpoint == endpoint {
			return r.devices[id], true
		}
	}
	return nil, false
}

// Snapshot returns the registered devices in registration order. The slice
// is a copy; mutations of the registry do not affect it.
func (r *Registry) Snapshot() []*Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Device, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.devices[id])
	}
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}
