package services

import (
	"sync"
)

// TenantPassGate enforces at most one consolidation pass per tenant at a
// time. Additional triggers are rejected rather than queued.
type TenantPassGate struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewTenantPassGate creates a new pass gate
func NewTenantPassGate() *TenantPassGate {
	return &TenantPassGate{
		active: make(map[string]bool),
	}
}

// TryAcquire attempts to claim the consolidation slot for a tenant.
// Returns a release function that must be called when the pass finishes,
// or ErrPassAlreadyRunning if a pass is already in flight.
func (g *TenantPassGate) TryAcquire(tenantID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active[tenantID] {
		return nil, ErrPassAlreadyRunning
	}
	g.active[tenantID] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, tenantID)
			g.mu.Unlock()
		})
	}
	return release, nil
}

// IsRunning reports whether a consolidation pass is active for a tenant
func (g *TenantPassGate) IsRunning(tenantID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[tenantID]
}

// ActiveTenants returns the tenants with a pass currently in flight
func (g *TenantPassGate) ActiveTenants() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	tenants := make([]string, 0, len(g.active))
	for tenantID := range g.active {
		tenants = append(tenants, tenantID)
	}
	return tenants
}
