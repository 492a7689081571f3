package client

import (
	"sync"

	"github.com/google/uuid"
	"voy.com/portfolio/pkg/dto"
)

// BootConfig are the per-widget feature switches shipped with the initial
// page. A disabled feature's field never reaches the address bar and its
// actions become no-ops.
type BootConfig struct {
	EnableSearch    bool `json:"enable_search"`
	EnableFilters   bool `json:"enable_filters"`
	EnablePaginator bool `json:"enable_paginator"`
	ItemsPerPage    int  `json:"items_per_page"`
}

// BootInitial is the server-computed first paint: the QueryResult for the
// decoded initial filter state plus that state itself.
type BootInitial struct {
	dto.QueryResult
	CurrentPage    int    `json:"current_page"`
	ActiveCategory *int   `json:"active_category"`
	Search         string `json:"search"`
}

// BootPayload is the opaque blob embedded in the rendered page, one per
// mounted widget instance.
type BootPayload struct {
	Config      BootConfig  `json:"config"`
	Initial     BootInitial `json:"initial"`
	APIBase     string      `json:"api_base"`
	Placeholder string      `json:"placeholder"`
}

// Instance describes one mounted catalog widget.
type Instance struct {
	ID         string
	Controller *Controller
}

// Registry tracks mounted instances for discovery only. Every instance owns
// its own controller, cache and filter state; nothing is shared at runtime.
type Registry struct {
	mu        sync.Mutex
	instances []*Instance
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Mount builds an independent controller from its own boot payload and
// records the instance.
func (r *Registry) Mount(boot BootPayload, fetcher Fetcher, renderer Renderer, opts ...Option) *Instance {
	inst := &Instance{
		ID:         uuid.NewString(),
		Controller: NewController(boot, fetcher, renderer, opts...),
	}

	r.mu.Lock()
	r.instances = append(r.instances, inst)
	r.mu.Unlock()

	return inst
}

// Instances returns a snapshot of the mounted instances.
func (r *Registry) Instances() []*Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Instance, len(r.instances))
	copy(out, r.instances)
	return out
}
