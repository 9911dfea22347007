package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/edgecache/cachereport/internal/domain"
)

// MemoryClient is an in-memory Client fixture
type MemoryClient struct {
	mu       sync.RWMutex
	metadata map[string]map[string]any
	rses     map[string]map[string]any

	// Lookups counts GetMetadata calls, keyed by scope:name
	Lookups map[string]int
}

// NewMemoryClient creates an empty in-memory catalog
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		metadata: make(map[string]map[string]any),
		rses:     make(map[string]map[string]any),
		Lookups:  make(map[string]int),
	}
}

// PutMetadata registers metadata for a logical name
func (m *MemoryClient) PutMetadata(scope, name string, meta map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[scope+":"+name] = meta
}

// PutRSE registers an RSE attribute map
func (m *MemoryClient) PutRSE(rse string, attrs map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rses[rse] = attrs
}

// GetMetadata implements Client
func (m *MemoryClient) GetMetadata(_ context.Context, scope, name string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := scope + ":" + name
	m.Lookups[key]++
	meta, ok := m.metadata[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotRegistered, key)
	}
	return meta, nil
}

// GetRSEAttributes implements Client
func (m *MemoryClient) GetRSEAttributes(_ context.Context, rse string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	attrs, ok := m.rses[rse]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRSENotFound, rse)
	}
	return attrs, nil
}
