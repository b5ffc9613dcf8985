package songgraph

import (
	"sync"
)

// MapDeduper is an in-memory Deduper. It is the fastest option but holds every
// distinct row of every collection in memory until it is closed.
type MapDeduper struct {
	lock        sync.RWMutex
	collections map[string]*sync.Map
}

// NewMapDeduper gets a new MapDeduper.
func NewMapDeduper() *MapDeduper {
	return &MapDeduper{
		collections: make(map[string]*sync.Map),
	}
}

func (m *MapDeduper) getCollection(name string) *sync.Map {
	m.lock.RLock()
	if c, ok := m.collections[name]; ok {
		m.lock.RUnlock()
		return c
	}
	m.lock.RUnlock()
	m.lock.Lock()
	defer m.lock.Unlock()
	if c, ok := m.collections[name]; ok {
		return c
	}
	m.collections[name] = &sync.Map{}
	return m.collections[name]
}

// Add implements Deduper.
func (m *MapDeduper) Add(collection string, key []byte) (bool, error) {
	_, loaded := m.getCollection(collection).LoadOrStore(string(key), struct{}{})
	return !loaded, nil
}

// Close drops everything seen so far.
func (m *MapDeduper) Close() error {
	m.lock.Lock()
	m.collections = make(map[string]*sync.Map)
	m.lock.Unlock()
	return nil
}
