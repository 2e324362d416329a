package settings

import (
	"strconv"
	"sync"
)

// Memory is an in-process Store
type Memory struct {
	mu        sync.RWMutex
	values    map[string]string
	observers observerSet
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// GetString returns the value of key and whether it is set
func (m *Memory) GetString(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// GetInt returns key as an int, or def when unset or not a number
func (m *Memory) GetInt(key string, def int) int {
	v, ok := m.GetString(key)
	return parseInt(v, ok, def)
}

// PutString stores value and notifies observers if it changed
func (m *Memory) PutString(key, value string) error {
	m.mu.Lock()
	if old, ok := m.values[key]; ok && old == value {
		m.mu.Unlock()
		return nil
	}
	m.values[key] = value
	m.mu.Unlock()

	m.observers.notify([]string{key})
	return nil
}

// PutInt stores value as a decimal string
func (m *Memory) PutInt(key string, value int) error {
	return m.PutString(key, strconv.Itoa(value))
}

// Delete removes key and notifies observers if it was set
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	_, ok := m.values[key]
	delete(m.values, key)
	m.mu.Unlock()

	if ok {
		m.observers.notify([]string{key})
	}
}

// Observe registers fn for changes to keys
func (m *Memory) Observe(keys []string, fn func(key string)) (func(), error) {
	return m.observers.add(keys, fn)
}
