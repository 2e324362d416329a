package settings

import (
	"errors"
	"sort"
	"strconv"
	"sync"
)

var ErrNoKeys = errors.New("observer needs at least one key")

// Store is a string key-value settings store with change observers.
// Observers are only told about keys whose value actually changed.
type Store interface {
	GetString(key string) (string, bool)
	GetInt(key string, def int) int
	PutString(key, value string) error
	PutInt(key string, value int) error
	Observe(keys []string, fn func(key string)) (func(), error)
}

type observer struct {
	keys map[string]struct{}
	fn   func(key string)
}

// observerSet is shared by the store implementations
type observerSet struct {
	mu        sync.Mutex
	next      int
	observers map[int]observer
}

func (s *observerSet) add(keys []string, fn func(key string)) (func(), error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	if fn == nil {
		return nil, errors.New("nil observer")
	}

	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observers == nil {
		s.observers = make(map[int]observer)
	}
	s.next++
	id := s.next
	s.observers[id] = observer{keys: set, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}, nil
}

func (s *observerSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// notify calls matching observers outside the lock so they may observe or
// unobserve from inside the callback.
func (s *observerSet) notify(keys []string) {
	type call struct {
		fn  func(string)
		key string
	}

	s.mu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var calls []call
	for _, key := range keys {
		for _, id := range ids {
			o := s.observers[id]
			if _, ok := o.keys[key]; ok {
				calls = append(calls, call{o.fn, key})
			}
		}
	}
	s.mu.Unlock()

	for _, c := range calls {
		c.fn(c.key)
	}
}

func parseInt(raw string, ok bool, def int) int {
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// diff returns the sorted keys whose value differs between a and b
func diff(a, b map[string]string) []string {
	var changed []string
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			changed = append(changed, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
