package powerwidget

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/sahilm/fuzzy"
)

var (
	ErrUnknownButton = errors.New("unknown button")
	ErrButtonInit    = errors.New("button initialization failed")
	ErrDuplicateID   = errors.New("button id already registered")
	ErrNoSuchButton  = errors.New("no button at index")
)

type loadedButton struct {
	id     string
	button Button
}

// Registry maps button ids to factories and owns every loaded instance.
// Instances are kept in build order; the same id may be loaded more than
// once and every copy receives dispatched events.
type Registry struct {
	factories map[string]Factory
	loaded    []loadedButton
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for all ids it recognizes
func (r *Registry) Register(factory Factory) error {
	ids := factory.IDs()
	for _, id := range ids {
		if _, exists := r.factories[id]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
	}

	for _, id := range ids {
		r.factories[id] = factory
	}
	log.Printf("[REGISTRY] Registered factory for: %v", ids)

	return nil
}

// RecognizedIDs returns every id some factory can build, sorted
func (r *Registry) RecognizedIDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load creates the button for id, binds it to view and retains it
func (r *Registry) Load(id string, view View) (err error) {
	factory, ok := r.factories[id]
	if !ok {
		return r.unknownButton(id)
	}

	var button Button
	defer func() {
		if rec := recover(); rec != nil {
			r.release(id, button)
			err = fmt.Errorf("%w: %s: panic: %v", ErrButtonInit, id, rec)
		}
	}()

	button, err = factory.New(id)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrButtonInit, id, err)
	}

	if err := button.Load(view); err != nil {
		r.release(id, button)
		return fmt.Errorf("%w: %s: %w", ErrButtonInit, id, err)
	}

	r.loaded = append(r.loaded, loadedButton{id: id, button: button})
	return nil
}

// release unloads a button that failed to attach
func (r *Registry) release(id string, button Button) {
	if button == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[REGISTRY] Recovered from panic releasing '%s': %v", id, rec)
		}
	}()
	button.Unload()
}

// Recognize reports whether some factory can build id. The error names the
// closest recognized id when there is one.
func (r *Registry) Recognize(id string) error {
	if _, ok := r.factories[id]; ok {
		return nil
	}
	return r.unknownButton(id)
}

func (r *Registry) unknownButton(id string) error {
	matches := fuzzy.Find(id, r.RecognizedIDs())
	if len(matches) > 0 {
		return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownButton, id, matches[0].Str)
	}
	return fmt.Errorf("%w: %q", ErrUnknownButton, id)
}

// UnloadAll releases every instance and returns how many were released
func (r *Registry) UnloadAll() int {
	released := len(r.loaded)
	r.each("unload", func(b Button) { b.Unload() })
	r.loaded = nil
	return released
}

// UpdateAll refreshes the visual state of every instance
func (r *Registry) UpdateAll() {
	r.each("update", func(b Button) {
		if err := b.UpdateState(); err != nil {
			log.Printf("[REGISTRY] Failed to update button '%s': %v", b.ID(), err)
		}
	})
}

// DispatchBroadcast hands a broadcast to every instance
func (r *Registry) DispatchBroadcast(action string, payload map[string]string) {
	r.each("broadcast", func(b Button) { b.HandleBroadcast(action, payload) })
}

// DispatchSettingChange hands a settings change to every instance
func (r *Registry) DispatchSettingChange(key string) {
	r.each("setting change", func(b Button) { b.HandleSettingChange(key) })
}

// ObservedKeys returns the union of settings keys the loaded buttons observe
func (r *Registry) ObservedKeys() []string {
	return r.union(func(b Button) []string { return b.ObservedKeys() })
}

// BroadcastActions returns the union of broadcast actions the loaded buttons handle
func (r *Registry) BroadcastActions() []string {
	return r.union(func(b Button) []string { return b.BroadcastActions() })
}

// Click toggles the button at index in build order
func (r *Registry) Click(index int) (string, error) {
	entry, err := r.at(index)
	if err != nil {
		return "", err
	}
	r.guard(entry, "click", func(b Button) { b.Toggle() })
	return entry.id, nil
}

// LongClick forwards a long press to the button at index
func (r *Registry) LongClick(index int) (string, error) {
	entry, err := r.at(index)
	if err != nil {
		return "", err
	}
	r.guard(entry, "long click", func(b Button) { b.LongClick() })
	return entry.id, nil
}

// Len returns the number of loaded instances
func (r *Registry) Len() int {
	return len(r.loaded)
}

// IDs returns the ids of loaded instances in build order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.loaded))
	for i, entry := range r.loaded {
		ids[i] = entry.id
	}
	return ids
}

func (r *Registry) at(index int) (loadedButton, error) {
	if index < 0 || index >= len(r.loaded) {
		return loadedButton{}, fmt.Errorf("%w: %d (have %d)", ErrNoSuchButton, index, len(r.loaded))
	}
	return r.loaded[index], nil
}

// each runs fn for every instance; a panicking button does not stop the rest
func (r *Registry) each(op string, fn func(Button)) {
	for _, entry := range r.loaded {
		r.guard(entry, op, fn)
	}
}

func (r *Registry) guard(entry loadedButton, op string, fn func(Button)) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[REGISTRY] Recovered from panic in %s for '%s': %v", op, entry.id, rec)
		}
	}()
	fn(entry.button)
}

func (r *Registry) union(get func(Button) []string) []string {
	seen := make(map[string]struct{})
	r.each("subscriptions", func(b Button) {
		for _, v := range get(b) {
			seen[v] = struct{}{}
		}
	})
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
