package powerwidget

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Broadcast actions the widget itself always listens to.
const (
	ActionSettingsChanged      = "powerwidget.intent.action.SETTINGS_CHANGED"
	ActionBootCompleted        = "powerwidget.intent.action.BOOT_COMPLETED"
	ActionConfigurationChanged = "powerwidget.intent.action.CONFIGURATION_CHANGED"
)

// Event is one inbound item for the router loop
type Event interface {
	event()
}

// Broadcast is a system broadcast with an action and payload
type Broadcast struct {
	Action  string
	Payload map[string]string
}

// SettingChanged reports that a settings key changed
type SettingChanged struct {
	Key string
}

// Click is a user press on the button at Index in build order
type Click struct {
	Index int
	Long  bool
}

// ToggleVisibility flips the widget's visibility regardless of settings
type ToggleVisibility struct{}

func (Broadcast) event()        {}
func (SettingChanged) event()   {}
func (Click) event()            {}
func (ToggleVisibility) event() {}

// Handler is what the router drives. Widget implements it.
type Handler interface {
	SetupWidget() error
	UpdateWidget()
	UpdateVisibility()
	ToggleVisibility()
	UpdateButtonLayoutWidth()
	DispatchBroadcast(action string, payload map[string]string)
	DispatchSettingChange(key string)
	Click(index int, long bool)
}

// Router subscribes to broadcasts and settings changes and routes them to a
// Handler. Source callbacks only enqueue; Run applies events one at a time on
// a single goroutine so handlers never run concurrently.
type Router struct {
	handler    Handler
	broadcasts BroadcastSource
	settings   SettingsSource

	mu      sync.Mutex
	pending []Event
	wake    chan struct{}

	cancelBroadcasts func()
	cancelSettings   func()
	actions          []string
	keys             []string
}

// NewRouter creates a router for handler fed by the two sources
func NewRouter(handler Handler, broadcasts BroadcastSource, settings SettingsSource) *Router {
	return &Router{
		handler:    handler,
		broadcasts: broadcasts,
		settings:   settings,
		wake:       make(chan struct{}, 1),
	}
}

// Subscribe registers for actions and keys, dropping any previous
// registration first. If the settings half fails the broadcast half is
// rolled back.
func (r *Router) Subscribe(actions, keys []string) error {
	r.Unsubscribe()

	cancelBroadcasts, err := r.broadcasts.RegisterReceiver(actions, func(action string, payload map[string]string) {
		r.Post(Broadcast{Action: action, Payload: payload})
	})
	if err != nil {
		return fmt.Errorf("register broadcast receiver: %w", err)
	}

	cancelSettings, err := r.settings.Observe(keys, func(key string) {
		r.Post(SettingChanged{Key: key})
	})
	if err != nil {
		cancelBroadcasts()
		return fmt.Errorf("observe settings: %w", err)
	}

	r.cancelBroadcasts = cancelBroadcasts
	r.cancelSettings = cancelSettings
	r.actions = append([]string(nil), actions...)
	r.keys = append([]string(nil), keys...)

	log.Printf("[ROUTER] Subscribed to %d actions and %d settings keys", len(actions), len(keys))
	return nil
}

// Unsubscribe removes the current registrations, if any
func (r *Router) Unsubscribe() {
	if r.cancelBroadcasts != nil {
		r.cancelBroadcasts()
		r.cancelBroadcasts = nil
	}
	if r.cancelSettings != nil {
		r.cancelSettings()
		r.cancelSettings = nil
	}
	r.actions = nil
	r.keys = nil
}

// Subscribed reports whether a registration is active
func (r *Router) Subscribed() bool {
	return r.cancelBroadcasts != nil
}

// Subscriptions returns the actions and keys of the active registration
func (r *Router) Subscriptions() (actions, keys []string) {
	return append([]string(nil), r.actions...), append([]string(nil), r.keys...)
}

// Post queues an event. It never blocks and is safe from any goroutine,
// including handlers running on the router loop.
func (r *Router) Post(ev Event) {
	r.mu.Lock()
	r.pending = append(r.pending, ev)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued events
func (r *Router) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Router) next() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil, false
	}
	ev := r.pending[0]
	r.pending[0] = nil
	r.pending = r.pending[1:]
	return ev, true
}

// Drain handles every queued event on the calling goroutine and returns how
// many were handled.
func (r *Router) Drain() int {
	handled := 0
	for {
		ev, ok := r.next()
		if !ok {
			return handled
		}
		r.Handle(ev)
		handled++
	}
}

// Run handles queued events until ctx is done
func (r *Router) Run(ctx context.Context) error {
	log.Printf("[ROUTER] Event loop started")

	for {
		r.Drain()

		select {
		case <-ctx.Done():
			log.Printf("[ROUTER] Event loop stopped")
			return ctx.Err()
		case <-r.wake:
		}
	}
}

// Handle routes a single event and then refreshes the widget exactly once,
// even when routing panicked.
func (r *Router) Handle(ev Event) {
	r.guard(ev, func() {
		switch e := ev.(type) {
		case Broadcast:
			r.routeBroadcast(e)
		case SettingChanged:
			r.routeSetting(e)
		case Click:
			r.handler.Click(e.Index, e.Long)
		case ToggleVisibility:
			r.handler.ToggleVisibility()
		default:
			log.Printf("[ROUTER] Ignoring unknown event %T", ev)
		}
	})

	r.guard(ev, r.handler.UpdateWidget)
}

func (r *Router) guard(ev Event, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ROUTER] Recovered from panic handling %T: %v", ev, rec)
		}
	}()
	fn()
}

func (r *Router) routeBroadcast(b Broadcast) {
	switch b.Action {
	case ActionBootCompleted:
		if err := r.handler.SetupWidget(); err != nil {
			log.Printf("[ROUTER] Setup after boot failed: %v", err)
		}
		r.handler.UpdateVisibility()
	case ActionConfigurationChanged:
		r.handler.UpdateButtonLayoutWidth()
		if err := r.handler.SetupWidget(); err != nil {
			log.Printf("[ROUTER] Setup after configuration change failed: %v", err)
		}
	default:
		r.handler.DispatchBroadcast(b.Action, b.Payload)
	}
}

func (r *Router) routeSetting(s SettingChanged) {
	switch s.Key {
	case SettingButtons:
		if err := r.handler.SetupWidget(); err != nil {
			log.Printf("[ROUTER] Setup after button list change failed: %v", err)
		}
	case SettingVisibility:
		r.handler.UpdateVisibility()
	default:
		r.handler.DispatchSettingChange(s.Key)
	}
}
