package powerwidget

import (
	"errors"
	"fmt"
	"log"
)

// Settings keys the widget itself reads.
const (
	SettingButtons    = "widget_buttons"
	SettingVisibility = "expanded_view_widget"
	SettingColor      = "expanded_view_widget_color"
)

const (
	visibilityDefault = 1
	visibilityShown   = 2
)

var (
	ErrSubscribe = errors.New("event subscription failed")
	ErrTornDown  = errors.New("widget is torn down")
)

// fixed subscriptions, merged with whatever the loaded buttons ask for
var (
	widgetActions = []string{ActionSettingsChanged, ActionBootCompleted, ActionConfigurationChanged}
	widgetKeys    = []string{SettingButtons, SettingVisibility, SettingColor}
)

// State is the lifecycle state of a Widget
type State int

const (
	StateUninitialized State = iota
	StateRebuilding
	StateBuilt
	StateTornDown
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRebuilding:
		return "rebuilding"
	case StateBuilt:
		return "built"
	case StateTornDown:
		return "torn-down"
	default:
		return "unknown"
	}
}

// WidgetConfig carries the collaborators a Widget needs
type WidgetConfig struct {
	Registry   *Registry
	Host       Host
	Settings   Settings
	Metrics    DisplayMetrics
	Broadcasts BroadcastSource
	Observer   SettingsSource
}

// Widget orchestrates the button strip: it rebuilds the registry from the
// widget_buttons setting, lays the buttons out and keeps the router
// subscribed to what the loaded buttons need.
type Widget struct {
	registry *Registry
	host     Host
	settings Settings
	metrics  DisplayMetrics
	router   *Router

	state      State
	totalWidth int
	layout     Layout

	clickListener     func(id string)
	longClickListener func(id string)
}

// NewWidget creates a widget and reads an initial display width
func NewWidget(cfg WidgetConfig) *Widget {
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	w := &Widget{
		registry: registry,
		host:     cfg.Host,
		settings: cfg.Settings,
		metrics:  cfg.Metrics,
		state:    StateUninitialized,
	}
	w.router = NewRouter(w, cfg.Broadcasts, cfg.Observer)

	w.UpdateButtonLayoutWidth()

	return w
}

// Router returns the router feeding this widget
func (w *Widget) Router() *Router {
	return w.router
}

// Registry returns the widget's button registry
func (w *Widget) Registry() *Registry {
	return w.registry
}

// State returns the lifecycle state
func (w *Widget) State() State {
	return w.state
}

// Layout returns the layout chosen by the last successful build
func (w *Widget) Layout() Layout {
	return w.layout
}

// SetClickListener sets a function called after any button is clicked
func (w *Widget) SetClickListener(fn func(id string)) {
	w.clickListener = fn
}

// SetLongClickListener sets a function called after any button is long pressed
func (w *Widget) SetLongClickListener(fn func(id string)) {
	w.longClickListener = fn
}

// SetupWidget tears down the current buttons and subscriptions and rebuilds
// them from the widget_buttons setting. Buttons that fail to load are logged
// and skipped. The new row only replaces the old one once the router is
// subscribed again. On failure the previous row stays on screen but is inert
// until the next successful build.
func (w *Widget) SetupWidget() error {
	if w.state == StateTornDown {
		return ErrTornDown
	}

	w.state = StateRebuilding

	log.Printf("[WIDGET] Clearing any old widget state")
	w.router.Unsubscribe()
	released := w.registry.UnloadAll()
	if released > 0 {
		log.Printf("[WIDGET] Released %d buttons", released)
	}

	raw, ok := w.settings.GetString(SettingButtons)
	if !ok {
		log.Printf("[WIDGET] Default buttons being loaded")
	}
	ids := ParseButtons(raw, ok)
	log.Printf("[WIDGET] Button list: %s", JoinButtons(ids))

	views := make([]View, 0, len(ids))
	for _, id := range ids {
		view, err := w.host.InflateButtonView()
		if err != nil {
			log.Printf("[WIDGET] Failed to inflate view for button '%s': %v", id, err)
			continue
		}

		if err := w.registry.Load(id, view); err != nil {
			log.Printf("[WIDGET] Error setting up button '%s': %v", id, err)
			continue
		}

		w.bindView(view, len(views))
		views = append(views, view)
	}

	layout := DecideLayout(len(views), w.totalWidth)
	for _, view := range views {
		view.SetWidth(layout.ItemWidth)
	}

	container, err := w.host.CreateContainer(layout, views)
	if err != nil {
		w.abandon()
		return fmt.Errorf("create %s container: %w", layout.Kind, err)
	}

	actions := merge(w.registry.BroadcastActions(), widgetActions)
	keys := merge(w.registry.ObservedKeys(), widgetKeys)
	if err := w.router.Subscribe(actions, keys); err != nil {
		w.abandon()
		return fmt.Errorf("%w: %w", ErrSubscribe, err)
	}

	w.host.SetContent(container)
	w.layout = layout
	w.state = StateBuilt

	log.Printf("[WIDGET] Built %d buttons in a %s row (item width %dpx)", len(views), layout.Kind, layout.ItemWidth)
	return nil
}

// abandon releases the buttons of a pass whose row could not be shown. With
// nothing built, clicks on the row still on screen and UpdateWidget are
// ignored.
func (w *Widget) abandon() {
	if released := w.registry.UnloadAll(); released > 0 {
		log.Printf("[WIDGET] Dropped %d buttons from the failed build", released)
	}
	w.state = StateUninitialized
}

func (w *Widget) bindView(view View, index int) {
	view.OnClick(func() {
		w.router.Post(Click{Index: index})
	})
	view.OnLongClick(func() {
		w.router.Post(Click{Index: index, Long: true})
	})
}

// UpdateWidget refreshes every loaded button
func (w *Widget) UpdateWidget() {
	if w.state != StateBuilt {
		log.Printf("[WIDGET] Skipping update while %s", w.state)
		return
	}
	w.registry.UpdateAll()
}

// Visible reports whether the visibility setting asks for the widget
func (w *Widget) Visible() bool {
	return w.settings.GetInt(SettingVisibility, visibilityDefault) == visibilityShown
}

// UpdateVisibility shows or hides the widget from the visibility setting
func (w *Widget) UpdateVisibility() {
	visible := w.Visible()
	log.Printf("[WIDGET] Updating widget visibility: %v", visible)
	w.host.SetVisible(visible)
}

// ToggleVisibility flips the current visibility. The next UpdateVisibility
// call goes back to the setting.
func (w *Widget) ToggleVisibility() {
	w.host.SetVisible(!w.host.Visible())
}

// UpdateButtonLayoutWidth rereads the display width used by the next build
func (w *Widget) UpdateButtonLayoutWidth() {
	if w.metrics == nil {
		return
	}
	w.totalWidth = w.metrics.Width()
}

// ButtonWidth returns the per-button width the next build will use
func (w *Widget) ButtonWidth() int {
	return ItemWidth(w.totalWidth)
}

// DispatchBroadcast forwards a broadcast to every loaded button
func (w *Widget) DispatchBroadcast(action string, payload map[string]string) {
	w.registry.DispatchBroadcast(action, payload)
}

// DispatchSettingChange forwards a settings change to every loaded button
func (w *Widget) DispatchSettingChange(key string) {
	w.registry.DispatchSettingChange(key)
}

// Click forwards a press to the button at index and then to the listener
func (w *Widget) Click(index int, long bool) {
	if w.state != StateBuilt {
		return
	}

	if long {
		id, err := w.registry.LongClick(index)
		if err != nil {
			log.Printf("[WIDGET] Long click ignored: %v", err)
			return
		}
		if w.longClickListener != nil {
			w.longClickListener(id)
		}
		return
	}

	id, err := w.registry.Click(index)
	if err != nil {
		log.Printf("[WIDGET] Click ignored: %v", err)
		return
	}
	if w.clickListener != nil {
		w.clickListener(id)
	}
}

// Close drops subscriptions and buttons. A closed widget cannot be rebuilt.
func (w *Widget) Close() {
	if w.state == StateTornDown {
		return
	}
	w.router.Unsubscribe()
	w.registry.UnloadAll()
	w.state = StateTornDown
	log.Printf("[WIDGET] Torn down")
}

func merge(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		seen[v] = struct{}{}
	}
	return sortedKeys(seen)
}
