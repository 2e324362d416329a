package powerwidget

// IndicatorState is the state a button shows on its indicator bar.
type IndicatorState int

const (
	IndicatorOff IndicatorState = iota
	IndicatorOn
	IndicatorTransition
)

// String returns the string representation of IndicatorState
func (s IndicatorState) String() string {
	switch s {
	case IndicatorOff:
		return "off"
	case IndicatorOn:
		return "on"
	case IndicatorTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// View is the host-side handle a button draws into. Views are created by
// Host.InflateButtonView and handed to exactly one button.
type View interface {
	SetIcon(name string)
	SetIndicator(state IndicatorState)
	SetColor(color string)
	SetWidth(px int)
	OnClick(fn func())
	OnLongClick(fn func())
}

// Container is an assembled row of views, opaque to the widget.
type Container interface{}

// Host renders the widget. Implementations must be safe to call from the
// router goroutine and marshal onto their own UI thread if they have one.
type Host interface {
	InflateButtonView() (View, error)
	CreateContainer(layout Layout, views []View) (Container, error)
	// SetContent replaces whatever the host currently shows with c.
	SetContent(c Container)
	SetVisible(visible bool)
	Visible() bool
}

// DisplayMetrics reports the width available to the widget, in pixels.
type DisplayMetrics interface {
	Width() int
}

// Settings is the read side of the key-value settings store.
type Settings interface {
	GetString(key string) (string, bool)
	GetInt(key string, def int) int
}

// BroadcastSource delivers named broadcast actions. The returned function
// unregisters the receiver.
type BroadcastSource interface {
	RegisterReceiver(actions []string, fn func(action string, payload map[string]string)) (func(), error)
}

// SettingsSource delivers settings change notifications for a set of keys.
// The returned function removes the observer.
type SettingsSource interface {
	Observe(keys []string, fn func(key string)) (func(), error)
}
