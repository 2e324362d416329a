package buttons

import (
	"errors"
	"log"

	"github.com/chess10kp/powerwidget/internal/powerwidget"
)

// ActionOpenSettings is sent on a long click with the button id in "button"
const ActionOpenSettings = "powerwidget.intent.action.OPEN_SETTINGS"

var ErrNotLoaded = errors.New("button is not loaded")

// Settings is the read/write side of the settings store buttons need
type Settings interface {
	GetString(key string) (string, bool)
	GetInt(key string, def int) int
	PutInt(key string, value int) error
}

// Broadcaster sends a broadcast action to every matching receiver
type Broadcaster interface {
	SendAction(action string, extras map[string]string) int
}

// BaseButton holds what every button shares: its id, its view, the color
// setting and the long click behaviour.
type BaseButton struct {
	id          string
	settings    Settings
	broadcaster Broadcaster
	view        powerwidget.View
	color       string
	keys        []string
	actions     []string
}

// NewBaseButton creates a base observing keys and listening to actions. The
// color key is always observed.
func NewBaseButton(id string, deps Deps, keys, actions []string) *BaseButton {
	return &BaseButton{
		id:          id,
		settings:    deps.Settings,
		broadcaster: deps.Broadcaster,
		keys:        append(append([]string{}, keys...), powerwidget.SettingColor),
		actions:     append([]string{}, actions...),
	}
}

// ID returns the button id
func (b *BaseButton) ID() string {
	return b.id
}

// ObservedKeys returns the settings keys this button reacts to
func (b *BaseButton) ObservedKeys() []string {
	return b.keys
}

// BroadcastActions returns the broadcast actions this button reacts to
func (b *BaseButton) BroadcastActions() []string {
	return b.actions
}

// View returns the attached view, nil when unloaded
func (b *BaseButton) View() powerwidget.View {
	return b.view
}

// Color returns the last applied color
func (b *BaseButton) Color() string {
	return b.color
}

func (b *BaseButton) attach(view powerwidget.View) error {
	if view == nil {
		return errors.New("nil view")
	}
	b.view = view
	b.applyColor()
	return nil
}

// Unload detaches the view
func (b *BaseButton) Unload() {
	b.view = nil
}

func (b *BaseButton) applyColor() {
	b.color, _ = b.settings.GetString(powerwidget.SettingColor)
	if b.view != nil {
		b.view.SetColor(b.color)
	}
}

// handleColor recolors the view when key is the color setting
func (b *BaseButton) handleColor(key string) bool {
	if key != powerwidget.SettingColor {
		return false
	}
	b.applyColor()
	return true
}

// LongClick asks for the settings page of this button
func (b *BaseButton) LongClick() {
	if b.broadcaster == nil {
		return
	}
	n := b.broadcaster.SendAction(ActionOpenSettings, map[string]string{"button": b.id})
	log.Printf("[BUTTON] %s: open settings delivered to %d receivers", b.id, n)
}

func (b *BaseButton) flip(key string) {
	current := b.settings.GetInt(key, 0)
	next := 1
	if current != 0 {
		next = 0
	}
	if err := b.settings.PutInt(key, next); err != nil {
		log.Printf("[BUTTON] %s: failed to write %s: %v", b.id, key, err)
	}
}
