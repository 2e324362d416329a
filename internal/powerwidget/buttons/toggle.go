package buttons

import (
	"github.com/chess10kp/powerwidget/internal/powerwidget"
)

// Broadcast payload values for the "state" extra
const (
	StateOn         = "on"
	StateOff        = "off"
	StateTurningOn  = "turning_on"
	StateTurningOff = "turning_off"
)

// ToggleSpec describes a two-state button backed by an int setting
type ToggleSpec struct {
	ID      string
	Key     string
	Action  string
	IconOn  string
	IconOff string
}

var toggleSpecs = []ToggleSpec{
	{
		ID:      "wifi",
		Key:     "wifi_on",
		Action:  "powerwidget.intent.action.WIFI_STATE_CHANGED",
		IconOn:  "network-wireless-symbolic",
		IconOff: "network-wireless-offline-symbolic",
	},
	{
		ID:      "bluetooth",
		Key:     "bluetooth_on",
		Action:  "powerwidget.intent.action.BLUETOOTH_STATE_CHANGED",
		IconOn:  "bluetooth-active-symbolic",
		IconOff: "bluetooth-disabled-symbolic",
	},
	{
		ID:      "gps",
		Key:     "location_on",
		Action:  "powerwidget.intent.action.PROVIDERS_CHANGED",
		IconOn:  "find-location-symbolic",
		IconOff: "location-services-disabled-symbolic",
	},
	{
		ID:      "sync",
		Key:     "sync_enabled",
		Action:  "powerwidget.intent.action.SYNC_STATUS_CHANGED",
		IconOn:  "emblem-synchronizing-symbolic",
		IconOff: "action-unavailable-symbolic",
	},
	{
		ID:      "airplane",
		Key:     "airplane_mode_on",
		Action:  "powerwidget.intent.action.AIRPLANE_MODE",
		IconOn:  "airplane-mode-symbolic",
		IconOff: "airplane-mode-disabled-symbolic",
	},
	{
		ID:      "autorotate",
		Key:     "accelerometer_rotation",
		Action:  "powerwidget.intent.action.ROTATION_CHANGED",
		IconOn:  "rotation-allowed-symbolic",
		IconOff: "rotation-locked-symbolic",
	},
	{
		ID:      "flashlight",
		Key:     "flashlight_on",
		Action:  "powerwidget.intent.action.FLASHLIGHT_CHANGED",
		IconOn:  "weather-clear-symbolic",
		IconOff: "weather-clear-night-symbolic",
	},
}

// ToggleSpecs returns the built-in two-state buttons
func ToggleSpecs() []ToggleSpec {
	return append([]ToggleSpec(nil), toggleSpecs...)
}

// ToggleButton is an on/off button whose state lives in a settings key.
// A broadcast with state turning_on or turning_off shows the transition
// indicator until the setting changes or a final state arrives.
type ToggleButton struct {
	*BaseButton
	spec       ToggleSpec
	transition bool
}

// NewToggleButton creates a toggle button from spec
func NewToggleButton(spec ToggleSpec, deps Deps) *ToggleButton {
	return &ToggleButton{
		BaseButton: NewBaseButton(spec.ID, deps, []string{spec.Key}, []string{spec.Action}),
		spec:       spec,
	}
}

// Load attaches the view and draws the current state
func (b *ToggleButton) Load(view powerwidget.View) error {
	if err := b.attach(view); err != nil {
		return err
	}
	return b.UpdateState()
}

// On reports whether the backing setting is non-zero
func (b *ToggleButton) On() bool {
	return b.settings.GetInt(b.spec.Key, 0) != 0
}

// UpdateState draws the icon and indicator
func (b *ToggleButton) UpdateState() error {
	if b.view == nil {
		return ErrNotLoaded
	}

	on := b.On()
	if on {
		b.view.SetIcon(b.spec.IconOn)
	} else {
		b.view.SetIcon(b.spec.IconOff)
	}

	switch {
	case b.transition:
		b.view.SetIndicator(powerwidget.IndicatorTransition)
	case on:
		b.view.SetIndicator(powerwidget.IndicatorOn)
	default:
		b.view.SetIndicator(powerwidget.IndicatorOff)
	}
	return nil
}

// HandleBroadcast tracks transition states for this button's action
func (b *ToggleButton) HandleBroadcast(action string, payload map[string]string) {
	if action != b.spec.Action {
		return
	}
	switch payload["state"] {
	case StateTurningOn, StateTurningOff:
		b.transition = true
	case StateOn, StateOff:
		b.transition = false
	}
}

// HandleSettingChange ends a transition when the backing key changes
func (b *ToggleButton) HandleSettingChange(key string) {
	if b.handleColor(key) {
		return
	}
	if key == b.spec.Key {
		b.transition = false
	}
}

// Toggle flips the backing setting
func (b *ToggleButton) Toggle() {
	b.flip(b.spec.Key)
}

// Transitioning reports whether a transition is in progress
func (b *ToggleButton) Transitioning() bool {
	return b.transition
}
