package buttons

import (
	"log"
	"strconv"

	"github.com/chess10kp/powerwidget/internal/powerwidget"
)

const (
	SoundKey    = "ringer_mode"
	SoundAction = "powerwidget.intent.action.RINGER_MODE_CHANGED"
)

// Ringer modes stored under SoundKey
const (
	RingerSilent = iota
	RingerVibrate
	RingerNormal
)

// SoundButton cycles the ringer mode normal, vibrate, silent
type SoundButton struct {
	*BaseButton
}

// NewSoundButton creates the sound button
func NewSoundButton(deps Deps) *SoundButton {
	return &SoundButton{
		BaseButton: NewBaseButton("sound", deps, []string{SoundKey}, []string{SoundAction}),
	}
}

// Load attaches the view and draws the current mode
func (b *SoundButton) Load(view powerwidget.View) error {
	if err := b.attach(view); err != nil {
		return err
	}
	return b.UpdateState()
}

// Mode returns the current ringer mode
func (b *SoundButton) Mode() int {
	mode := b.settings.GetInt(SoundKey, RingerNormal)
	if mode < RingerSilent || mode > RingerNormal {
		return RingerNormal
	}
	return mode
}

// UpdateState draws the icon and indicator for the current mode
func (b *SoundButton) UpdateState() error {
	if b.view == nil {
		return ErrNotLoaded
	}

	switch b.Mode() {
	case RingerSilent:
		b.view.SetIcon("audio-volume-muted-symbolic")
		b.view.SetIndicator(powerwidget.IndicatorOff)
	case RingerVibrate:
		b.view.SetIcon("audio-volume-low-symbolic")
		b.view.SetIndicator(powerwidget.IndicatorTransition)
	default:
		b.view.SetIcon("audio-volume-high-symbolic")
		b.view.SetIndicator(powerwidget.IndicatorOn)
	}
	return nil
}

// HandleBroadcast stores a mode reported by the system
func (b *SoundButton) HandleBroadcast(action string, payload map[string]string) {
	if action != SoundAction {
		return
	}
	raw, ok := payload["mode"]
	if !ok {
		return
	}
	mode, err := strconv.Atoi(raw)
	if err != nil || mode < RingerSilent || mode > RingerNormal {
		log.Printf("[BUTTON] sound: ignoring ringer mode %q", raw)
		return
	}
	if mode != b.Mode() {
		b.put(mode)
	}
}

// HandleSettingChange recolors on color changes; mode changes are picked up
// by the next UpdateState.
func (b *SoundButton) HandleSettingChange(key string) {
	b.handleColor(key)
}

// Toggle moves to the next ringer mode
func (b *SoundButton) Toggle() {
	switch b.Mode() {
	case RingerNormal:
		b.put(RingerVibrate)
	case RingerVibrate:
		b.put(RingerSilent)
	default:
		b.put(RingerNormal)
	}
}

func (b *SoundButton) put(mode int) {
	if err := b.settings.PutInt(SoundKey, mode); err != nil {
		log.Printf("[BUTTON] sound: failed to write ringer mode: %v", err)
	}
}
