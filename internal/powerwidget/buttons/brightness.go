package buttons

import (
	"log"
	"sort"

	"github.com/chess10kp/powerwidget/internal/powerwidget"
)

const (
	BrightnessKey = "screen_brightness"
	MaxBrightness = 255
)

// DefaultBrightnessLevels are used when no levels are configured
var DefaultBrightnessLevels = []int{30, 102, 255}

// BrightnessButton steps the screen brightness through a fixed set of levels
type BrightnessButton struct {
	*BaseButton
	levels []int
}

// NewBrightnessButton creates the brightness button. Levels outside
// 0..MaxBrightness are dropped; an empty result falls back to the defaults.
func NewBrightnessButton(deps Deps) *BrightnessButton {
	levels := make([]int, 0, len(deps.BrightnessLevels))
	for _, l := range deps.BrightnessLevels {
		if l >= 0 && l <= MaxBrightness {
			levels = append(levels, l)
		}
	}
	if len(levels) == 0 {
		levels = append(levels, DefaultBrightnessLevels...)
	}
	sort.Ints(levels)

	return &BrightnessButton{
		BaseButton: NewBaseButton("brightness", deps, []string{BrightnessKey}, nil),
		levels:     levels,
	}
}

// Load attaches the view and draws the current level
func (b *BrightnessButton) Load(view powerwidget.View) error {
	if err := b.attach(view); err != nil {
		return err
	}
	return b.UpdateState()
}

// Levels returns the sorted brightness levels
func (b *BrightnessButton) Levels() []int {
	return append([]int(nil), b.levels...)
}

// Level returns the current brightness
func (b *BrightnessButton) Level() int {
	return b.settings.GetInt(BrightnessKey, b.levels[len(b.levels)-1])
}

// UpdateState shows on at the top level, off at the bottom, transition between
func (b *BrightnessButton) UpdateState() error {
	if b.view == nil {
		return ErrNotLoaded
	}

	level := b.Level()
	switch {
	case level >= b.levels[len(b.levels)-1]:
		b.view.SetIcon("display-brightness-high-symbolic")
		b.view.SetIndicator(powerwidget.IndicatorOn)
	case level <= b.levels[0]:
		b.view.SetIcon("display-brightness-low-symbolic")
		b.view.SetIndicator(powerwidget.IndicatorOff)
	default:
		b.view.SetIcon("display-brightness-medium-symbolic")
		b.view.SetIndicator(powerwidget.IndicatorTransition)
	}
	return nil
}

// HandleBroadcast ignores broadcasts
func (b *BrightnessButton) HandleBroadcast(action string, payload map[string]string) {}

// HandleSettingChange recolors on color changes
func (b *BrightnessButton) HandleSettingChange(key string) {
	b.handleColor(key)
}

// Toggle moves to the next level above the current one, wrapping to the lowest
func (b *BrightnessButton) Toggle() {
	current := b.Level()
	next := b.levels[0]
	for _, l := range b.levels {
		if l > current {
			next = l
			break
		}
	}
	if err := b.settings.PutInt(BrightnessKey, next); err != nil {
		log.Printf("[BUTTON] brightness: failed to write level: %v", err)
	}
}
