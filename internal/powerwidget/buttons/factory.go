package buttons

import (
	"fmt"
	"sort"

	"github.com/chess10kp/powerwidget/internal/powerwidget"
)

// Deps are the collaborators handed to every button the factory builds
type Deps struct {
	Settings         Settings
	Broadcaster      Broadcaster
	BrightnessLevels []int
}

// Factory builds the built-in buttons
type Factory struct {
	deps    Deps
	toggles map[string]ToggleSpec
}

// NewFactory creates a factory for every built-in button
func NewFactory(deps Deps) *Factory {
	toggles := make(map[string]ToggleSpec, len(toggleSpecs))
	for _, spec := range toggleSpecs {
		toggles[spec.ID] = spec
	}
	return &Factory{deps: deps, toggles: toggles}
}

// IDs returns every id this factory recognizes
func (f *Factory) IDs() []string {
	ids := []string{"sound", "brightness"}
	for id := range f.toggles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// New creates a fresh button for id
func (f *Factory) New(id string) (powerwidget.Button, error) {
	if f.deps.Settings == nil {
		return nil, fmt.Errorf("button %s: no settings store", id)
	}

	switch id {
	case "sound":
		return NewSoundButton(f.deps), nil
	case "brightness":
		return NewBrightnessButton(f.deps), nil
	}

	if spec, ok := f.toggles[id]; ok {
		return NewToggleButton(spec, f.deps), nil
	}
	return nil, fmt.Errorf("%w: %s", powerwidget.ErrUnknownButton, id)
}
