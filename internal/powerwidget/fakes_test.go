package powerwidget

import (
	"errors"
	"sort"
)

// fakeView records what buttons draw into it
type fakeView struct {
	icon      string
	indicator IndicatorState
	color     string
	width     int
	click     func()
	longClick func()
}

func (v *fakeView) SetIcon(name string)               { v.icon = name }
func (v *fakeView) SetIndicator(state IndicatorState) { v.indicator = state }
func (v *fakeView) SetColor(color string)             { v.color = color }
func (v *fakeView) SetWidth(px int)                   { v.width = px }
func (v *fakeView) OnClick(fn func())                 { v.click = fn }
func (v *fakeView) OnLongClick(fn func())             { v.longClick = fn }

type fakeContainer struct {
	layout Layout
	views  []View
}

// fakeHost keeps everything in memory
type fakeHost struct {
	inflated     []*fakeView
	containers   []*fakeContainer
	content      Container
	visible      bool
	setVisible   int
	inflateErr   error
	containerErr error
}

func (h *fakeHost) InflateButtonView() (View, error) {
	if h.inflateErr != nil {
		return nil, h.inflateErr
	}
	v := &fakeView{}
	h.inflated = append(h.inflated, v)
	return v, nil
}

func (h *fakeHost) CreateContainer(layout Layout, views []View) (Container, error) {
	if h.containerErr != nil {
		return nil, h.containerErr
	}
	c := &fakeContainer{layout: layout, views: views}
	h.containers = append(h.containers, c)
	return c, nil
}

func (h *fakeHost) SetContent(c Container) { h.content = c }

func (h *fakeHost) SetVisible(visible bool) {
	h.visible = visible
	h.setVisible++
}

func (h *fakeHost) Visible() bool { return h.visible }

type fakeMetrics struct{ width int }

func (m *fakeMetrics) Width() int { return m.width }

// fakeSettings is a map-backed Settings
type fakeSettings struct {
	strings map[string]string
	ints    map[string]int
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{strings: map[string]string{}, ints: map[string]int{}}
}

func (s *fakeSettings) GetString(key string) (string, bool) {
	v, ok := s.strings[key]
	return v, ok
}

func (s *fakeSettings) GetInt(key string, def int) int {
	if v, ok := s.ints[key]; ok {
		return v
	}
	return def
}

// fakeSource implements both source interfaces and counts live registrations
type fakeSource struct {
	broadcastFns map[int]func(string, map[string]string)
	settingFns   map[int]func(string)
	actions      []string
	keys         []string
	next         int
	registerErr  error
	observeErr   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		broadcastFns: map[int]func(string, map[string]string){},
		settingFns:   map[int]func(string){},
	}
}

func (s *fakeSource) RegisterReceiver(actions []string, fn func(string, map[string]string)) (func(), error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	s.next++
	id := s.next
	s.broadcastFns[id] = fn
	s.actions = actions
	return func() { delete(s.broadcastFns, id) }, nil
}

func (s *fakeSource) Observe(keys []string, fn func(string)) (func(), error) {
	if s.observeErr != nil {
		return nil, s.observeErr
	}
	s.next++
	id := s.next
	s.settingFns[id] = fn
	s.keys = keys
	return func() { delete(s.settingFns, id) }, nil
}

func (s *fakeSource) send(action string, payload map[string]string) {
	for _, fn := range s.broadcastFns {
		fn(action, payload)
	}
}

func (s *fakeSource) change(key string) {
	for _, fn := range s.settingFns {
		fn(key)
	}
}

// fakeButton counts calls from the registry
type fakeButton struct {
	id         string
	view       View
	actions    []string
	keys       []string
	loadErr    error
	updateErr  error
	panicOn    string
	loads      int
	unloads    int
	updates    int
	broadcasts []string
	changes    []string
	toggles    int
	longClicks int
}

func (b *fakeButton) ID() string { return b.id }

func (b *fakeButton) Load(view View) error {
	if b.panicOn == "load" {
		panic("load exploded")
	}
	if b.loadErr != nil {
		return b.loadErr
	}
	b.view = view
	b.loads++
	return nil
}

func (b *fakeButton) Unload() { b.unloads++ }

func (b *fakeButton) UpdateState() error {
	if b.panicOn == "update" {
		panic("update exploded")
	}
	b.updates++
	return b.updateErr
}

func (b *fakeButton) HandleBroadcast(action string, payload map[string]string) {
	if b.panicOn == "broadcast" {
		panic("broadcast exploded")
	}
	b.broadcasts = append(b.broadcasts, action)
}

func (b *fakeButton) HandleSettingChange(key string) {
	b.changes = append(b.changes, key)
}

func (b *fakeButton) ObservedKeys() []string     { return b.keys }
func (b *fakeButton) BroadcastActions() []string { return b.actions }
func (b *fakeButton) Toggle()                    { b.toggles++ }
func (b *fakeButton) LongClick()                 { b.longClicks++ }

// fakeFactory builds fakeButtons and remembers every instance
type fakeFactory struct {
	ids     []string
	built   []*fakeButton
	newErr  error
	prepare func(b *fakeButton)
}

func (f *fakeFactory) IDs() []string { return f.ids }

func (f *fakeFactory) New(id string) (Button, error) {
	if f.newErr != nil {
		return nil, f.newErr
	}
	b := &fakeButton{
		id:      id,
		actions: []string{"action." + id},
		keys:    []string{"key." + id},
	}
	if f.prepare != nil {
		f.prepare(b)
	}
	f.built = append(f.built, b)
	return b, nil
}

func (f *fakeFactory) live() []*fakeButton {
	var out []*fakeButton
	for _, b := range f.built {
		if b.unloads == 0 {
			out = append(out, b)
		}
	}
	return out
}

var errBoom = errors.New("boom")

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
