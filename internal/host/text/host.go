package text

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/chess10kp/powerwidget/internal/powerwidget"
)

var ErrNoContent = errors.New("no content")

// Options configures a terminal host
type Options struct {
	Out io.Writer
	// Columns fixes the width; zero asks the terminal and falls back to
	// FallbackColumns.
	Columns         int
	FallbackColumns int
	OnColor         string
	OffColor        string
	TransitionColor string
	// RedrawDelay coalesces redraws; zero draws synchronously.
	RedrawDelay time.Duration
}

// Host draws the widget as a row of cells in a terminal. It also serves as
// the widget's DisplayMetrics, one column per pixel.
type Host struct {
	opts Options

	mu      sync.Mutex
	visible bool
	content *row
	pending *time.Timer
	frames  int
}

type row struct {
	layout powerwidget.Layout
	views  []*view
	offset int
}

// New creates a terminal host
func New(opts Options) *Host {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.FallbackColumns <= 0 {
		opts.FallbackColumns = 80
	}
	if opts.OnColor == "" {
		opts.OnColor = "#a6e3a1"
	}
	if opts.OffColor == "" {
		opts.OffColor = "#585b70"
	}
	if opts.TransitionColor == "" {
		opts.TransitionColor = "#f9e2af"
	}
	return &Host{opts: opts}
}

// Width returns the terminal width in columns
func (h *Host) Width() int {
	if h.opts.Columns > 0 {
		return h.opts.Columns
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return h.opts.FallbackColumns
	}
	return width
}

// InflateButtonView creates an empty cell
func (h *Host) InflateButtonView() (powerwidget.View, error) {
	return &view{host: h}, nil
}

// CreateContainer assembles views into a row
func (h *Host) CreateContainer(layout powerwidget.Layout, views []powerwidget.View) (powerwidget.Container, error) {
	r := &row{layout: layout, views: make([]*view, 0, len(views))}
	for i, v := range views {
		tv, ok := v.(*view)
		if !ok || tv.host != h {
			return nil, fmt.Errorf("view %d was not inflated by this host", i)
		}
		r.views = append(r.views, tv)
	}
	return r, nil
}

// SetContent replaces the current row
func (h *Host) SetContent(c powerwidget.Container) {
	r, ok := c.(*row)
	if !ok {
		log.Printf("[TEXT] Ignoring foreign container %T", c)
		return
	}
	h.mu.Lock()
	h.content = r
	h.mu.Unlock()
	h.invalidate()
}

// SetVisible shows or hides the row
func (h *Host) SetVisible(visible bool) {
	h.mu.Lock()
	changed := h.visible != visible
	h.visible = visible
	h.mu.Unlock()
	if changed {
		h.invalidate()
	}
}

// Visible reports whether the row is shown
func (h *Host) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

// Press runs the click handler of the cell at index in the current row
func (h *Host) Press(index int, long bool) error {
	h.mu.Lock()
	r := h.content
	h.mu.Unlock()

	if r == nil {
		return ErrNoContent
	}
	if index < 0 || index >= len(r.views) {
		return fmt.Errorf("no button at %d", index)
	}

	v := r.views[index]
	v.mu().Lock()
	fn := v.click
	if long {
		fn = v.longClick
	}
	v.mu().Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// Scroll moves a scrollable row by delta cells
func (h *Host) Scroll(delta int) {
	h.mu.Lock()
	r := h.content
	if r == nil || r.layout.Kind != powerwidget.ContainerScrollable {
		h.mu.Unlock()
		return
	}
	r.offset = clamp(r.offset+delta, 0, max(0, len(r.views)-powerwidget.ScrollThreshold))
	h.mu.Unlock()
	h.invalidate()
}

func (h *Host) invalidate() {
	if h.opts.RedrawDelay <= 0 {
		h.Draw()
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending != nil {
		return
	}
	h.pending = time.AfterFunc(h.opts.RedrawDelay, func() {
		h.mu.Lock()
		h.pending = nil
		h.mu.Unlock()
		h.Draw()
	})
}

// Draw writes the current frame to the output
func (h *Host) Draw() {
	frame := h.Render()

	h.mu.Lock()
	h.frames++
	h.mu.Unlock()

	// clear the screen and home the cursor
	if _, err := io.WriteString(h.opts.Out, "\x1b[H\x1b[2J"+frame+"\n"); err != nil {
		log.Printf("[TEXT] Draw failed: %v", err)
	}
}

// Frames returns how many frames were drawn
func (h *Host) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Render returns the current frame. A hidden widget renders empty.
func (h *Host) Render() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.visible || h.content == nil {
		return ""
	}

	r := h.content
	views := r.views
	scrollable := r.layout.Kind == powerwidget.ContainerScrollable
	start, end := 0, len(views)
	if scrollable {
		start = r.offset
		end = min(len(views), start+powerwidget.ScrollThreshold)
	}

	cells := make([]string, 0, end-start+2)
	if scrollable {
		cells = append(cells, edge(start > 0, "‹"))
	}
	for i := start; i < end; i++ {
		cells = append(cells, h.renderCell(views[i], views[i].width, i))
	}
	if scrollable {
		cells = append(cells, edge(end < len(views), "›"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func edge(more bool, glyph string) string {
	if !more {
		glyph = " "
	}
	return lipgloss.NewStyle().Width(1).Render(glyph + "\n ")
}

func (h *Host) renderCell(v *view, width, index int) string {
	if width < 3 {
		width = 3
	}

	label := fmt.Sprintf("%d %s", index+1, shortName(v.icon))
	label = runewidth.Truncate(label, width-1, "…")

	labelStyle := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if v.color != "" {
		labelStyle = labelStyle.Foreground(lipgloss.Color(v.color))
	}

	barColor := h.opts.OffColor
	switch v.indicator {
	case powerwidget.IndicatorOn:
		barColor = h.opts.OnColor
		if v.color != "" {
			barColor = v.color
		}
	case powerwidget.IndicatorTransition:
		barColor = h.opts.TransitionColor
	}
	barWidth := max(1, width-2)
	bar := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(lipgloss.Color(barColor)).
		Render(strings.Repeat(indicatorGlyph(v.indicator), barWidth))

	return lipgloss.JoinVertical(lipgloss.Center, labelStyle.Render(label), bar)
}

func indicatorGlyph(state powerwidget.IndicatorState) string {
	switch state {
	case powerwidget.IndicatorOn:
		return "━"
	case powerwidget.IndicatorTransition:
		return "╍"
	default:
		return "─"
	}
}

// shortName turns an icon name like network-wireless-symbolic into "network"
func shortName(icon string) string {
	icon = strings.TrimSuffix(icon, "-symbolic")
	if name, _, ok := strings.Cut(icon, "-"); ok {
		return name
	}
	if icon == "" {
		return "?"
	}
	return icon
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// view is one cell. Its fields are guarded by the host mutex.
type view struct {
	host      *Host
	icon      string
	indicator powerwidget.IndicatorState
	color     string
	width     int
	click     func()
	longClick func()
}

func (v *view) mu() *sync.Mutex {
	return &v.host.mu
}

func (v *view) set(fn func()) {
	v.host.mu.Lock()
	fn()
	shown := v.host.content != nil && v.host.visible
	v.host.mu.Unlock()
	if shown {
		v.host.invalidate()
	}
}

func (v *view) SetIcon(name string) {
	v.set(func() { v.icon = name })
}

func (v *view) SetIndicator(state powerwidget.IndicatorState) {
	v.set(func() { v.indicator = state })
}

func (v *view) SetColor(color string) {
	v.set(func() { v.color = color })
}

func (v *view) SetWidth(px int) {
	v.set(func() { v.width = px })
}

func (v *view) OnClick(fn func()) {
	v.host.mu.Lock()
	v.click = fn
	v.host.mu.Unlock()
}

func (v *view) OnLongClick(fn func()) {
	v.host.mu.Lock()
	v.longClick = fn
	v.host.mu.Unlock()
}
