package gtk

import (
	"fmt"
	"log"
	"sync"
	"unsafe"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/powerwidget/internal/layer"
	"github.com/chess10kp/powerwidget/internal/powerwidget"
)

// Options configures the GTK host window
type Options struct {
	Title    string
	Anchor   string // "top" or "bottom"
	Height   int
	Margin   int
	IconSize int
	Icons    *IconCache
}

// Host shows the widget in a layer-shell window spanning one screen edge.
// Every method may be called from any goroutine; widget work is queued onto
// the GTK main loop with glib.IdleAdd.
type Host struct {
	opts   Options
	window *gtk.Window
	root   *gtk.Box

	mu      sync.Mutex
	visible bool
	current gtk.IWidget
}

// NewHost creates the window. It must be called on the GTK main thread
// after gtk.Init.
func NewHost(opts Options) (*Host, error) {
	if opts.IconSize <= 0 {
		opts.IconSize = 24
	}

	window, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	root, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	window.SetTitle(opts.Title)
	window.SetDecorated(false)
	window.SetResizable(false)
	window.SetName("powerwidget")
	if opts.Height > 0 {
		window.SetDefaultSize(-1, opts.Height)
	}
	window.Add(root)

	layer.ConfigureStrip(unsafe.Pointer(window.Native()), layer.Strip{
		Layer:    layer.LayerTop,
		Edge:     layer.EdgeFromString(opts.Anchor),
		Margin:   opts.Margin,
		Keyboard: layer.KeyboardModeNone,
		Reserve:  true,
	})

	window.Connect("destroy", func() {
		gtk.MainQuit()
	})

	root.ShowAll()

	return &Host{opts: opts, window: window, root: root}, nil
}

// InflateButtonView creates a view. Its widgets are built on the main loop
// when the view is first placed in a container.
func (h *Host) InflateButtonView() (powerwidget.View, error) {
	return &view{host: h}, nil
}

type container struct {
	layout powerwidget.Layout
	views  []*view
}

// CreateContainer groups views into a fixed or scrollable row
func (h *Host) CreateContainer(layout powerwidget.Layout, views []powerwidget.View) (powerwidget.Container, error) {
	c := &container{layout: layout, views: make([]*view, 0, len(views))}
	for i, v := range views {
		gv, ok := v.(*view)
		if !ok || gv.host != h {
			return nil, fmt.Errorf("view %d was not inflated by this host", i)
		}
		c.views = append(c.views, gv)
	}
	return c, nil
}

// SetContent swaps the window's row for c
func (h *Host) SetContent(c powerwidget.Container) {
	next, ok := c.(*container)
	if !ok {
		log.Printf("[GTK] Ignoring foreign container %T", c)
		return
	}

	glib.IdleAdd(func() {
		widget, err := h.build(next)
		if err != nil {
			log.Printf("[GTK] Failed to build row: %v", err)
			return
		}

		h.mu.Lock()
		previous := h.current
		h.current = widget
		h.mu.Unlock()

		if previous != nil {
			h.root.Remove(previous)
			previous.ToWidget().Destroy()
		}
		h.root.PackStart(widget, true, true, 0)
		widget.ToWidget().ShowAll()
	})
}

func (h *Host) build(c *container) (gtk.IWidget, error) {
	row, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, err
	}
	row.SetName("powerwidget-row")
	row.SetHomogeneous(c.layout.Kind == powerwidget.ContainerFixed)

	for _, v := range c.views {
		button, err := v.realize()
		if err != nil {
			return nil, err
		}
		row.PackStart(button, c.layout.Kind == powerwidget.ContainerFixed, true, 0)
	}

	if c.layout.Kind != powerwidget.ContainerScrollable {
		return row, nil
	}

	scroll, err := gtk.ScrolledWindowNew(nil, nil)
	if err != nil {
		return nil, err
	}
	scroll.SetName("powerwidget-scroll")
	scroll.SetPolicy(gtk.POLICY_AUTOMATIC, gtk.POLICY_NEVER)
	scroll.SetOverlayScrolling(true)
	if ctx, err := scroll.GetStyleContext(); err == nil {
		fade, _ := gtk.CssProviderNew()
		if err := fade.LoadFromData(fadingEdgeCSS(c.layout.FadingEdge)); err == nil {
			ctx.AddProvider(fade, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
		}
	}
	scroll.Add(row)
	return scroll, nil
}

// SetVisible shows or hides the window
func (h *Host) SetVisible(visible bool) {
	h.mu.Lock()
	h.visible = visible
	h.mu.Unlock()

	glib.IdleAdd(func() {
		if visible {
			h.window.ShowAll()
		} else {
			h.window.Hide()
		}
	})
}

// Visible reports the last requested visibility
func (h *Host) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

// Close destroys the window on the main loop
func (h *Host) Close() {
	glib.IdleAdd(func() {
		h.window.Destroy()
	})
}

// view keeps the requested state on the Go side and mirrors it into GTK
// widgets once they exist.
type view struct {
	host *Host

	mu        sync.Mutex
	icon      string
	indicator powerwidget.IndicatorState
	color     string
	width     int
	click     func()
	longClick func()

	button   *gtk.Button
	image    *gtk.Image
	bar      *gtk.Box
	provider *gtk.CssProvider
}

// realize creates the widgets; main loop only
func (v *view) realize() (*gtk.Button, error) {
	button, err := gtk.ButtonNew()
	if err != nil {
		return nil, err
	}
	button.SetRelief(gtk.RELIEF_NONE)

	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 0)
	if err != nil {
		return nil, err
	}
	image, err := gtk.ImageNew()
	if err != nil {
		return nil, err
	}
	bar, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, err
	}
	provider, err := gtk.CssProviderNew()
	if err != nil {
		return nil, err
	}

	if ctx, err := bar.GetStyleContext(); err == nil {
		ctx.AddClass("indicator")
		ctx.AddProvider(provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	}
	if ctx, err := button.GetStyleContext(); err == nil {
		ctx.AddProvider(provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	}

	box.PackStart(image, true, true, 0)
	box.PackStart(bar, false, false, 0)
	button.Add(box)

	button.Connect("clicked", func() {
		v.mu.Lock()
		fn := v.click
		v.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
	// secondary button stands in for a long press
	button.Connect("button-press-event", func(_ *gtk.Button, event *gdk.Event) bool {
		if gdk.EventButtonNewFromEvent(event).Button() != gdk.BUTTON_SECONDARY {
			return false
		}
		v.mu.Lock()
		fn := v.longClick
		v.mu.Unlock()
		if fn != nil {
			fn()
		}
		return true
	})

	v.mu.Lock()
	v.button, v.image, v.bar, v.provider = button, image, bar, provider
	v.mu.Unlock()

	v.apply()
	return button, nil
}

// apply copies the Go-side state into the widgets; main loop only
func (v *view) apply() {
	v.mu.Lock()
	icon, indicator, color, width := v.icon, v.indicator, v.color, v.width
	button, image, bar, provider := v.button, v.image, v.bar, v.provider
	v.mu.Unlock()

	if button == nil {
		return
	}

	if width > 0 {
		button.SetSizeRequest(width, -1)
	}

	if icons := v.host.opts.Icons; icons != nil {
		if pixbuf, err := icons.Get(icon, v.host.opts.IconSize); err == nil {
			image.SetFromPixbuf(pixbuf)
		} else {
			image.SetFromIconName(icon, gtk.ICON_SIZE_LARGE_TOOLBAR)
		}
	} else {
		image.SetFromIconName(icon, gtk.ICON_SIZE_LARGE_TOOLBAR)
	}

	if ctx, err := bar.GetStyleContext(); err == nil {
		for _, class := range []string{"indicator-on", "indicator-off", "indicator-transition"} {
			ctx.RemoveClass(class)
		}
		ctx.AddClass("indicator-" + indicator.String())
	}

	if err := provider.LoadFromData(colorCSS(color)); err != nil {
		log.Printf("[GTK] Bad color %q: %v", color, err)
	}
}

func (v *view) update(fn func()) {
	v.mu.Lock()
	fn()
	realized := v.button != nil
	v.mu.Unlock()

	if realized {
		glib.IdleAdd(v.apply)
	}
}

func (v *view) SetIcon(name string) {
	v.update(func() { v.icon = name })
}

func (v *view) SetIndicator(state powerwidget.IndicatorState) {
	v.update(func() { v.indicator = state })
}

func (v *view) SetColor(color string) {
	v.update(func() { v.color = color })
}

func (v *view) SetWidth(px int) {
	v.update(func() { v.width = px })
}

func (v *view) OnClick(fn func()) {
	v.mu.Lock()
	v.click = fn
	v.mu.Unlock()
}

func (v *view) OnLongClick(fn func()) {
	v.mu.Lock()
	v.longClick = fn
	v.mu.Unlock()
}
