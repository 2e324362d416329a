package layer

/*
#cgo pkg-config: gtk-layer-shell-0
#include <gtk-layer-shell.h>
*/
import "C"
import "unsafe"

// Layer is a layer shell stacking layer
type Layer int

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

// Edge is a screen edge
type Edge int

const (
	EdgeLeft   Edge = 0
	EdgeRight  Edge = 1
	EdgeTop    Edge = 2
	EdgeBottom Edge = 3
)

// KeyboardMode is the keyboard interactivity of a surface
type KeyboardMode int

const (
	KeyboardModeNone      KeyboardMode = 0
	KeyboardModeExclusive KeyboardMode = 1
	KeyboardModeOnDemand  KeyboardMode = 2
)

// Strip describes a surface spanning the full width of one horizontal edge
type Strip struct {
	Layer    Layer
	Edge     Edge
	Margin   int
	Keyboard KeyboardMode
	// Reserve keeps other windows out of the strip's area
	Reserve bool
}

// EdgeFromString maps "top" to EdgeTop and anything else to EdgeBottom
func EdgeFromString(s string) Edge {
	if s == "top" {
		return EdgeTop
	}
	return EdgeBottom
}

// ConfigureStrip turns a GtkWindow into a layer surface anchored as s
// describes. It must run before the window is mapped.
func ConfigureStrip(window unsafe.Pointer, s Strip) {
	w := (*C.GtkWindow)(window)

	C.gtk_layer_init_for_window(w)
	C.gtk_layer_set_layer(w, C.GtkLayerShellLayer(s.Layer))

	for _, e := range []Edge{EdgeLeft, EdgeRight, s.Edge} {
		C.gtk_layer_set_anchor(w, C.GtkLayerShellEdge(e), 1)
	}
	if s.Margin > 0 {
		C.gtk_layer_set_margin(w, C.GtkLayerShellEdge(s.Edge), C.int(s.Margin))
	}
	if s.Reserve {
		C.gtk_layer_auto_exclusive_zone_enable(w)
	} else {
		C.gtk_layer_set_exclusive_zone(w, 0)
	}
	C.gtk_layer_set_keyboard_mode(w, C.GtkLayerShellKeyboardMode(s.Keyboard))
}
