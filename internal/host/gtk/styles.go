package gtk

import (
	"fmt"
	"log"
	"os"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
)

// Styling is the part of the configuration the GTK host paints with
type Styling struct {
	Background      string
	Foreground      string
	OnColor         string
	OffColor        string
	TransitionColor string
	Font            string
	FontSize        int
	CustomCSS       string
}

const stylesTemplate = `
* {
    font-family: "%s", monospace;
    font-size: %dpx;
    margin: 0;
    padding: 0;
}

#powerwidget, #powerwidget-row {
    background-color: %s;
}

#powerwidget button {
    background: none;
    border: none;
    box-shadow: none;
    color: %s;
    padding: 6px 0;
}

#powerwidget button:hover {
    background-color: alpha(%s, 0.08);
}

.indicator {
    min-height: 3px;
    margin: 2px 12px 0 12px;
    border-radius: 2px;
}

.indicator-on {
    background-color: %s;
}

.indicator-off {
    background-color: %s;
}

.indicator-transition {
    background-color: %s;
}

#powerwidget-scroll undershoot.left {
    background: linear-gradient(to right, %s, transparent);
}

#powerwidget-scroll undershoot.right {
    background: linear-gradient(to left, %s, transparent);
    background-position: right;
}

#powerwidget-scroll scrollbar {
    margin-top: 2px;
}
`

func (s Styling) css() string {
	font := s.Font
	if font == "" {
		font = "Iosevka"
	}
	size := s.FontSize
	if size <= 0 {
		size = 14
	}
	return fmt.Sprintf(stylesTemplate,
		font, size,
		s.Background,
		s.Foreground,
		s.Foreground,
		s.OnColor,
		s.OffColor,
		s.TransitionColor,
		s.Background,
		s.Background,
	)
}

// SetupStyles installs the widget styles for the default screen, then the
// user's CSS file on top if there is one.
func SetupStyles(s Styling) {
	screen, err := gdk.ScreenGetDefault()
	if err != nil || screen == nil {
		log.Printf("[GTK] Warning: Failed to get default screen: %v", err)
		return
	}

	provider, _ := gtk.CssProviderNew()
	if err := provider.LoadFromData(s.css()); err != nil {
		log.Printf("[GTK] Warning: Failed to load default styles: %v", err)
		return
	}
	gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)

	if s.CustomCSS == "" {
		return
	}
	data, err := os.ReadFile(s.CustomCSS)
	if err != nil {
		log.Printf("[GTK] Custom CSS not loaded: %v", err)
		return
	}
	custom, _ := gtk.CssProviderNew()
	if err := custom.LoadFromData(string(data)); err != nil {
		log.Printf("[GTK] Custom CSS is invalid: %v", err)
		return
	}
	gtk.AddProviderForScreen(screen, custom, gtk.STYLE_PROVIDER_PRIORITY_USER)
}

// colorCSS recolors one button; an empty color resets to the theme
func colorCSS(color string) string {
	if color == "" {
		return "button {}"
	}
	return fmt.Sprintf("button { color: %s; } .indicator-on { background-color: %s; }", color, color)
}

// fadingEdgeCSS limits the undershoot gradients to px at each end
func fadingEdgeCSS(px int) string {
	return fmt.Sprintf("undershoot.left, undershoot.right { background-size: %dpx 100%%; background-repeat: no-repeat; }", px)
}
