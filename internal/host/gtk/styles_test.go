package gtk

import (
	"strings"
	"testing"
)

func TestStylingCSSDefaults(t *testing.T) {
	css := Styling{Background: "#000000", Foreground: "#ffffff"}.css()

	if !strings.Contains(css, `font-family: "Iosevka"`) {
		t.Error("expected default font")
	}
	if !strings.Contains(css, "font-size: 14px") {
		t.Error("expected default font size")
	}
	if strings.Contains(css, "%!") {
		t.Errorf("template arguments out of step:\n%s", css)
	}
}

func TestStylingCSSColors(t *testing.T) {
	css := Styling{
		Background:      "#111111",
		Foreground:      "#eeeeee",
		OnColor:         "#00ff00",
		OffColor:        "#333333",
		TransitionColor: "#ffff00",
		Font:            "Inter",
		FontSize:        18,
	}.css()

	for _, want := range []string{
		`font-family: "Inter"`,
		"font-size: 18px",
		".indicator-on {\n    background-color: #00ff00",
		".indicator-off {\n    background-color: #333333",
		".indicator-transition {\n    background-color: #ffff00",
		"linear-gradient(to right, #111111",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("css missing %q", want)
		}
	}
}

func TestColorCSS(t *testing.T) {
	if got := colorCSS(""); got != "button {}" {
		t.Errorf("empty color should reset, got %q", got)
	}
	got := colorCSS("#ff0000")
	if !strings.Contains(got, "color: #ff0000") || !strings.Contains(got, ".indicator-on { background-color: #ff0000") {
		t.Errorf("unexpected color css %q", got)
	}
}

func TestFadingEdgeCSS(t *testing.T) {
	got := fadingEdgeCSS(180)
	if !strings.Contains(got, "background-size: 180px 100%") {
		t.Errorf("unexpected fading edge css %q", got)
	}
}

func TestIconKey(t *testing.T) {
	if iconKey("audio-volume-high-symbolic", 24) == iconKey("audio-volume-high-symbolic", 32) {
		t.Error("sizes must not share a cache entry")
	}
}
