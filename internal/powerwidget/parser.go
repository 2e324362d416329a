package powerwidget

import "strings"

// Delimiter separates button ids in the widget_buttons setting.
const Delimiter = "|"

// Button ids shipped in the default configuration.
const (
	ButtonWifi      = "wifi"
	ButtonBluetooth = "bluetooth"
	ButtonGPS       = "gps"
	ButtonSound     = "sound"
)

var defaultButtons = []string{ButtonWifi, ButtonBluetooth, ButtonGPS, ButtonSound}

// DefaultButtons returns the button order used when widget_buttons is unset.
func DefaultButtons() []string {
	return append([]string(nil), defaultButtons...)
}

// ParseButtons turns the raw widget_buttons value into an ordered list of ids.
// ok reports whether the setting exists at all. Tokens are returned as split,
// so duplicates, empty tokens and unknown ids all survive; the registry
// decides what can be loaded.
func ParseButtons(raw string, ok bool) []string {
	if !ok {
		return DefaultButtons()
	}
	return strings.Split(raw, Delimiter)
}

// JoinButtons is the inverse of ParseButtons for a present setting.
func JoinButtons(ids []string) string {
	return strings.Join(ids, Delimiter)
}
