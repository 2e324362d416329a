package powerwidget

import "testing"

func TestParseButtonsAbsentUsesDefault(t *testing.T) {
	got := ParseButtons("", false)
	want := []string{"wifi", "bluetooth", "gps", "sound"}

	if !equalStrings(got, want) {
		t.Fatalf("Expected default %v, got %v", want, got)
	}

	// callers may mutate the result without touching the default
	got[0] = "changed"
	if DefaultButtons()[0] != "wifi" {
		t.Errorf("Default button list was modified through a parse result")
	}
}

func TestParseButtonsSplitSemantics(t *testing.T) {
	testCases := []struct {
		raw  string
		want []string
	}{
		{"", []string{""}},
		{"wifi", []string{"wifi"}},
		{"a|", []string{"a", ""}},
		{"|a", []string{"", "a"}},
		{"a||b", []string{"a", "", "b"}},
		{"wifi|bogus|sound", []string{"wifi", "bogus", "sound"}},
		{"wifi|wifi", []string{"wifi", "wifi"}},
		{"Wifi|wifi", []string{"Wifi", "wifi"}},
	}

	for _, tc := range testCases {
		got := ParseButtons(tc.raw, true)
		if !equalStrings(got, tc.want) {
			t.Errorf("ParseButtons(%q): expected %q, got %q", tc.raw, tc.want, got)
		}
	}
}

func TestJoinButtonsRoundTrip(t *testing.T) {
	raw := "wifi||sound|gps"
	if got := JoinButtons(ParseButtons(raw, true)); got != raw {
		t.Errorf("Expected %q after round trip, got %q", raw, got)
	}
}
