package powerwidget

import "testing"

func TestDecideLayoutThreshold(t *testing.T) {
	testCases := []struct {
		count int
		want  ContainerKind
	}{
		{0, ContainerFixed},
		{1, ContainerFixed},
		{6, ContainerFixed},
		{7, ContainerScrollable},
		{12, ContainerScrollable},
	}

	for _, tc := range testCases {
		got := DecideLayout(tc.count, 1080)
		if got.Kind != tc.want {
			t.Errorf("count %d: expected %s, got %s", tc.count, tc.want, got.Kind)
		}
	}
}

func TestDecideLayoutItemWidthIgnoresCount(t *testing.T) {
	for _, count := range []int{1, 6, 12} {
		got := DecideLayout(count, 1080)
		if got.ItemWidth != 180 {
			t.Errorf("count %d: expected item width 180, got %d", count, got.ItemWidth)
		}
	}
}

func TestDecideLayoutFadingEdge(t *testing.T) {
	if got := DecideLayout(6, 720); got.FadingEdge != 0 {
		t.Errorf("Expected no fading edge for a fixed row, got %d", got.FadingEdge)
	}
	if got := DecideLayout(7, 720); got.FadingEdge != 120 {
		t.Errorf("Expected fading edge of one item (120), got %d", got.FadingEdge)
	}
}

func TestItemWidthClampsNegative(t *testing.T) {
	if got := ItemWidth(-60); got != 0 {
		t.Errorf("Expected 0 for negative width, got %d", got)
	}
	if got := ItemWidth(5); got != 0 {
		t.Errorf("Expected integer division to give 0, got %d", got)
	}
}
