package powerwidget

// ScrollThreshold is the number of buttons a fixed row holds. More buttons
// than this switch the widget to a scrollable row. Item width is always
// derived from this value, not from the actual count.
const ScrollThreshold = 6

// ContainerKind selects the row container a layout uses
type ContainerKind int

const (
	ContainerFixed ContainerKind = iota
	ContainerScrollable
)

// String returns the string representation of ContainerKind
func (k ContainerKind) String() string {
	switch k {
	case ContainerFixed:
		return "fixed"
	case ContainerScrollable:
		return "scrollable"
	default:
		return "unknown"
	}
}

// Layout is the derived layout decision for one build
type Layout struct {
	Kind      ContainerKind
	ItemWidth int
	// FadingEdge is the width of the scroll fade, one item wide when
	// scrollable and zero otherwise.
	FadingEdge int
}

// ItemWidth returns the per-button width for a display width
func ItemWidth(totalWidth int) int {
	if totalWidth < 0 {
		totalWidth = 0
	}
	return totalWidth / ScrollThreshold
}

// DecideLayout picks the container kind for count buttons on totalWidth pixels
func DecideLayout(count, totalWidth int) Layout {
	layout := Layout{
		Kind:      ContainerFixed,
		ItemWidth: ItemWidth(totalWidth),
	}

	if count > ScrollThreshold {
		layout.Kind = ContainerScrollable
		layout.FadingEdge = layout.ItemWidth
	}

	return layout
}
