package suggest

// Placement anchors a floating menu to a screen row, flipping above the
// anchor when the menu would overflow the viewport below it.
type Placement struct {
	Row   int // first screen row the menu occupies
	Above bool
}

// PlaceMenu positions a menu of menuHeight rows relative to anchorRow inside
// the viewport [viewTop, viewTop+viewHeight). Preference order: below the
// anchor, above the anchor, clamped below. Recompute on every scroll or
// resize while the menu is open so it tracks the anchor.
func PlaceMenu(anchorRow, menuHeight, viewTop, viewHeight int) Placement {
	below := anchorRow + 1
	if below+menuHeight <= viewTop+viewHeight {
		return Placement{Row: below}
	}
	if anchorRow-menuHeight >= viewTop {
		return Placement{Row: anchorRow - menuHeight, Above: true}
	}
	// Neither side fits whole: pin to the bottom of the viewport.
	row := viewTop + viewHeight - menuHeight
	if row < viewTop {
		row = viewTop
	}
	return Placement{Row: row}
}
