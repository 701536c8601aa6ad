package grid

import "time"

const (
	// edgeThreshold is how close to a horizontal edge the viewport must
	// scroll, in display units, before the next month loads.
	edgeThreshold = 300
	// scrollDebounce is the quiet period after the last scroll event
	// before a load fires.
	scrollDebounce = 150 * time.Millisecond
)

// LoadEdge identifies which end of the window a pagination load grows.
type LoadEdge int

const (
	LoadPast LoadEdge = iota
	LoadFuture
)

// PaginationController extends the loaded window as scrolling nears
// either horizontal edge, without a visible jump. Loads for the same
// edge are serialized by an in-flight flag; opposite edges may load
// concurrently. The window only grows.
type PaginationController struct {
	now func() time.Time

	lastScroll   time.Time
	pendingPast  bool
	pendingNext  bool
	inFlightPast bool
	inFlightNext bool
}

// NewPaginationController creates a controller using the wall clock.
func NewPaginationController() *PaginationController {
	return &PaginationController{now: time.Now}
}

// OnScroll records a scroll position. scrollX is the viewport's left
// offset into the content, viewportWidth its visible width, and
// contentWidth the full window width. Loads become due only after the
// debounce period passes with no further scrolling.
func (p *PaginationController) OnScroll(scrollX, viewportWidth, contentWidth int) {
	p.lastScroll = p.now()
	p.pendingPast = scrollX <= edgeThreshold
	p.pendingNext = contentWidth-(scrollX+viewportWidth) <= edgeThreshold
}

// Due returns the edges whose loads should start now: the debounce has
// elapsed, the edge was near on the last scroll, and no load for that
// edge is already in flight.
func (p *PaginationController) Due() []LoadEdge {
	if p.lastScroll.IsZero() || p.now().Sub(p.lastScroll) < scrollDebounce {
		return nil
	}
	var due []LoadEdge
	if p.pendingPast && !p.inFlightPast {
		due = append(due, LoadPast)
	}
	if p.pendingNext && !p.inFlightNext {
		due = append(due, LoadFuture)
	}
	return due
}

// StartLoad marks an edge load as in flight. Returns false when a load
// for that edge is already running.
func (p *PaginationController) StartLoad(edge LoadEdge) bool {
	switch edge {
	case LoadPast:
		if p.inFlightPast {
			return false
		}
		p.inFlightPast = true
		p.pendingPast = false
	case LoadFuture:
		if p.inFlightNext {
			return false
		}
		p.inFlightNext = true
		p.pendingNext = false
	}
	return true
}

// FinishLoad clears an edge's in-flight flag once its data has merged.
func (p *PaginationController) FinishLoad(edge LoadEdge) {
	switch edge {
	case LoadPast:
		p.inFlightPast = false
	case LoadFuture:
		p.inFlightNext = false
	}
}

// InFlight reports whether a load for the edge is running.
func (p *PaginationController) InFlight(edge LoadEdge) bool {
	if edge == LoadPast {
		return p.inFlightPast
	}
	return p.inFlightNext
}

// CorrectScroll returns the scroll offset to apply after a load merges,
// so the visible dates do not shift. A past-edge load adds content
// before the viewport and must push the offset right by exactly the
// added width, in the same frame the new content is measured. A
// future-edge load appends after the viewport and needs no correction.
func CorrectScroll(scrollX int, edge LoadEdge, addedWidth int) int {
	if edge == LoadPast {
		return scrollX + addedWidth
	}
	return scrollX
}
