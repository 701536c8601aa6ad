package grid

import (
	"errors"
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// InteractionController errors.
var (
	ErrInteractionActive = errors.New("another interaction is already active")
	ErrReadOnly          = errors.New("read-only role cannot modify the grid")
	ErrCellOccupied      = errors.New("target cell already has an allocation")
)

const (
	// edgeHandleWidth is the grab zone at either end of a block, in
	// display units, that starts a resize instead of a move.
	edgeHandleWidth = 2
	// dragThreshold is how far the pointer must travel, in display
	// units on either axis, before a press on a block becomes a move
	// rather than a click.
	dragThreshold = 5
)

// Mode is the active interaction state. Exactly one is active at a
// time; attempts to enter a second interaction are rejected, not
// queued.
type Mode int

const (
	Idle Mode = iota
	DraggingCreate
	DraggingMove
	Resizing
	ContextMenuOpen
)

// Edge identifies which end of a block a resize grabs.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
)

// Pointer is one pointer event, resolved by the render adapter to grid
// coordinates: X is the horizontal offset from the grid origin, Y the
// vertical offset (used only for the drag threshold), and Lane the row
// track under the pointer.
type Pointer struct {
	X    int
	Y    int
	Lane plan.Lane
}

// Effect is a mutation or UI request produced by a completed gesture.
// The controller never performs I/O itself; the adapter executes
// effects and feeds results back through the dataset.
type Effect interface{ effect() }

// CreateAllocationEffect requests an allocation covering [Start, End]
// in Lane. The adapter must insert the optimistic record synchronously
// before issuing the request.
type CreateAllocationEffect struct {
	Lane  plan.Lane
	Start time.Time
	End   time.Time
}

// CreateLeaveEffect requests a leave entry covering [Start, End].
// Produced instead of CreateAllocationEffect when the drag happened in
// the time-off lane.
type CreateLeaveEffect struct {
	SubjectID int64
	Start     time.Time
	End       time.Time
}

// MoveEffect requests shifting a block's start and end by the same day
// delta, preserving its duration.
type MoveEffect struct {
	Block    Block
	NewStart time.Time
	NewEnd   time.Time
}

// ResizeEffect requests rewriting one end of a block.
type ResizeEffect struct {
	Block    Block
	NewStart time.Time
	NewEnd   time.Time
}

// OpenMenuEffect reports that a click (no drag) landed on a block and
// the context menu should open. The controller is already in
// ContextMenuOpen when the adapter sees this.
type OpenMenuEffect struct {
	Block Block
}

// OpenAssignMenuEffect reports that a click landed on an empty cell,
// offering the assignment menu for that lane and day.
type OpenAssignMenuEffect struct {
	Lane plan.Lane
	Date time.Time
}

func (CreateAllocationEffect) effect() {}
func (CreateLeaveEffect) effect()      {}
func (MoveEffect) effect()             {}
func (ResizeEffect) effect()           {}
func (OpenMenuEffect) effect()         {}
func (OpenAssignMenuEffect) effect()   {}

// createState carries a drag-to-create gesture.
type createState struct {
	lane      plan.Lane
	anchorDay int
	endDay    int
	moved     bool
}

// moveState carries a drag-to-move gesture.
type moveState struct {
	block      Block
	grabOffset int // day within the block that was grabbed
	downX      int
	downY      int
	active     bool // pointer crossed the drag threshold
	newStart   time.Time
}

// resizeState carries an edge-resize gesture.
type resizeState struct {
	block     Block
	edge      Edge
	downX     int
	origStart time.Time
	origEnd   time.Time
	newStart  time.Time
	newEnd    time.Time
}

// InteractionController is the state machine governing grid gestures:
// create-by-drag, move-by-drag, resize-by-drag, and click-to-menu.
// It reads the window and index for coordinate mapping and occupancy
// checks, and emits Effects instead of performing mutations. Pending
// creates are optimistic-first; move and resize keep a local preview
// until the server confirms.
type InteractionController struct {
	window    *DateWindow
	index     *EntityIndex
	canModify bool

	mode   Mode
	create createState
	move   moveState
	resize resizeState
	menu   Block
}

// NewInteractionController creates an idle controller. canModify gates
// every mutating gesture; a read-only role still gets clicks and menus
// with the delete action hidden by the adapter.
func NewInteractionController(window *DateWindow, index *EntityIndex, canModify bool) *InteractionController {
	return &InteractionController{
		window:    window,
		index:     index,
		canModify: canModify,
	}
}

// SetIndex swaps in a rebuilt index after a data change. The window is
// shared by reference and mutated through pagination, so it needs no
// swap.
func (c *InteractionController) SetIndex(index *EntityIndex) {
	c.index = index
}

// Mode returns the active state.
func (c *InteractionController) Mode() Mode { return c.mode }

// MenuBlock returns the block the open context menu targets.
func (c *InteractionController) MenuBlock() Block { return c.menu }

// busy reports whether a gesture other than Idle is active. Mutual
// exclusion is enforced by this guard, not a queue: concurrent gesture
// attempts are dropped.
func (c *InteractionController) busy() bool {
	return c.mode != Idle
}

// PointerDown starts a gesture. On a block edge it starts a resize, on
// a block body a move, and on an empty cell a create drag. Returns
// ErrInteractionActive while another gesture is running, ErrReadOnly
// for mutating gestures under a read-only role, and ErrCellOccupied
// when a create drag lands on a covered cell.
func (c *InteractionController) PointerDown(p Pointer) error {
	if c.busy() {
		return ErrInteractionActive
	}
	day := c.window.DayAtOffset(p.X)
	if day < 0 {
		return nil
	}
	date := c.window.DateAt(day)

	block := c.blockAt(p.Lane, date)
	if !block.Zero() {
		if edge := c.onEdge(block, p.X); c.canModify && edge != nil {
			c.mode = Resizing
			c.resize = resizeState{
				block:     block,
				edge:      *edge,
				downX:     p.X,
				origStart: block.Start(),
				origEnd:   block.End(),
				newStart:  block.Start(),
				newEnd:    block.End(),
			}
			return nil
		}
		c.mode = DraggingMove
		c.move = moveState{
			block:      block,
			grabOffset: dateutil.DaysBetween(block.Start(), date),
			downX:      p.X,
			downY:      p.Y,
		}
		return nil
	}

	// Empty cell: start a create drag, unless the role is read-only or
	// the lane already has coverage here.
	if !c.canModify {
		return ErrReadOnly
	}
	if c.index.HasAllocation(p.Lane, date) {
		return ErrCellOccupied
	}
	c.mode = DraggingCreate
	c.create = createState{lane: p.Lane, anchorDay: day, endDay: day}
	return nil
}

// PointerMove updates the active gesture's preview.
func (c *InteractionController) PointerMove(p Pointer) {
	switch c.mode {
	case DraggingCreate:
		day := c.window.DayAtOffset(p.X)
		if day < 0 {
			return
		}
		if day != c.create.endDay {
			c.create.moved = true
		}
		c.create.endDay = day

	case DraggingMove:
		if !c.move.active {
			if abs(p.X-c.move.downX) <= dragThreshold && abs(p.Y-c.move.downY) <= dragThreshold {
				return
			}
			c.move.active = true
		}
		day := c.window.DayAtOffset(p.X)
		if day < 0 {
			return
		}
		startDay := day - c.move.grabOffset
		duration := dateutil.InclusiveDays(c.move.block.Start(), c.move.block.End())
		if startDay < 0 {
			startDay = 0
		}
		if max := c.window.Days() - duration; startDay > max {
			startDay = max
		}
		c.move.newStart = c.window.DateAt(startDay)

	case Resizing:
		deltaDays := roundDiv(p.X-c.resize.downX, c.window.ColumnWidth())
		if c.resize.edge == EdgeRight {
			// Right edge moves the end; start stays fixed. Floor at a
			// one day duration.
			newEnd := dateutil.AddDays(c.resize.origEnd, deltaDays)
			if newEnd.Before(c.resize.origStart) {
				newEnd = c.resize.origStart
			}
			c.resize.newEnd = newEnd
		} else {
			// Left edge moves the start; end stays fixed.
			newStart := dateutil.AddDays(c.resize.origStart, deltaDays)
			if newStart.After(c.resize.origEnd) {
				newStart = c.resize.origEnd
			}
			c.resize.newStart = newStart
		}
	}
}

// PointerUp completes the active gesture and returns the resulting
// effect, or nil when the gesture amounted to nothing.
func (c *InteractionController) PointerUp(p Pointer) Effect {
	switch c.mode {
	case DraggingCreate:
		st := c.create
		c.reset()
		startDay, endDay := st.anchorDay, st.endDay
		if endDay < startDay {
			startDay, endDay = endDay, startDay
		}
		start := c.window.DateAt(startDay)
		end := c.window.DateAt(endDay)
		if !st.moved {
			// A plain click on an empty cell opens the assignment menu
			// instead of creating anything.
			return OpenAssignMenuEffect{Lane: st.lane, Date: start}
		}
		if st.lane.TimeOff {
			return CreateLeaveEffect{SubjectID: st.lane.SubjectID, Start: start, End: end}
		}
		return CreateAllocationEffect{Lane: st.lane, Start: start, End: end}

	case DraggingMove:
		st := c.move
		if !st.active {
			// Never crossed the threshold: treat as a click and open
			// the context menu for the block.
			c.mode = ContextMenuOpen
			c.menu = st.block
			c.move = moveState{}
			return OpenMenuEffect{Block: st.block}
		}
		c.reset()
		if !c.canModify || st.newStart.IsZero() || st.newStart.Equal(st.block.Start()) {
			return nil
		}
		duration := dateutil.InclusiveDays(st.block.Start(), st.block.End())
		newEnd := dateutil.AddDays(st.newStart, duration-1)
		if c.index.RangeOccupied(st.block.Lane(), st.newStart, newEnd, st.block.ID()) {
			return nil
		}
		return MoveEffect{Block: st.block, NewStart: st.newStart, NewEnd: newEnd}

	case Resizing:
		st := c.resize
		c.reset()
		if st.newStart.Equal(st.origStart) && st.newEnd.Equal(st.origEnd) {
			return nil
		}
		return ResizeEffect{Block: st.block, NewStart: st.newStart, NewEnd: st.newEnd}
	}
	return nil
}

// CloseMenu returns from ContextMenuOpen to Idle. Any menu action and
// Escape/backdrop both land here.
func (c *InteractionController) CloseMenu() {
	if c.mode == ContextMenuOpen {
		c.reset()
	}
}

// Cancel aborts whatever gesture is active and discards its preview.
func (c *InteractionController) Cancel() {
	c.reset()
}

func (c *InteractionController) reset() {
	c.mode = Idle
	c.create = createState{}
	c.move = moveState{}
	c.resize = resizeState{}
	c.menu = Block{}
}

// CreatePreview returns the lane and day range of an active create
// drag, for rendering.
func (c *InteractionController) CreatePreview() (lane plan.Lane, start, end time.Time, ok bool) {
	if c.mode != DraggingCreate {
		return plan.Lane{}, time.Time{}, time.Time{}, false
	}
	s, e := c.create.anchorDay, c.create.endDay
	if e < s {
		s, e = e, s
	}
	return c.create.lane, c.window.DateAt(s), c.window.DateAt(e), true
}

// MovePreview returns the block being moved and its previewed start.
// ok is false until the pointer crosses the drag threshold.
func (c *InteractionController) MovePreview() (block Block, newStart time.Time, ok bool) {
	if c.mode != DraggingMove || !c.move.active || c.move.newStart.IsZero() {
		return Block{}, time.Time{}, false
	}
	return c.move.block, c.move.newStart, true
}

// ResizePreview returns the block being resized with its previewed
// bounds.
func (c *InteractionController) ResizePreview() (block Block, start, end time.Time, ok bool) {
	if c.mode != Resizing {
		return Block{}, time.Time{}, time.Time{}, false
	}
	return c.resize.block, c.resize.newStart, c.resize.newEnd, true
}

// blockAt returns the record covering the date in a lane.
func (c *InteractionController) blockAt(lane plan.Lane, date time.Time) Block {
	if lane.TimeOff {
		if l := c.index.LeaveAt(lane.SubjectID, date); l != nil {
			return Block{Leave: l}
		}
		return Block{}
	}
	if a := c.index.AllocationAt(lane, date); a != nil {
		return Block{Allocation: a}
	}
	return Block{}
}

// onEdge returns which edge handle of the block the offset falls on,
// or nil for the body. Handles are edgeHandleWidth units wide, measured
// from the block's own rendered bounds.
func (c *InteractionController) onEdge(b Block, x int) *Edge {
	startDay := c.window.DayIndexOf(b.Start())
	endDay := c.window.DayIndexOf(b.End())
	if startDay >= 0 {
		left := c.window.OffsetOfDay(startDay)
		if x >= left && x < left+edgeHandleWidth {
			e := EdgeLeft
			return &e
		}
	}
	if endDay >= 0 {
		right := c.window.OffsetOfDay(endDay) + c.window.ColumnWidth()
		if x >= right-edgeHandleWidth && x < right {
			e := EdgeRight
			return &e
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// roundDiv divides rounding to nearest, away from zero on ties.
func roundDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	half := b / 2
	if a < 0 {
		return (a - half) / b
	}
	return (a + half) / b
}
