package puzzle

import "image"

// State is the drag state of a Controller.
type State int

const (
	StateIdle State = iota
	StateDragging
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Listener receives the controller's outbound notifications.
// Both methods are called synchronously from the event handler that caused them.
type Listener interface {
	// Redraw is called after every change to piece positions or highlight.
	Redraw()
	// Solved is called once when the last slot is filled correctly.
	Solved()
}

// Controller turns pointer events into piece selection, dragging and snapping.
type Controller struct {
	board    *Board
	listener Listener

	state       State
	highlighted *Piece
	dragOffset  image.Point

	// won latches after the solved signal so it fires once per solve.
	won bool
}

// NewController creates a controller in the idle state.
// listener may be nil when nobody needs notifications.
func NewController(board *Board, listener Listener) *Controller {
	return &Controller{
		board:    board,
		listener: listener,
		state:    StateIdle,
	}
}

// Board returns the board this controller drives.
func (c *Controller) Board() *Board {
	return c.board
}

// State returns the current drag state.
func (c *Controller) State() State {
	return c.state
}

// Highlighted returns the selected piece, if any.
func (c *Controller) Highlighted() (*Piece, bool) {
	return c.highlighted, c.highlighted != nil
}

// DragOffset returns the pointer offset from the dragged piece's top-left corner.
func (c *Controller) DragOffset() image.Point {
	return c.dragOffset
}

// PointerDown selects the frontmost piece under the pointer and starts dragging it.
func (c *Controller) PointerDown(x, y int) {
	changed := false
	if c.highlighted != nil && !c.highlighted.Contains(x, y) {
		c.unhighlight()
		changed = true
	}

	piece, ok := c.board.HitTestPiece(x, y)
	if !ok {
		if changed {
			c.redraw()
		}
		return
	}
	defer c.redraw()

	c.highlight(piece)
	c.state = StateDragging
	pos, _ := piece.BoardPosition()
	c.dragOffset = image.Pt(x-pos.Left, y-pos.Top)

	// Picking a piece up out of a slot vacates it.
	if c.board.areas.Playing.Contains(x, y) {
		if slot, ok := c.board.HitTestSlot(x, y); ok {
			slot.Release(piece)
		}
	}
}

// PointerMove drags the selected piece, snapping it to a slot while hovering one.
func (c *Controller) PointerMove(x, y int) {
	if c.state != StateDragging || c.highlighted == nil {
		return
	}

	if slot, ok := c.slotUnder(x, y); ok {
		target := slot.TargetArea()
		c.highlighted.SetBoardPosition(target.Left, target.Top)
	} else {
		c.follow(x, y)
	}

	c.redraw()
}

// PointerUp ends the drag. Dropping over a slot places the piece there and checks for a win;
// anywhere else the piece stays where it was dropped and remains selected.
func (c *Controller) PointerUp(x, y int) {
	if c.state != StateDragging {
		return
	}
	c.state = StateIdle
	if c.highlighted == nil {
		return
	}

	if slot, ok := c.slotUnder(x, y); ok {
		piece := c.highlighted
		target := slot.TargetArea()
		piece.SetBoardPosition(target.Left, target.Top)
		slot.Hold(piece)
		c.unhighlight()
		c.checkWin()
	} else {
		c.follow(x, y)
	}

	c.redraw()
}

// Resize lays the board out for a new viewport and requests a redraw.
func (c *Controller) Resize(width, height int) {
	c.board.Resize(Size{Width: width, Height: height})
	c.redraw()
}

// Replay scrambles the pieces for a new round and re-arms the solved signal.
func (c *Controller) Replay() {
	if c.highlighted != nil {
		c.unhighlight()
	}
	c.state = StateIdle
	c.dragOffset = image.Point{}
	c.won = false
	c.board.Scramble()
	c.redraw()
}

// Snapshot returns an immutable view of the board for rendering.
func (c *Controller) Snapshot() Snapshot {
	return newSnapshot(c.board, c.state, c.board.HasWon())
}

func (c *Controller) slotUnder(x, y int) (*Slot, bool) {
	if !c.board.areas.Playing.Contains(x, y) {
		return nil, false
	}
	return c.board.HitTestSlot(x, y)
}

func (c *Controller) follow(x, y int) {
	c.highlighted.SetBoardPosition(x-c.dragOffset.X, y-c.dragOffset.Y)
}

func (c *Controller) highlight(piece *Piece) {
	if c.highlighted != nil && c.highlighted != piece {
		c.highlighted.setHighlighted(false)
	}
	piece.setHighlighted(true)
	c.highlighted = piece
}

// unhighlight requires a highlighted piece.
func (c *Controller) unhighlight() {
	c.highlighted.setHighlighted(false)
	c.highlighted = nil
}

func (c *Controller) checkWin() {
	if c.won || !c.board.HasWon() {
		return
	}
	c.won = true
	if c.listener != nil {
		c.listener.Solved()
	}
}

func (c *Controller) redraw() {
	if c.listener != nil {
		c.listener.Redraw()
	}
}
