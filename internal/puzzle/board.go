package puzzle

import (
	"errors"
	"math/rand"
	"time"
)

// Default layout values used by the web client.
const (
	DefaultPieceSize       = 250
	DefaultMinPuzzleWidth  = 750
	DefaultMinPuzzleHeight = 500
)

var (
	// ErrInvalidPieceSize is returned when the piece edge is not positive.
	ErrInvalidPieceSize = errors.New("piece size must be positive")
	// ErrInvalidImageSize is returned when the image has no area.
	ErrInvalidImageSize = errors.New("image dimensions must be positive")
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Layout holds the board sizing rules.
type Layout struct {
	PieceSize       int
	MinPuzzleWidth  int
	MinPuzzleHeight int
}

// DefaultLayout returns the layout used by the web client.
func DefaultLayout() Layout {
	return Layout{
		PieceSize:       DefaultPieceSize,
		MinPuzzleWidth:  DefaultMinPuzzleWidth,
		MinPuzzleHeight: DefaultMinPuzzleHeight,
	}
}

// Areas groups the three board regions.
type Areas struct {
	Board   Rectangle `json:"board"`
	Staging Rectangle `json:"staging"`
	Playing Rectangle `json:"playing"`
}

// Board owns every piece and slot of one puzzle together with the board geometry.
type Board struct {
	layout   Layout
	image    Size
	viewport Size

	// pieces is kept in z-order: the last piece is drawn on top.
	pieces []*Piece
	slots  []*Slot
	areas  Areas

	rng *rand.Rand
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithRand sets the random source used by Scramble.
func WithRand(rng *rand.Rand) BoardOption {
	return func(b *Board) {
		b.rng = rng
	}
}

// NewBoard lays out the board for the viewport and cuts the image into whole
// PieceSize x PieceSize cells. Pieces are not placed until Scramble is called.
func NewBoard(img Size, viewport Size, layout Layout, opts ...BoardOption) (*Board, error) {
	if layout.PieceSize <= 0 {
		return nil, ErrInvalidPieceSize
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, ErrInvalidImageSize
	}

	b := &Board{
		layout:   layout,
		image:    img,
		viewport: viewport,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.areas = b.computeAreas(viewport)
	b.cutPieces()

	return b, nil
}

// computeAreas derives the board, staging and playing areas for a viewport.
func (b *Board) computeAreas(viewport Size) Areas {
	width := max(viewport.Width, b.layout.MinPuzzleWidth)
	boardArea := NewRectangle(0, 0, width, b.layout.MinPuzzleHeight+b.layout.PieceSize)

	stagingBottom := max(viewport.Height, boardArea.Bottom)
	stagingArea := NewRectangle(0, boardArea.Bottom, width, stagingBottom)

	marginX := floorDiv(boardArea.Width()-b.image.Width, 2)
	marginY := floorDiv(boardArea.Height()-b.image.Height, 2)
	playingArea := NewRectangle(marginX, marginY, marginX+b.image.Width, marginY+b.image.Height)

	return Areas{Board: boardArea, Staging: stagingArea, Playing: playingArea}
}

// cutPieces builds one piece and one slot per whole grid cell in row-major order.
func (b *Board) cutPieces() {
	size := b.layout.PieceSize
	cols := b.image.Width / size
	rows := b.image.Height / size

	b.pieces = make([]*Piece, 0, cols*rows)
	b.slots = make([]*Slot, 0, cols*rows)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x, y := col*size, row*size
			piece := NewPiece(x, y, size)
			b.pieces = append(b.pieces, piece)
			b.slots = append(b.slots, NewSlot(x, y, size, b.areas.Playing, piece))
		}
	}
}

// Scramble drops every piece at a random spot in the staging area and empties all slots.
// Pieces may overlap.
func (b *Board) Scramble() {
	size := b.layout.PieceSize
	staging := b.areas.Staging
	spanX := staging.Width() - size
	spanY := staging.Height() - size

	for _, s := range b.slots {
		s.releaseAll()
	}
	for _, p := range b.pieces {
		p.SetBoardPosition(staging.Left+b.randomOffset(spanX), staging.Top+b.randomOffset(spanY))
	}
}

func (b *Board) randomOffset(span int) int {
	if span <= 0 {
		return 0
	}
	return b.rng.Intn(span)
}

// Resize recomputes the layout for a new viewport. Held pieces follow their slots;
// free pieces keep their offset inside the area that contained them.
func (b *Board) Resize(viewport Size) {
	old := b.areas
	b.viewport = viewport
	b.areas = b.computeAreas(viewport)

	held := make(map[*Piece]bool)
	for _, s := range b.slots {
		for _, p := range s.occupants {
			held[p] = true
		}
	}

	for _, p := range b.pieces {
		pos, ok := p.BoardPosition()
		if !ok || held[p] {
			continue
		}
		switch {
		case old.Playing.Contains(pos.Left, pos.Top):
			p.SetBoardPosition(pos.Left-old.Playing.Left+b.areas.Playing.Left, pos.Top-old.Playing.Top+b.areas.Playing.Top)
		case old.Staging.Contains(pos.Left, pos.Top):
			p.SetBoardPosition(pos.Left-old.Staging.Left+b.areas.Staging.Left, pos.Top-old.Staging.Top+b.areas.Staging.Top)
		}
	}

	for _, s := range b.slots {
		s.UpdateBounds(b.areas.Playing)
	}
}

// HitTestPiece returns the frontmost piece under (x, y) and moves it to the front.
func (b *Board) HitTestPiece(x, y int) (*Piece, bool) {
	for i := len(b.pieces) - 1; i >= 0; i-- {
		p := b.pieces[i]
		if !p.Contains(x, y) {
			continue
		}
		b.pieces = append(b.pieces[:i], b.pieces[i+1:]...)
		b.pieces = append(b.pieces, p)
		return p, true
	}
	return nil, false
}

// HitTestSlot returns the first slot whose target area contains (x, y).
func (b *Board) HitTestSlot(x, y int) (*Slot, bool) {
	for _, s := range b.slots {
		if s.targetArea.Contains(x, y) {
			return s, true
		}
	}
	return nil, false
}

// HasWon reports whether every slot holds its own piece.
func (b *Board) HasWon() bool {
	for _, s := range b.slots {
		if !s.IsSolved() {
			return false
		}
	}
	return true
}

// Pieces returns the pieces in z-order, back to front.
func (b *Board) Pieces() []*Piece {
	out := make([]*Piece, len(b.pieces))
	copy(out, b.pieces)
	return out
}

// Slots returns the slots in scan order.
func (b *Board) Slots() []*Slot {
	out := make([]*Slot, len(b.slots))
	copy(out, b.slots)
	return out
}

// Areas returns the current board regions.
func (b *Board) Areas() Areas {
	return b.areas
}

// PieceSize returns the piece edge length.
func (b *Board) PieceSize() int {
	return b.layout.PieceSize
}

// ImageSize returns the source image dimensions.
func (b *Board) ImageSize() Size {
	return b.image
}

// Viewport returns the last viewport the board was laid out for.
func (b *Board) Viewport() Size {
	return b.viewport
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
