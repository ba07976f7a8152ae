package puzzle

// Slot is a stationary target on the playing area. Each slot belongs to exactly one
// piece and keeps track of the pieces dropped into it.
type Slot struct {
	boardX      int
	boardY      int
	size        int
	boardOrigin Rectangle
	targetArea  Rectangle
	targetPiece *Piece

	// occupants keeps hold order so resizes move pieces deterministically.
	occupants []*Piece
}

// NewSlot creates a slot at offset (boardX, boardY) inside boardOrigin.
func NewSlot(boardX, boardY, size int, boardOrigin Rectangle, targetPiece *Piece) *Slot {
	s := &Slot{
		boardX:      boardX,
		boardY:      boardY,
		size:        size,
		targetPiece: targetPiece,
		occupants:   make([]*Piece, 0, 1),
	}
	s.setBoardOrigin(boardOrigin)
	return s
}

func (s *Slot) setBoardOrigin(origin Rectangle) {
	s.boardOrigin = origin
	left := origin.Left + s.boardX
	top := origin.Top + s.boardY
	s.targetArea = NewRectangle(left, top, left+s.size, top+s.size)
}

// UpdateBounds moves the slot to a new board origin and carries held pieces along.
func (s *Slot) UpdateBounds(newOrigin Rectangle) {
	s.setBoardOrigin(newOrigin)
	for _, p := range s.occupants {
		p.SetBoardPosition(s.targetArea.Left, s.targetArea.Top)
	}
}

// TargetArea returns the area a piece must occupy to fill this slot.
func (s *Slot) TargetArea() Rectangle {
	return s.targetArea
}

// TargetPiece returns the piece that belongs in this slot.
func (s *Slot) TargetPiece() *Piece {
	return s.targetPiece
}

// IsSolved reports whether the target piece sits exactly on the target area.
func (s *Slot) IsSolved() bool {
	pos, ok := s.targetPiece.BoardPosition()
	if !ok {
		return false
	}
	return pos.Left == s.targetArea.Left && pos.Top == s.targetArea.Top
}

// Hold records piece as occupying this slot. Holding the same piece twice has no effect.
func (s *Slot) Hold(piece *Piece) {
	if s.Holds(piece) {
		return
	}
	s.occupants = append(s.occupants, piece)
}

// Release removes piece from the slot if it is held.
func (s *Slot) Release(piece *Piece) {
	for i, p := range s.occupants {
		if p == piece {
			s.occupants = append(s.occupants[:i], s.occupants[i+1:]...)
			return
		}
	}
}

// Holds reports whether piece currently occupies the slot.
func (s *Slot) Holds(piece *Piece) bool {
	for _, p := range s.occupants {
		if p == piece {
			return true
		}
	}
	return false
}

// HoldCount returns the number of occupants. More than one is allowed by the model
// but never happens in normal play.
func (s *Slot) HoldCount() int {
	return len(s.occupants)
}

// Occupants returns a copy of the held pieces in hold order.
func (s *Slot) Occupants() []*Piece {
	out := make([]*Piece, len(s.occupants))
	copy(out, s.occupants)
	return out
}

func (s *Slot) releaseAll() {
	s.occupants = s.occupants[:0]
}
