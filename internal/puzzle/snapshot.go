package puzzle

// PieceView is the render state of one piece.
type PieceView struct {
	ID            string     `json:"id"`
	ImageRegion   Rectangle  `json:"image_region"`
	BoardPosition *Rectangle `json:"board_position,omitempty"`
	Highlighted   bool       `json:"highlighted"`
}

// SlotView is the render state of one slot.
type SlotView struct {
	TargetArea    Rectangle `json:"target_area"`
	TargetPieceID string    `json:"target_piece_id"`
	Occupants     []string  `json:"occupants"`
	Solved        bool      `json:"solved"`
}

// Snapshot is a copy of the board state taken after an event.
// Pieces are listed back to front.
type Snapshot struct {
	PieceSize int         `json:"piece_size"`
	Image     Size        `json:"image"`
	Areas     Areas       `json:"areas"`
	Pieces    []PieceView `json:"pieces"`
	Slots     []SlotView  `json:"slots"`
	State     string      `json:"state"`
	Solved    bool        `json:"solved"` // the board is won right now

}

func newSnapshot(b *Board, state State, won bool) Snapshot {
	snap := Snapshot{
		PieceSize: b.layout.PieceSize,
		Image:     b.image,
		Areas:     b.areas,
		Pieces:    make([]PieceView, 0, len(b.pieces)),
		Slots:     make([]SlotView, 0, len(b.slots)),
		State:     state.String(),
		Solved:    won,
	}

	for _, p := range b.pieces {
		view := PieceView{
			ID:          p.ID(),
			ImageRegion: p.imageRegion,
			Highlighted: p.highlighted,
		}
		if pos, ok := p.BoardPosition(); ok {
			view.BoardPosition = &pos
		}
		snap.Pieces = append(snap.Pieces, view)
	}

	for _, s := range b.slots {
		occupants := make([]string, 0, len(s.occupants))
		for _, p := range s.occupants {
			occupants = append(occupants, p.ID())
		}
		snap.Slots = append(snap.Slots, SlotView{
			TargetArea:    s.targetArea,
			TargetPieceID: s.targetPiece.ID(),
			Occupants:     occupants,
			Solved:        s.IsSolved(),
		})
	}

	return snap
}
