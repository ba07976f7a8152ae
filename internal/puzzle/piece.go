package puzzle

import "strconv"

// Piece is a movable square cut from the source image.
type Piece struct {
	imageX      int
	imageY      int
	size        int
	imageRegion Rectangle

	boardPosition Rectangle
	placed        bool
	highlighted   bool
}

// NewPiece creates a piece for the image region starting at (imageX, imageY).
// The piece has no board position until SetBoardPosition is called.
func NewPiece(imageX, imageY, size int) *Piece {
	return &Piece{
		imageX:      imageX,
		imageY:      imageY,
		size:        size,
		imageRegion: NewRectangle(imageX, imageY, imageX+size, imageY+size),
	}
}

// ID returns the piece identity as "imageX:imageY".
func (p *Piece) ID() string {
	return strconv.Itoa(p.imageX) + ":" + strconv.Itoa(p.imageY)
}

// ImageX returns the x origin of the source region.
func (p *Piece) ImageX() int { return p.imageX }

// ImageY returns the y origin of the source region.
func (p *Piece) ImageY() int { return p.imageY }

// Size returns the edge length.
func (p *Piece) Size() int { return p.size }

// ImageRegion returns the source image region this piece shows.
func (p *Piece) ImageRegion() Rectangle {
	return p.imageRegion
}

// SetBoardPosition moves the piece so its top-left corner is at (x, y).
// Any coordinates are accepted, including ones off the board.
func (p *Piece) SetBoardPosition(x, y int) {
	p.boardPosition = NewRectangle(x, y, x+p.size, y+p.size)
	p.placed = true
}

// BoardPosition returns the current position and whether the piece has been placed.
func (p *Piece) BoardPosition() (Rectangle, bool) {
	return p.boardPosition, p.placed
}

// Contains reports whether the placed piece covers (x, y).
func (p *Piece) Contains(x, y int) bool {
	return p.placed && p.boardPosition.Contains(x, y)
}

// IsHighlighted reports whether the piece is currently selected.
func (p *Piece) IsHighlighted() bool {
	return p.highlighted
}

func (p *Piece) setHighlighted(on bool) {
	p.highlighted = on
}
