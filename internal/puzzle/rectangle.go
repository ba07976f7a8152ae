// Package puzzle provides the jigsaw placement model: pieces, slots, board layout
// and the drag state machine that moves pieces between them.
package puzzle

import "image"

// Rectangle is an axis-aligned box in board pixels.
// Rectangles are values; moving something means building a new one.
type Rectangle struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// NewRectangle creates a Rectangle from its edges.
func NewRectangle(left, top, right, bottom int) Rectangle {
	return Rectangle{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Width returns Right - Left.
func (r Rectangle) Width() int {
	return r.Right - r.Left
}

// Height returns Bottom - Top.
func (r Rectangle) Height() int {
	return r.Bottom - r.Top
}

// Contains reports whether (x, y) lies inside r. All four edges are inclusive.
func (r Rectangle) Contains(x, y int) bool {
	return r.Left <= x && x <= r.Right && r.Top <= y && y <= r.Bottom
}

// Min returns the top-left corner.
func (r Rectangle) Min() image.Point {
	return image.Pt(r.Left, r.Top)
}

// Bounds returns the image.Rectangle for this rectangle.
func (r Rectangle) Bounds() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}
