// Package render draws board snapshots to raster images.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/kyiku/jigsaw-puzzle-back/internal/puzzle"
)

const (
	outlineWidth   = 15
	highlightWidth = 2
)

var (
	outlineColor    = color.RGBA{A: 255}
	highlightColor  = color.RGBA{R: 255, A: 255}
	backgroundColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Board draws slot outlines and then every placed piece in z-order.
// The canvas covers the board and staging areas.
func Board(src image.Image, snap puzzle.Snapshot) *image.RGBA {
	width := snap.Areas.Board.Width()
	height := max(snap.Areas.Board.Bottom, snap.Areas.Staging.Bottom)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	for _, slot := range snap.Slots {
		strokeRect(dst, slot.TargetArea.Bounds(), outlineWidth, outlineColor)
	}

	origin := src.Bounds().Min
	for _, piece := range snap.Pieces {
		if piece.BoardPosition == nil {
			continue
		}
		pos := piece.BoardPosition.Bounds()
		draw.Draw(dst, pos, src, piece.ImageRegion.Min().Add(origin), draw.Src)

		if piece.Highlighted {
			strokeRect(dst, pos.Inset(1), highlightWidth, highlightColor)
		}
	}

	return dst
}

// Preview scales img by factor with bilinear filtering.
func Preview(img image.Image, factor float64) *image.RGBA {
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// strokeRect draws a border of the given width centred on the edges of r.
func strokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	outer := width / 2
	inner := width - outer
	fill := image.NewUniform(c)

	edges := []image.Rectangle{
		image.Rect(r.Min.X-outer, r.Min.Y-outer, r.Max.X+outer, r.Min.Y+inner),
		image.Rect(r.Min.X-outer, r.Max.Y-inner, r.Max.X+outer, r.Max.Y+outer),
		image.Rect(r.Min.X-outer, r.Min.Y-outer, r.Min.X+inner, r.Max.Y+outer),
		image.Rect(r.Max.X-inner, r.Min.Y-outer, r.Max.X+outer, r.Max.Y+outer),
	}
	for _, e := range edges {
		draw.Draw(dst, e, fill, image.Point{}, draw.Src)
	}
}
