// Command preview cuts a local image into a scrambled puzzle board and writes it as a PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"math/rand"
	"os"
	"time"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/kyiku/jigsaw-puzzle-back/internal/puzzle"
	"github.com/kyiku/jigsaw-puzzle-back/internal/render"
)

func main() {
	input := flag.String("in", "", "puzzle image (png, jpeg, gif, webp or bmp)")
	output := flag.String("out", "preview.png", "output PNG path")
	width := flag.Int("width", 1280, "viewport width")
	height := flag.Int("height", 1024, "viewport height")
	pieceSize := flag.Int("piece", puzzle.DefaultPieceSize, "piece edge length")
	seed := flag.Int64("seed", time.Now().UnixNano(), "scramble seed")
	scale := flag.Float64("scale", 1, "output scale factor")
	solved := flag.Bool("solved", false, "place every piece in its slot instead of scrambling")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	img, err := loadImage(*input)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}

	layout := puzzle.DefaultLayout()
	layout.PieceSize = *pieceSize

	bounds := img.Bounds()
	board, err := puzzle.NewBoard(
		puzzle.Size{Width: bounds.Dx(), Height: bounds.Dy()},
		puzzle.Size{Width: *width, Height: *height},
		layout,
		puzzle.WithRand(rand.New(rand.NewSource(*seed))),
	)
	if err != nil {
		log.Fatalf("Failed to create board: %v", err)
	}

	controller := puzzle.NewController(board, nil)
	controller.Replay()
	if *solved {
		for _, s := range board.Slots() {
			target := s.TargetArea()
			s.TargetPiece().SetBoardPosition(target.Left, target.Top)
			s.Hold(s.TargetPiece())
		}
	}

	out := render.Board(img, controller.Snapshot())
	var result image.Image = out
	if *scale != 1 {
		result = render.Preview(out, *scale)
	}

	if err := writePNG(*output, result); err != nil {
		log.Fatalf("Failed to write preview: %v", err)
	}

	areas := board.Areas()
	fmt.Printf("%d pieces, board %dx%d, playing area (%d,%d)-(%d,%d) -> %s\n",
		len(board.Pieces()), areas.Board.Width(), areas.Board.Height(),
		areas.Playing.Left, areas.Playing.Top, areas.Playing.Right, areas.Playing.Bottom, *output)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
