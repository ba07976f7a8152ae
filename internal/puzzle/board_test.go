package puzzle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBoard builds a 2x2 board: 500x500 image, 250px pieces, 1000x1200 viewport.
// Board area is (0,0)-(1000,750), staging (0,750)-(1000,1200), playing (250,125)-(750,625).
func newTestBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(Size{Width: 500, Height: 500}, Size{Width: 1000, Height: 1200}, DefaultLayout(), WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	return b
}

// spreadPieces puts the pieces side by side in the staging area without overlap.
func spreadPieces(b *Board) {
	for i, p := range b.Pieces() {
		p.SetBoardPosition(i*260, 800)
	}
}

func TestNewBoard_Grid(t *testing.T) {
	b := newTestBoard(t)

	pieces := b.Pieces()
	slots := b.Slots()
	require.Len(t, pieces, 4)
	require.Len(t, slots, 4)

	wantOrigins := [][2]int{{0, 0}, {250, 0}, {0, 250}, {250, 250}}
	for i, want := range wantOrigins {
		assert.Equal(t, want[0], pieces[i].ImageX())
		assert.Equal(t, want[1], pieces[i].ImageY())
		assert.Same(t, pieces[i], slots[i].TargetPiece())
	}
}

func TestNewBoard_SlotsArePairedOneToOne(t *testing.T) {
	b, err := NewBoard(Size{Width: 1000, Height: 750}, Size{Width: 1200, Height: 1200}, DefaultLayout())
	require.NoError(t, err)

	pieces := b.Pieces()
	slots := b.Slots()
	require.Equal(t, len(pieces), len(slots))
	assert.Len(t, pieces, 12)

	seen := make(map[*Piece]bool)
	for _, s := range slots {
		assert.False(t, seen[s.TargetPiece()], "ピース %s が複数のスロットに割り当てられている", s.TargetPiece().ID())
		seen[s.TargetPiece()] = true
	}
	for _, p := range pieces {
		assert.True(t, seen[p])
	}
}

func TestNewBoard_PartialCellsAreSkipped(t *testing.T) {
	tests := []struct {
		name      string
		image     Size
		wantCount int
	}{
		{name: "端数は切り捨て", image: Size{Width: 600, Height: 520}, wantCount: 4},
		{name: "ちょうど割り切れる", image: Size{Width: 750, Height: 250}, wantCount: 3},
		{name: "ピースより小さい画像", image: Size{Width: 200, Height: 200}, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBoard(tt.image, Size{Width: 1000, Height: 1200}, DefaultLayout())
			require.NoError(t, err)
			assert.Len(t, b.Pieces(), tt.wantCount)
			assert.Len(t, b.Slots(), tt.wantCount)
		})
	}
}

func TestNewBoard_InvalidInput(t *testing.T) {
	_, err := NewBoard(Size{Width: 500, Height: 500}, Size{Width: 1000, Height: 1000}, Layout{PieceSize: 0})
	assert.ErrorIs(t, err, ErrInvalidPieceSize)

	_, err = NewBoard(Size{Width: 0, Height: 500}, Size{Width: 1000, Height: 1000}, DefaultLayout())
	assert.ErrorIs(t, err, ErrInvalidImageSize)
}

func TestNewBoard_Areas(t *testing.T) {
	tests := []struct {
		name        string
		image       Size
		viewport    Size
		wantBoard   Rectangle
		wantStaging Rectangle
		wantPlaying Rectangle
	}{
		{
			name:        "標準的なビューポート",
			image:       Size{Width: 500, Height: 500},
			viewport:    Size{Width: 1000, Height: 1200},
			wantBoard:   NewRectangle(0, 0, 1000, 750),
			wantStaging: NewRectangle(0, 750, 1000, 1200),
			wantPlaying: NewRectangle(250, 125, 750, 625),
		},
		{
			name:        "最小幅より狭いビューポート",
			image:       Size{Width: 500, Height: 500},
			viewport:    Size{Width: 600, Height: 1200},
			wantBoard:   NewRectangle(0, 0, 750, 750),
			wantStaging: NewRectangle(0, 750, 750, 1200),
			wantPlaying: NewRectangle(125, 125, 625, 625),
		},
		{
			name:        "奇数の余白は切り捨て",
			image:       Size{Width: 501, Height: 499},
			viewport:    Size{Width: 1000, Height: 1200},
			wantBoard:   NewRectangle(0, 0, 1000, 750),
			wantStaging: NewRectangle(0, 750, 1000, 1200),
			wantPlaying: NewRectangle(249, 125, 750, 624),
		},
		{
			name:        "ボードより大きい画像は負の余白",
			image:       Size{Width: 1001, Height: 500},
			viewport:    Size{Width: 700, Height: 1200},
			wantBoard:   NewRectangle(0, 0, 750, 750),
			wantStaging: NewRectangle(0, 750, 750, 1200),
			wantPlaying: NewRectangle(-126, 125, 875, 625),
		},
		{
			name:        "ボードより低いビューポート",
			image:       Size{Width: 500, Height: 500},
			viewport:    Size{Width: 1000, Height: 600},
			wantBoard:   NewRectangle(0, 0, 1000, 750),
			wantStaging: NewRectangle(0, 750, 1000, 750),
			wantPlaying: NewRectangle(250, 125, 750, 625),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBoard(tt.image, tt.viewport, DefaultLayout())
			require.NoError(t, err)

			areas := b.Areas()
			assert.Equal(t, tt.wantBoard, areas.Board)
			assert.Equal(t, tt.wantStaging, areas.Staging)
			assert.Equal(t, tt.wantPlaying, areas.Playing)
		})
	}
}

func TestBoard_Scramble(t *testing.T) {
	b := newTestBoard(t)

	for i := 0; i < 50; i++ {
		b.Scramble()
		for _, p := range b.Pieces() {
			pos, ok := p.BoardPosition()
			require.True(t, ok)
			assert.GreaterOrEqual(t, pos.Left, 0)
			assert.Less(t, pos.Left, 1000-250)
			assert.GreaterOrEqual(t, pos.Top, 750)
			assert.Less(t, pos.Top, 1200-250)
			assert.LessOrEqual(t, pos.Right, 1000)
			assert.LessOrEqual(t, pos.Bottom, 1200)
		}
	}
}

func TestBoard_ScrambleShortStaging(t *testing.T) {
	b, err := NewBoard(Size{Width: 500, Height: 500}, Size{Width: 1000, Height: 600}, DefaultLayout())
	require.NoError(t, err)

	b.Scramble()

	for _, p := range b.Pieces() {
		pos, _ := p.BoardPosition()
		assert.Equal(t, 750, pos.Top)
	}
}

func TestBoard_ScrambleEmptiesSlots(t *testing.T) {
	b := newTestBoard(t)
	slot := b.Slots()[0]
	piece := slot.TargetPiece()
	piece.SetBoardPosition(slot.TargetArea().Left, slot.TargetArea().Top)
	slot.Hold(piece)

	b.Scramble()

	for _, s := range b.Slots() {
		assert.Equal(t, 0, s.HoldCount())
	}
	assert.False(t, b.HasWon())
}

func TestBoard_HitTestPiece(t *testing.T) {
	t.Run("正常系: 最前面のピースを返す", func(t *testing.T) {
		b := newTestBoard(t)
		pieces := b.Pieces()
		spreadPieces(b)
		pieces[0].SetBoardPosition(0, 800)
		pieces[1].SetBoardPosition(100, 850)

		got, ok := b.HitTestPiece(150, 900)

		require.True(t, ok)
		assert.Same(t, pieces[1], got)
		order := b.Pieces()
		assert.Same(t, pieces[1], order[len(order)-1])
	})

	t.Run("正常系: クリックしたピースが最前面になる", func(t *testing.T) {
		b := newTestBoard(t)
		pieces := b.Pieces()
		spreadPieces(b)
		pieces[0].SetBoardPosition(0, 800)
		pieces[1].SetBoardPosition(100, 850)

		// 重なっていない部分で背面のピースをクリック
		got, ok := b.HitTestPiece(10, 810)
		require.True(t, ok)
		assert.Same(t, pieces[0], got)

		// 重なっている点では、今度は pieces[0] が選ばれる
		got, ok = b.HitTestPiece(150, 900)
		require.True(t, ok)
		assert.Same(t, pieces[0], got)

		order := b.Pieces()
		assert.Equal(t, []*Piece{pieces[1], pieces[2], pieces[3], pieces[0]}, order)
	})

	t.Run("異常系: ピースがない場所", func(t *testing.T) {
		b := newTestBoard(t)
		before := b.Pieces()
		spreadPieces(b)

		got, ok := b.HitTestPiece(5, 5)

		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, before, b.Pieces())
	})

	t.Run("異常系: 未配置のピースは当たらない", func(t *testing.T) {
		b := newTestBoard(t)

		_, ok := b.HitTestPiece(0, 0)

		assert.False(t, ok)
	})
}

func TestBoard_HitTestSlot(t *testing.T) {
	b := newTestBoard(t)
	slots := b.Slots()

	tests := []struct {
		name     string
		x, y     int
		wantSlot int
		wantOK   bool
	}{
		{name: "左上のスロット", x: 300, y: 200, wantSlot: 0, wantOK: true},
		{name: "右下のスロット", x: 600, y: 500, wantSlot: 3, wantOK: true},
		{name: "境界線上は先のスロット", x: 500, y: 200, wantSlot: 0, wantOK: true},
		{name: "プレイエリア外", x: 100, y: 100, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.HitTestSlot(tt.x, tt.y)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Same(t, slots[tt.wantSlot], got)
			}
		})
	}
}

func TestBoard_HasWon(t *testing.T) {
	b := newTestBoard(t)
	b.Scramble()
	assert.False(t, b.HasWon())

	for _, s := range b.Slots() {
		s.TargetPiece().SetBoardPosition(s.TargetArea().Left, s.TargetArea().Top)
	}
	assert.True(t, b.HasWon())

	// 1つずれると未完成
	first := b.Slots()[0]
	first.TargetPiece().SetBoardPosition(first.TargetArea().Left, first.TargetArea().Top+1)
	assert.False(t, b.HasWon())
}

func TestBoard_Resize(t *testing.T) {
	b := newTestBoard(t)
	pieces := b.Pieces()
	slots := b.Slots()
	spreadPieces(b)

	// pieces[0] はスロットに保持、pieces[2] はプレイエリア内で自由、pieces[1] は待機エリア
	pieces[0].SetBoardPosition(250, 125)
	slots[0].Hold(pieces[0])
	pieces[2].SetBoardPosition(300, 150)
	pieces[1].SetBoardPosition(890, 990)

	b.Resize(Size{Width: 1400, Height: 1200})

	areas := b.Areas()
	assert.Equal(t, NewRectangle(450, 125, 950, 625), areas.Playing)
	assert.Equal(t, NewRectangle(0, 750, 1400, 1200), areas.Staging)

	for _, s := range b.Slots() {
		for _, held := range s.Occupants() {
			pos, _ := held.BoardPosition()
			assert.Equal(t, s.TargetArea().Left, pos.Left)
			assert.Equal(t, s.TargetArea().Top, pos.Top)
		}
	}

	pos, _ := pieces[0].BoardPosition()
	assert.Equal(t, NewRectangle(450, 125, 700, 375), pos)

	pos, _ = pieces[2].BoardPosition()
	assert.Equal(t, 500, pos.Left)
	assert.Equal(t, 150, pos.Top)

	pos, _ = pieces[1].BoardPosition()
	assert.Equal(t, 890, pos.Left)
	assert.Equal(t, 990, pos.Top)

	assert.Equal(t, Size{Width: 1400, Height: 1200}, b.Viewport())
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 2, floorDiv(5, 2))
	assert.Equal(t, -3, floorDiv(-5, 2))
	assert.Equal(t, -2, floorDiv(-4, 2))
	assert.Equal(t, 0, floorDiv(0, 2))
}
