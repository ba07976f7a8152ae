package handler

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/jigsaw-puzzle-back/internal/game"
	"github.com/kyiku/jigsaw-puzzle-back/internal/model"
	"github.com/kyiku/jigsaw-puzzle-back/internal/puzzle"
	"github.com/kyiku/jigsaw-puzzle-back/internal/session"
	"github.com/kyiku/jigsaw-puzzle-back/internal/storage"
	"github.com/kyiku/jigsaw-puzzle-back/internal/testutil"
)

type puzzleFixture struct {
	store   *session.SessionStore
	s3      *testutil.MockS3Client
	games   *game.Registry
	handler *PuzzleHandler
}

func newPuzzleFixture() *puzzleFixture {
	f := &puzzleFixture{
		store: session.NewSessionStore(),
		s3:    testutil.NewMockS3Client(),
		games: game.NewRegistry(),
	}
	f.s3.Objects["puzzles/cat.png"] = testutil.CreateTestPNG(500, 500)
	images := storage.NewImageStore(f.s3, "jigsaw-puzzle-assets", "https://test.cloudfront.net")
	f.handler = NewPuzzleHandler(f.store, images, f.games, puzzle.DefaultLayout())
	return f
}

// start begins a puzzle for a 1000x1200 viewport and returns the session ID.
func (f *puzzleFixture) start(t *testing.T) string {
	t.Helper()
	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/puzzle/start", StartRequest{Width: 1000, Height: 1200})
	require.NoError(t, f.handler.Start(tc.Context))
	require.Equal(t, http.StatusOK, tc.GetResponseCode())
	cookie := tc.GetResponseCookie("session_id")
	require.NotNil(t, cookie)
	return cookie.Value
}

func TestPuzzleHandler_Start(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(f *puzzleFixture)
		body           interface{}
		wantStatusCode int
		wantCode       string
	}{
		{
			name:           "正常系: パズル開始",
			body:           StartRequest{Width: 1000, Height: 1200},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "異常系: 幅が0",
			body:           StartRequest{Width: 0, Height: 1200},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "INVALID_VIEWPORT",
		},
		{
			name:           "異常系: 高さが負",
			body:           StartRequest{Width: 1000, Height: -1},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "INVALID_VIEWPORT",
		},
		{
			name: "異常系: 画像がない",
			setup: func(f *puzzleFixture) {
				delete(f.s3.Objects, "puzzles/cat.png")
			},
			body:           StartRequest{Width: 1000, Height: 1200},
			wantStatusCode: http.StatusServiceUnavailable,
			wantCode:       "NO_IMAGES",
		},
		{
			name: "異常系: 画像が小さすぎる",
			setup: func(f *puzzleFixture) {
				f.s3.Objects["puzzles/cat.png"] = testutil.CreateTestPNG(100, 100)
			},
			body:           StartRequest{Width: 1000, Height: 1200},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantCode:       "IMAGE_TOO_SMALL",
		},
		{
			name: "異常系: S3エラー",
			setup: func(f *puzzleFixture) {
				f.s3.ListErr = errors.New("access denied")
			},
			body:           StartRequest{Width: 1000, Height: 1200},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPuzzleFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/puzzle/start", tt.body)

			err := f.handler.Start(tc.Context)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatusCode, tc.GetResponseCode())
			resp := tc.GetResponseBody()

			if tt.wantStatusCode != http.StatusOK {
				assert.Equal(t, true, resp["error"])
				if tt.wantCode != "" {
					assert.Equal(t, tt.wantCode, resp["code"])
				}
				assert.Equal(t, 0, f.games.Count())
				return
			}

			assert.Equal(t, false, resp["error"])
			assert.Equal(t, "https://test.cloudfront.net/puzzles/cat.png", resp["image_url"])
			assert.Equal(t, float64(250), resp["piece_size"])
			board, ok := resp["board"].(map[string]interface{})
			require.True(t, ok)
			assert.Len(t, board["pieces"], 4)
			assert.Len(t, board["slots"], 4)

			cookie := tc.GetResponseCookie("session_id")
			require.NotNil(t, cookie)
			assert.True(t, cookie.HttpOnly)
			player, ok := f.store.Get(cookie.Value)
			require.True(t, ok)
			assert.Equal(t, model.StatusPlaying, player.Status)
			assert.Equal(t, "puzzles/cat.png", player.ImageKey)
			assert.Equal(t, 1, f.games.Count())
		})
	}
}

func TestPuzzleHandler_StartInvalidBody(t *testing.T) {
	f := newPuzzleFixture()
	tc := testutil.NewTestContext(http.MethodPost, "/api/puzzle/start", strings.NewReader("{invalid"))
	tc.Request.Header.Set("Content-Type", "application/json")

	err := f.handler.Start(tc.Context)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, tc.GetResponseCode())
	assert.Equal(t, "INVALID_REQUEST", tc.GetResponseBody()["code"])
}

func TestPuzzleHandler_StartReusesSession(t *testing.T) {
	f := newPuzzleFixture()
	sessionID := f.start(t)
	first, _ := f.games.Get(sessionID)

	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/puzzle/start", StartRequest{Width: 1000, Height: 1200})
	tc.SetCookie("session_id", sessionID)
	err := f.handler.Start(tc.Context)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, tc.GetResponseCode())
	assert.Nil(t, tc.GetResponseCookie("session_id"))
	assert.Equal(t, 1, f.store.Count())
	second, ok := f.games.Get(sessionID)
	require.True(t, ok)
	assert.NotSame(t, first, second)
}

func TestPuzzleHandler_StartMovesConnection(t *testing.T) {
	f := newPuzzleFixture()
	sessionID := f.start(t)
	first, _ := f.games.Get(sessionID)
	conn := testutil.NewMockWebSocketConn()
	first.Attach(conn)

	tc := testutil.NewTestContextWithJSON(http.MethodPost, "/api/puzzle/start", StartRequest{Width: 1000, Height: 1200})
	tc.SetCookie("session_id", sessionID)
	require.NoError(t, f.handler.Start(tc.Context))

	second, _ := f.games.Get(sessionID)
	assert.Same(t, conn, second.Player().Conn)
	assert.Len(t, conn.GetMessagesOfType("render"), 2)
}

func TestPuzzleHandler_State(t *testing.T) {
	tests := []struct {
		name           string
		cookie         func(f *puzzleFixture, t *testing.T) string
		wantStatusCode int
		wantCode       string
	}{
		{
			name: "正常系: 盤面を返す",
			cookie: func(f *puzzleFixture, t *testing.T) string {
				return f.start(t)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "異常系: セッションなし",
			cookie:         nil,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "異常系: 無効なセッション",
			cookie: func(f *puzzleFixture, t *testing.T) string {
				return "invalid-session"
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "異常系: パズル未開始",
			cookie: func(f *puzzleFixture, t *testing.T) string {
				_, sessionID := f.store.Create()
				return sessionID
			},
			wantStatusCode: http.StatusNotFound,
			wantCode:       "NO_PUZZLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPuzzleFixture()
			tc := testutil.NewTestContext(http.MethodGet, "/api/puzzle/state", nil)
			if tt.cookie != nil {
				tc.SetCookie("session_id", tt.cookie(f, t))
			}

			err := f.handler.State(tc.Context)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatusCode, tc.GetResponseCode())
			resp := tc.GetResponseBody()
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, resp["code"])
			}
			if tt.wantStatusCode == http.StatusOK {
				assert.Equal(t, model.StatusPlaying, resp["status"])
				assert.Equal(t, float64(0), resp["solves"])
				assert.NotNil(t, resp["board"])
			}
		})
	}
}

// solveGame drags the topmost misplaced piece into its slot until none is left.
func solveGame(g *game.Game) {
	for n := 0; n < 16; n++ {
		snap := g.Snapshot()
		targets := make(map[string]puzzle.Rectangle, len(snap.Slots))
		for _, s := range snap.Slots {
			targets[s.TargetPieceID] = s.TargetArea
		}

		moved := false
		for i := len(snap.Pieces) - 1; i >= 0; i-- {
			p := snap.Pieces[i]
			target := targets[p.ID]
			if p.BoardPosition == nil || *p.BoardPosition == target {
				continue
			}
			cx, cy := target.Left+target.Width()/2, target.Top+target.Height()/2
			g.PointerDown(p.BoardPosition.Left+10, p.BoardPosition.Top+10)
			g.PointerMove(cx, cy)
			g.PointerUp(cx, cy)
			moved = true
			break
		}
		if !moved {
			return
		}
	}
}

func TestPuzzleHandler_StateDuringPlay(t *testing.T) {
	f := newPuzzleFixture()
	sessionID := f.start(t)
	g, _ := f.games.Get(sessionID)
	g.Attach(testutil.NewMockWebSocketConn())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 3; i++ {
			solveGame(g)
			assert.NoError(t, g.Replay())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			tc := testutil.NewTestContext(http.MethodGet, "/api/puzzle/state", nil)
			tc.SetCookie("session_id", sessionID)
			if assert.NoError(t, f.handler.State(tc.Context)) {
				assert.Equal(t, http.StatusOK, tc.GetResponseCode())
			}
		}
	}()
	wg.Wait()

	solveGame(g)
	tc := testutil.NewTestContext(http.MethodGet, "/api/puzzle/state", nil)
	tc.SetCookie("session_id", sessionID)
	require.NoError(t, f.handler.State(tc.Context))
	resp := tc.GetResponseBody()
	assert.Equal(t, model.StatusSolved, resp["status"])
	assert.Equal(t, float64(4), resp["solves"])
	board := resp["board"].(map[string]interface{})
	assert.Equal(t, true, board["solved"])
}

func TestPuzzleHandler_Replay(t *testing.T) {
	f := newPuzzleFixture()
	sessionID := f.start(t)
	g, _ := f.games.Get(sessionID)
	conn := testutil.NewMockWebSocketConn()
	g.Attach(conn)

	tc := testutil.NewTestContext(http.MethodPost, "/api/puzzle/replay", nil)
	tc.SetCookie("session_id", sessionID)
	err := f.handler.Replay(tc.Context)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, tc.GetResponseCode())
	resp := tc.GetResponseBody()
	board, ok := resp["board"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, board["solved"])
	assert.Equal(t, "idle", board["state"])
	assert.Len(t, conn.GetMessagesOfType("render"), 2)
}

func TestPuzzleHandler_ReplayWithoutSession(t *testing.T) {
	f := newPuzzleFixture()
	tc := testutil.NewTestContext(http.MethodPost, "/api/puzzle/replay", nil)

	err := f.handler.Replay(tc.Context)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, tc.GetResponseCode())
}

func TestPuzzleHandler_Preview(t *testing.T) {
	f := newPuzzleFixture()
	sessionID := f.start(t)

	tc := testutil.NewTestContext(http.MethodGet, "/api/puzzle/preview", nil)
	tc.SetCookie("session_id", sessionID)
	err := f.handler.Preview(tc.Context)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, tc.GetResponseCode())
	assert.Equal(t, "image/png", tc.Recorder.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(tc.Recorder.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1000, img.Bounds().Dx())
	assert.Equal(t, 1200, img.Bounds().Dy())
}

func TestPuzzleHandler_Share(t *testing.T) {
	t.Run("正常系: 盤面画像をアップロード", func(t *testing.T) {
		f := newPuzzleFixture()
		sessionID := f.start(t)

		tc := testutil.NewTestContext(http.MethodPost, "/api/puzzle/share", nil)
		tc.SetCookie("session_id", sessionID)
		err := f.handler.Share(tc.Context)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, tc.GetResponseCode())
		url, _ := tc.GetResponseBody()["share_url"].(string)
		assert.True(t, strings.HasPrefix(url, "https://test.cloudfront.net/shared/"))
		assert.True(t, strings.HasSuffix(url, ".png"))
		assert.Len(t, f.s3.UploadedData, 1)
	})

	t.Run("異常系: アップロード失敗", func(t *testing.T) {
		f := newPuzzleFixture()
		sessionID := f.start(t)
		f.s3.PutErr = errors.New("access denied")

		tc := testutil.NewTestContext(http.MethodPost, "/api/puzzle/share", nil)
		tc.SetCookie("session_id", sessionID)
		err := f.handler.Share(tc.Context)

		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, tc.GetResponseCode())
		assert.Equal(t, true, tc.GetResponseBody()["error"])
	})
}
