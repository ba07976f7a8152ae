// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"image"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/jigsaw-puzzle-back/internal/game"
	"github.com/kyiku/jigsaw-puzzle-back/internal/model"
	"github.com/kyiku/jigsaw-puzzle-back/internal/puzzle"
	"github.com/kyiku/jigsaw-puzzle-back/internal/response"
	"github.com/kyiku/jigsaw-puzzle-back/internal/storage"
)

const sessionCookieName = "session_id"

// SessionStoreInterface defines the interface for session storage.
type SessionStoreInterface interface {
	Create() (*model.Player, string)
	Get(sessionID string) (*model.Player, bool)
}

// ImageStoreInterface defines the interface for puzzle image storage.
type ImageStoreInterface interface {
	GetRandomPuzzleImage() (string, image.Image, error)
	ImageURL(key string) string
	UploadSnapshot(img image.Image) (string, error)
}

// StartRequest represents the request body for starting a puzzle.
type StartRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PuzzleHandler handles puzzle lifecycle requests.
type PuzzleHandler struct {
	store    SessionStoreInterface
	images   ImageStoreInterface
	games    *game.Registry
	layout   puzzle.Layout
	gameOpts []game.Option

	// startMu keeps replacing a session's game and registering the
	// replacement in one step.
	startMu sync.Mutex
}

// NewPuzzleHandler creates a new PuzzleHandler.
func NewPuzzleHandler(store SessionStoreInterface, images ImageStoreInterface, games *game.Registry, layout puzzle.Layout) *PuzzleHandler {
	return &PuzzleHandler{
		store:  store,
		images: images,
		games:  games,
		layout: layout,
	}
}

// SetCongratulator sets the generator used for solved messages.
func (h *PuzzleHandler) SetCongratulator(c game.Congratulator) {
	h.gameOpts = append(h.gameOpts, game.WithCongratulator(c))
}

// Start handles POST /api/puzzle/start.
// It reuses the caller's session when valid, otherwise creates one.
func (h *PuzzleHandler) Start(c echo.Context) error {
	var req StartRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "リクエストが不正です")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return response.ErrorWithCode(c, http.StatusBadRequest, "INVALID_VIEWPORT", "画面サイズが不正です")
	}

	player, sessionID := h.playerFromCookie(c)
	if player == nil {
		player, sessionID = h.store.Create()
		c.SetCookie(&http.Cookie{
			Name:     sessionCookieName,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
		})
	}

	key, img, err := h.images.GetRandomPuzzleImage()
	if err != nil {
		if errors.Is(err, storage.ErrNoPuzzleImages) {
			return response.ErrorWithCode(c, http.StatusServiceUnavailable, "NO_IMAGES", "パズル画像がありません")
		}
		c.Logger().Errorf("failed to load puzzle image: %v", err)
		return response.Error(c, http.StatusInternalServerError, "パズル画像の取得に失敗しました")
	}

	imageURL := h.images.ImageURL(key)
	g, err := h.replaceGame(sessionID, player, img, key, imageURL, puzzle.Size{Width: req.Width, Height: req.Height})
	if err != nil {
		if errors.Is(err, game.ErrImageTooSmall) {
			return response.ErrorWithCode(c, http.StatusUnprocessableEntity, "IMAGE_TOO_SMALL", "パズル画像が小さすぎます")
		}
		c.Logger().Errorf("failed to create game: %v", err)
		return response.Error(c, http.StatusInternalServerError, "パズルの作成に失敗しました")
	}

	return response.Success(c, map[string]interface{}{
		"image_url":  imageURL,
		"piece_size": h.layout.PieceSize,
		"board":      g.Snapshot(),
	})
}

// State handles GET /api/puzzle/state.
func (h *PuzzleHandler) State(c echo.Context) error {
	g, err := lookupGame(c, h.store, h.games)
	if err != nil {
		return writeSessionError(c, err)
	}

	state := g.State()
	return response.Success(c, map[string]interface{}{
		"status":    state.Status,
		"image_url": state.ImageURL,
		"solves":    state.Solves,
		"board":     state.Board,
	})
}

// Replay handles POST /api/puzzle/replay.
func (h *PuzzleHandler) Replay(c echo.Context) error {
	g, err := lookupGame(c, h.store, h.games)
	if err != nil {
		return writeSessionError(c, err)
	}

	if err := g.Replay(); err != nil {
		return response.ErrorWithCode(c, http.StatusConflict, err.Error(), "もう一度遊ぶことができません")
	}

	return response.Success(c, map[string]interface{}{
		"board": g.Snapshot(),
	})
}

// Preview handles GET /api/puzzle/preview and returns the board as a PNG.
func (h *PuzzleHandler) Preview(c echo.Context) error {
	g, err := lookupGame(c, h.store, h.games)
	if err != nil {
		return writeSessionError(c, err)
	}

	return response.PNG(c, g.Render())
}

// Share handles POST /api/puzzle/share. The rendered board is uploaded and its URL returned.
func (h *PuzzleHandler) Share(c echo.Context) error {
	g, err := lookupGame(c, h.store, h.games)
	if err != nil {
		return writeSessionError(c, err)
	}

	url, err := h.images.UploadSnapshot(g.Render())
	if err != nil {
		c.Logger().Errorf("failed to upload snapshot: %v", err)
		return response.Error(c, http.StatusInternalServerError, "画像のアップロードに失敗しました")
	}

	return response.Success(c, map[string]interface{}{
		"share_url": url,
	})
}

// replaceGame builds a new game for the session and registers it. The game it
// replaces is retired, and an open connection carries over through the player.
func (h *PuzzleHandler) replaceGame(sessionID string, player *model.Player, img image.Image, key, imageURL string, viewport puzzle.Size) (*game.Game, error) {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	opts := h.gameOpts
	if previous, ok := h.games.Get(sessionID); ok && previous.Player() == player {
		opts = append(opts[:len(opts):len(opts)], game.Replacing(previous))
	}
	g, err := game.NewGame(player, img, key, imageURL, viewport, h.layout, opts...)
	if err != nil {
		return nil, err
	}
	h.games.Put(sessionID, g)
	return g, nil
}

var (
	errNoSession = errors.New("no session")
	errNoPuzzle  = errors.New("no puzzle")
)

func (h *PuzzleHandler) playerFromCookie(c echo.Context) (*model.Player, string) {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie == nil {
		return nil, ""
	}
	player, ok := h.store.Get(cookie.Value)
	if !ok {
		return nil, ""
	}
	return player, cookie.Value
}

// lookupGame resolves the session cookie to the player's game.
func lookupGame(c echo.Context, store SessionStoreInterface, games *game.Registry) (*game.Game, error) {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie == nil {
		return nil, errNoSession
	}
	if _, ok := store.Get(cookie.Value); !ok {
		return nil, errNoSession
	}
	g, ok := games.Get(cookie.Value)
	if !ok {
		return nil, errNoPuzzle
	}
	return g, nil
}

func writeSessionError(c echo.Context, err error) error {
	if errors.Is(err, errNoPuzzle) {
		return response.ErrorWithCode(c, http.StatusNotFound, "NO_PUZZLE", "パズルが開始されていません")
	}
	return response.Error(c, http.StatusUnauthorized, "セッションが無効です")
}
