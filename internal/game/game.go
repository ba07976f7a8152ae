// Package game binds a puzzle board to a player and their connection.
package game

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand"
	"time"

	"github.com/kyiku/jigsaw-puzzle-back/internal/ai"
	"github.com/kyiku/jigsaw-puzzle-back/internal/model"
	"github.com/kyiku/jigsaw-puzzle-back/internal/puzzle"
	"github.com/kyiku/jigsaw-puzzle-back/internal/render"
	"github.com/kyiku/jigsaw-puzzle-back/internal/stage"
)

var (
	// ErrImageTooSmall is returned when the image does not contain a single whole piece.
	ErrImageTooSmall = errors.New("image is smaller than one piece")
	// ErrReplaced is returned by a game that a newer game for the same player has replaced.
	ErrReplaced = errors.New("GAME_REPLACED")
)

// Congratulator produces the message sent when a puzzle is solved.
type Congratulator interface {
	Congratulate(summary ai.SolveSummary) (string, error)
}

// Option configures a Game.
type Option func(*Game)

// WithCongratulator sets the solved message generator.
func WithCongratulator(c Congratulator) Option {
	return func(g *Game) {
		g.congrats = c
	}
}

// Replacing retires previous when the new game takes over the player.
// previous must belong to the same player.
func Replacing(previous *Game) Option {
	return func(g *Game) {
		g.previous = previous
	}
}

// WithRand sets the random source used to scramble the board.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) {
		g.rng = rng
	}
}

// Game is one player's puzzle. All methods are safe for concurrent use.
// Events are applied one at a time under the player's lock, which every game
// for that player shares.
type Game struct {
	player      *model.Player
	img         image.Image
	board       *puzzle.Board
	controller  *puzzle.Controller
	transitions *stage.TransitionManager
	congrats    Congratulator
	rng         *rand.Rand
	previous    *Game

	// guarded by player.Lock
	startedAt time.Time
	retired   bool
	pending   *announcement
}

// State is a consistent view of the player and board.
type State struct {
	Status   string
	ImageURL string
	Solves   int
	Board    puzzle.Snapshot
}

// announcement is a solved message built under the lock and sent after it is released.
type announcement struct {
	conn     model.WebSocketConn
	playerID string
	summary  ai.SolveSummary
}

// NewGame cuts img into a board laid out for viewport and moves the player to playing.
// The player is left untouched when the board cannot be built.
func NewGame(player *model.Player, img image.Image, imageKey, imageURL string, viewport puzzle.Size, layout puzzle.Layout, opts ...Option) (*Game, error) {
	g := &Game{
		player:      player,
		img:         img,
		transitions: stage.NewTransitionManager(),
	}
	for _, opt := range opts {
		opt(g)
	}

	bounds := img.Bounds()
	var boardOpts []puzzle.BoardOption
	if g.rng != nil {
		boardOpts = append(boardOpts, puzzle.WithRand(g.rng))
	}
	board, err := puzzle.NewBoard(puzzle.Size{Width: bounds.Dx(), Height: bounds.Dy()}, viewport, layout, boardOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	if len(board.Pieces()) == 0 {
		return nil, ErrImageTooSmall
	}
	board.Scramble()
	g.board = board
	g.controller = puzzle.NewController(board, &listener{game: g})

	player.Lock()
	defer player.Unlock()

	if g.previous != nil {
		g.previous.retired = true
		g.previous = nil
	}
	if player.Status != model.StatusWaiting {
		player.ResetToWaiting()
	}
	player.AssignPuzzle(imageKey, imageURL)
	if err := g.transitions.Execute(player, model.StatusPlaying); err != nil {
		return nil, err
	}
	g.startedAt = time.Now()
	g.sendRender()

	return g, nil
}

// Player returns the player solving this game.
// Its fields may only be read with the player locked.
func (g *Game) Player() *model.Player {
	return g.player
}

// Attach binds a connection to the player and sends the current board.
func (g *Game) Attach(conn model.WebSocketConn) {
	g.player.Lock()
	defer g.player.Unlock()

	g.player.Conn = conn
	if !g.retired {
		g.sendRender()
	}
}

// Detach clears the connection if it is still the attached one.
func (g *Game) Detach(conn model.WebSocketConn) {
	g.player.Lock()
	defer g.player.Unlock()

	if g.player.Conn == conn {
		g.player.Conn = nil
	}
}

// Connected reports whether a connection is attached.
func (g *Game) Connected() bool {
	g.player.Lock()
	defer g.player.Unlock()
	return g.player.Conn != nil
}

// Retired reports whether a newer game has replaced this one.
func (g *Game) Retired() bool {
	g.player.Lock()
	defer g.player.Unlock()
	return g.retired
}

// PointerDown forwards a pointer press to the controller.
func (g *Game) PointerDown(x, y int) {
	g.apply(func() { g.controller.PointerDown(x, y) })
}

// PointerMove forwards a pointer move to the controller.
func (g *Game) PointerMove(x, y int) {
	g.apply(func() { g.controller.PointerMove(x, y) })
}

// PointerUp forwards a pointer release to the controller.
func (g *Game) PointerUp(x, y int) {
	g.apply(func() { g.controller.PointerUp(x, y) })
}

// Resize lays the board out for a new viewport.
func (g *Game) Resize(width, height int) {
	g.apply(func() { g.controller.Resize(width, height) })
}

// apply runs event under the player's lock. A solve it causes is announced
// once the lock is released, so a slow congratulation never blocks the player.
func (g *Game) apply(event func()) {
	g.player.Lock()
	if g.retired {
		g.player.Unlock()
		return
	}
	event()
	ann := g.pending
	g.pending = nil
	g.player.Unlock()

	if ann != nil {
		go g.announce(*ann)
	}
}

// Replay scrambles the board for another round.
func (g *Game) Replay() error {
	g.player.Lock()
	defer g.player.Unlock()

	if g.retired {
		return ErrReplaced
	}
	if g.player.Status == model.StatusSolved {
		if err := g.transitions.Execute(g.player, model.StatusPlaying); err != nil {
			return err
		}
	}
	g.startedAt = time.Now()
	g.controller.Replay()
	return nil
}

// State returns the player's status and the board, read together.
func (g *Game) State() State {
	g.player.Lock()
	defer g.player.Unlock()

	return State{
		Status:   g.player.Status,
		ImageURL: g.player.ImageURL,
		Solves:   g.player.Solves,
		Board:    g.controller.Snapshot(),
	}
}

// Snapshot returns the current board state.
func (g *Game) Snapshot() puzzle.Snapshot {
	g.player.Lock()
	defer g.player.Unlock()
	return g.controller.Snapshot()
}

// Render draws the current board.
func (g *Game) Render() *image.RGBA {
	g.player.Lock()
	snap := g.controller.Snapshot()
	g.player.Unlock()
	return render.Board(g.img, snap)
}

func (g *Game) sendRender() {
	if g.player.Conn == nil {
		return
	}
	_ = g.player.Conn.WriteJSON(map[string]interface{}{
		"type":  "render",
		"board": g.controller.Snapshot(),
	})
}

// handleSolved runs with the player locked. It records the solve and, when a
// connection is attached, leaves the message for apply to send.
func (g *Game) handleSolved() {
	solves := g.player.RecordSolve()

	if err := g.transitions.Execute(g.player, model.StatusSolved); err != nil {
		log.Printf("Warning: player %s: %v", g.player.ID, err)
	}

	if g.player.Conn == nil {
		return
	}
	g.pending = &announcement{
		conn:     g.player.Conn,
		playerID: g.player.ID,
		summary: ai.SolveSummary{
			Pieces:   len(g.board.Pieces()),
			Solves:   solves,
			Duration: time.Since(g.startedAt),
		},
	}
}

func (g *Game) announce(ann announcement) {
	message := ai.FallbackMessage(ann.summary)
	if g.congrats != nil {
		if m, err := g.congrats.Congratulate(ann.summary); err == nil {
			message = m
		} else {
			log.Printf("Warning: congratulation for player %s failed: %v", ann.playerID, err)
		}
	}

	_ = ann.conn.WriteJSON(map[string]interface{}{
		"type":       "solved",
		"message":    message,
		"solves":     ann.summary.Solves,
		"elapsed_ms": ann.summary.Duration.Milliseconds(),
	})
}

// listener is called by the controller with the player already locked.
type listener struct {
	game *Game
}

func (l *listener) Redraw() { l.game.sendRender() }
func (l *listener) Solved() { l.game.handleSolved() }
