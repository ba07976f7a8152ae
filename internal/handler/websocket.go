package handler

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kyiku/jigsaw-puzzle-back/internal/game"
	ws "github.com/kyiku/jigsaw-puzzle-back/internal/websocket"
)

// WebSocketHandler handles WebSocket connections carrying pointer events.
type WebSocketHandler struct {
	store       SessionStoreInterface
	games       *game.Registry
	upgrader    *websocket.Upgrader
	idleTimeout time.Duration
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(store SessionStoreInterface, games *game.Registry, allowedOrigin string, idleTimeout time.Duration) *WebSocketHandler {
	return &WebSocketHandler{
		store:       store,
		games:       games,
		upgrader:    ws.NewUpgrader(allowedOrigin),
		idleTimeout: idleTimeout,
	}
}

// Connect validates the session, upgrades the connection and serves events until it closes.
func (h *WebSocketHandler) Connect(c echo.Context) error {
	g, err := lookupGame(c, h.store, h.games)
	if err != nil {
		return writeSessionError(c, err)
	}
	cookie, _ := c.Cookie(sessionCookieName)
	sessionID := cookie.Value

	raw, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		c.Logger().Warnf("websocket upgrade failed: %v", err)
		return nil
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	g.Attach(conn)
	defer h.detach(sessionID, conn)

	timeout := game.NewIdleTimeout(conn, h.idleTimeout)
	timeout.Start()
	defer timeout.Cancel()

	dispatcher := ws.NewDispatcher(conn, &sessionSink{games: h.games, sessionID: sessionID})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Logger().Warnf("websocket read failed: %v", err)
			}
			return nil
		}
		timeout.Touch()
		h.store.Get(sessionID) // refreshes the session's sliding expiry

		if err := dispatcher.Dispatch(data); err != nil {
			c.Logger().Debugf("rejected message from %s: %v", sessionID, err)
		}
	}
}

// detach unbinds conn from whatever game the session has now.
func (h *WebSocketHandler) detach(sessionID string, conn *ws.Conn) {
	if g, ok := h.games.Get(sessionID); ok {
		g.Detach(conn)
	}
}

// sessionSink forwards events to the session's current game, which changes
// when the player starts a new puzzle while connected.
type sessionSink struct {
	games     *game.Registry
	sessionID string
}

func (s *sessionSink) PointerDown(x, y int) {
	if g, ok := s.games.Get(s.sessionID); ok {
		g.PointerDown(x, y)
	}
}

func (s *sessionSink) PointerMove(x, y int) {
	if g, ok := s.games.Get(s.sessionID); ok {
		g.PointerMove(x, y)
	}
}

func (s *sessionSink) PointerUp(x, y int) {
	if g, ok := s.games.Get(s.sessionID); ok {
		g.PointerUp(x, y)
	}
}

func (s *sessionSink) Resize(width, height int) {
	if g, ok := s.games.Get(s.sessionID); ok {
		g.Resize(width, height)
	}
}

func (s *sessionSink) Replay() error {
	g, ok := s.games.Get(s.sessionID)
	if !ok {
		return errNoPuzzle
	}
	return g.Replay()
}
