// Package stage provides player status transition management.
package stage

import (
	"errors"

	"github.com/kyiku/jigsaw-puzzle-back/internal/model"
)

// ErrCodeInvalidTransition is returned for a status change that is not allowed.
const ErrCodeInvalidTransition = "INVALID_TRANSITION"

// statusMessages contains the WebSocket messages for each status.
var statusMessages = map[string]string{
	model.StatusWaiting: "パズルを選んでください",
	model.StatusPlaying: "ピースをドラッグして枠にはめてください",
	model.StatusSolved:  "パズル完成！",
}

// TransitionManager manages player status transitions.
type TransitionManager struct{}

// NewTransitionManager creates a new TransitionManager.
func NewTransitionManager() *TransitionManager {
	return &TransitionManager{}
}

// CanTransition checks if the player can transition to the target status.
// Returns (valid, errorCode).
func (m *TransitionManager) CanTransition(player *model.Player, toStatus string) (bool, string) {
	if player.CanTransitionTo(toStatus) {
		return true, ""
	}
	return false, ErrCodeInvalidTransition
}

// Execute performs the status transition and notifies the player.
func (m *TransitionManager) Execute(player *model.Player, toStatus string) error {
	valid, errCode := m.CanTransition(player, toStatus)
	if !valid {
		return errors.New(errCode)
	}

	player.Status = toStatus

	if player.Conn != nil {
		message, ok := statusMessages[toStatus]
		if !ok {
			message = "状態が変更されました"
		}

		_ = player.Conn.WriteJSON(map[string]interface{}{
			"type":    "status_change",
			"status":  toStatus,
			"message": message,
		})
	}

	return nil
}
