package session

import (
	"encoding/json"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/game"
)

const (
	// reconnectRetryDelay bounds the single automatic retry after the
	// server reports a missing identity.
	reconnectRetryDelay = time.Second

	missingIdentityMessage = "Missing user ID, please retry"
)

// emitReconnect asks the server for a full state resync using the stable
// room and user identity. Called on start and after every transport
// reconnect.
func (that *Session) emitReconnect() {
	log := that.logger.With("method", "emitReconnect")

	that.mutex.Lock()
	if that.closed || that.roomID == "" || that.userID == "" {
		that.mutex.Unlock()
		return
	}
	payload := reconnectPayload{RoomID: that.roomID, UserID: that.userID}
	that.mutex.Unlock()

	if err := that.socket.Emit(eventReconnect, payload); err != nil {
		log.Error("failed to emit reconnect", "roomID", payload.RoomID, "error", err)
		return
	}

	log.Info("reconnect requested", "roomID", payload.RoomID)
}

// handleReconnectSuccess restores the canonical state from the server's
// snapshot and mirrors the identity subset to durable storage.
func (that *Session) handleReconnectSuccess(raw json.RawMessage) {
	log := that.logger.With("method", "handleReconnectSuccess")

	var payload struct {
		GameState game.RestorePayload `json:"gameState"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error("failed to unmarshal reconnect-success", "error", err)
		that.noticeNow("Error restoring game")
		return
	}

	if payload.GameState.WinningLine == nil {
		payload.GameState.WinningLine = []int{}
	}

	that.mutex.Lock()
	that.applyLocked(game.RestoreState{Payload: payload.GameState})
	that.synced = true

	// A restore that reports the match concluded is terminal, same as
	// seeding from the durable snapshot.
	if that.state.IsGameFinished {
		that.finished = true
	}

	// A successful resync supersedes any pending identity retry.
	that.retryTask.Cancel()
	that.retryTask = nil

	that.mirrorIdentityLocked()
	that.mutex.Unlock()

	log.Info("game state restored", "roomID", that.roomID)
}

// handleRoomNotFound is fatal: the room is gone, so its durable state is
// purged and the user is routed to a safe screen.
func (that *Session) handleRoomNotFound() {
	that.logger.Info("room not found", "roomID", that.roomID)

	that.purgeRoom()

	if that.onFatal != nil {
		that.onFatal()
	}
}

// handleServerError sorts server errors into the three recovery classes:
// the bounded identity retry, the fatal pre-sync failure, and the transient
// notice once a resync has succeeded.
func (that *Session) handleServerError(payload errorPayload) {
	log := that.logger.With("method", "handleServerError")

	if payload.Message == missingIdentityMessage && payload.Retry {
		that.mutex.Lock()
		if that.closed {
			that.mutex.Unlock()
			return
		}

		// One retry per error occurrence, never an unbounded loop: a new
		// occurrence replaces any retry still pending.
		that.retryTask.Cancel()
		that.retryTask = that.sched.After(reconnectRetryDelay, func() {
			that.mutex.Lock()
			that.retryTask = nil
			closed := that.closed
			that.mutex.Unlock()

			if !closed {
				that.emitReconnect()
			}
		})
		that.mutex.Unlock()

		log.Info("identity missing, retry scheduled", "roomID", that.roomID)
		return
	}

	that.mutex.Lock()
	synced := that.synced
	that.mutex.Unlock()

	if !synced {
		log.Error("unrecoverable error before resync", "message", payload.Message)
		that.purgeRoom()

		if that.onFatal != nil {
			that.onFatal()
		}
		return
	}

	that.noticeNow(payload.Message)
}

func (that *Session) purgeRoom() {
	log := that.logger.With("method", "purgeRoom")

	if that.roomID == "" {
		return
	}

	if err := that.snapshots.Purge(that.ctx, that.roomID); err != nil {
		log.Error("failed to purge snapshot", "roomID", that.roomID, "error", err)
	}
	if err := that.results.Purge(that.ctx, that.roomID); err != nil {
		log.Error("failed to purge round results", "roomID", that.roomID, "error", err)
	}
}
