package session

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// AttemptMove validates a user move intent and, if every guard passes, emits
// it to the server. The board itself only changes when the server's echo
// arrives: there is no optimistic local mutation.
//
// Guard order matters: teardown, connection, match over, symbol assignment, and last
// the cell/round race check, which is a silent no-op because a click landing
// just as the round ends is not an error.
func (that *Session) AttemptMove(index int) error {
	log := that.logger.With("method", "AttemptMove")

	that.mutex.Lock()

	if that.closed {
		that.mutex.Unlock()
		return apperror.ErrSessionClosed
	}

	if !that.socket.Connected() {
		that.setNoticeLocked("Disconnected from server. Reconnecting...")
		that.mutex.Unlock()
		return apperror.ErrDisconnected
	}

	if that.finished || that.state.IsGameFinished || that.state.GameOver || that.state.CurrentRound > that.totalRounds {
		that.setNoticeLocked("Game is over")
		that.mutex.Unlock()
		return apperror.ErrGameOver
	}

	if that.state.MySymbol == "" {
		that.setNoticeLocked("Symbol not assigned")
		that.mutex.Unlock()
		return apperror.ErrSymbolNotAssigned
	}

	if index < 0 || index >= len(that.state.Squares) {
		log.Debug("move intent out of range", "index", index)
		that.mutex.Unlock()
		return nil
	}

	if that.state.Squares[index] != entity.EmptyCell || that.state.GameOver {
		// Stale click on a decided cell or an already-over round.
		that.mutex.Unlock()
		return nil
	}

	move := playerMovePayload{
		RoomID: that.roomID,
		Index:  index,
		Symbol: that.state.MySymbol,
	}

	that.mutex.Unlock()

	if err := that.socket.Emit(eventPlayerMove, move); err != nil {
		return fmt.Errorf("failed to emit move: %w", err)
	}

	log.Debug("move intent emitted", "index", index, "symbol", move.Symbol)

	return nil
}
