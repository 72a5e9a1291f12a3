package session

import (
	"strings"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/game"
)

// handleUpdateBoard folds a single-move echo into the canonical state.
func (that *Session) handleUpdateBoard(payload updateBoardPayload) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if that.finished || payload.IsGameFinished || that.state.IsGameFinished {
		that.finished = true
		return
	}

	squares := make([]string, that.state.BoardSize*that.state.BoardSize)
	copy(squares, that.state.Squares)

	if payload.Index == nil || payload.Symbol == entity.EmptyCell ||
		*payload.Index < 0 || *payload.Index >= len(squares) {
		return
	}
	squares[*payload.Index] = payload.Symbol

	gameOver := payload.Winner != "" || payload.Draw
	isGameFinished := false

	that.applyLocked(game.SyncStateFromSocket{Payload: game.SyncPayload{
		Squares:        squares,
		XIsNext:        payload.XIsNext,
		GameOver:       &gameOver,
		Winner:         payload.Winner,
		Draw:           payload.Draw,
		WinningLine:    orEmptyLine(payload.WinningLine),
		CurrentRound:   payload.CurrentRound,
		IsGameFinished: &isGameFinished,
	}})
}

// handleRoundEnded animates the just-finished round and resets the board
// for the next one.
func (that *Session) handleRoundEnded(payload roundEndedPayload) {
	log := that.logger.With("method", "handleRoundEnded")

	that.mutex.Lock()
	defer that.mutex.Unlock()

	outcome := game.ParseOutcome(payload.Result)

	cappedRound := payload.CurrentRound
	if cappedRound > that.totalRounds {
		// Safety clamp; flagged because it may mask a server-side
		// off-by-one rather than a real overflow.
		log.Warn("server reported round beyond configured total",
			"serverRound", payload.CurrentRound, "totalRounds", that.totalRounds)
		cappedRound = that.totalRounds
	}

	endedOnClock := outcome.IsDraw || outcome.Reason == game.ReasonTimeOver

	if !that.finished {
		that.displaySquares = copySquares(payload.Board)
		if endedOnClock {
			that.displayRound = cappedRound
		} else {
			that.displayRound = cappedRound - 1
		}
	}

	that.applyLocked(game.SetCurrentRound{Round: cappedRound})

	xIsNext := true
	gameOver := false
	that.applyLocked(game.SyncStateFromSocket{Payload: game.SyncPayload{
		Squares:     entity.EmptyBoard(that.state.BoardSize),
		XIsNext:     &xIsNext,
		GameOver:    &gameOver,
		WinningLine: orEmptyLine(payload.WinningLine),
	}})

	that.appendRoundResultLocked(entity.RoundResult{
		Round:  cappedRound - 1,
		Winner: outcome.Winner,
		IsDraw: outcome.IsDraw,
		Reason: outcome.Reason,
	})

	if endedOnClock {
		// No winning line to display: drop the transient board at once and
		// force the reset animation.
		that.displaySquares = nil
		that.displayRound = cappedRound
		that.transitionSeq++
	}
}

// handleGameOver finalizes the match. The one-shot latch makes redelivery of
// the terminal event a no-op: the results list is persisted once and the
// match-end callback fires exactly once.
func (that *Session) handleGameOver(payload gameOverPayload) {
	that.mutex.Lock()

	if that.gameOverDone {
		that.mutex.Unlock()
		return
	}
	that.gameOverDone = true

	normalized := make([]entity.RoundResult, len(payload.Results))
	for i, result := range payload.Results {
		normalized[i] = entity.RoundResult{
			Round:  result.Round,
			Winner: result.Winner,
			IsDraw: result.Draw,
			Reason: result.Reason,
		}
	}
	that.persistResultsLocked(normalized)

	isDraw := strings.Contains(payload.RoundResult, "Draw")
	isTimeOver := strings.Contains(payload.RoundResult, game.ReasonTimeOver) ||
		(len(normalized) > 0 && normalized[len(normalized)-1].Reason == game.ReasonTimeOver)

	currentRound := len(payload.Results)
	gameOver := true
	isGameFinished := true

	finalBoard := game.SyncPayload{
		Squares:        copySquares(payload.Board),
		WinningLine:    orEmptyLine(payload.WinningLine),
		GameOver:       &gameOver,
		IsGameFinished: &isGameFinished,
		CurrentRound:   &currentRound,
	}

	clearedBoard := game.SyncPayload{
		Squares:        entity.EmptyBoard(that.state.BoardSize),
		WinningLine:    []int{},
		GameOver:       &gameOver,
		IsGameFinished: &isGameFinished,
		CurrentRound:   &currentRound,
	}

	if !isDraw && (len(payload.WinningLine) > 0 || isTimeOver) {
		// Show the final board and its line for the hold, then clear.
		that.displaySquares = copySquares(payload.Board)
		that.displayRound = that.totalRounds
		that.applyLocked(game.SyncStateFromSocket{Payload: finalBoard})

		that.sched.After(displayHoldDuration, func() {
			that.mutex.Lock()
			that.applyLocked(game.SyncStateFromSocket{Payload: clearedBoard})
			that.displaySquares = nil
			that.finished = true
			that.roundResults = normalized
			matchEnd := that.onMatchEnd
			that.mutex.Unlock()

			if matchEnd != nil {
				matchEnd()
			}
		})

		that.mutex.Unlock()
		return
	}

	// Draw, or nothing to display: finalize immediately without the hold.
	that.displaySquares = nil
	that.displayRound = that.totalRounds
	that.applyLocked(game.SyncStateFromSocket{Payload: clearedBoard})
	that.finished = true
	that.roundResults = normalized
	matchEnd := that.onMatchEnd
	that.mutex.Unlock()

	if matchEnd != nil {
		matchEnd()
	}
}

// appendRoundResultLocked appends a result unless that round is already
// recorded, then persists the list.
func (that *Session) appendRoundResultLocked(result entity.RoundResult) {
	for _, existing := range that.roundResults {
		if existing.Round == result.Round {
			return
		}
	}

	that.roundResults = append(that.roundResults, result)
	that.persistResultsLocked(that.roundResults)
}

func (that *Session) persistResultsLocked(results []entity.RoundResult) {
	if that.roomID == "" {
		return
	}

	log := that.logger.With("method", "persistResults")

	if err := that.results.Save(that.ctx, that.roomID, results); err != nil {
		log.Error("failed to persist round results", "roomID", that.roomID, "error", err)
	}
}

func copySquares(squares []string) []string {
	if squares == nil {
		return nil
	}
	copied := make([]string, len(squares))
	copy(copied, squares)
	return copied
}

func orEmptyLine(line []int) []int {
	if line == nil {
		return []int{}
	}
	return line
}
