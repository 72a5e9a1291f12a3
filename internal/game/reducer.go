package game

import (
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Action is one of the recognized reducer inputs. Unknown actions leave the
// state untouched.
type Action interface {
	isAction()
}

// SetSymbol assigns the local player's mark.
type SetSymbol struct {
	Symbol string
}

// SyncStateFromSocket is the primary reconciliation action: it folds a
// server-pushed delta or snapshot into the canonical state.
type SyncStateFromSocket struct {
	Payload SyncPayload
}

// SetCurrentRound overwrites the round counter.
type SetCurrentRound struct {
	Round int
}

// ClearWinningLine drops the displayed winning line and resumes play.
type ClearWinningLine struct {
	WinningLine []int
}

// RestoreState shallow-merges a recovery snapshot over the current state.
type RestoreState struct {
	Payload RestorePayload
}

func (SetSymbol) isAction()           {}
func (SyncStateFromSocket) isAction() {}
func (SetCurrentRound) isAction()     {}
func (ClearWinningLine) isAction()    {}
func (RestoreState) isAction()        {}

// SyncPayload carries the optional fields of an updateBoard-style delta.
// Pointer fields distinguish "absent" from a zero value; absent fields fall
// back to the prior state.
type SyncPayload struct {
	Index          *int     `json:"index,omitempty"`
	Symbol         string   `json:"symbol,omitempty"`
	Squares        []string `json:"squares,omitempty"`
	XIsNext        *bool    `json:"xIsNext,omitempty"`
	GameOver       *bool    `json:"gameOver,omitempty"`
	Winner         string   `json:"winner,omitempty"`
	Draw           bool     `json:"draw,omitempty"`
	CurrentRound   *int     `json:"currentRound,omitempty"`
	WinningLine    []int    `json:"winningLine,omitempty"`
	IsGameFinished *bool    `json:"isGameFinished,omitempty"`
}

// RestorePayload mirrors the reconnect-success snapshot. It is deliberately
// permissive: every field is optional and merged over the prior state.
type RestorePayload struct {
	MySymbol       *string        `json:"mySymbol,omitempty"`
	IsHost         *bool          `json:"isHost,omitempty"`
	PlayerX        *entity.Player `json:"playerX,omitempty"`
	PlayerO        *entity.Player `json:"playerO,omitempty"`
	Squares        []string       `json:"squares,omitempty"`
	XIsNext        *bool          `json:"xIsNext,omitempty"`
	CurrentRound   *int           `json:"currentRound,omitempty"`
	GameOver       *bool          `json:"gameOver,omitempty"`
	IsGameFinished *bool          `json:"isGameFinished,omitempty"`
	WinningLine    []int          `json:"winningLine,omitempty"`
	Config         *entity.Config `json:"config,omitempty"`
}

// Reduce - the pure transition function over the canonical game state.
// It never mutates its input and never fails: malformed payload fields are
// ignored rather than propagated.
func Reduce(state *entity.GameState, action Action) *entity.GameState {
	switch act := action.(type) {
	case SetSymbol:
		next := state.Clone()
		next.MySymbol = act.Symbol
		return next

	case SyncStateFromSocket:
		return reduceSync(state, act.Payload)

	case SetCurrentRound:
		next := state.Clone()
		next.CurrentRound = act.Round
		return next

	case ClearWinningLine:
		next := state.Clone()
		next.WinningLine = copyLine(act.WinningLine)
		next.GameOver = false
		return next

	case RestoreState:
		return reduceRestore(state, act.Payload)

	default:
		return state
	}
}

func reduceSync(state *entity.GameState, payload SyncPayload) *entity.GameState {
	next := state.Clone()

	boardSize := state.BoardSize
	if boardSize == 0 {
		boardSize = entity.MinBoardSize
	}
	cellCount := boardSize * boardSize

	squares := make([]string, cellCount)
	copy(squares, state.Squares)

	switch {
	case payload.Index != nil && payload.Symbol != entity.EmptyCell &&
		*payload.Index >= 0 && *payload.Index < cellCount:
		squares[*payload.Index] = payload.Symbol
	case payload.Squares != nil:
		// Wholesale replacement, normalized to the board size so the
		// squares-length invariant holds even for a malformed payload.
		squares = make([]string, cellCount)
		copy(squares, payload.Squares)
	}
	next.Squares = squares

	isGameFinished := state.IsGameFinished
	if payload.IsGameFinished != nil {
		isGameFinished = *payload.IsGameFinished
	}
	next.IsGameFinished = isGameFinished

	if isGameFinished || payload.GameOver != nil {
		gameOver := payload.GameOver != nil && *payload.GameOver
		next.GameOver = gameOver || payload.Winner != "" || payload.Draw
	}

	if payload.XIsNext != nil {
		next.XIsNext = *payload.XIsNext
	}

	if payload.CurrentRound != nil {
		next.CurrentRound = *payload.CurrentRound
	} else if next.CurrentRound == 0 {
		next.CurrentRound = 1
	}

	if payload.WinningLine != nil {
		next.WinningLine = copyLine(payload.WinningLine)
	}

	return next
}

func reduceRestore(state *entity.GameState, payload RestorePayload) *entity.GameState {
	next := state.Clone()

	if payload.MySymbol != nil {
		next.MySymbol = *payload.MySymbol
	}
	if payload.IsHost != nil {
		next.IsHost = *payload.IsHost
	}
	if payload.PlayerX != nil {
		next.PlayerX = *payload.PlayerX
	}
	if payload.PlayerO != nil {
		next.PlayerO = *payload.PlayerO
	}
	if payload.Squares != nil {
		next.Squares = make([]string, len(payload.Squares))
		copy(next.Squares, payload.Squares)
	}
	if payload.XIsNext != nil {
		next.XIsNext = *payload.XIsNext
	}
	if payload.CurrentRound != nil {
		next.CurrentRound = *payload.CurrentRound
	}
	if payload.GameOver != nil {
		next.GameOver = *payload.GameOver
	}
	if payload.IsGameFinished != nil {
		next.IsGameFinished = *payload.IsGameFinished
	}
	if payload.WinningLine != nil {
		next.WinningLine = copyLine(payload.WinningLine)
	}
	if payload.Config != nil {
		next.Config = *payload.Config
		if payload.Config.TimerDuration != nil {
			duration := *payload.Config.TimerDuration
			next.Config.TimerDuration = &duration
		}
	}

	return next
}

func copyLine(line []int) []int {
	copied := make([]int, len(line))
	copy(copied, line)
	return copied
}
