package entity

import (
	"math/rand"
	"strconv"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	MinBoardSize = 3
	MaxBoardSize = 11
)

// Config holds the per-match options negotiated at setup time.
type Config struct {
	// TimerDuration is the per-turn countdown in seconds; nil means the
	// match runs without a timer.
	TimerDuration *int `json:"timerDuration"`
}

// GameState is the canonical local view of the match, reconciled from the
// authoritative server. It is mutated only through the reducer.
type GameState struct {
	Squares      []string `json:"squares"`
	XIsNext      bool     `json:"xIsNext"`
	BoardSize    int      `json:"boardSize"`
	LineLength   int      `json:"lineLength"`
	CurrentRound int      `json:"currentRound"`
	GameOver     bool     `json:"gameOver"`

	// IsGameFinished marks the entire match as concluded; once set it is
	// terminal except for the scripted clear-to-empty board transition.
	IsGameFinished bool `json:"isGameFinished"`

	WinningLine []int  `json:"winningLine"`
	MySymbol    string `json:"mySymbol"`
	RoomID      string `json:"roomId,omitempty"`
	IsHost      bool   `json:"isHost"`
	Config      Config `json:"config"`
	PlayerX     Player `json:"playerX"`
	PlayerO     Player `json:"playerO"`
}

// NewGameState - builds the initial state for a match view.
// Board size is clamped to the supported range and the line length is
// validated against it before anything else sees the values.
func NewGameState(boardSize, lineLength int, roomID string, timerDuration *int) *GameState {
	boardSize = ClampBoardSize(boardSize)
	lineLength = ValidLineLength(boardSize, lineLength)

	return &GameState{
		Squares:      EmptyBoard(boardSize),
		XIsNext:      true,
		BoardSize:    boardSize,
		LineLength:   lineLength,
		CurrentRound: 1,
		WinningLine:  []int{},
		RoomID:       roomID,
		Config:       Config{TimerDuration: timerDuration},
		PlayerX:      Player{Name: "Unknown", Symbol: PlayerX},
		PlayerO:      Player{Name: "Unknown", Symbol: PlayerO},
	}
}

// EmptyBoard - returns a cleared squares slice for the given board size.
func EmptyBoard(boardSize int) []string {
	return make([]string, boardSize*boardSize)
}

// Clone returns a deep copy so reducer outputs never alias reducer inputs.
func (that *GameState) Clone() *GameState {
	next := *that

	next.Squares = make([]string, len(that.Squares))
	copy(next.Squares, that.Squares)

	next.WinningLine = make([]int, len(that.WinningLine))
	copy(next.WinningLine, that.WinningLine)

	if that.Config.TimerDuration != nil {
		duration := *that.Config.TimerDuration
		next.Config.TimerDuration = &duration
	}

	return &next
}

func ClampBoardSize(boardSize int) int {
	if boardSize < MinBoardSize {
		return MinBoardSize
	}
	if boardSize > MaxBoardSize {
		return MaxBoardSize
	}
	return boardSize
}

// AvailableLineLengths - returns the win-line lengths a board size supports.
func AvailableLineLengths(boardSize int) []int {
	switch {
	case boardSize <= 3:
		return []int{3}
	case boardSize == 4:
		return []int{4}
	case boardSize == 5:
		return []int{4, 5}
	default:
		return []int{4, 5, 6}
	}
}

// ValidLineLength - returns the requested line length if the board supports
// it, otherwise the first supported value.
func ValidLineLength(boardSize, requested int) int {
	available := AvailableLineLengths(boardSize)
	for _, length := range available {
		if length == requested {
			return requested
		}
	}
	return available[0]
}

// GenerateRoomID - returns a random 8-digit room identifier.
func GenerateRoomID() string {
	return strconv.Itoa(10000000 + rand.Intn(90000000)) //nolint:gosec // room ids are not secrets
}
