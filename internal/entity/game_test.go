package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameState(t *testing.T) {
	t.Run("Builds a cleared board of the requested size", func(t *testing.T) {
		// Given: a 5x5 match setup
		state := NewGameState(5, 4, "12345678", nil)

		// Then: the squares slice covers the whole board and play starts with X
		require.Len(t, state.Squares, 25)
		assert.True(t, state.XIsNext)
		assert.Equal(t, 1, state.CurrentRound)
		assert.Empty(t, state.WinningLine)
		assert.False(t, state.GameOver)
		assert.False(t, state.IsGameFinished)
	})

	t.Run("Clamps board size to the supported range", func(t *testing.T) {
		// Given: out-of-range board sizes
		tooSmall := NewGameState(1, 3, "", nil)
		tooLarge := NewGameState(50, 3, "", nil)

		// Then: sizes are clamped to [3, 11]
		assert.Equal(t, MinBoardSize, tooSmall.BoardSize)
		assert.Equal(t, MaxBoardSize, tooLarge.BoardSize)
		assert.Len(t, tooLarge.Squares, MaxBoardSize*MaxBoardSize)
	})

	t.Run("Falls back to a supported line length", func(t *testing.T) {
		// Given: a 3x3 board with an unsupported line length request
		state := NewGameState(3, 5, "", nil)

		// Then: the only supported length for 3x3 is used
		assert.Equal(t, 3, state.LineLength)
	})
}

func TestAvailableLineLengths(t *testing.T) {
	testCases := []struct {
		boardSize int
		expected  []int
	}{
		{boardSize: 3, expected: []int{3}},
		{boardSize: 4, expected: []int{4}},
		{boardSize: 5, expected: []int{4, 5}},
		{boardSize: 6, expected: []int{4, 5, 6}},
		{boardSize: 11, expected: []int{4, 5, 6}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, AvailableLineLengths(tc.boardSize), "board size %d", tc.boardSize)
	}
}

func TestValidLineLength(t *testing.T) {
	t.Run("Keeps a supported request", func(t *testing.T) {
		assert.Equal(t, 5, ValidLineLength(5, 5))
	})

	t.Run("Falls back to the first supported value", func(t *testing.T) {
		assert.Equal(t, 4, ValidLineLength(5, 9))
		assert.Equal(t, 3, ValidLineLength(3, 4))
	})
}

func TestGameState_Clone(t *testing.T) {
	// Given: a state with a timer and a winning line
	duration := 30
	state := NewGameState(3, 3, "11112222", &duration)
	state.Squares[4] = PlayerX
	state.WinningLine = []int{0, 4, 8}

	// When: cloning and mutating the clone
	clone := state.Clone()
	clone.Squares[0] = PlayerO
	clone.WinningLine[0] = 7
	*clone.Config.TimerDuration = 99

	// Then: the original is untouched
	assert.Equal(t, EmptyCell, state.Squares[0])
	assert.Equal(t, 0, state.WinningLine[0])
	assert.Equal(t, 30, *state.Config.TimerDuration)
}

func TestGenerateRoomID(t *testing.T) {
	// When: generating room identifiers
	for i := 0; i < 20; i++ {
		roomID := GenerateRoomID()

		// Then: each is an 8-digit numeric string
		require.Len(t, roomID, 8)
		for _, digit := range roomID {
			assert.True(t, digit >= '0' && digit <= '9')
		}
	}
}
