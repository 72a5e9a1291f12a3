package session

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptMove_EmitsIntent(t *testing.T) {
	// Given: a connected session with a symbol assigned
	env := newTestEnv(t)

	// When: the user clicks an empty cell
	err := env.session.AttemptMove(4)

	// Then: the intent goes to the server, the board stays untouched
	require.NoError(t, err)
	require.Equal(t, 1, env.sock.emitCount(eventPlayerMove))

	emit, ok := env.sock.lastEmit(eventPlayerMove)
	require.True(t, ok)
	assert.Equal(t, playerMovePayload{RoomID: testRoomID, Index: 4, Symbol: entity.PlayerX}, emit.payload)
	assert.Equal(t, entity.EmptyCell, env.session.State().Squares[4])
}

func TestAttemptMove_Disconnected(t *testing.T) {
	// Given: a dropped transport
	env := newTestEnv(t)
	env.sock.setConnected(false)

	// When: the user clicks
	err := env.session.AttemptMove(0)

	// Then: nothing is emitted and a transient notice explains why
	require.ErrorIs(t, err, apperror.ErrDisconnected)
	assert.Equal(t, 0, env.sock.emitCount(eventPlayerMove))
	assert.Equal(t, "Disconnected from server. Reconnecting...", env.session.Notice())

	// And: the notice clears itself
	env.clock.Advance(noticeDuration)
	eventually(t, func() bool { return env.session.Notice() == "" }, "notice should auto-clear")
}

func TestAttemptMove_RoundOver(t *testing.T) {
	// Given: a round the server has already decided
	env := newTestEnv(t)
	env.sock.receive(t, eventUpdateBoard, updateBoardPayload{
		Index:       intPtr(0),
		Symbol:      entity.PlayerX,
		Winner:      entity.PlayerX,
		WinningLine: []int{0, 1, 2},
	})

	// When: a stale click arrives
	err := env.session.AttemptMove(5)

	// Then: the move is rejected with the game-over notice
	require.ErrorIs(t, err, apperror.ErrGameOver)
	assert.Equal(t, "Game is over", env.session.Notice())
	assert.Equal(t, 0, env.sock.emitCount(eventPlayerMove))
}

func TestAttemptMove_MatchFinished(t *testing.T) {
	// Given: the match flagged finished
	env := newTestEnv(t)
	env.sock.receive(t, eventUpdateBoard, updateBoardPayload{IsGameFinished: true})

	// When: the user clicks anyway
	err := env.session.AttemptMove(0)

	// Then: the click is rejected
	require.ErrorIs(t, err, apperror.ErrGameOver)
}

func TestAttemptMove_SymbolNotAssigned(t *testing.T) {
	// Given: a session that never received its symbol
	env := newTestEnv(t, func(params *Params) { params.Setup = nil })

	// When: the user clicks
	err := env.session.AttemptMove(0)

	// Then: the move is rejected until assignment lands
	require.ErrorIs(t, err, apperror.ErrSymbolNotAssigned)
	assert.Equal(t, "Symbol not assigned", env.session.Notice())
}

func TestAttemptMove_OccupiedCellIsSilent(t *testing.T) {
	// Given: a cell the server already decided
	env := newTestEnv(t)
	env.sock.receive(t, eventUpdateBoard, updateBoardPayload{
		Index:   intPtr(4),
		Symbol:  entity.PlayerO,
		XIsNext: boolPtr(true),
	})

	// When: the user clicks that cell again
	err := env.session.AttemptMove(4)

	// Then: no error, no emit, no notice; the click just fizzles
	require.NoError(t, err)
	assert.Equal(t, 0, env.sock.emitCount(eventPlayerMove))
	assert.Empty(t, env.session.Notice())
}

func TestAttemptMove_OutOfRange(t *testing.T) {
	// Given: a 3x3 board
	env := newTestEnv(t)

	// When: indexes outside the board arrive
	require.NoError(t, env.session.AttemptMove(9))
	require.NoError(t, env.session.AttemptMove(-1))

	// Then: nothing is emitted
	assert.Equal(t, 0, env.sock.emitCount(eventPlayerMove))
}

func TestAttemptMove_ClosedSession(t *testing.T) {
	// Given: a torn-down session
	env := newTestEnv(t)
	env.session.Close()

	// When: a click arrives after teardown
	err := env.session.AttemptMove(0)

	// Then: the move is rejected without a notice
	require.ErrorIs(t, err, apperror.ErrSessionClosed)
	assert.Equal(t, 0, env.sock.emitCount(eventPlayerMove))
}

func TestInvalidMove_ShowsServerMessage(t *testing.T) {
	// Given: a started session
	env := newTestEnv(t)

	// When: the server rejects a move
	env.sock.receive(t, eventInvalidMove, invalidMovePayload{Message: "Cell is already taken"})

	// Then: the rejection surfaces as a transient notice
	assert.Equal(t, "Cell is already taken", env.session.Notice())

	env.clock.Advance(noticeDuration)
	eventually(t, func() bool { return env.session.Notice() == "" }, "notice should auto-clear")
}
