package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/game"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/socket"
)

const (
	// displayHoldDuration is how long a finished board and its winning line
	// stay visible before the board clears.
	displayHoldDuration = 1500 * time.Millisecond

	// noticeDuration is how long a transient user-facing notice stays up.
	noticeDuration = 1500 * time.Millisecond
)

// EventSocket is the slice of the transport client the session needs.
type EventSocket interface {
	On(event string, handler socket.Handler)
	Off(event string)
	OnConnect(hook func())
	Emit(event string, payload any) error
	Connected() bool
}

// Setup carries the match assignments handed over by the room setup flow.
// When absent, the session falls back to the durable per-room snapshot.
type Setup struct {
	MySymbol string
	IsHost   bool
	PlayerX  entity.Player
	PlayerO  entity.Player
}

// Params configures a session for one match view.
type Params struct {
	RoomID        string
	UserID        string
	BoardSize     int
	LineLength    int
	TotalRounds   int
	TimerDuration *int
	Setup         *Setup

	// OnMatchEnd fires exactly once per match, after the terminal board
	// state is in place.
	OnMatchEnd func()

	// OnFatal fires when the room is gone or recovery failed; the caller
	// routes the user to a safe screen.
	OnFatal func()
}

// Session owns the canonical game state for one match view: it reconciles
// server events through the reducer, guards outgoing move intents, mirrors
// state to durable storage and drives the round/match lifecycle.
type Session struct {
	logger    *slog.Logger
	socket    EventSocket
	snapshots repository.SnapshotRepository
	results   repository.ResultsRepository
	sched     *scheduler

	onMatchEnd func()
	onFatal    func()

	ctx context.Context

	mutex       sync.Mutex
	state       *entity.GameState
	totalRounds int
	roomID      string
	userID      string
	setup       *Setup
	closed      bool

	// Transient display state for animating a just-finished round.
	displaySquares []string
	displayRound   int
	transitionSeq  int

	// finished is the view-level match-finished flag; gameOverDone is the
	// one-shot latch protecting the game-over handler against redelivery.
	finished     bool
	gameOverDone bool

	// synced flips on the first successful resync; before that, server
	// errors are treated as fatal for the recovery path.
	synced bool

	roundResults []entity.RoundResult

	notice     string
	noticeTask *Task

	winLineTask *Task
	holdLine    []int
	retryTask   *Task

	timerValue  *int
	timerTurn   string
	timerPaused bool
}

func New(logger *slog.Logger, eventSocket EventSocket, snapshots repository.SnapshotRepository, results repository.ResultsRepository, clock clockwork.Clock, params Params) *Session {
	totalRounds := params.TotalRounds
	if totalRounds < 1 {
		totalRounds = 1
	}

	return &Session{
		logger:       logger.With("component", "session"),
		socket:       eventSocket,
		snapshots:    snapshots,
		results:      results,
		sched:        newScheduler(clock),
		onMatchEnd:   params.OnMatchEnd,
		onFatal:      params.OnFatal,
		state:        entity.NewGameState(params.BoardSize, params.LineLength, params.RoomID, params.TimerDuration),
		totalRounds:  totalRounds,
		roomID:       params.RoomID,
		userID:       params.UserID,
		setup:        params.Setup,
		displayRound: 1,
	}
}

// Start - seeds the state from setup data or the durable snapshot, registers
// the event handlers and kicks off the reconnect handshake.
func (that *Session) Start(ctx context.Context) error {
	log := that.logger.With("method", "Start")

	that.ctx = ctx

	if that.userID == "" {
		log.Error("no user identity available")
		if that.onFatal != nil {
			that.onFatal()
		}
		return apperror.ErrMissingIdentity
	}

	that.mutex.Lock()

	if that.state.Config.TimerDuration != nil {
		initial := *that.state.Config.TimerDuration
		that.timerValue = &initial
	}

	if that.setup != nil {
		that.seedFromSetupLocked(that.setup)
	} else {
		that.seedFromSnapshotLocked()
	}

	that.displayRound = that.state.CurrentRound

	that.mutex.Unlock()

	that.registerHandlers()

	that.socket.OnConnect(func() {
		that.emitReconnect()
	})

	if that.socket.Connected() {
		that.emitReconnect()
	}

	return nil
}

// Close - tears the session down: every pending deferred callback is
// canceled and the event handlers are unregistered.
func (that *Session) Close() {
	that.mutex.Lock()
	that.closed = true
	that.mutex.Unlock()

	that.sched.Close()

	for _, event := range []string{
		eventUpdateBoard, eventRoundEnded, eventGameOver, eventReconnectSuccess,
		eventRoomNotFound, eventInvalidMove, eventError, eventUpdateTimer,
	} {
		that.socket.Off(event)
	}
}

// Leave - purges the room's durable state and closes the session; used when
// the user navigates away from the match for good.
func (that *Session) Leave() {
	log := that.logger.With("method", "Leave")

	if err := that.snapshots.Purge(that.ctx, that.roomID); err != nil {
		log.Error("failed to purge snapshot", "roomID", that.roomID, "error", err)
	}
	if err := that.results.Purge(that.ctx, that.roomID); err != nil {
		log.Error("failed to purge round results", "roomID", that.roomID, "error", err)
	}

	that.Close()
}

func (that *Session) seedFromSetupLocked(setup *Setup) {
	that.state.IsHost = setup.IsHost
	that.state.PlayerX = setup.PlayerX
	that.state.PlayerO = setup.PlayerO

	if setup.MySymbol != "" {
		that.applyLocked(game.SetSymbol{Symbol: setup.MySymbol})
	}

	// Mirror the identity subset right away so a reload before the first
	// server echo still restores who we are.
	that.mirrorIdentityLocked()
}

func (that *Session) seedFromSnapshotLocked() {
	log := that.logger.With("method", "seedFromSnapshot")

	snapshot, err := that.snapshots.Load(that.ctx, that.roomID)
	if err != nil {
		log.Debug("no snapshot to restore", "roomID", that.roomID, "error", err)
	} else {
		if snapshot.MySymbol != nil {
			that.state.MySymbol = *snapshot.MySymbol
		}
		if snapshot.IsHost != nil {
			that.state.IsHost = *snapshot.IsHost
		}
		if snapshot.PlayerX != nil {
			that.state.PlayerX = *snapshot.PlayerX
		}
		if snapshot.PlayerO != nil {
			that.state.PlayerO = *snapshot.PlayerO
		}
		if snapshot.IsGameFinished != nil && *snapshot.IsGameFinished {
			that.state.IsGameFinished = true
			that.finished = true
		}
	}

	results, err := that.results.Load(that.ctx, that.roomID)
	if err != nil {
		log.Debug("no round results to restore", "roomID", that.roomID, "error", err)
		return
	}
	that.roundResults = results
}

// dispatch runs one action through the reducer; callers must not hold the
// session mutex.
func (that *Session) dispatch(action game.Action) {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	that.applyLocked(action)
}

func (that *Session) applyLocked(action game.Action) {
	that.state = game.Reduce(that.state, action)
	that.afterDispatchLocked()
}

// afterDispatchLocked runs the post-reduction hooks: durable mirror, the
// winning-line display hold, and the timer display gate.
func (that *Session) afterDispatchLocked() {
	that.mirrorStateLocked()
	that.syncWinningLineHoldLocked()

	if that.timerStoppedLocked() {
		that.timerValue = nil
	}
	that.timerPaused = len(that.state.WinningLine) > 0 && !that.state.IsGameFinished
}

// mirrorStateLocked merges the live state-affecting fields into the per-room
// snapshot. Failures are logged only: persistence is best-effort and never
// blocks reconciliation.
func (that *Session) mirrorStateLocked() {
	if that.roomID == "" {
		return
	}

	log := that.logger.With("method", "mirrorState")

	state := that.state
	partial := &entity.Snapshot{
		MySymbol:       &state.MySymbol,
		IsHost:         &state.IsHost,
		PlayerX:        &state.PlayerX,
		PlayerO:        &state.PlayerO,
		Squares:        state.Squares,
		XIsNext:        &state.XIsNext,
		CurrentRound:   &state.CurrentRound,
		GameOver:       &state.GameOver,
		IsGameFinished: &state.IsGameFinished,
		WinningLine:    state.WinningLine,
	}

	if err := that.snapshots.Save(that.ctx, that.roomID, partial); err != nil {
		log.Error("failed to mirror game state", "roomID", that.roomID, "error", err)
	}
}

func (that *Session) mirrorIdentityLocked() {
	if that.roomID == "" {
		return
	}

	log := that.logger.With("method", "mirrorIdentity")

	state := that.state
	partial := &entity.Snapshot{
		MySymbol: &state.MySymbol,
		IsHost:   &state.IsHost,
		PlayerX:  &state.PlayerX,
		PlayerO:  &state.PlayerO,
	}

	if err := that.snapshots.Save(that.ctx, that.roomID, partial); err != nil {
		log.Error("failed to mirror identity", "roomID", that.roomID, "error", err)
	}
}

// syncWinningLineHoldLocked schedules the independent clear of a visible
// winning line. The match-ending path owns its own hold, so no task is
// scheduled once the game-over latch is set. A superseding line replaces the
// pending task.
func (that *Session) syncWinningLineHoldLocked() {
	line := that.state.WinningLine

	if len(line) > 0 && !that.finished && !that.gameOverDone {
		if equalLines(line, that.holdLine) {
			return
		}

		that.winLineTask.Cancel()
		that.holdLine = line
		that.winLineTask = that.sched.After(displayHoldDuration, that.expireWinningLineHold)
		return
	}

	that.winLineTask.Cancel()
	that.winLineTask = nil
	that.holdLine = nil
}

func (that *Session) expireWinningLineHold() {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	that.holdLine = nil
	that.winLineTask = nil

	that.applyLocked(game.ClearWinningLine{WinningLine: []int{}})
	that.displaySquares = nil
	that.displayRound = that.state.CurrentRound
	that.transitionSeq++
}

func (that *Session) setNoticeLocked(message string) {
	that.notice = message

	that.noticeTask.Cancel()
	that.noticeTask = that.sched.After(noticeDuration, func() {
		that.mutex.Lock()
		defer that.mutex.Unlock()
		that.notice = ""
	})
}

func (that *Session) noticeNow(message string) {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	that.setNoticeLocked(message)
}

// recoverNotice absorbs a handler panic: canonical state stays at its last
// good value and the failure surfaces as a transient notice.
func (that *Session) recoverNotice(message string) {
	if r := recover(); r != nil {
		that.logger.Error("event handler failed", "error", r)
		that.noticeNow(message)
	}
}

// State - returns a copy of the canonical game state.
func (that *Session) State() *entity.GameState {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return that.state.Clone()
}

// VisibleSquares - the board the view should render: the transient display
// board while a winning line is shown, the canonical squares otherwise.
func (that *Session) VisibleSquares() []string {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	source := that.state.Squares
	if len(that.state.WinningLine) > 0 && that.displaySquares != nil {
		source = that.displaySquares
	}

	squares := make([]string, len(source))
	copy(squares, source)
	return squares
}

// DisplayRound - the round number the view should show, which lags the
// canonical round while a finished round is being displayed.
func (that *Session) DisplayRound() int {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return that.displayRound
}

// TransitionCount - bumps every time the board forces a visual reset.
func (that *Session) TransitionCount() int {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return that.transitionSeq
}

// Notice - the current transient notice, empty when none is up.
func (that *Session) Notice() string {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return that.notice
}

// Finished - whether the whole match has concluded from the view's side.
func (that *Session) Finished() bool {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return that.finished
}

// RoundResults - a copy of the per-round results recorded so far.
func (that *Session) RoundResults() []entity.RoundResult {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	results := make([]entity.RoundResult, len(that.roundResults))
	copy(results, that.roundResults)
	return results
}

// Summary - the win/draw tally over the recorded round results.
func (that *Session) Summary() entity.MatchSummary {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return entity.Summarize(that.roundResults)
}

func (that *Session) registerHandlers() {
	that.socket.On(eventUpdateBoard, func(raw json.RawMessage) {
		defer that.recoverNotice("Error processing move")

		var payload updateBoardPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			that.logger.Error("failed to unmarshal updateBoard", "error", err)
			that.noticeNow("Error processing move")
			return
		}
		that.handleUpdateBoard(payload)
	})

	that.socket.On(eventRoundEnded, func(raw json.RawMessage) {
		defer that.recoverNotice("Error processing round end")

		var payload roundEndedPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			that.logger.Error("failed to unmarshal round-ended", "error", err)
			that.noticeNow("Error processing round end")
			return
		}
		that.handleRoundEnded(payload)
	})

	that.socket.On(eventGameOver, func(raw json.RawMessage) {
		defer that.recoverNotice("Error processing game over")

		var payload gameOverPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			that.logger.Error("failed to unmarshal game-over", "error", err)
			that.noticeNow("Error processing game over")
			return
		}
		that.handleGameOver(payload)
	})

	that.socket.On(eventReconnectSuccess, func(raw json.RawMessage) {
		defer that.recoverNotice("Error restoring game")
		that.handleReconnectSuccess(raw)
	})

	that.socket.On(eventRoomNotFound, func(json.RawMessage) {
		that.handleRoomNotFound()
	})

	that.socket.On(eventInvalidMove, func(raw json.RawMessage) {
		var payload invalidMovePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			that.logger.Error("failed to unmarshal invalid-move", "error", err)
			return
		}
		that.noticeNow(payload.Message)
	})

	that.socket.On(eventError, func(raw json.RawMessage) {
		var payload errorPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			that.logger.Error("failed to unmarshal error event", "error", err)
			return
		}
		that.handleServerError(payload)
	})

	that.socket.On(eventUpdateTimer, func(raw json.RawMessage) {
		var payload updateTimerPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			that.logger.Error("failed to unmarshal updateTimer", "error", err)
			return
		}
		that.handleUpdateTimer(payload)
	})
}

func equalLines(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
