package session

import "github.com/rocketscienceinc/tictactoe-client/internal/entity"

// handleUpdateTimer feeds a countdown tick into the display value. Ticks are
// ignored while a winning-line hold is active, and the display is forced to
// no-value once the round or match has ended.
func (that *Session) handleUpdateTimer(payload updateTimerPayload) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if that.timerStoppedLocked() {
		that.timerValue = nil
		return
	}

	if that.timerPaused {
		return
	}

	timeLeft := payload.TimeLeft
	that.timerValue = &timeLeft
	that.timerTurn = payload.CurrentTurn
}

// TimerDisplay - the countdown value to render. ok is false when no timer is
// running: the match has no timer configured, the round or match is over, or
// no tick has been received yet.
func (that *Session) TimerDisplay() (int, bool) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if that.state.Config.TimerDuration == nil {
		return 0, false
	}

	if that.timerStoppedLocked() || that.timerValue == nil {
		return 0, false
	}

	return *that.timerValue, true
}

// TimerCaption - the short display name of the player whose clock is
// running, empty until a tick names the active turn.
func (that *Session) TimerCaption() string {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	switch that.timerTurn {
	case entity.PlayerX:
		return entity.FormatName(that.state.PlayerX.Name)
	case entity.PlayerO:
		return entity.FormatName(that.state.PlayerO.Name)
	default:
		return ""
	}
}

func (that *Session) timerStoppedLocked() bool {
	return that.state.GameOver || that.state.IsGameFinished || that.state.CurrentRound > that.totalRounds
}
