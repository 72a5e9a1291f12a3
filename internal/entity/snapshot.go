package entity

// Snapshot is the durable per-room mirror of the state-affecting fields.
// Every field is optional so partial writes merge over a prior snapshot
// instead of clobbering fields written by other parts of the session.
type Snapshot struct {
	MySymbol       *string  `json:"mySymbol,omitempty"`
	IsHost         *bool    `json:"isHost,omitempty"`
	PlayerX        *Player  `json:"playerX,omitempty"`
	PlayerO        *Player  `json:"playerO,omitempty"`
	Squares        []string `json:"squares,omitempty"`
	XIsNext        *bool    `json:"xIsNext,omitempty"`
	CurrentRound   *int     `json:"currentRound,omitempty"`
	GameOver       *bool    `json:"gameOver,omitempty"`
	IsGameFinished *bool    `json:"isGameFinished,omitempty"`
	WinningLine    []int    `json:"winningLine,omitempty"`
}

// Merge - overlays the non-empty fields of partial onto the snapshot.
// Last writer wins per field.
func (that *Snapshot) Merge(partial *Snapshot) {
	if partial.MySymbol != nil {
		that.MySymbol = partial.MySymbol
	}
	if partial.IsHost != nil {
		that.IsHost = partial.IsHost
	}
	if partial.PlayerX != nil {
		that.PlayerX = partial.PlayerX
	}
	if partial.PlayerO != nil {
		that.PlayerO = partial.PlayerO
	}
	if partial.Squares != nil {
		that.Squares = partial.Squares
	}
	if partial.XIsNext != nil {
		that.XIsNext = partial.XIsNext
	}
	if partial.CurrentRound != nil {
		that.CurrentRound = partial.CurrentRound
	}
	if partial.GameOver != nil {
		that.GameOver = partial.GameOver
	}
	if partial.IsGameFinished != nil {
		that.IsGameFinished = partial.IsGameFinished
	}
	if partial.WinningLine != nil {
		that.WinningLine = partial.WinningLine
	}
}
