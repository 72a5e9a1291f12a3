package session

import "encoding/json"

// Inbound event names (server → client).
const (
	eventUpdateBoard      = "updateBoard"
	eventRoundEnded       = "round-ended"
	eventGameOver         = "game-over"
	eventReconnectSuccess = "reconnect-success"
	eventRoomNotFound     = "room-not-found"
	eventInvalidMove      = "invalid-move"
	eventError            = "error"
	eventUpdateTimer      = "updateTimer"
)

// Outbound event names (client → server).
const (
	eventPlayerMove = "playerMove"
	eventReconnect  = "reconnect"
)

type updateBoardPayload struct {
	Index          *int   `json:"index"`
	Symbol         string `json:"symbol"`
	XIsNext        *bool  `json:"xIsNext"`
	CurrentRound   *int   `json:"currentRound"`
	IsGameFinished bool   `json:"isGameFinished"`
	Winner         string `json:"winner"`
	Draw           bool   `json:"draw"`
	WinningLine    []int  `json:"winningLine"`
}

type roundEndedPayload struct {
	Result       string   `json:"result"`
	CurrentRound int      `json:"currentRound"`
	Board        []string `json:"board"`
	WinningLine  []int    `json:"winningLine"`
}

type serverRoundResult struct {
	Winner string `json:"winner"`
	Round  int    `json:"round"`
	Reason string `json:"reason"`
	Draw   bool   `json:"draw"`
}

type gameOverPayload struct {
	Results     []serverRoundResult `json:"results"`
	Board       []string            `json:"board"`
	WinningLine []int               `json:"winningLine"`
	RoundResult string              `json:"roundResult"`
	Stats       json.RawMessage     `json:"stats"`
}

type errorPayload struct {
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type invalidMovePayload struct {
	Message string `json:"message"`
}

type updateTimerPayload struct {
	RoomID      string `json:"roomId"`
	TimeLeft    int    `json:"timeLeft"`
	CurrentTurn string `json:"currentTurn"`
}

type playerMovePayload struct {
	RoomID string `json:"roomId"`
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
}

type reconnectPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}
