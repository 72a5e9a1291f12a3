package apperror

import "errors"

var (
	ErrDisconnected      = errors.New("disconnected from server")
	ErrGameOver          = errors.New("game is over")
	ErrSymbolNotAssigned = errors.New("symbol not assigned")
	ErrMissingIdentity   = errors.New("missing user id")
	ErrSessionClosed     = errors.New("session is closed")
)
