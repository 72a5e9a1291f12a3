package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	reconnectDelay = time.Second
)

var ErrNotConnected = errors.New("socket is not connected")

// Client maintains a persistent bidirectional event channel to the game
// server. Handlers are registered per event name; registering again for the
// same event replaces the previous handler, so a given server event has at
// most one active handler at a time.
type Client struct {
	logger *slog.Logger
	url    string

	handlersMutex sync.RWMutex
	handlers      map[string]Handler
	onConnect     []func()

	connMutex sync.Mutex
	conn      *websocket.Conn

	writeMutex sync.Mutex
	connected  atomic.Bool
}

func New(logger *slog.Logger, url string) *Client {
	return &Client{
		logger:   logger.With("component", "socket"),
		url:      url,
		handlers: make(map[string]Handler),
	}
}

// Run - dials the server and pumps inbound events until the context is
// canceled, re-dialing after a fixed delay whenever the connection drops.
func (that *Client) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	for {
		if err := that.connect(ctx); err != nil {
			log.Error("failed to connect", "error", err)
		} else {
			that.readLoop(ctx)
		}

		that.setDisconnected()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// On - registers the handler for an event, replacing any previous one.
func (that *Client) On(event string, handler Handler) {
	that.handlersMutex.Lock()
	defer that.handlersMutex.Unlock()
	that.handlers[event] = handler
}

// Off - removes the handler for an event.
func (that *Client) Off(event string) {
	that.handlersMutex.Lock()
	defer that.handlersMutex.Unlock()
	delete(that.handlers, event)
}

// OnConnect - registers a hook invoked after every successful (re)connect.
func (that *Client) OnConnect(hook func()) {
	that.handlersMutex.Lock()
	defer that.handlersMutex.Unlock()
	that.onConnect = append(that.onConnect, hook)
}

// Emit - sends an event to the server.
func (that *Client) Emit(event string, payload any) error {
	if !that.connected.Load() {
		return ErrNotConnected
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := Message{Event: event, Payload: payloadJSON}

	that.connMutex.Lock()
	conn := that.conn
	that.connMutex.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Connected - reports whether the channel is currently live.
func (that *Client) Connected() bool {
	return that.connected.Load()
}

func (that *Client) connect(ctx context.Context) error {
	log := that.logger.With("method", "connect")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, that.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", that.url, err)
	}

	that.connMutex.Lock()
	that.conn = conn
	that.connMutex.Unlock()

	that.connected.Store(true)
	log.Info("connection established", "url", that.url)

	that.handlersMutex.RLock()
	hooks := make([]func(), len(that.onConnect))
	copy(hooks, that.onConnect)
	that.handlersMutex.RUnlock()

	for _, hook := range hooks {
		hook()
	}

	return nil
}

func (that *Client) readLoop(ctx context.Context) {
	log := that.logger.With("method", "readLoop")

	for {
		if ctx.Err() != nil {
			return
		}

		var message Message
		if err := that.conn.ReadJSON(&message); err != nil {
			log.Error("error reading message", "error", err)
			return
		}

		that.handlersMutex.RLock()
		handler, ok := that.handlers[message.Event]
		that.handlersMutex.RUnlock()

		if !ok {
			log.Debug("no handler registered for event", "event", message.Event)
			continue
		}

		handler(message.Payload)
	}
}

func (that *Client) setDisconnected() {
	that.connected.Store(false)

	that.connMutex.Lock()
	if that.conn != nil {
		_ = that.conn.Close()
		that.conn = nil
	}
	that.connMutex.Unlock()
}
