package session

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/socket"
	"github.com/stretchr/testify/require"
)

// fakeSocket is an in-memory stand-in for the websocket event channel.
type fakeSocket struct {
	mutex     sync.Mutex
	connected bool
	handlers  map[string]socket.Handler
	onConnect []func()
	emitted   []fakeEmit
}

type fakeEmit struct {
	event   string
	payload any
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		connected: true,
		handlers:  make(map[string]socket.Handler),
	}
}

func (that *fakeSocket) On(event string, handler socket.Handler) {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	that.handlers[event] = handler
}

func (that *fakeSocket) Off(event string) {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	delete(that.handlers, event)
}

func (that *fakeSocket) OnConnect(hook func()) {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	that.onConnect = append(that.onConnect, hook)
}

func (that *fakeSocket) Emit(event string, payload any) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if !that.connected {
		return socket.ErrNotConnected
	}

	that.emitted = append(that.emitted, fakeEmit{event: event, payload: payload})
	return nil
}

func (that *fakeSocket) Connected() bool {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return that.connected
}

func (that *fakeSocket) setConnected(connected bool) {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	that.connected = connected
}

// reconnect flips the socket live again and fires the connect hooks, the way
// the real client does after a successful re-dial.
func (that *fakeSocket) reconnect() {
	that.mutex.Lock()
	that.connected = true
	hooks := make([]func(), len(that.onConnect))
	copy(hooks, that.onConnect)
	that.mutex.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// receive delivers a server event to the registered handler.
func (that *fakeSocket) receive(t *testing.T, event string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	that.mutex.Lock()
	handler, ok := that.handlers[event]
	that.mutex.Unlock()

	require.True(t, ok, "no handler registered for %q", event)
	handler(raw)
}

func (that *fakeSocket) emitCount(event string) int {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	count := 0
	for _, emit := range that.emitted {
		if emit.event == event {
			count++
		}
	}
	return count
}

func (that *fakeSocket) lastEmit(event string) (fakeEmit, bool) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	for i := len(that.emitted) - 1; i >= 0; i-- {
		if that.emitted[i].event == event {
			return that.emitted[i], true
		}
	}
	return fakeEmit{}, false
}

// memorySnapshots is an in-memory SnapshotRepository.
type memorySnapshots struct {
	mutex  sync.Mutex
	data   map[string]*entity.Snapshot
	purged []string
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string]*entity.Snapshot)}
}

func (that *memorySnapshots) Load(_ context.Context, roomID string) (*entity.Snapshot, error) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	snapshot, ok := that.data[roomID]
	if !ok {
		return &entity.Snapshot{}, repository.ErrSnapshotNotFound
	}

	copied := *snapshot
	return &copied, nil
}

func (that *memorySnapshots) Save(_ context.Context, roomID string, partial *entity.Snapshot) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	existing, ok := that.data[roomID]
	if !ok {
		existing = &entity.Snapshot{}
		that.data[roomID] = existing
	}
	existing.Merge(partial)

	return nil
}

func (that *memorySnapshots) Purge(_ context.Context, roomID string) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	delete(that.data, roomID)
	that.purged = append(that.purged, roomID)
	return nil
}

func (that *memorySnapshots) get(roomID string) *entity.Snapshot {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	snapshot, ok := that.data[roomID]
	if !ok {
		return nil
	}
	copied := *snapshot
	return &copied
}

func (that *memorySnapshots) purgeCount() int {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return len(that.purged)
}

// memoryResults is an in-memory ResultsRepository.
type memoryResults struct {
	mutex     sync.Mutex
	data      map[string]map[int]entity.RoundResult
	saveCount int
	purged    []string
}

func newMemoryResults() *memoryResults {
	return &memoryResults{data: make(map[string]map[int]entity.RoundResult)}
}

func (that *memoryResults) Load(_ context.Context, roomID string) ([]entity.RoundResult, error) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	byRound, ok := that.data[roomID]
	if !ok {
		return nil, repository.ErrResultsNotFound
	}

	results := make([]entity.RoundResult, 0, len(byRound))
	for _, result := range byRound {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Round < results[j].Round })

	return results, nil
}

func (that *memoryResults) Save(_ context.Context, roomID string, results []entity.RoundResult) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	byRound, ok := that.data[roomID]
	if !ok {
		byRound = make(map[int]entity.RoundResult)
		that.data[roomID] = byRound
	}
	for _, result := range results {
		byRound[result.Round] = result
	}

	that.saveCount++
	return nil
}

func (that *memoryResults) Purge(_ context.Context, roomID string) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	delete(that.data, roomID)
	that.purged = append(that.purged, roomID)
	return nil
}

func (that *memoryResults) saves() int {
	that.mutex.Lock()
	defer that.mutex.Unlock()
	return that.saveCount
}
