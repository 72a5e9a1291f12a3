package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository is the persistence port for the per-room game-state
// mirror: load on seed/reconnect, field-merged save on every change, purge
// on fatal errors or room teardown.
type SnapshotRepository interface {
	Load(ctx context.Context, roomID string) (*entity.Snapshot, error)
	Save(ctx context.Context, roomID string, partial *entity.Snapshot) error
	Purge(ctx context.Context, roomID string) error
}

type dbSnapshot struct {
	client *redis.Client
}

func NewSnapshotRepository(client *redis.Client) SnapshotRepository {
	return &dbSnapshot{
		client: client,
	}
}

func (that *dbSnapshot) Load(ctx context.Context, roomID string) (*entity.Snapshot, error) {
	snapshotKey := "gamestate:" + roomID

	response, err := that.client.Get(ctx, snapshotKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Snapshot{}, ErrSnapshotNotFound
	}

	if err != nil {
		return &entity.Snapshot{}, fmt.Errorf("failed to get snapshot by room ID: %w", err)
	}

	var snapshot entity.Snapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return &entity.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

func (that *dbSnapshot) Save(ctx context.Context, roomID string, partial *entity.Snapshot) error {
	existing, err := that.Load(ctx, roomID)
	if err != nil && !errors.Is(err, ErrSnapshotNotFound) {
		return fmt.Errorf("failed to load existing snapshot: %w", err)
	}

	existing.Merge(partial)

	snapshotJSON, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	snapshotKey := "gamestate:" + roomID
	if err = that.client.Set(ctx, snapshotKey, snapshotJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) Purge(ctx context.Context, roomID string) error {
	snapshotKey := "gamestate:" + roomID

	if err := that.client.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot by room ID: %w", err)
	}

	return nil
}
