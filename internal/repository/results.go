package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

var ErrResultsNotFound = errors.New("round results not found")

// ResultsRepository persists the per-room round-result list. Saves merge by
// round number so redelivered partial lists cannot drop rounds recorded
// earlier.
type ResultsRepository interface {
	Load(ctx context.Context, roomID string) ([]entity.RoundResult, error)
	Save(ctx context.Context, roomID string, results []entity.RoundResult) error
	Purge(ctx context.Context, roomID string) error
}

type dbResults struct {
	client *redis.Client
}

func NewResultsRepository(client *redis.Client) ResultsRepository {
	return &dbResults{
		client: client,
	}
}

func (that *dbResults) Load(ctx context.Context, roomID string) ([]entity.RoundResult, error) {
	resultsKey := "roundresults:" + roomID

	response, err := that.client.Get(ctx, resultsKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrResultsNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get round results by room ID: %w", err)
	}

	var results []entity.RoundResult
	if err = json.Unmarshal([]byte(response), &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round results: %w", err)
	}

	return results, nil
}

func (that *dbResults) Save(ctx context.Context, roomID string, results []entity.RoundResult) error {
	existing, err := that.Load(ctx, roomID)
	if err != nil && !errors.Is(err, ErrResultsNotFound) {
		return fmt.Errorf("failed to load existing round results: %w", err)
	}

	merged := mergeByRound(existing, results)

	resultsJSON, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("could not marshal round results: %w", err)
	}

	resultsKey := "roundresults:" + roomID
	if err = that.client.Set(ctx, resultsKey, resultsJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set round results: %w", err)
	}

	return nil
}

func (that *dbResults) Purge(ctx context.Context, roomID string) error {
	resultsKey := "roundresults:" + roomID

	if err := that.client.Del(ctx, resultsKey).Err(); err != nil {
		return fmt.Errorf("failed to delete round results by room ID: %w", err)
	}

	return nil
}

// mergeByRound overlays incoming entries onto existing ones, keyed by round
// number, and returns the union ordered by round.
func mergeByRound(existing, incoming []entity.RoundResult) []entity.RoundResult {
	byRound := make(map[int]entity.RoundResult, len(existing)+len(incoming))
	for _, result := range existing {
		byRound[result.Round] = result
	}
	for _, result := range incoming {
		byRound[result.Round] = result
	}

	merged := make([]entity.RoundResult, 0, len(byRound))
	for _, result := range byRound {
		merged = append(merged, result)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Round < merged[j].Round })

	return merged
}
