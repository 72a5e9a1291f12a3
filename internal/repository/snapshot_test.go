package repository

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }

func TestSnapshotRepository_SaveAndLoad(t *testing.T) {
	ctx, st := suite.New(t)

	snapshotRepo := NewSnapshotRepository(st.Storage)

	// Given: a snapshot with identity fields
	partial := &entity.Snapshot{
		MySymbol: strPtr(entity.PlayerX),
		IsHost:   boolPtr(true),
		PlayerX:  &entity.Player{ID: "p1", Name: "Alice", Symbol: entity.PlayerX},
	}

	// When: saving and loading it back
	err := snapshotRepo.Save(ctx, "11112222", partial)
	require.NoError(t, err)

	loaded, err := snapshotRepo.Load(ctx, "11112222")

	// Then: the stored fields round-trip
	require.NoError(t, err)
	assert.Equal(t, entity.PlayerX, *loaded.MySymbol)
	assert.True(t, *loaded.IsHost)
	assert.Equal(t, "Alice", loaded.PlayerX.Name)
}

func TestSnapshotRepository_SaveMerges(t *testing.T) {
	ctx, st := suite.New(t)

	snapshotRepo := NewSnapshotRepository(st.Storage)

	// Given: a stored identity snapshot
	err := snapshotRepo.Save(ctx, "11112222", &entity.Snapshot{
		MySymbol: strPtr(entity.PlayerO),
		IsHost:   boolPtr(true),
	})
	require.NoError(t, err)

	// When: a later partial write carries only live board fields
	err = snapshotRepo.Save(ctx, "11112222", &entity.Snapshot{
		Squares:      []string{entity.PlayerX, "", "", "", "", "", "", "", ""},
		CurrentRound: intPtr(2),
	})
	require.NoError(t, err)

	// Then: fields written by the earlier lifecycle are not lost
	loaded, err := snapshotRepo.Load(ctx, "11112222")
	require.NoError(t, err)
	assert.Equal(t, entity.PlayerO, *loaded.MySymbol)
	assert.True(t, *loaded.IsHost)
	assert.Equal(t, 2, *loaded.CurrentRound)
	assert.Equal(t, entity.PlayerX, loaded.Squares[0])
}

func TestSnapshotRepository_LoadNotFound(t *testing.T) {
	ctx, st := suite.New(t)

	snapshotRepo := NewSnapshotRepository(st.Storage)

	// When: loading a room that was never saved
	_, err := snapshotRepo.Load(ctx, "99999999")

	// Then: the not-found sentinel is returned
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotRepository_Purge(t *testing.T) {
	ctx, st := suite.New(t)

	snapshotRepo := NewSnapshotRepository(st.Storage)

	// Given: a stored snapshot
	err := snapshotRepo.Save(ctx, "11112222", &entity.Snapshot{MySymbol: strPtr(entity.PlayerX)})
	require.NoError(t, err)

	// When: purging the room
	err = snapshotRepo.Purge(ctx, "11112222")
	require.NoError(t, err)

	// Then: the snapshot is gone
	_, err = snapshotRepo.Load(ctx, "11112222")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
