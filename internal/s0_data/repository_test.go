package s0_data

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/config"
	"github.com/wonny/extremes/pkg/database"
)

func TestBreachRepository(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, `DELETE FROM extremes.breach_events WHERE exchange = 'test'`)
	require.NoError(t, err)

	repo := NewBreachRepository(db.Pool)

	events, err := repo.LatestBreaches(ctx, "test", contracts.ModeMin)
	require.NoError(t, err)
	assert.Empty(t, events)

	older := contracts.RunInfo{ID: uuid.New(), Exchange: "test", Mode: contracts.ModeMin, StartedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.SaveBreaches(ctx, older, []contracts.BreachEvent{
		{Date: "20250526", Code: "1101", Name: "台泥", Close: 30, BaseExtreme: 31, NewExtreme: 29.5},
	}))

	latest := contracts.RunInfo{ID: uuid.New(), Exchange: "test", Mode: contracts.ModeMin, StartedAt: time.Now()}
	want := []contracts.BreachEvent{
		{Date: "20250526", Code: "2330", Name: "台積電", Close: 475, BaseExtreme: 480, NewExtreme: 470},
		{Date: "20250527", Code: "2317", Name: "鴻海", Close: 140.5, BaseExtreme: 145, NewExtreme: 139.25},
	}
	require.NoError(t, repo.SaveBreaches(ctx, latest, want))

	got, err := repo.LatestBreaches(ctx, "test", contracts.ModeMin)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// other mode untouched
	got, err = repo.LatestBreaches(ctx, "test", contracts.ModeMax)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBreachRepository_SaveEmptyIsNoop(t *testing.T) {
	repo := NewBreachRepository(nil)
	assert.NoError(t, repo.SaveBreaches(context.Background(), contracts.RunInfo{}, nil))
}
