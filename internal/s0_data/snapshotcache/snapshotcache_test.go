package snapshotcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/config"
	"github.com/wonny/extremes/pkg/database"
	"github.com/wonny/extremes/pkg/logger"
	"github.com/wonny/extremes/pkg/redis"
)

var sample = contracts.Snapshot{
	{Code: "2330", Name: "台積電", Low: 970, High: 1010, Close: 1005},
	{Code: "2317", Name: "鴻海", Low: 149, High: 152.5, Close: 151},
}

func TestFileCache_RoundTrip(t *testing.T) {
	c := NewFileCache(filepath.Join(t.TempDir(), "cache"), logger.Nop())
	ctx := context.Background()

	_, ok := c.Load(ctx, "20250526")
	assert.False(t, ok)

	require.NoError(t, c.Store(ctx, "20250526", sample))

	got, ok := c.Load(ctx, "20250526")
	require.True(t, ok)
	assert.Equal(t, sample, got)

	// Nothing left behind but the entry
	entries, err := os.ReadDir(filepath.Dir(c.Path("20250526")))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileCache_Format(t *testing.T) {
	c := NewFileCache(t.TempDir(), logger.Nop())
	require.NoError(t, c.Store(context.Background(), "20250526", sample[:1]))

	data, err := os.ReadFile(c.Path("20250526"))
	require.NoError(t, err)
	want := "[\n  {\n    \"code\": \"2330\",\n    \"name\": \"台積電\",\n    \"low\": 970,\n    \"high\": 1010,\n    \"close\": 1005\n  }\n]\n"
	assert.Equal(t, want, string(data))
}

func TestFileCache_Overwrite(t *testing.T) {
	c := NewFileCache(t.TempDir(), logger.Nop())
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "20250526", sample))
	require.NoError(t, c.Store(ctx, "20250526", sample[1:]))

	got, ok := c.Load(ctx, "20250526")
	require.True(t, ok)
	assert.Equal(t, sample[1:], got)
}

func TestFileCache_CorruptIsAbsent(t *testing.T) {
	c := NewFileCache(t.TempDir(), logger.Nop())
	require.NoError(t, os.WriteFile(c.Path("20250526"), []byte(`[{"code": "2330", "low":`), 0o644))

	_, ok := c.Load(context.Background(), "20250526")
	assert.False(t, ok)
}

func TestEncodeDecode_Nil(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	snap, err := Decode([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestRedisCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(redis.NewCache(redis.NewFromClient(db), "extremes"), "twse", logger.Nop())
	ctx := context.Background()

	payload := `[{"code":"2330","name":"台積電","low":970,"high":1010,"close":1005}]`
	mock.ExpectSet("extremes:cache:snapshot:twse:20250526", []byte(payload), redis.TTLForever).SetVal("OK")
	require.NoError(t, c.Store(ctx, "20250526", sample[:1]))

	mock.ExpectGet("extremes:cache:snapshot:twse:20250526").SetVal(payload)
	got, ok := c.Load(ctx, "20250526")
	require.True(t, ok)
	assert.Equal(t, sample[:1], got)

	mock.ExpectGet("extremes:cache:snapshot:twse:20250527").RedisNil()
	_, ok = c.Load(ctx, "20250527")
	assert.False(t, ok)

	mock.ExpectGet("extremes:cache:snapshot:twse:20250528").SetVal("{broken")
	_, ok = c.Load(ctx, "20250528")
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache(t *testing.T) {
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

	c := NewPostgresCache(db.Pool, "test", logger.Nop())
	_, err = db.Pool.Exec(ctx, `DELETE FROM extremes.snapshot_cache WHERE exchange = 'test'`)
	require.NoError(t, err)

	_, ok := c.Load(ctx, "20250526")
	assert.False(t, ok)

	require.NoError(t, c.Store(ctx, "20250526", sample))
	got, ok := c.Load(ctx, "20250526")
	require.True(t, ok)
	assert.Equal(t, sample, got)
}
