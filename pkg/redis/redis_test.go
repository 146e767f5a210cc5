package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/extremes/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, _ := New(cfg)
	limiter := NewRateLimiter(client, "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), TWSERateLimit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != TWSERateLimit.Limit {
		t.Errorf("Expected remaining = %d, got %d", TWSERateLimit.Limit, remaining)
	}
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(&config.Config{})
	cache := NewCache(client, "test")

	var result []string
	found, err := cache.Get(context.Background(), "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(context.Background(), "key", []string{"x"}, TTLForever))
}

func TestCache_GetSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(NewFromClient(db), "extremes")
	ctx := context.Background()

	key := SnapshotKey("twse", "20250526")
	mock.ExpectSet("extremes:cache:snapshot:twse:20250526", []byte(`{"code":"2330"}`), TTLForever).SetVal("OK")
	require.NoError(t, cache.Set(ctx, key, map[string]string{"code": "2330"}, TTLForever))

	mock.ExpectGet("extremes:cache:snapshot:twse:20250526").SetVal(`{"code":"2330"}`)
	var got map[string]string
	found, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2330", got["code"])

	mock.ExpectGet("extremes:cache:snapshot:twse:20250527").RedisNil()
	found, err = cache.Get(ctx, SnapshotKey("twse", "20250527"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_CorruptPayload(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewCache(NewFromClient(db), "extremes")

	mock.ExpectGet("extremes:cache:broken").SetVal("{not json")
	var got map[string]string
	found, err := cache.Get(context.Background(), "broken", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "SnapshotKey",
			fn:       func() string { return SnapshotKey("twse", "20250526") },
			expected: "snapshot:twse:20250526",
		},
		{
			name:     "LedgerKey",
			fn:       func() string { return LedgerKey("tpex") },
			expected: "ledger:tpex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn())
		})
	}
}

func TestRateLimitFor(t *testing.T) {
	assert.Equal(t, "tpex", RateLimitFor("tpex").Key)
	assert.Equal(t, "twse", RateLimitFor("twse").Key)
	assert.Equal(t, 5*time.Second, RateLimitFor("").Window)
}
