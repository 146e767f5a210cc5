package ledger

import (
	"context"
	"fmt"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
	"github.com/wonny/extremes/pkg/redis"
)

// RedisLedger keeps ledgered dates in a Redis set
type RedisLedger struct {
	dateSet
	client *redis.Client
	key    string
	logger *logger.Logger
}

// NewRedisLedger loads the set for exchange once
func NewRedisLedger(ctx context.Context, client *redis.Client, prefix, exchange string, log *logger.Logger) *RedisLedger {
	key := fmt.Sprintf("%s:%s", prefix, redis.LedgerKey(exchange))
	l := &RedisLedger{
		dateSet: newDateSet(),
		client:  client,
		key:     key,
		logger:  log.WithFields(map[string]interface{}{"module": "ledger", "key": key}),
	}

	members, err := client.Redis().SMembers(ctx, l.key).Result()
	if err != nil {
		l.logger.WithError(err).Warn("Ledger unreadable, treating as empty")
		return l
	}
	for _, m := range members {
		if d, err := contracts.ParseTradingDate(m); err == nil {
			l.seed(d)
		}
	}
	l.logger.WithField("dates", l.Len()).Info("Ledger loaded")
	return l
}

// Record implements contracts.Ledger
func (l *RedisLedger) Record(ctx context.Context, date contracts.TradingDate) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.dates[date]; ok {
		return nil
	}
	if err := l.client.Redis().SAdd(ctx, l.key, date.String()).Err(); err != nil {
		return fmt.Errorf("ledger sadd: %w", err)
	}
	l.dates[date] = struct{}{}
	return nil
}
