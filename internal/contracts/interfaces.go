package contracts

import "context"

// SnapshotSource fetches one date's rows from an exchange
// ⭐ SSOT: 거래소 수집 인터페이스
//
// Implementations drop malformed rows and return an error only for
// transport or upstream failures.
type SnapshotSource interface {
	Name() string
	Fetch(ctx context.Context, date TradingDate) (Snapshot, error)
}

// Ledger records dates that already yielded data
// ⭐ SSOT: 다운로드 완료 날짜 기록 인터페이스
type Ledger interface {
	IsLedgered(date TradingDate) bool
	Record(ctx context.Context, date TradingDate) error
	Dates() []TradingDate
}

// SnapshotCache stores fetched snapshots by date
// ⭐ SSOT: 스냅샷 캐시 인터페이스
//
// Load reports false for missing or undecodable entries.
type SnapshotCache interface {
	Store(ctx context.Context, date TradingDate, snap Snapshot) error
	Load(ctx context.Context, date TradingDate) (Snapshot, bool)
}

// DateGenerator yields candidate trading dates in [start, end]
type DateGenerator interface {
	Generate(ctx context.Context, start, end TradingDate) ([]TradingDate, error)
}

// BreachStore persists a run's breach events
type BreachStore interface {
	SaveBreaches(ctx context.Context, run RunInfo, events []BreachEvent) error
	LatestBreaches(ctx context.Context, exchange string, mode Mode) ([]BreachEvent, error)
}
