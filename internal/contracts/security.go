package contracts

// SecurityRecord is one security's daily row
// ⭐ SSOT: 캐시 JSON 필드명은 이 태그가 기준
type SecurityRecord struct {
	Code  string  `json:"code" parquet:"code"`
	Name  string  `json:"name" parquet:"name"`
	Low   float64 `json:"low" parquet:"low"`
	High  float64 `json:"high" parquet:"high"`
	Close float64 `json:"close" parquet:"close"`
}

// Snapshot is every valid row for one trading date.
// Empty means the fetch failed or the exchange published nothing.
type Snapshot []SecurityRecord

// Index maps code to record. The first row wins on duplicate codes.
func (s Snapshot) Index() map[string]SecurityRecord {
	idx := make(map[string]SecurityRecord, len(s))
	for _, rec := range s {
		if _, ok := idx[rec.Code]; !ok {
			idx[rec.Code] = rec
		}
	}
	return idx
}

// Dedupe drops later rows that repeat an earlier code, keeping order
func (s Snapshot) Dedupe() Snapshot {
	seen := make(map[string]struct{}, len(s))
	out := make(Snapshot, 0, len(s))
	for _, rec := range s {
		if _, ok := seen[rec.Code]; ok {
			continue
		}
		seen[rec.Code] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// DatedRecord is a SecurityRecord with its trading date, for raw exports
type DatedRecord struct {
	Date TradingDate
	SecurityRecord
}
