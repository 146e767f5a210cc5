package quality

import (
	"sort"

	"github.com/wonny/extremes/internal/contracts"
)

// Gate flags trading dates whose snapshot looks partially downloaded
type Gate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinRowCoverage   float64 `yaml:"min_row_coverage"`   // 0.80 of the median row count
	MinPriceCoverage float64 `yaml:"min_price_coverage"` // 1.0 (100%)
}

// DefaultConfig returns the thresholds used by the analyzer
func DefaultConfig() Config {
	return Config{
		MinRowCoverage:   0.80,
		MinPriceCoverage: 1.0,
	}
}

// DateQuality is one date's coverage figures
type DateQuality struct {
	Date          contracts.TradingDate `json:"date"`
	Rows          int                   `json:"rows"`
	RowCoverage   float64               `json:"row_coverage"`
	PriceCoverage float64               `json:"price_coverage"`
	QualityScore  float64               `json:"quality_score"`
	Passed        bool                  `json:"passed"`
}

// Report is the gate's verdict over a resolved range
type Report struct {
	MedianRows int                     `json:"median_rows"`
	Dates      []DateQuality           `json:"dates"`
	Failed     []contracts.TradingDate `json:"failed"`
}

// NewGate creates a new Gate instance
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Check scores every date that produced data. Empty snapshots are skipped:
// they are the collector's concern, not a coverage problem.
// ⭐ SSOT: 수집 데이터 품질 검증
func (g *Gate) Check(snapshots map[contracts.TradingDate]contracts.Snapshot) *Report {
	dates := make([]contracts.TradingDate, 0, len(snapshots))
	counts := make([]int, 0, len(snapshots))
	for d, snap := range snapshots {
		if len(snap) == 0 {
			continue
		}
		dates = append(dates, d)
		counts = append(counts, len(snap))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	report := &Report{
		MedianRows: median(counts),
		Dates:      make([]DateQuality, 0, len(dates)),
		Failed:     []contracts.TradingDate{},
	}

	for _, d := range dates {
		snap := snapshots[d]
		q := DateQuality{
			Date:          d,
			Rows:          len(snap),
			RowCoverage:   ratio(len(snap), report.MedianRows),
			PriceCoverage: priceCoverage(snap),
		}
		q.QualityScore = g.calculateScore(q)
		q.Passed = q.RowCoverage >= g.config.MinRowCoverage && q.PriceCoverage >= g.config.MinPriceCoverage
		if !q.Passed {
			report.Failed = append(report.Failed, d)
		}
		report.Dates = append(report.Dates, q)
	}

	return report
}

// calculateScore calculates overall quality score using weighted average
func (g *Gate) calculateScore(q DateQuality) float64 {
	// 가중치 (합계 = 1.0)
	rowCov := q.RowCoverage
	if rowCov > 1 {
		rowCov = 1
	}
	return rowCov*0.6 + q.PriceCoverage*0.4
}

// priceCoverage is the share of rows with low <= close <= high and positive prices
func priceCoverage(snap contracts.Snapshot) float64 {
	ok := 0
	for _, rec := range snap {
		if rec.Low > 0 && rec.High >= rec.Low && rec.Close >= rec.Low && rec.Close <= rec.High {
			ok++
		}
	}
	return ratio(ok, len(snap))
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}
