package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

// Artifacts lists the files one export produced
type Artifacts struct {
	Records  []string `json:"records"`
	Breaches []string `json:"breaches"`
}

// Sink writes the raw-record and breach exports in every configured format
type Sink struct {
	dir      string
	exchange string
	writers  []Writer
	logger   *logger.Logger
}

// NewSink validates formats up front so a run never fails after fetching
func NewSink(dir, exchange string, formats []string, log *logger.Logger) (*Sink, error) {
	if len(formats) == 0 {
		formats = []string{"xlsx"}
	}

	writers := make([]Writer, 0, len(formats))
	for _, format := range formats {
		w := NewWriter(format)
		if w == nil {
			return nil, fmt.Errorf("unsupported output format %q (use: %s)", format, strings.Join(SupportedFormats(), ", "))
		}
		writers = append(writers, w)
	}

	return &Sink{
		dir:      dir,
		exchange: exchange,
		writers:  writers,
		logger:   log.WithField("module", "export"),
	}, nil
}

// Export writes raw records for every date with data and the breach events.
// events must already be sorted by date.
func (s *Sink) Export(
	snapshots map[contracts.TradingDate]contracts.Snapshot,
	compareDates []contracts.TradingDate,
	events []contracts.BreachEvent,
	mode contracts.Mode,
) (*Artifacts, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	records, recordDates := FlattenSnapshots(snapshots)
	breaches := BreachRows(events)
	artifacts := &Artifacts{}

	for _, w := range s.writers {
		recordsPath := filepath.Join(s.dir, RecordsFileName(s.exchange, mode, recordDates, w.Extension()))
		if err := w.SaveRecords(recordsPath, records); err != nil {
			return artifacts, fmt.Errorf("save records %s: %w", recordsPath, err)
		}
		artifacts.Records = append(artifacts.Records, recordsPath)

		breachesPath := filepath.Join(s.dir, BreachesFileName(s.exchange, mode, compareDates, w.Extension()))
		if err := w.SaveBreaches(breachesPath, mode, breaches); err != nil {
			return artifacts, fmt.Errorf("save breaches %s: %w", breachesPath, err)
		}
		artifacts.Breaches = append(artifacts.Breaches, breachesPath)

		s.logger.WithFields(map[string]interface{}{
			"records":  recordsPath,
			"breaches": breachesPath,
			"rows":     len(records),
			"events":   len(breaches),
		}).Info("Saved exports")
	}

	return artifacts, nil
}

// RecordsFileName is <EXCHANGE>_<mode>_records_<first>_<last>.<ext>
func RecordsFileName(exchange string, mode contracts.Mode, dates []contracts.TradingDate, ext string) string {
	return fileName(exchange, mode, "records", dates, ext)
}

// BreachesFileName is <EXCHANGE>_<mode>_breaches_<first>_<last>.<ext>
func BreachesFileName(exchange string, mode contracts.Mode, dates []contracts.TradingDate, ext string) string {
	return fileName(exchange, mode, "breaches", dates, ext)
}

func fileName(exchange string, mode contracts.Mode, kind string, dates []contracts.TradingDate, ext string) string {
	base := fmt.Sprintf("%s_%s_%s", strings.ToUpper(exchange), mode, kind)
	if len(dates) > 0 {
		base = fmt.Sprintf("%s_%s_%s", base, dates[0], dates[len(dates)-1])
	}
	return base + "." + ext
}
