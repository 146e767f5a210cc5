package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

// FileLedger keeps ledgered dates in a text file, one YYYYMMDD per line
// ⭐ SSOT: downloaded_dates.txt 포맷은 여기서만 읽고 씀
type FileLedger struct {
	dateSet
	path   string
	logger *logger.Logger
}

// NewFileLedger loads path once. A missing or unreadable file is an empty
// ledger: every date will be fetched again.
func NewFileLedger(path string, log *logger.Logger) *FileLedger {
	l := &FileLedger{
		dateSet: newDateSet(),
		path:    path,
		logger:  log.WithFields(map[string]interface{}{"module": "ledger", "path": path}),
	}
	l.load()
	return l
}

func (l *FileLedger) load() {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("No ledger yet, starting empty")
		return
	}
	if err != nil {
		l.logger.WithError(err).Warn("Ledger unreadable, treating as empty")
		return
	}
	defer f.Close()

	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		d, err := contracts.ParseTradingDate(line)
		if err != nil {
			skipped++
			continue
		}
		l.seed(d)
	}
	if err := scanner.Err(); err != nil {
		l.logger.WithError(err).Warn("Ledger read interrupted, keeping dates read so far")
	}

	l.logger.WithFields(map[string]interface{}{
		"dates":   l.Len(),
		"skipped": skipped,
	}).Info("Ledger loaded")
}

// Record implements contracts.Ledger. Appending an already ledgered date is a no-op.
func (l *FileLedger) Record(_ context.Context, date contracts.TradingDate) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.dates[date]; ok {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	if _, err := f.WriteString(date.String() + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}

	l.dates[date] = struct{}{}
	return nil
}

// Path returns the backing file
func (l *FileLedger) Path() string {
	return l.path
}
