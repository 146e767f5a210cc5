package snapshotcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/logger"
)

// FileCache stores each snapshot as <dir>/<YYYYMMDD>.json
// ⭐ SSOT: 캐시 파일 포맷 (들여쓰기 JSON 배열)
type FileCache struct {
	dir    string
	logger *logger.Logger
}

// NewFileCache creates a cache rooted at dir; the directory is created lazily
func NewFileCache(dir string, log *logger.Logger) *FileCache {
	return &FileCache{
		dir:    dir,
		logger: log.WithFields(map[string]interface{}{"module": "snapshot_cache", "dir": dir}),
	}
}

// Path returns the file for date
func (c *FileCache) Path(date contracts.TradingDate) string {
	return filepath.Join(c.dir, date.String()+".json")
}

// Store implements contracts.SnapshotCache.
// The file is replaced atomically so a crash never leaves half a snapshot.
func (c *FileCache) Store(_ context.Context, date contracts.TradingDate, snap contracts.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, date.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.Path(date)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// Load implements contracts.SnapshotCache
func (c *FileCache) Load(_ context.Context, date contracts.TradingDate) (contracts.Snapshot, bool) {
	data, err := os.ReadFile(c.Path(date))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("date", date.String()).Warn("Cache entry unreadable")
		return nil, false
	}

	snap, err := Decode(data)
	if err != nil {
		c.logger.WithError(err).WithField("date", date.String()).Warn("Cache entry corrupt")
		return nil, false
	}
	return snap, true
}

// Encode renders snap as indented JSON. nil encodes as [].
func Encode(snap contracts.Snapshot) ([]byte, error) {
	if snap == nil {
		snap = contracts.Snapshot{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses an encoded snapshot. JSON null decodes as an empty snapshot.
func Decode(data []byte) (contracts.Snapshot, error) {
	var snap contracts.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap == nil {
		snap = contracts.Snapshot{}
	}
	return snap, nil
}
