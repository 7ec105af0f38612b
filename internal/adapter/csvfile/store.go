// Package csvfile persists readings to the append-only CSV ledger.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/dedup"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/domain"
)

// collectionTimeLayout matches the second-resolution local timestamps the
// legacy files were written with.
const collectionTimeLayout = "2006-01-02T15:04:05"

var (
	header = []string{
		"timestamp", "station_id", "discharge", "water_level",
		"danger_level", "water_temperature", "is_liter",
	}
	legacyHeader = []string{
		"timestamp", "station_id", "discharge", "water_level",
		"danger_level", "water_temperature", "collection_time",
	}
)

// Store reads and writes the CSV ledger at a fixed path. The file may not
// exist yet; Append creates it with a header. Concurrent processes writing
// the same file are not supported.
type Store struct {
	path   string
	legacy bool
	logger *slog.Logger
}

// New creates a Store for the ledger at path. When legacy is true the file
// uses the historical layout ending in collection_time.
func New(path string, legacy bool, logger *slog.Logger) *Store {
	return &Store{path: path, legacy: legacy, logger: logger}
}

// Path returns the ledger file path.
func (s *Store) Path() string { return s.path }

// Append writes readings to the ledger in one write, creating the file with
// a header first if needed. Readings without a timestamp are dropped here as
// a last line of defense; callers should have filtered them already.
func (s *Store) Append(readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	_, statErr := os.Stat(s.path)
	newFile := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(s.header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, r := range readings {
		if r.Timestamp == "" {
			s.logger.Warn("dropping reading without timestamp", "station", r.StationID)
			continue
		}
		if err := w.Write(s.row(r)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	return f.Close()
}

// Compact rewrites the ledger with exact-duplicate rows removed, keeping
// first occurrences in order, and returns how many rows were dropped.
// Running it on an already-clean file changes nothing. A missing file is not
// an error.
func (s *Store) Compact() (int, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open ledger: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	closeErr := f.Close()
	if err != nil {
		return 0, fmt.Errorf("read ledger: %w", err)
	}
	if closeErr != nil {
		return 0, closeErr
	}
	if len(rows) == 0 {
		return 0, nil
	}

	seen := make(map[string]struct{}, len(rows))
	kept := rows[:1] // header always survives
	dropped := 0
	for _, row := range rows[1:] {
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	if dropped == 0 {
		return 0, nil
	}

	if err := s.rewrite(kept); err != nil {
		return 0, err
	}
	s.logger.Info("compacted ledger", "path", s.path, "rows_dropped", dropped)
	return dropped, nil
}

// rewrite replaces the ledger atomically via a temp file in the same
// directory.
func (s *Store) rewrite(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".compact-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// SeedKeys reads the ledger and returns the dedup keys of every persisted
// row. A missing file yields an empty set.
func (s *Store) SeedKeys() (*dedup.Set, error) {
	set := dedup.New()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		set.Add(row[0] + "_" + row[1])
	}
	return set, nil
}

func (s *Store) header() []string {
	if s.legacy {
		return legacyHeader
	}
	return header
}

func (s *Store) row(r domain.Reading) []string {
	last := formatBool(r.IsLiter)
	if s.legacy {
		last = r.CollectedAt.Format(collectionTimeLayout)
	}
	return []string{
		r.Timestamp,
		r.StationID,
		formatFloat(r.Discharge),
		formatFloat(r.WaterLevel),
		formatFloat(r.DangerLevel),
		formatFloat(r.WaterTemperature),
		last,
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
