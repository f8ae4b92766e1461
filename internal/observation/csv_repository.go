package observation

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// csvHeader matches the layout of the historical cache files, so series
// written by earlier collectors remain readable.
var csvHeader = []string{"date", "pm25", "t2m", "wind_speed", "relative_humidity"}

// timestampLayouts are tried in order when parsing the date column.
// Open-Meteo reports minute precision without a zone; station data is RFC3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// CSVRepository stores one append-only CSV file per location key under a
// data directory.
type CSVRepository struct {
	dir string
}

// NewCSVRepository creates a repository rooted at dir, creating it if needed.
func NewCSVRepository(dir string) (*CSVRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &CSVRepository{dir: dir}, nil
}

// Append writes one record to the series file for key. The row is written
// through a single buffered flush on a file opened with O_APPEND, which keeps
// concurrent appends from interleaving.
func (r *CSVRepository) Append(_ context.Context, key Key, obs Observation) error {
	path := r.pathFor(key)

	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening series file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	row := []string{
		obs.Timestamp.Format(time.RFC3339),
		formatFloat(obs.PM25),
		formatFloat(obs.Temperature),
		formatFloat(obs.WindSpeed),
		formatFloat(obs.RelativeHumidity),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing record: %w", err)
	}
	return nil
}

// ReadAll returns all parseable records for key in file order.
// Rows with an unparsable timestamp or value are skipped.
func (r *CSVRepository) ReadAll(_ context.Context, key Key) ([]Observation, error) {
	return r.readFile(r.pathFor(key))
}

// ReadAllLocations scans the data directory and returns every series it can read.
func (r *CSVRepository) ReadAllLocations(_ context.Context) (map[Key][]Observation, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	series := make(map[Key][]Observation)
	for _, entry := range entries {
		key, ok := keyFromFilename(entry.Name())
		if !ok {
			continue
		}
		records, err := r.readFile(filepath.Join(r.dir, entry.Name()))
		if err != nil || len(records) == 0 {
			// An unreadable or empty series is treated as absent.
			continue
		}
		series[key] = records
	}
	return series, nil
}

func (r *CSVRepository) pathFor(key Key) string {
	return filepath.Join(r.dir, "airquality_"+string(key)+".csv")
}

func keyFromFilename(name string) (Key, bool) {
	if !strings.HasPrefix(name, "airquality_") || !strings.HasSuffix(name, ".csv") {
		return "", false
	}
	return Key(strings.TrimSuffix(strings.TrimPrefix(name, "airquality_"), ".csv")), true
}

func (r *CSVRepository) readFile(path string) ([]Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrLocationUnknown
		}
		return nil, fmt.Errorf("opening series file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading series file: %w", err)
	}

	var records []Observation
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == csvHeader[0] {
			continue
		}
		obs, ok := parseRow(row)
		if !ok {
			continue
		}
		records = append(records, obs)
	}
	return records, nil
}

func parseRow(row []string) (Observation, bool) {
	if len(row) != len(csvHeader) {
		return Observation{}, false
	}

	ts, ok := parseTimestamp(row[0])
	if !ok {
		return Observation{}, false
	}

	values := make([]float64, 4)
	for i, raw := range row[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Observation{}, false
		}
		values[i] = v
	}

	return Observation{
		Timestamp:        ts,
		PM25:             values[0],
		Temperature:      values[1],
		WindSpeed:        values[2],
		RelativeHumidity: values[3],
	}, true
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
