package clubs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a club directory from a .csv, .yaml or .yml file.
func LoadFile(path string) ([]Club, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(f)
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return nil, fmt.Errorf("%w: unsupported club file %s", ErrInvalidInput, filepath.Base(path))
	}
}

// LoadCSV reads a header row followed by one club per row.
func LoadCSV(r io.Reader) ([]Club, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var records []map[string]any
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		rec := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return fromRecords(records)
}

// LoadYAML reads a YAML sequence of club mappings.
func LoadYAML(r io.Reader) ([]Club, error) {
	var records []map[string]any
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml clubs: %w", err)
	}
	return fromRecords(records)
}

// fromRecords decodes rows, skipping nameless ones. A repeated name keeps
// the first position and the last row's values.
func fromRecords(records []map[string]any) ([]Club, error) {
	index := make(map[string]int, len(records))
	out := make([]Club, 0, len(records))
	for i, rec := range records {
		club, err := FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("club record %d: %w", i+1, err)
		}
		if club.Name == "" {
			continue
		}
		if pos, ok := index[club.Name]; ok {
			out[pos] = club
			continue
		}
		index[club.Name] = len(out)
		out = append(out, club)
	}
	return out, nil
}
