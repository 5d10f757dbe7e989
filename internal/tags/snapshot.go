package tags

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseSnapshot reads a CSV with a header containing at least the tagname and
// count columns. Other columns are ignored. Repeated tag names are summed.
func ParseSnapshot(r io.Reader) (Snapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("snapshot is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}

	nameCol, countCol := -1, -1
	for i, column := range header {
		switch strings.TrimSpace(strings.TrimPrefix(column, "\ufeff")) {
		case "tagname":
			nameCol = i
		case "count":
			countCol = i
		}
	}
	if nameCol < 0 || countCol < 0 {
		return nil, fmt.Errorf("snapshot header %v: missing tagname or count column", header)
	}

	snapshot := make(Snapshot)
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("reading snapshot row %d: %w", row, err)
		}
		if nameCol >= len(record) || countCol >= len(record) {
			return nil, fmt.Errorf("snapshot row %d: expected at least %d columns, got %d", row, max(nameCol, countCol)+1, len(record))
		}

		name := record[nameCol]
		if name == "" {
			return nil, fmt.Errorf("snapshot row %d: empty tagname", row)
		}
		count, err := strconv.ParseInt(strings.TrimSpace(record[countCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot row %d: parsing count for %q: %w", row, name, err)
		}
		if count < 0 {
			return nil, fmt.Errorf("snapshot row %d: negative count %d for %q", row, count, name)
		}
		snapshot[name] += count
	}

	return snapshot, nil
}
