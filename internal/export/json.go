package export

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/wonny/extremes/internal/contracts"
)

// JSONWriter writes an indented array of objects keyed by the column headers
type JSONWriter struct{}

func (JSONWriter) Extension() string { return "json" }

func (JSONWriter) SaveRecords(path string, rows []RecordRow) error {
	objects := make([]OrderedRow, 0, len(rows))
	for _, r := range rows {
		objects = append(objects, NewOrderedRow(RecordHeaders, recordCells(r)))
	}
	return writeJSON(path, objects)
}

func (JSONWriter) SaveBreaches(path string, mode contracts.Mode, rows []BreachRow) error {
	headers := BreachHeaders(mode)
	objects := make([]OrderedRow, 0, len(rows))
	for _, r := range rows {
		objects = append(objects, NewOrderedRow(headers, breachCells(r)))
	}
	return writeJSON(path, objects)
}

// OrderedRow is a JSON object that keeps its column order
type OrderedRow struct {
	keys   []string
	values []string
}

// NewOrderedRow pairs keys with values; missing values are empty strings
func NewOrderedRow(keys, values []string) OrderedRow {
	row := OrderedRow{keys: keys, values: make([]string, len(keys))}
	copy(row.values, values)
	return row
}

// Get returns the value for key
func (r OrderedRow) Get(key string) (string, bool) {
	for i, k := range r.keys {
		if k == key {
			return r.values[i], true
		}
	}
	return "", false
}

// MarshalJSON implements json.Marshaler
func (r OrderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, r.values[i]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder appends a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}
