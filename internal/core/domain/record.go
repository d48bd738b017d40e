package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SimilarityField is the key added to every recommended record.
const SimilarityField = "similarity"

// Record is one row of the reference table.
// Values are aligned with Columns; Columns is usually shared by every row of a table.
type Record struct {
	Columns []string
	Values  []any
}

// Get returns the value of the named column.
func (r Record) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// GetString returns the named column formatted as a string.
// Missing and null values yield "".
func (r Record) GetString(column string) string {
	v, ok := r.Get(column)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Validate checks that every column has a value.
func (r Record) Validate() error {
	if len(r.Columns) != len(r.Values) {
		return fmt.Errorf("%w: record has %d values for %d columns",
			ErrInvalidInput, len(r.Values), len(r.Columns))
	}
	return nil
}

// MarshalJSON encodes the record as a JSON object keyed by column, in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeField(&buf, c, r.Values[i]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Recommendation is a reference record ranked against a query.
type Recommendation struct {
	// Record is the matched reference row.
	Record Record

	// Row is the record's position in the reference table.
	Row int

	// Distance is the metric distance reported by the index (or derived by the fallback scorer).
	Distance float64

	// Similarity is 1 - Distance.
	Similarity float64
}

// NewRecommendation builds a recommendation from a neighbour distance.
func NewRecommendation(record Record, row int, distance float64) Recommendation {
	return Recommendation{
		Record:     record,
		Row:        row,
		Distance:   distance,
		Similarity: 1 - distance,
	}
}

// MarshalJSON encodes the record's fields followed by "similarity".
// A record that already has a similarity column keeps its position, with the value replaced.
func (r Recommendation) MarshalJSON() ([]byte, error) {
	if err := r.Record.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	replaced := false
	for i, c := range r.Record.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		v := r.Record.Values[i]
		if c == SimilarityField {
			v = r.Similarity
			replaced = true
		}
		if err := writeField(&buf, c, v); err != nil {
			return nil, err
		}
	}
	if !replaced {
		if len(r.Record.Columns) > 0 {
			buf.WriteByte(',')
		}
		if err := writeField(&buf, SimilarityField, r.Similarity); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encoding column %q: %w", key, err)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding column %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
