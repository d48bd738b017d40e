// Package csv reads fallback listings from a CSV file with a header row.
// Every field is kept as a trimmed string, in header order.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ListingSource = (*Source)(nil)

// Source implements driven.ListingSource over a CSV file.
type Source struct {
	path string
}

// NewSource creates a source for the CSV file at path.
// The file is read on every call to Listings.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the CSV file path.
func (s *Source) Path() string {
	return s.path
}

// Listings reads every row of the file.
// Returns domain.ErrNotFound if the file does not exist.
func (s *Source) Listings(ctx context.Context) ([]domain.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: listings file %s", domain.ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("opening listings: %w", err)
	}
	defer f.Close()

	return Read(ctx, f)
}

// Read parses listings from r. Blank lines are skipped; rows shorter than the
// header are padded with empty strings and longer rows are rejected.
func Read(ctx context.Context, r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Record{}, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	listings := []domain.Record{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading listings: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(row) > len(columns) {
			return nil, fmt.Errorf("%w: line %d has %d fields for %d columns",
				domain.ErrInvalidInput, line, len(row), len(columns))
		}

		values := make([]any, len(columns))
		for i := range columns {
			if i < len(row) {
				values[i] = strings.TrimSpace(row[i])
			} else {
				values[i] = ""
			}
		}
		listings = append(listings, domain.Record{Columns: columns, Values: values})
	}

	return listings, nil
}
