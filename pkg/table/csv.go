package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/contactviz/contactviz/pkg/errors"
)

// ReadCSV decodes a CSV document from r into a Table.
// The first record is the header. Records are not reordered, so row
// positions in the returned table match the source document.
//
// Returns INVALID_SCHEMA for an empty document, a repeated header name,
// or a ragged record.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // width checked by New with a better message

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "read csv")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "csv document has no header row")
	}
	return New(records[0], records[1:])
}

// LoadCSV reads a CSV file at path and returns the decoded Table.
// The error wraps the underlying cause with the file path for context.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
