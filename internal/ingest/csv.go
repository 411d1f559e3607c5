package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVRowReader adapts a CSV byte stream into column-split rows keyed by
// the header names. Field counts are checked against the header, so a
// structurally corrupt file surfaces as a fatal read error mid-stream.
type CSVRowReader struct {
	reader *csv.Reader
	header []string
}

// NewCSVRowReader consumes the header row up front. An empty stream or an
// unreadable header is a fatal stream error.
func NewCSVRowReader(r io.Reader) (*CSVRowReader, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	return &CSVRowReader{
		reader: reader,
		header: header,
	}, nil
}

// Read returns the next row as a header-name to value mapping, io.EOF at
// end of file, and the underlying decode error otherwise.
func (c *CSVRowReader) Read() (map[string]string, error) {
	record, err := c.reader.Read()
	if err != nil {
		return nil, err
	}

	row := make(map[string]string, len(c.header))
	for i, name := range c.header {
		row[name] = record[i]
	}
	return row, nil
}
