// Package output writes harvested records to a semicolon-delimited file and
// reads them back for previews.
package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"inscraper/internal/profile"
)

// Separator is the column delimiter of the output file.
const Separator = ';'

// Header is the fixed first row.
var Header = []string{"Link", "Name", "Description"}

// Writer appends records to an open output file.
type Writer struct {
	f *os.File
	w *csv.Writer
	n int
}

// Create truncates path and writes the header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w := csv.NewWriter(f)
	w.Comma = Separator

	out := &Writer{f: f, w: w}
	if err := out.writeRow(Header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return out, nil
}

// Write appends one record and flushes it to disk.
func (w *Writer) Write(r profile.Record) error {
	if err := w.writeRow([]string{r.Link, r.Name, r.Description}); err != nil {
		return err
	}
	w.n++
	return nil
}

func (w *Writer) writeRow(row []string) error {
	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return nil
}

// Count is the number of records written so far.
func (w *Writer) Count() int { return w.n }

// Path is the file being written.
func (w *Writer) Path() string { return w.f.Name() }

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.w.Flush()
	return errors.Join(w.w.Error(), w.f.Close())
}

// ReadLimited reads up to limit records from path, skipping the header.
// A limit <= 0 reads everything.
func ReadLimited(path string, limit int) ([]profile.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = Separator
	r.FieldsPerRecord = -1

	var out []profile.Record
	first := true
	for limit <= 0 || len(out) < limit {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("read %s: %w", path, err)
		}
		if first {
			first = false
			continue
		}
		get := func(i int) string {
			if i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		out = append(out, profile.Record{Link: get(0), Name: get(1), Description: get(2)})
	}
	return out, nil
}
