// Package csvio reads and writes the tabular record sets the pipeline
// consumes and produces. The core itself has no I/O; this package is
// the boundary between files and the in-memory collections.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"
const timestampLayout = "2006-01-02 15:04:05"

// header maps column names to their index in the current file, so the
// readers tolerate reordered columns.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	h := make(header, len(record))
	for i, name := range record {
		h[name] = i
	}
	return h, nil
}

// get returns the named column or "" when the file lacks it; a missing
// column degrades like any other malformed field downstream.
func (h header) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	// Raw extracts occasionally carry ragged rows; field validation
	// happens in the cleaner, not here.
	cr.FieldsPerRecord = -1
	return cr
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

// The parse helpers mirror the format helpers: empty or malformed
// fields come back as zero values, matching what the writers emit for
// them.

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, s)
	return t
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timestampLayout, s)
	return t
}
