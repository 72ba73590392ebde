package series

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

var (
	// ErrEmpty is returned when the source has a header but no rows.
	ErrEmpty = errors.New("historical series has no rows")
	// ErrMissingColumn is returned when the configured date column is absent.
	ErrMissingColumn = errors.New("date column not found")
	// ErrParse is returned when a date cannot be parsed.
	ErrParse = errors.New("unparsable historical row")
	// ErrDuplicateDate is returned when two rows share the same calendar day.
	ErrDuplicateDate = errors.New("duplicate observation date")
)

// dateLayouts are tried in order for the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// Options controls how the CSV is read.
type Options struct {
	DateColumn string
}

// Series is an immutable, ordered sequence of observation days. Only the date column
// is read; other columns, including blank or NA readings, are ignored.
type Series struct {
	dates []time.Time
}

// Parse reads a CSV document with a header row. Dates are normalized to UTC calendar
// days and the result is sorted ascending.
func Parse(r io.Reader, opts Options) (*Series, error) {
	if opts.DateColumn == "" {
		opts.DateColumn = "date"
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
	}

	dateIdx := -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if strings.EqualFold(name, opts.DateColumn) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, opts.DateColumn)
	}

	var dates []time.Time
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
		}
		if dateIdx >= len(record) {
			return nil, fmt.Errorf("%w: line %d: missing date field", ErrParse, line)
		}

		d, err := parseDate(record[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrParse, line, err)
		}
		dates = append(dates, d)
	}

	return New(dates)
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte, opts Options) (*Series, error) {
	return Parse(bytes.NewReader(data), opts)
}

// New builds a Series from observation dates, sorting them and rejecting duplicates.
func New(dates []time.Time) (*Series, error) {
	if len(dates) == 0 {
		return nil, ErrEmpty
	}

	sorted := make([]time.Time, len(dates))
	for i, d := range dates {
		sorted[i] = truncateDay(d)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1]) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, sorted[i].Format("2006-01-02"))
		}
	}

	return &Series{dates: sorted}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.dates)
}

// LastObservedDate returns the maximum date in the series.
func (s *Series) LastObservedDate() time.Time {
	return s.dates[len(s.dates)-1]
}

// FirstObservedDate returns the minimum date in the series.
func (s *Series) FirstObservedDate() time.Time {
	return s.dates[0]
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
