package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVHeader is the column layout of an upload batch.
var CSVHeader = []string{
	"mcc", "mnc", "lac", "cellid", "lon", "lat", "signal",
	"measured_at", "rating", "speed", "direction", "act",
}

// EncodeCSV renders measurements as an upload batch, header first.
// measured_at is written in unix milliseconds.
func EncodeCSV(ms []Measurement) (string, error) {
	if len(ms) == 0 {
		return "", ErrEmptyBatch
	}
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(CSVHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for i, m := range ms {
		if err := w.Write(m.record()); err != nil {
			return "", fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return sb.String(), nil
}

func (m Measurement) record() []string {
	return []string{
		strconv.Itoa(m.MCC),
		strconv.Itoa(m.MNC),
		strconv.Itoa(m.LAC),
		strconv.FormatInt(m.CellID, 10),
		strconv.FormatFloat(m.Longitude, 'f', -1, 64),
		strconv.FormatFloat(m.Latitude, 'f', -1, 64),
		strconv.Itoa(m.Signal),
		strconv.FormatInt(m.MeasuredAt.UnixMilli(), 10),
		strconv.FormatFloat(m.Rating, 'f', -1, 64),
		strconv.FormatFloat(m.Speed, 'f', -1, 64),
		strconv.FormatFloat(m.Direction, 'f', -1, 64),
		m.Radio,
	}
}

// DecodeCSV parses an upload batch. The header row is required and columns
// are matched by name, so their order may differ from CSVHeader. Every row
// is validated.
func DecodeCSV(r io.Reader) ([]Measurement, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyBatch
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range CSVHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header: missing column %q", name)
		}
	}

	var out []Measurement
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		m, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, ErrEmptyBatch
	}
	return out, nil
}

// CountRows returns the number of data rows in a batch without validating
// its columns. Batches are sent as written, so any header is accepted.
func CountRows(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	if _, err := cr.Read(); errors.Is(err, io.EOF) {
		return 0, ErrEmptyBatch
	} else if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	n := 0
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv line %d: %w", n+2, err)
		}
		n++
	}
	if n == 0 {
		return 0, ErrEmptyBatch
	}
	return n, nil
}

func parseRecord(rec []string, cols map[string]int) (Measurement, error) {
	p := fieldParser{rec: rec, cols: cols}
	m := Measurement{
		MCC:       p.intField("mcc"),
		MNC:       p.intField("mnc"),
		LAC:       p.intField("lac"),
		CellID:    p.int64Field("cellid"),
		Longitude: p.floatField("lon"),
		Latitude:  p.floatField("lat"),
		Signal:    p.intField("signal"),
		Rating:    p.floatField("rating"),
		Speed:     p.floatField("speed"),
		Direction: p.floatField("direction"),
		Radio:     strings.ToUpper(p.strField("act")),
	}
	if ms := p.int64Field("measured_at"); ms > 0 {
		m.MeasuredAt = time.UnixMilli(ms).UTC()
	}
	return m, p.err
}

// fieldParser keeps the first parse error so parseRecord reads linearly.
type fieldParser struct {
	rec  []string
	cols map[string]int
	err  error
}

func (p *fieldParser) strField(name string) string {
	i := p.cols[name]
	if i >= len(p.rec) {
		return ""
	}
	return strings.TrimSpace(p.rec[i])
}

func (p *fieldParser) int64Field(name string) int64 {
	s := p.strField(name)
	if s == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", name, err)
	}
	return v
}

func (p *fieldParser) intField(name string) int {
	return int(p.int64Field(name))
}

func (p *fieldParser) floatField(name string) float64 {
	s := p.strField(name)
	if s == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", name, err)
	}
	return v
}
