// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Separators are tried in this order; the first one yielding the most header
// columns wins.
var Separators = []rune{',', '\t', ';', '|'}

const (
	sniffLines = 6
	utf8BOM    = "\ufeff"
)

// ErrEmptyTable is returned when the input has no header row.
var ErrEmptyTable = errors.New("table has no header")

// Table is a delimited text table held in memory.
type Table struct {
	Header []string
	Rows   [][]string
	Sep    rune

	index map[string]int
}

// Read loads a whole table. A leading UTF-8 BOM is dropped, the separator is
// sniffed, and header names are trimmed. Short rows are padded with empty
// cells; rows wider than the header are an error.
func Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyTable
	}

	sep := Sniff(data)
	cr := newReader(bytes.NewReader(data), sep)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Sep: sep, Header: make([]string, len(header))}
	for i, h := range header {
		t.Header[i] = strings.TrimSpace(h)
	}
	t.buildIndex()

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) > len(t.Header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(t.Header))
		}
		for len(rec) < len(t.Header) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}

// Sniff picks the separator that splits the first few lines into the most
// header columns. Separators that fail to parse are skipped. Comma is the
// fallback.
func Sniff(data []byte) rune {
	head := firstLines(data, sniffLines)

	best, bestCols := ',', 0
	for _, sep := range Separators {
		cr := newReader(bytes.NewReader(head), sep)
		header, err := cr.Read()
		if err != nil {
			continue
		}
		if _, err := cr.ReadAll(); err != nil {
			continue
		}
		if len(header) > bestCols {
			best, bestCols = sep, len(header)
		}
	}
	return best
}

func firstLines(data []byte, n int) []byte {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	var out bytes.Buffer
	for i := 0; i < n && sc.Scan(); i++ {
		out.Write(sc.Bytes())
		out.WriteByte('\n')
	}
	return out.Bytes()
}

func newReader(r io.Reader, sep rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return cr
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// FirstOf returns the first of names present in the header.
func (t *Table) FirstOf(names ...string) (string, bool) {
	for _, n := range names {
		if t.Has(n) {
			return n, true
		}
	}
	return "", false
}

// Missing returns the names absent from the header, in the given order.
func (t *Table) Missing(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Column returns the raw cells of a column.
func (t *Table) Column(name string) ([]string, error) {
	i := t.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Floats returns a column coerced with Coerce. Unparseable cells are NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i], _ = Coerce(c)
	}
	return out, nil
}

// tokens maps boolean-ish markers to numbers.
var tokens = map[string]string{
	"True": "1", "False": "0",
	"true": "1", "false": "0",
	"O": "1", "X": "0",
	"o": "1", "x": "0",
	"Y": "1", "N": "0",
	"yes": "1", "no": "0",
}

// Coerce converts a cell to a number. Boolean markers (True/False, O/X, Y/N,
// yes/no) map to 1/0, thousands separators and percent signs are dropped.
// Failure yields NaN and false.
func Coerce(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if tok, ok := tokens[s]; ok {
		s = tok
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	if s == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// Median returns the median of the non-NaN values, NaN when there are none.
func Median(values []float64) float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	sort.Float64s(finite)
	mid := len(finite) / 2
	if len(finite)%2 == 1 {
		return finite[mid]
	}
	return (finite[mid-1] + finite[mid]) / 2
}

// FillMedian replaces NaN entries in place with the column median and
// returns how many were filled.
func FillMedian(values []float64) int {
	med := Median(values)
	if math.IsNaN(med) {
		return 0
	}
	filled := 0
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = med
			filled++
		}
	}
	return filled
}

// FormatFloat renders v with the fewest digits that round-trip.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Write emits header and rows as comma-separated values, optionally prefixed
// with a UTF-8 BOM for spreadsheet tools.
func Write(w io.Writer, header []string, rows [][]string, bom bool) error {
	if bom {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
