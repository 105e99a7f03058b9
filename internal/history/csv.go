package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/soletra/internal/model"
	"github.com/verte-zerg/soletra/internal/normalize"
)

var header = []string{"word", "accepted", "length", "frequency"}

// Column aliases, including the Portuguese header of older history files.
var columnNames = map[string]string{
	"word":       "word",
	"palavra":    "word",
	"accepted":   "accepted",
	"foi_aceita": "accepted",
	"length":     "length",
	"tamanho":    "length",
	"frequency":  "frequency",
	"frequencia": "frequency",
}

// LoadReport describes rows dropped by a lenient load.
type LoadReport struct {
	Skipped int
	// Rows holds the 1-based record numbers of skipped rows.
	Rows []int
}

// CSVFile persists a history as a CSV file.
type CSVFile struct {
	Path string
	// Strict aborts a load on the first malformed row instead of skipping it.
	Strict bool
	// Report is filled by the last Load.
	Report LoadReport
}

// Load reads the file. A missing file yields an empty history.
func (c *CSVFile) Load(ctx context.Context) (*History, error) {
	c.Report = LoadReport{}
	f, err := os.Open(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()
	h, report, err := ReadCSV(ctx, f, c.Strict)
	c.Report = report
	if err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", c.Path, err)
	}
	return h, nil
}

// Flush rewrites the whole file atomically.
func (c *CSVFile) Flush(ctx context.Context, h *History) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp history: %w", err)
	}
	tmpName := tmp.Name()
	if err := WriteCSV(tmp, h); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close history: %w", err)
	}
	if err := os.Rename(tmpName, c.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

// WriteCSV writes every record, sorted by key, under the canonical header.
func WriteCSV(w io.Writer, h *History) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range h.Records() {
		accepted := "0"
		if rec.Accepted {
			accepted = "1"
		}
		row := []string{rec.Word, accepted, strconv.Itoa(rec.Length), strconv.Itoa(rec.Frequency)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a history table. Rows sharing a normalized word are merged.
func ReadCSV(ctx context.Context, r io.Reader, strict bool) (*History, LoadReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	h := New()
	var report LoadReport
	columns := map[string]int{"word": 0, "accepted": 1, "length": 2, "frequency": 3}
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, report, err
			}
			if strict {
				return nil, report, fmt.Errorf("line %d: %v: %w", line, perr.Err, model.ErrCorruptData)
			}
			report.Skipped++
			report.Rows = append(report.Rows, line)
			continue
		}
		if line == 1 {
			if cols, ok := parseHeader(row); ok {
				columns = cols
				continue
			}
		}
		rec, err := parseRow(row, columns)
		if err != nil {
			if strict {
				return nil, report, fmt.Errorf("line %d: %v: %w", line, err, model.ErrCorruptData)
			}
			report.Skipped++
			report.Rows = append(report.Rows, line)
			continue
		}
		h.Merge(rec)
	}
	return h, report, nil
}

func parseHeader(row []string) (map[string]int, bool) {
	cols := map[string]int{}
	for i, name := range row {
		canon, ok := columnNames[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))]
		if !ok {
			return nil, false
		}
		cols[canon] = i
	}
	if _, ok := cols["word"]; !ok {
		return nil, false
	}
	return cols, true
}

func parseRow(row []string, columns map[string]int) (model.Record, error) {
	field := func(name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	text, _ := field("word")
	if text == "" {
		return model.Record{}, fmt.Errorf("empty word")
	}
	rec := model.Record{Word: text, Key: normalize.Word(text), Length: utf8.RuneCountInString(text)}

	if v, ok := field("frequency"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return model.Record{}, fmt.Errorf("invalid frequency %q", v)
		}
		rec.Frequency = n
	}
	if v, ok := field("length"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return model.Record{}, fmt.Errorf("invalid length %q", v)
		}
		if n > 0 {
			rec.Length = n
		}
	}
	if v, ok := field("accepted"); ok && v != "" {
		accepted, err := parseFlag(v)
		if err != nil {
			return model.Record{}, err
		}
		rec.Accepted = accepted
	}
	// A word counted at least once was accepted at least once.
	if rec.Frequency > 0 {
		rec.Accepted = true
	}
	return rec, nil
}

func parseFlag(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "1.0", "true", "t", "yes", "sim":
		return true, nil
	case "0", "0.0", "false", "f", "no", "nao", "não":
		return false, nil
	default:
		return false, fmt.Errorf("invalid accepted flag %q", v)
	}
}
