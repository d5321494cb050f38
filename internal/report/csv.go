// Package report renders analysis outcomes as CSV rows and console tables.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"streamcheck/internal/checker"
	"streamcheck/internal/classify"
)

// Header is the CSV column order.
var Header = []string{"Name", "GameName", "TagLine", "Twitch", "Total", "OnStream", "OffStream", "Unknown", "PctTotal", "Result"}

// Row is one CSV line.
type Row struct {
	Name     string
	GameName string
	TagLine  string
	Twitch   string
	Result   classify.Result
	Skipped  bool
}

// RowFromReport builds a row for an analyzed contestant.
func RowFromReport(r checker.Report) Row {
	name := strings.TrimSpace(r.Target.Name)
	if name == "" {
		name = r.Target.Identity.String()
	}
	return Row{
		Name:     name,
		GameName: r.Target.Identity.GameName,
		TagLine:  r.Target.Identity.TagLine,
		Twitch:   r.Target.Twitch,
		Result:   r.Result,
	}
}

// RowFromOutcome builds a row for a batch outcome; skipped contestants get
// zero counts and a SKIP verdict.
func RowFromOutcome(o checker.Outcome) Row {
	if o.Report != nil {
		return RowFromReport(*o.Report)
	}
	return Row{
		Name:     strings.TrimSpace(o.Participant.Name),
		GameName: o.Identity.GameName,
		TagLine:  o.Identity.TagLine,
		Twitch:   o.Twitch,
		Skipped:  true,
	}
}

// Verdict returns PASS, FAIL or SKIP.
func (r Row) Verdict() string {
	if r.Skipped {
		return "SKIP"
	}
	return checker.ResultLabel(r.Result.Pass)
}

func (r Row) record() []string {
	return []string{
		r.Name,
		r.GameName,
		r.TagLine,
		r.Twitch,
		strconv.Itoa(r.Result.Total),
		strconv.Itoa(r.Result.OnStream),
		strconv.Itoa(r.Result.OffStream),
		strconv.Itoa(r.Result.Unknown),
		FormatPercent(r.Result.PctTotal),
		r.Verdict(),
	}
}

// FormatPercent renders a ratio as "12.34%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// AppendCSV appends rows to path, writing the header only when the file is
// new. An empty path disables CSV output.
func AppendCSV(path string, rows ...Row) error {
	path = strings.TrimSpace(path)
	if path == "" || len(rows) == 0 {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create csv directory: %w", err)
		}
	}
	_, statErr := os.Stat(path)
	needsHeader := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	w := csv.NewWriter(f)
	if needsHeader {
		_ = w.Write(Header)
	}
	for _, row := range rows {
		_ = w.Write(row.record())
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	return nil
}
