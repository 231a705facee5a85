// Package convert walks input paths, extracts member records from every
// saved .html page, and writes a sibling tabular file per input.
package convert

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"qq-member-export/internal/charset"
	"qq-member-export/internal/member"
)

// Format selects the output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("convert: unknown format %q (want csv or xlsx)", s)
}

// Output column order. The QQ号 column carries the display name, same
// as the original spreadsheet export; the last-spoken date is parsed
// but not emitted.
var header = []string{"成员", "群昵称", "QQ号", "性别", "Q龄", "入群时间"}

func record(m member.Member) []string {
	return []string{m.QQName, m.GroupName, m.QQName, m.Gender.String(), m.QQAge, m.JoinedDate}
}

// Converter batch-converts saved member pages. It is synchronous: each
// file is processed fully before the next, and the first failure aborts
// the run.
type Converter struct {
	log    *slog.Logger
	format Format
}

func New(log *slog.Logger, format Format) *Converter {
	return &Converter{log: log, format: format}
}

// Run converts every .html file under the given paths. Directories are
// walked recursively; other files and unreadable entries are skipped.
func (c *Converter) Run(paths []string) error {
	c.log.Info("converting inputs", "paths", paths)

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if filepath.Ext(path) != ".html" {
				return nil
			}
			if err := c.ConvertFile(path); err != nil {
				return fmt.Errorf("converting %s: %w", path, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ConvertFile converts a single saved page to its sibling output file.
func (c *Converter) ConvertFile(path string) error {
	c.log.Info("converting file", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	text, enc, err := charset.Decode(raw)
	if err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}
	c.log.Debug("decoded input", "path", path, "charset", enc)

	members, err := member.FromHTML(text)
	if err != nil {
		return err
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + "." + string(c.format)
	if _, err := os.Stat(out); err == nil {
		c.log.Warn("overwriting existing output", "path", out)
	}

	switch c.format {
	case FormatXLSX:
		return writeXLSX(out, members)
	default:
		return writeCSV(out, members)
	}
}

func writeCSV(path string, members []member.Member) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, m := range members {
		if err := w.Write(record(m)); err != nil {
			f.Close()
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing csv: %w", err)
	}
	return f.Close()
}

func writeXLSX(path string, members []member.Member) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing sheet header: %w", err)
	}
	for i, m := range members {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing sheet row: %w", err)
		}
		row := record(m)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing sheet row: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
