package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jbweber/virtstore/internal/storage"
)

// TableFormatter formats listings as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

func newTabWriter(buf *bytes.Buffer) *tabwriter.Writer {
	return tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
}

// FormatPools formats pools as NAME STATE AUTOSTART plus any extra columns.
func (f *TableFormatter) FormatPools(pools map[string]storage.PoolRecord) (string, error) {
	if len(pools) == 0 {
		return "No pools found\n", nil
	}

	entries := poolEntries(pools)
	extra := map[string]bool{}
	for _, e := range entries {
		for col := range e.Columns {
			extra[col] = true
		}
	}
	extraCols := sortedKeys(extra)

	var buf bytes.Buffer
	w := newTabWriter(&buf)

	if !f.NoHeaders {
		header := []string{"NAME", "STATE", "AUTOSTART"}
		for _, col := range extraCols {
			header = append(header, strings.ToUpper(col))
		}
		_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	}

	for _, e := range entries {
		row := []string{e.Name, orDash(e.State), orDash(e.Autostart)}
		for _, col := range extraCols {
			row = append(row, orDash(e.Columns[col]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatVolumes formats volumes as NAME PATH.
func (f *TableFormatter) FormatVolumes(volumes map[string]string) (string, error) {
	if len(volumes) == 0 {
		return "No volumes found\n", nil
	}

	var buf bytes.Buffer
	w := newTabWriter(&buf)
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tPATH")
	}
	for _, e := range volumeEntries(volumes) {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", e.Name, orDash(e.Path))
	}
	_ = w.Flush()
	return buf.String(), nil
}

// FormatAttributes formats attributes as "Key:  value" lines sorted by key.
func (f *TableFormatter) FormatAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "No information available\n", nil
	}

	var buf bytes.Buffer
	w := newTabWriter(&buf)
	for _, k := range sortedKeys(attrs) {
		_, _ = fmt.Fprintf(w, "%s:\t%s\n", k, attrs[k])
	}
	_ = w.Flush()
	return buf.String(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
