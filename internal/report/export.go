package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Columns describes a flat delimited export: header labels plus one
// string selector per column, in the same order.
type Columns[T any] struct {
	Headers []string
	Fields  []func(T) string
}

// Serialize renders rows as comma-delimited text: the joined header
// labels first, then one line per row with selector-extracted values.
// An empty row set yields a header-only payload.
//
// Fields are not escaped or quoted. The aggregate rows exported here are
// dates, ids, counts, and rates, none of which contain the delimiter; a
// consumer feeding arbitrary text through this must add quoting first.
func Serialize[T any](rows []T, cols Columns[T]) string {
	var b strings.Builder
	b.WriteString(strings.Join(cols.Headers, ","))
	b.WriteByte('\n')

	values := make([]string, len(cols.Fields))
	for _, row := range rows {
		for i, field := range cols.Fields {
			values[i] = field(row)
		}
		b.WriteString(strings.Join(values, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// SerializeBOM renders rows like Serialize and prefixes the UTF-8
// byte-order mark, which common spreadsheet tools need to pick the right
// decoding for non-ASCII entity names.
func SerializeBOM[T any](rows []T, cols Columns[T]) []byte {
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())
	_, _ = w.Write([]byte(Serialize(rows, cols)))
	_ = w.Close()
	return buf.Bytes()
}

// ExportFilename builds the conventional download name for a report
// generated on the given day: <report>_<ISO-date>.csv.
func ExportFilename(report string, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s_%s.csv", report, now.In(loc).Format("2006-01-02"))
}

// FormatRate renders a percentage with one decimal place for export.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.1f", rate)
}

// FormatCount renders an integer counter for export.
func FormatCount(n int) string {
	return fmt.Sprintf("%d", n)
}
