package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/suiteql/internal/suiteql"
)

// linksField is the per-record hypermedia key NetSuite adds to every row.
const linksField = "links"

// RenderResult writes res in the given mode followed by the summary line.
// It never modifies res.
func (r *Renderer) RenderResult(res *suiteql.PagedResult, mode Mode) error {
	if res == nil {
		return fmt.Errorf("no result to render")
	}

	var err error
	switch mode {
	case ModeJSON:
		err = r.renderJSON(res)
	default:
		r.renderTable(res)
	}
	if err != nil {
		return err
	}

	summary := Summary(res)
	if r.isTTY {
		r.Muted(summary)
	} else {
		r.Println(summary)
	}
	return nil
}

func (r *Renderer) renderJSON(res *suiteql.PagedResult) error {
	if len(res.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, res.Raw, "", "  "); err == nil {
			buf.WriteByte('\n')
			_, err = r.out.Write(buf.Bytes())
			return err
		}
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func (r *Renderer) renderTable(res *suiteql.PagedResult) {
	if len(res.Items) == 0 {
		r.Println("(no results)")
		return
	}

	// Columns come from the first record only.
	cols := Columns(res.Items[0])

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, rec := range res.Items {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			v, ok := rec.Get(col)
			if !ok {
				row[i] = ""
				continue
			}
			row[i] = FormatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
}

// Columns returns the displayable field names of a record in order.
func Columns(rec suiteql.Record) []string {
	keys := rec.Keys()
	cols := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == linksField {
			continue
		}
		cols = append(cols, k)
	}
	return cols
}

// FormatValue renders a single cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []any, map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Summary describes the paging position of res, e.g.
// "10 rows, offset 20, total 135, more available (.next)".
func Summary(res *suiteql.PagedResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d rows", res.Count)
	if res.Offset > 0 {
		fmt.Fprintf(&b, ", offset %d", res.Offset)
	}
	// A total equal to the page size says nothing new.
	if res.TotalResults > 0 && res.TotalResults != res.Count {
		fmt.Fprintf(&b, ", total %d", res.TotalResults)
	}
	if res.HasMore {
		b.WriteString(", more available (.next)")
	}
	return b.String()
}
