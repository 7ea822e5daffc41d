package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leapstack-labs/suiteql/internal/suiteql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer() (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, false), out, errOut
}

func singleRowResult() *suiteql.PagedResult {
	return &suiteql.PagedResult{
		Items:        []suiteql.Record{suiteql.NewRecord("x", 1)},
		TotalResults: 1,
		Offset:       0,
		HasMore:      false,
		Count:        1,
	}
}

func TestRenderResult_TableSingleRow(t *testing.T) {
	r, out, _ := newTestRenderer()

	require.NoError(t, r.RenderResult(singleRowResult(), ModeTable))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "1 rows", lines[len(lines)-1])

	table := out.String()
	assert.Contains(t, table, "│ x │")
	assert.Contains(t, table, "│ 1 │")
	assert.NotContains(t, table, "offset")
	assert.NotContains(t, table, "total")
	assert.NotContains(t, table, "more available")
}

func TestRenderResult_TableEmpty(t *testing.T) {
	r, out, _ := newTestRenderer()

	res := &suiteql.PagedResult{Items: nil, Count: 0}
	require.NoError(t, r.RenderResult(res, ModeTable))

	assert.Equal(t, "(no results)\n0 rows\n", out.String())
}

func TestRenderResult_TableColumnsFromFirstRecord(t *testing.T) {
	r, out, _ := newTestRenderer()

	res := &suiteql.PagedResult{
		Items: []suiteql.Record{
			suiteql.NewRecord("links", []any{}, "id", "1", "name", "Acme"),
			suiteql.NewRecord("id", "2", "email", "b@example.com"),
		},
		Count: 2,
	}
	require.NoError(t, r.RenderResult(res, ModeTable))

	output := out.String()
	assert.Contains(t, output, "id")
	assert.Contains(t, output, "name")
	assert.Contains(t, output, "Acme")
	// Fields absent from the first record are not columns.
	assert.NotContains(t, output, "email")
	assert.NotContains(t, output, "b@example.com")
	assert.NotContains(t, output, "links")
}

func TestRenderResult_JSONVerbatim(t *testing.T) {
	r, out, _ := newTestRenderer()

	raw := `{"links":[],"count":1,"hasMore":true,"items":[{"b":"2","a":"1"}],"offset":5,"totalResults":9}`
	res, err := suiteql.DecodePagedResult([]byte(raw))
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(res, ModeJSON))

	output := out.String()
	idx := strings.LastIndex(strings.TrimRight(output, "\n"), "\n")
	require.Positive(t, idx)
	body, summary := output[:idx], strings.TrimSpace(output[idx:])

	assert.JSONEq(t, raw, body)
	assert.Less(t, strings.Index(body, `"b"`), strings.Index(body, `"a"`))
	assert.Contains(t, body, "\n  \"count\": 1")
	assert.Equal(t, "1 rows, offset 5, total 9, more available (.next)", summary)
}

func TestRenderResult_JSONWithoutRaw(t *testing.T) {
	r, out, _ := newTestRenderer()

	require.NoError(t, r.RenderResult(singleRowResult(), ModeJSON))

	var decoded map[string]any
	body := strings.TrimSuffix(strings.TrimRight(out.String(), "\n"), "1 rows")
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.EqualValues(t, 1, decoded["count"])
}

func TestRenderResult_DoesNotMutate(t *testing.T) {
	r, _, _ := newTestRenderer()
	res := singleRowResult()
	before, err := json.Marshal(res)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(res, ModeTable))
	require.NoError(t, r.RenderResult(res, ModeJSON))

	after, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRenderResult_Nil(t *testing.T) {
	r, _, _ := newTestRenderer()
	assert.Error(t, r.RenderResult(nil, ModeTable))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		res  suiteql.PagedResult
		want string
	}{
		{"single page", suiteql.PagedResult{Count: 1, TotalResults: 1}, "1 rows"},
		{"empty", suiteql.PagedResult{}, "0 rows"},
		{"first of many", suiteql.PagedResult{Count: 10, TotalResults: 135, HasMore: true}, "10 rows, total 135, more available (.next)"},
		{"last page", suiteql.PagedResult{Count: 5, Offset: 130, TotalResults: 135}, "5 rows, offset 130, total 135"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(&tt.res))
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, "NULL"},
		{"hello", "hello"},
		{json.Number("42"), "42"},
		{3.14, "3.14"},
		{true, "true"},
		{[]any{"a", "b"}, `["a","b"]`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatValue(tt.input))
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("JSON")
	require.NoError(t, err)
	assert.Equal(t, ModeJSON, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeTable, m)

	_, err = ParseMode("csv")
	assert.Error(t, err)

	assert.Equal(t, "json", ModeJSON.String())
	assert.Equal(t, "table", ModeTable.String())
}

func TestRenderer_Messages(t *testing.T) {
	r, out, errOut := newTestRenderer()

	r.Error("boom")
	r.Warning("careful")
	r.Success("done")
	r.Muted("quiet")
	r.Clear()

	assert.Contains(t, errOut.String(), "Error: boom")
	assert.Contains(t, errOut.String(), "careful")
	assert.Contains(t, out.String(), "done")
	assert.Contains(t, out.String(), "quiet")
	assert.NotContains(t, out.String(), "\033[2J")
	assert.False(t, r.IsTTY())
}
