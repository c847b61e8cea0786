package formatting

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleTable() Table {
	return Table{
		Header: []string{"Domain", "Tools"},
		Rows: [][]string{
			{"core", "3"},
			{"wiki", "1"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: FormatTable},
		{in: "table", want: FormatTable},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Options{Format: FormatTable}, sampleTable()))

	out := buf.String()
	assert.Contains(t, out, "core")
	assert.Contains(t, out, "wiki")
	assert.Contains(t, out, "╭")
}

func TestRender_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Options{}, Table{Header: []string{"Domain"}}))
	assert.Equal(t, "No items found\n", buf.String())
}

func TestRender_JSONUsesRowsWithoutData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Options{Format: FormatJSON}, sampleTable()))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{
		{"domain": "core", "tools": "3"},
		{"domain": "wiki", "tools": "1"},
	}, got)
}

func TestRender_YAMLPrefersData(t *testing.T) {
	tbl := sampleTable()
	tbl.Data = map[string]int{"core": 3}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Options{Format: FormatYAML}, tbl))

	var got map[string]int
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]int{"core": 3}, got)
}
