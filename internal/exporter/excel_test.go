package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelWriter_WriteSheet(t *testing.T) {
	dir := t.TempDir()
	w := NewExcelWriter(dir)

	path, err := w.WriteSheet("countries.xlsx", "", []string{"Country", "Area_Total"}, [][]any{
		{"France", 643801.0},
		{"Atlantis", nil},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "countries.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Country", "Area_Total"}, rows[0])
	assert.Equal(t, []string{"France", "643801"}, rows[1])
	assert.Equal(t, "Atlantis", rows[2][0])

	styleID, err := f.GetCellStyle(DefaultSheet, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestJSONWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path, err := NewJSONWriter(dir).Write("info.json", map[string]any{"Economy": []string{"Real_GDP_per_Capita_USD"}})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n  \"Economy\"")

	var decoded map[string][]string
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, []string{"Real_GDP_per_Capita_USD"}, decoded["Economy"])
}

func TestJSONWriter_Unmarshalable(t *testing.T) {
	_, err := NewJSONWriter(t.TempDir()).Write("bad.json", map[string]any{"f": func() {}})
	assert.Error(t, err)
}

func TestObject_MarshalJSON(t *testing.T) {
	obj := NewObject(3)
	obj.Set("zeta", 1)
	obj.Set("alpha", nil)
	obj.Set("mid", []string{"a"})

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":null,"mid":["a"]}`, string(data))
	assert.Equal(t, 3, obj.Len())

	empty, err := json.Marshal(NewObject(0))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}
