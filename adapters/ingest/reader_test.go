package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_InferType(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"data.csv", "csv"},
		{"data.CSV", "csv"},
		{"data.xlsx", "xlsx"},
		{"data.xls", "xlsx"},
		{"data.json", "json"},
		{"data.txt", "csv"},
		{"data", "csv"},
	}
	for _, c := range cases {
		r := NewDataReader(c.path)
		assert.Equal(t, c.want, r.fileType, c.path)
	}
}

func TestReadCSV(t *testing.T) {
	path := writeTemp(t, "sales.csv", "date,amount,region\n2024-01-01,100,north\n2024-01-02,250,south\n")
	ds, err := NewDataReader(path).Read()
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, "100", ds[0]["amount"])
	assert.Equal(t, "south", ds[1]["region"])
	assert.Equal(t, "2024-01-01", ds[0]["date"])
}

func TestReadCSV_RaggedRow(t *testing.T) {
	// A short row leaves the missing cells absent rather than failing
	ds, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n4,5\n"))
	require.NoError(t, err)
	require.Len(t, ds, 2)

	_, ok := ds[1]["c"]
	assert.False(t, ok, "short rows must omit trailing cells")
	assert.Equal(t, "5", ds[1]["b"])
}

func TestReadCSV_Empty(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestReadJSON_Array(t *testing.T) {
	path := writeTemp(t, "metrics.json", `[{"visits": 120, "bounce": 0.4}, {"visits": 98, "bounce": 0.5}]`)
	ds, err := NewDataReader(path).Read()
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, float64(120), ds[0]["visits"])
	assert.Equal(t, 0.5, ds[1]["bounce"])
}

func TestReadJSON_WrappedRecords(t *testing.T) {
	ds, err := ReadJSON(strings.NewReader(`{"records": [{"x": 1}, {"x": 2}, {"x": 3}]}`))
	require.NoError(t, err)
	require.Len(t, ds, 3)
	assert.Equal(t, float64(2), ds[1]["x"])
}

func TestReadJSON_Malformed(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"records": "not an array"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither a record array")
}
