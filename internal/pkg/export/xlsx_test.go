package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, Table{
		Sheet:   "Evaluations",
		Title:   "Performance 2026-03",
		Headers: []string{"Employee", "Score"},
		Widths:  []float64{20, 10},
		Rows: [][]interface{}{
			{"Alice", 91.5},
			{"Bob", 78},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Evaluations"}, f.GetSheetList())

	rows, err := f.GetRows("Evaluations")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Performance 2026-03", rows[0][0])
	assert.Equal(t, []string{"Employee", "Score"}, rows[1])
	assert.Equal(t, []string{"Alice", "91.5"}, rows[2])
	assert.Equal(t, []string{"Bob", "78"}, rows[3])
}

func TestWriteXLSX_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, Table{Sheet: "Empty"})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
