package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWorkbook(t *testing.T) {
	f, err := BuildWorkbook([]SheetSpec{
		{
			Title:  "Go Basics",
			Header: []string{"ID", "Name", "Progress"},
			Rows: [][]string{
				{"1", "Alice", "75%"},
				{"2", "Carol", "0%"},
			},
		},
	})
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Go Basics"}, f.GetSheetList())

	header, err := f.GetCellValue("Go Basics", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	name, err := f.GetCellValue("Go Basics", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	progress, err := f.GetCellValue("Go Basics", "C3")
	require.NoError(t, err)
	assert.Equal(t, "0%", progress)
}

func TestBuildWorkbookRequiresASheet(t *testing.T) {
	_, err := BuildWorkbook(nil)
	assert.Error(t, err)
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "A", colName(1))
	assert.Equal(t, "Z", colName(26))
	assert.Equal(t, "AA", colName(27))
	assert.Equal(t, "AB", colName(28))
}
