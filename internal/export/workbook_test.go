package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoicerecon/internal/domain"
)

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{ItemSheet, SummarySheet}, f.GetSheetList())

	items, err := f.GetRows(ItemSheet)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "Image_File", items[0][0])
	assert.Equal(t, "Phone", items[1][indexOf(ItemColumns(), "description")])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, "Total_Amount", summary[0][indexOf(SummaryColumns(), "Total_Amount")])

	tables, err := f.GetTables(ItemSheet)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "ItemDetailsTable", tables[0].Name)
	assert.Equal(t, "TableStyleMedium9", tables[0].StyleName)

	tables, err = f.GetTables(SummarySheet)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "InvoiceSummaryTable", tables[0].Name)
}

func TestWriteWorkbook_NoRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, []*domain.InvoiceRecord{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(ItemSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	tables, err := f.GetTables(ItemSheet)
	require.NoError(t, err)
	assert.Empty(t, tables)
}
