package excel

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "assocreport/internal/errors"
	"assocreport/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV_PadsShortRowsAndTrims(t *testing.T) {
	src := " race , armed \nWhite, Firearm\nBlack\n,Knife\n"
	ds, err := NewDataReader("incidents.csv").ReadCSV(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "incidents", ds.Name)
	assert.Equal(t, []string{"race", "armed"}, ds.Headers)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "White", ds.Records[0]["race"])
	assert.Equal(t, "Firearm", ds.Records[0]["armed"])

	armed, ok := ds.Records[1]["armed"]
	assert.True(t, ok, "short row should be padded")
	assert.Equal(t, "", armed)
	assert.Equal(t, "", ds.Records[2]["race"])
}

func TestReadCSV_RejectsBadHeaders(t *testing.T) {
	_, err := NewDataReader("x.csv").ReadCSV(strings.NewReader(""))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = NewDataReader("x.csv").ReadCSV(strings.NewReader("a,a\n1,2\n"))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = NewDataReader("x.csv").ReadCSV(strings.NewReader("a,\n1,2\n"))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	ds, err := NewDataReader("x.csv").ReadCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.True(t, ds.IsEmpty())
	assert.Equal(t, []string{"a", "b"}, ds.Columns())
}

func TestDataReaderIsNotAReaderFrom(t *testing.T) {
	_, ok := interface{}(NewDataReader("x.csv")).(io.ReaderFrom)
	assert.False(t, ok)
}

func TestWriteCSV_UnwritablePath(t *testing.T) {
	ds, err := NewDataReader("x.csv").ReadCSV(strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)

	err = WriteCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), ds)
	assert.Equal(t, apperrors.CodeIOError, apperrors.GetCode(err))
}

func TestWriteCSV_ContentsFlushedOnClose(t *testing.T) {
	ds, err := NewDataReader("x.csv").ReadCSV(strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, ds))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(got))
}

func TestReadData_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "absent.csv")).ReadData()
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestRoundTrip_CSVAndXLSX(t *testing.T) {
	cfg := testkit.DefaultShootingsConfig()
	cfg.Rows = 40
	ds, err := testkit.GenerateShootings(cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "shootings.csv")
	xlsxPath := filepath.Join(dir, "shootings.xlsx")
	require.NoError(t, WriteCSV(csvPath, ds))
	require.NoError(t, WriteXLSX(xlsxPath, ds))

	for _, path := range []string{csvPath, xlsxPath} {
		reader := NewDataReader(path)
		got, err := reader.ReadData()
		require.NoError(t, err, path)
		assert.Equal(t, ds.Columns(), got.Columns(), path)
		assert.Equal(t, ds.Fingerprint(), got.Fingerprint(), "%s should round-trip", reader.FileType())
	}
}

func TestReadData_FirstSheetFallback(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Incidents"))
	require.NoError(t, f.SetSheetRow("Incidents", "A1", &[]interface{}{"gender", "flee"}))
	require.NoError(t, f.SetSheetRow("Incidents", "A2", &[]interface{}{"M", "Car"}))
	require.NoError(t, f.SetSheetRow("Incidents", "A3", &[]interface{}{"F"}))
	path := filepath.Join(t.TempDir(), "renamed.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "Car", got.Records[0]["flee"])
	assert.Equal(t, "", got.Records[1]["flee"])
}
