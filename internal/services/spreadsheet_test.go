package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func TestReadSheet_CSV(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantHeaders []string
		wantFirst   []string
	}{
		{
			name:        "comma separated",
			data:        []byte("TransId,Product,Amount\nT1,Cola,2.50\n"),
			wantHeaders: []string{"TransId", "Product", "Amount"},
			wantFirst:   []string{"T1", "Cola", "2.50"},
		},
		{
			name:        "utf-8 byte order mark",
			data:        append([]byte{0xEF, 0xBB, 0xBF}, []byte("TransId,Product\nT1,Cola\n")...),
			wantHeaders: []string{"TransId", "Product"},
			wantFirst:   []string{"T1", "Cola"},
		},
		{
			name:        "semicolon separated",
			data:        []byte("TransId;Product;Amount\nT1;Cola;2.50\n"),
			wantHeaders: []string{"TransId", "Product", "Amount"},
			wantFirst:   []string{"T1", "Cola", "2.50"},
		},
		{
			name:        "tab separated",
			data:        []byte("TransId\tProduct\nT1\tCola\n"),
			wantHeaders: []string{"TransId", "Product"},
			wantFirst:   []string{"T1", "Cola"},
		},
		{
			name:        "windows-1252",
			data:        []byte("Produk,Harga\nCaf\xe9 Latte,3.00\n"),
			wantHeaders: []string{"Produk", "Harga"},
			wantFirst:   []string{"Café Latte", "3.00"},
		},
		{
			name:        "quoted commas",
			data:        []byte("Product,Amount\n\"Nasi Lemak, Ayam\",\"1,250.00\"\n"),
			wantHeaders: []string{"Product", "Amount"},
			wantFirst:   []string{"Nasi Lemak, Ayam", "1,250.00"},
		},
		{
			name:        "padded headers",
			data:        []byte(" TransId , Product \nT1,Cola\n"),
			wantHeaders: []string{"TransId", "Product"},
			wantFirst:   []string{"T1", "Cola"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := ReadSheet(bytes.NewReader(tt.data), "sales.csv")
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeaders, sheet.Headers)
			require.Len(t, sheet.Rows, 1)

			got := make([]string, len(tt.wantFirst))
			for i := range got {
				c, ok := sheet.Rows[0].At(i)
				require.True(t, ok)
				got[i] = c.Raw
			}
			assert.Equal(t, tt.wantFirst, got)
		})
	}
}

func TestReadSheet_UTF16(t *testing.T) {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, _, err := transform.String(encoder, "Produk,Harga\nTeh Tarik,2.20\n")
	require.NoError(t, err)

	sheet, err := ReadSheet(strings.NewReader(encoded), "sales.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"Produk", "Harga"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)

	price, _ := sheet.Rows[0].At(1)
	assert.True(t, price.Numeric)
	assert.Equal(t, 2.2, price.Num)
}

func TestReadSheet_ShortRowsArePadded(t *testing.T) {
	sheet, err := ReadSheet(strings.NewReader("TransId,Product,Amount,Date\nT1,Cola\n"), "sales.csv")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Len(t, sheet.Rows[0].Cells, 4)

	c, ok := sheet.Rows[0].At(3)
	assert.True(t, ok)
	assert.True(t, c.IsEmpty())

	c, ok = sheet.Rows[0].Get("product")
	assert.True(t, ok)
	assert.Equal(t, "Cola", c.Text())
}

func TestReadSheet_EmptyCSV(t *testing.T) {
	sheet, err := ReadSheet(strings.NewReader("  \n"), "sales.csv")
	require.NoError(t, err)
	assert.Empty(t, sheet.Headers)
	assert.Empty(t, sheet.Rows)
}

func TestReadSheet_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"TransId", "Product", "Amount", "Date", "Time"},
		{"T1", "Cola", 2.5, 46029, 0.3180555555555556},
		{"T2", "Kopi Ais", 1.8, 46029, nil},
	}
	for r, values := range rows {
		for c, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := ReadSheet(bytes.NewReader(buf.Bytes()), "sales.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"TransId", "Product", "Amount", "Date", "Time"}, got.Headers)
	require.Len(t, got.Rows, 2)

	date, _ := got.Rows[0].At(3)
	assert.True(t, date.Numeric)
	assert.Equal(t, 46029.0, date.Num)

	amount, _ := got.Rows[0].At(2)
	assert.True(t, amount.Numeric)
	assert.Equal(t, 2.5, amount.Num)

	// Trailing empty cells are padded to the header width
	assert.Len(t, got.Rows[1].Cells, 5)
	missing, _ := got.Rows[1].At(4)
	assert.True(t, missing.IsEmpty())
}

func TestReadSheet_EmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	sheet, err := ReadSheet(bytes.NewReader(buf.Bytes()), "empty.xlsx")
	require.NoError(t, err)
	assert.Empty(t, sheet.Rows)
}

func TestReadSheet_Unsupported(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
	}{
		{name: "legacy xls extension", data: []byte("anything"), filename: "legacy.xls"},
		{name: "ole2 content", data: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, filename: "sales.csv"},
		{name: "xlsx without zip content", data: []byte("TransId,Product\n"), filename: "sales.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSheet(bytes.NewReader(tt.data), tt.filename)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedFormat))
		})
	}
}

func TestReadSheet_CorruptWorkbook(t *testing.T) {
	data := append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("not really a zip")...)

	_, err := ReadSheet(bytes.NewReader(data), "broken.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}

func TestReadSheet_ReadError(t *testing.T) {
	_, err := ReadSheet(&errorReader{err: errors.New("disk gone")}, "sales.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read sales.csv")
}

// errorReader fails every read
type errorReader struct {
	err error
}

func (r *errorReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Format
		wantErr string
	}{
		{name: "csv", data: []byte("TransId,Product,Amount\nT1,Cola,2.50\n"), want: FormatCSV},
		{name: "utf-8 csv", data: []byte("Produk,Harga\nKopi Ais Ñ,3.00\n"), want: FormatCSV},
		{name: "windows-1252 csv", data: []byte("Produk,Harga\nCaf\xe9 Latte Ais,3.00\n"), want: FormatCSV},
		{name: "utf-16 csv", data: []byte{0xFF, 0xFE, 'A', 0x00, ',', 0x00}, want: FormatCSV},
		{name: "xlsx", data: []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00}, want: FormatXLSX},
		{name: "xls", data: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1}, want: FormatXLS},
		{name: "jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, wantErr: "unsupported file type"},
		{name: "empty", data: []byte{}, wantErr: "empty file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
