package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// ErrUnsupportedFormat is returned for files the reader cannot decode
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Format is the container a spreadsheet file was detected as
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// textSniffLen is how much of a file is inspected to tell CSV text from binary
const textSniffLen = 512

// DetectFormat identifies a spreadsheet by its leading bytes. Anything that is not
// a ZIP or OLE2 container must look like text to count as CSV.
func DetectFormat(data []byte) (Format, error) {
	switch {
	case len(data) == 0:
		return "", errors.New("empty file")
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, ole2Magic):
		return FormatXLS, nil
	case looksLikeText(data):
		return FormatCSV, nil
	default:
		return "", errors.New("unsupported file type based on content")
	}
}

// Sheet is the first worksheet of a file: its header row and the data rows below it
type Sheet struct {
	Headers []string
	Rows    []models.RawRow
}

// ReadSheet reads the first sheet of an .xlsx or .csv file. An empty sheet yields no
// rows and no error.
func ReadSheet(r io.Reader, filename string) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if len(data) == 0 {
		return &Sheet{}, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	format, _ := DetectFormat(data)
	switch {
	case format == FormatXLS || ext == ".xls":
		return nil, fmt.Errorf("%w: legacy .xls workbook %s, save it as .xlsx", ErrUnsupportedFormat, filename)
	case format == FormatXLSX:
		return readXLSX(data)
	case ext == ".xlsx":
		return nil, fmt.Errorf("%w: %s is not a valid .xlsx workbook", ErrUnsupportedFormat, filename)
	default:
		return readCSV(data)
	}
}

func readXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Sheet{}, nil
	}

	// Raw values keep date and time cells as spreadsheet serial numbers
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return buildSheet(rows), nil
}

func readCSV(data []byte) (*Sheet, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return &Sheet{}, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return buildSheet(records), nil
}

// decodeText converts CSV bytes to UTF-8. A UTF-8 or UTF-16 byte order mark is
// honoured; bytes that are not valid UTF-8 are read as Windows-1252.
func decodeText(data []byte) (string, error) {
	if hasUTF16BOM(data) || bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", fmt.Errorf("failed to decode csv: %w", err)
		}
		return string(decoded), nil
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode csv: %w", err)
	}
	return string(decoded), nil
}

// looksLikeText accepts UTF-16 with a byte order mark, or a sample free of NUL bytes
// in which at least 95% of bytes are printable
func looksLikeText(data []byte) bool {
	sample := data[:min(len(data), textSniffLen)]
	if hasUTF16BOM(sample) {
		return true
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}

	utf8Text := utf8.Valid(sample)
	printable := 0
	for _, b := range sample {
		if (b >= 0x20 && b <= 0x7E) || b == '\t' || b == '\n' || b == '\r' || (utf8Text && b >= 0x80) {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.95
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// sniffDelimiter picks ',' unless the header line clearly uses ';' or tabs
func sniffDelimiter(text string) rune {
	line, _, _ := strings.Cut(text, "\n")
	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// buildSheet treats the first record as the header row and pads short data rows
func buildSheet(records [][]string) *Sheet {
	if len(records) == 0 {
		return &Sheet{}
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	sheet := &Sheet{Headers: headers}
	for _, record := range records[1:] {
		width := len(headers)
		if len(record) > width {
			width = len(record)
		}
		cells := make([]models.Cell, width)
		for i, raw := range record {
			cells[i] = models.TextCell(raw)
		}
		sheet.Rows = append(sheet.Rows, models.RawRow{Headers: headers, Cells: cells})
	}
	return sheet
}
