package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Spreadsheet MIME types
const (
	MimeCSV         = "text/csv"
	MimeXLS         = "application/vnd.ms-excel"
	MimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeOctetStream = "application/octet-stream"
)

var formatByExtension = map[string]Format{
	".csv":  FormatCSV,
	".xlsx": FormatXLSX,
	".xls":  FormatXLS,
}

// declaredFormats lists the formats each accepted Content-Type may carry. Excel on
// Windows labels .csv files as application/vnd.ms-excel, and some browsers send
// spreadsheets as a bare octet stream.
var declaredFormats = map[string][]Format{
	MimeCSV:           {FormatCSV},
	"text/plain":      {FormatCSV},
	"application/csv": {FormatCSV},
	MimeXLSX:          {FormatXLSX},
	MimeXLS:           {FormatCSV, FormatXLSX, FormatXLS},
	mimeOctetStream:   {FormatCSV, FormatXLSX, FormatXLS},
}

// UploadError lists everything wrong with one uploaded spreadsheet
type UploadError struct {
	Filename string
	Problems []string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Filename, strings.Join(e.Problems, "; "))
}

// FileValidator screens POS exports and master cost sheets before they reach the reader
type FileValidator struct {
	maxBytes int64
}

// NewFileValidator creates a validator; maxBytes <= 0 disables the size limit
func NewFileValidator(maxBytes int64) *FileValidator {
	return &FileValidator{maxBytes: maxBytes}
}

// Check validates an upload and returns the format its content was detected as.
// Every problem found is collected into a single *UploadError.
func (v *FileValidator) Check(data []byte, filename, contentType string) (Format, error) {
	var problems []string

	if err := CheckFilename(filename); err != nil {
		problems = append(problems, err.Error())
	}

	allowed, known := declaredFormats[contentType]
	switch {
	case contentType == "":
		problems = append(problems, "content type is missing")
	case !known:
		problems = append(problems, fmt.Sprintf("unsupported content type %s", contentType))
	}

	if v.maxBytes > 0 && int64(len(data)) > v.maxBytes {
		problems = append(problems, fmt.Sprintf("file is %d bytes, limit is %d", len(data), v.maxBytes))
	}

	format, err := DetectFormat(data)
	if err != nil {
		problems = append(problems, err.Error())
	} else {
		if known && !slices.Contains(allowed, format) {
			problems = append(problems, fmt.Sprintf("content is %s but declared as %s", format, contentType))
		}
		if ext, ok := formatByExtension[strings.ToLower(filepath.Ext(filename))]; ok && !extensionFits(ext, format) {
			problems = append(problems, fmt.Sprintf("content is %s but the file is named %s", format, filename))
		}
	}

	if len(problems) > 0 {
		return "", &UploadError{Filename: filename, Problems: problems}
	}
	return format, nil
}

// CheckFilename rejects names that could escape the upload area or are not spreadsheets
func CheckFilename(filename string) error {
	switch {
	case filename == "":
		return errors.New("filename cannot be empty")
	case strings.Contains(filename, ".."):
		return errors.New("filename contains path traversal")
	case strings.ContainsRune(filename, 0):
		return errors.New("filename contains null bytes")
	case strings.HasPrefix(filename, "/") || strings.HasPrefix(filename, "\\"):
		return errors.New("filename cannot be absolute path")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("filename must have an extension")
	}
	if _, ok := formatByExtension[ext]; !ok {
		return fmt.Errorf("unsupported file extension: %s", ext)
	}
	return nil
}

// ContentTypeFor guesses the MIME type of a spreadsheet from its extension
func ContentTypeFor(filename string) string {
	switch formatByExtension[strings.ToLower(filepath.Ext(filename))] {
	case FormatCSV:
		return MimeCSV
	case FormatXLSX:
		return MimeXLSX
	case FormatXLS:
		return MimeXLS
	default:
		return mimeOctetStream
	}
}

// extensionFits passes any content named .xls; the reader reports those per file
func extensionFits(ext, content Format) bool {
	return ext == content || ext == FormatXLS
}
