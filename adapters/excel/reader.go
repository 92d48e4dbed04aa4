package excel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gosus/internal"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// DataReader acquires questionnaire content from CSV/text files or Excel
// workbooks. It implements ports.ContentSourcePort.
type DataReader struct {
	name     string
	fileType FileType
	open     func() (io.ReadCloser, error)
	maxBytes int64
	logger   *internal.Logger
}

// NewDataReader creates a reader over a file on disk. A non-positive
// maxBytes falls back to DefaultMaxBytes.
func NewDataReader(filePath string, maxBytes int64) *DataReader {
	return newReader(filePath, maxBytes, func() (io.ReadCloser, error) {
		return os.Open(filePath)
	})
}

// NewStreamReader creates a reader over an already open stream, such as an
// uploaded form file. name only selects the format.
func NewStreamReader(name string, src io.Reader, maxBytes int64) *DataReader {
	return newReader(name, maxBytes, func() (io.ReadCloser, error) {
		return io.NopCloser(src), nil
	})
}

func newReader(name string, maxBytes int64, open func() (io.ReadCloser, error)) *DataReader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &DataReader{
		name:     name,
		fileType: DetectFileType(name),
		open:     open,
		maxBytes: maxBytes,
		logger:   internal.DefaultLogger.WithField("component", "DataReader"),
	}
}

// FileType reports the format the reader will decode
func (r *DataReader) FileType() FileType {
	return r.fileType
}

// ReadContent returns the semicolon separated questionnaire text. Content
// above the size ceiling is returned as "" with a nil error. I/O and
// workbook failures return "" and a plain error.
func (r *DataReader) ReadContent(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	startTime := time.Now()
	rc, err := r.open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", r.name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, r.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", r.name, err)
	}
	if int64(len(data)) > r.maxBytes {
		r.logger.Warn("[DataReader] %s exceeds the %d byte limit, treating as empty", r.name, r.maxBytes)
		return "", nil
	}
	r.logger.Debug("[DataReader] read %d bytes from %s in %.2fms", len(data), r.name,
		float64(time.Since(startTime).Nanoseconds())/1e6)

	switch r.fileType {
	case FileTypeXLSX:
		return r.readWorkbook(data)
	default:
		return normalizeText(data), nil
	}
}

// readWorkbook flattens the first sheet into the text format, padding short
// rows to the header width so missing trailing cells stay visible.
func (r *DataReader) readWorkbook(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open Excel workbook %s: %w", r.name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	r.logger.Debug("[DataReader] sheet %q read (%d rows)", sheets[0], len(rows))

	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, width)
		for _, cell := range row {
			cells = append(cells, strings.TrimSpace(cell))
		}
		for len(cells) < width {
			cells = append(cells, "")
		}
		lines = append(lines, strings.Join(cells, ";"))
	}
	return strings.Join(lines, "\n"), nil
}

func normalizeText(data []byte) string {
	s := strings.TrimPrefix(string(data), utf8BOM)
	return strings.ReplaceAll(s, "\r\n", "\n")
}
