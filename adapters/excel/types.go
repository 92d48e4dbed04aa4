package excel

import (
	"path/filepath"
	"strings"
)

// FileType is the acquisition format, picked from the file extension
type FileType string

const (
	FileTypeText FileType = "text" // .csv, .txt and anything unrecognised
	FileTypeXLSX FileType = "xlsx"
)

// DetectFileType maps a file name to its FileType
func DetectFileType(name string) FileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	default:
		return FileTypeText
	}
}
