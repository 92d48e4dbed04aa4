package excel

// DefaultMaxBytes is the acquisition ceiling applied when none is configured
const DefaultMaxBytes int64 = 1 << 20

// ExcelConfig holds configuration for a file data source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	MaxBytes int64  `json:"max_bytes"`
}

// DefaultExcelConfig returns the 1 MiB ceiling with no file set
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{MaxBytes: DefaultMaxBytes}
}

// NewDataReaderFromConfig builds a file reader from config
func NewDataReaderFromConfig(cfg ExcelConfig) *DataReader {
	return NewDataReader(cfg.FilePath, cfg.MaxBytes)
}
