package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// FileFormat represents the candidate file formats the loader understands
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // Tab separated text
	FormatMsgpack            // Msgpack array of records
)

// maxRecords is a sanity limit on the record count declared by a msgpack file.
const maxRecords = 1 << 22

// FormatInfo contains metadata about a candidate file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Tab Separated Candidates",
		Extensions:  []string{".tsv", ".txt"},
		MinSize:     1,
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "Msgpack Candidates",
		Extensions:  []string{".msgpack", ".mp"},
		MinSize:     1, // An empty array is one byte
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expected FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expected]
	if !exists {
		return fmt.Errorf("%w: %d", ErrUnknownFormat, expected)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, e := range formatInfo.Extensions {
		if ext == e {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	if expected == FormatMsgpack {
		return validateMsgpackFormat(filename)
	}
	return nil
}

// validateMsgpackFormat checks the file starts with a sane array header
func validateMsgpackFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	n, err := msgpack.NewDecoder(file).DecodeArrayLen()
	if err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if n > maxRecords {
		return fmt.Errorf("suspicious record count in %s: %d (too large)", filename, n)
	}

	log.Debugf("Msgpack file %s validated: %d records", filename, n)
	return nil
}

// DetectFileFormat picks the format from the extension and validates the file against it
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e != ext {
				continue
			}
			if err := ValidateFileFormat(filename, format); err != nil {
				return FormatUnknown, err
			}
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}
