package document

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// Supported reports whether path has an extension Open understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".json":
		return true
	}
	return false
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open picks a reader by extension: PDFs are parsed directly, .json files are
// fragment dumps. The returned closer must be closed after the run.
func Open(path string, scale float64, logger *slog.Logger) (Reader, io.Closer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		r, err := OpenPDF(path, scale, logger)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case ".json":
		r, err := OpenDump(path)
		if err != nil {
			return nil, nil, err
		}
		return r, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
}
