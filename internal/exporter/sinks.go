package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

// Sink accepts a finished delimited-text blob.
type Sink interface {
	Write(blob string) error
}

// FileSink writes blobs to a destination path, guaranteeing a .csv suffix.
type FileSink struct {
	Path   string
	logger *slog.Logger
}

// NewFileSink creates a file sink for the given destination path.
func NewFileSink(path string, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{Path: path, logger: logger.With(slog.String("component", "file_sink"))}
}

// Write stores the blob at the sink's path, appending .csv when missing and
// creating parent directories as needed.
func (s *FileSink) Write(blob string) error {
	path := s.Path
	if !strings.HasSuffix(path, ".csv") {
		path += ".csv"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(blob), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info("result written",
		slog.String("path", path),
		slog.Int("bytes", len(blob)))
	return nil
}

// ClipboardSink places blobs on the system clipboard.
type ClipboardSink struct{}

// Write copies the blob to the clipboard.
func (ClipboardSink) Write(blob string) error {
	if err := clipboard.WriteAll(blob); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
