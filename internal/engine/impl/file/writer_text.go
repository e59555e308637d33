package file

import (
	"DumpSpectra/internal/model"
	"bufio"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// FilteredFileName is the intermediate file holding the lines that survived the filter.
const FilteredFileName = "filtered.txt"

// TextWriter writes the filtered capture lines to a text file.
type TextWriter struct {
	rootPath string
}

// NewTextWriter creates a new text writer rooted at rootPath.
func NewTextWriter(rootPath string) model.Writer {
	return &TextWriter{rootPath: rootPath}
}

func (w *TextWriter) Name() string {
	return "text"
}

func (w *TextWriter) Write(result *model.Result) (err error) {
	file, err := create(w.rootPath, FilteredFileName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close filtered file: %w", cerr)
		}
	}()

	buf := bufio.NewWriter(file)
	for _, line := range result.Filtered {
		if _, err := buf.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write filtered line: %w", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush filtered file: %w", err)
	}

	log.Infof("Wrote %d filtered lines to %s", len(result.Filtered), filepath.Join(w.rootPath, FilteredFileName))
	return nil
}
