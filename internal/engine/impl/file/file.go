// Package file holds the writers that produce plain files in the output directory.
package file

import (
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/factory"
	"DumpSpectra/internal/model"
	"fmt"
	"os"
	"path/filepath"
)

// --- Factory Registration ---

func init() {
	factory.RegisterWriter("text", func(cfg *config.Config) (model.Writer, error) {
		return NewTextWriter(cfg.OutputDir), nil
	})
	factory.RegisterWriter("csv", func(cfg *config.Config) (model.Writer, error) {
		return NewCSVWriter(cfg.OutputDir), nil
	})
	factory.RegisterWriter("json", func(cfg *config.Config) (model.Writer, error) {
		return NewJSONWriter(cfg.OutputDir), nil
	})
	factory.RegisterWriter("gob", func(cfg *config.Config) (model.Writer, error) {
		return NewGobWriter(cfg.OutputDir), nil
	})
}

// create opens name inside dir for writing, creating dir when needed.
func create(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file '%s': %w", path, err)
	}
	return f, nil
}
