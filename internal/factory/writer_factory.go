package factory

import (
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/model"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// WriterFactory builds a writer from the application config.
type WriterFactory func(cfg *config.Config) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Registered reports whether a writer type is known.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Create builds every enabled writer listed in the config. A writer that
// fails to initialize is skipped with a warning so the others still run.
func Create(cfg *config.Config) ([]model.Writer, error) {
	var writers []model.Writer

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}

		factory, ok := registry[def.Type]
		if !ok {
			return nil, fmt.Errorf("unknown writer type: '%s'", def.Type)
		}

		writer, err := factory(cfg)
		if err != nil {
			log.WithError(err).WithField("writer", def.Type).Warn("Failed to create writer, skipping")
			continue
		}
		log.WithField("writer", def.Type).Debug("Writer created")
		writers = append(writers, writer)
	}

	return writers, nil
}
