package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/narrative-engine/pkg/scenario"
)

// Catalogs reads catalog files from <dataDir>/scenarios. Both save backends
// embed it.
type Catalogs struct {
	dataDir string
	logger  *slog.Logger
}

func NewCatalogs(dataDir string, logger *slog.Logger) Catalogs {
	if dataDir == "" {
		dataDir = "./data"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Catalogs{dataDir: dataDir, logger: logger}
}

func isCatalogFile(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ListScenarios maps each readable catalog's name to its file name.
// Broken catalogs are logged and skipped.
func (c Catalogs) ListScenarios(ctx context.Context) (map[string]string, error) {
	scenariosDir := filepath.Join(c.dataDir, "scenarios")
	scenarios := make(map[string]string)

	err := filepath.WalkDir(scenariosDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isCatalogFile(path) {
			return nil
		}

		s, err := scenario.LoadFile(path)
		if err != nil {
			c.logger.Warn("Failed to load scenario file", "path", path, "error", err)
			return nil
		}

		scenarios[s.Name] = filepath.Base(path)
		return nil
	})

	if err != nil {
		c.logger.Error("Failed to walk scenarios directory", "error", err)
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	return scenarios, nil
}

// GetScenario loads and validates a catalog by file name.
func (c Catalogs) GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error) {
	path := filepath.Join(c.dataDir, "scenarios", filepath.Base(filename))
	c.logger.Debug("Loading scenario", "filename", filename, "full_path", path)

	s, err := scenario.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("scenario not found: %s", filename)
		}
		return nil, err
	}
	return s, nil
}
