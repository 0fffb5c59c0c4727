package config

import (
	"fmt"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// Resolve builds the effective Config from the five layers spec.md §6
// names, lowest to highest precedence: built-in defaults, the user's
// global config file, the project's pyproject.toml [tool.hachimoku] table,
// the project's own .hachimoku/config.toml, and CLI overrides. workDir is
// where the ancestor search for the project layers starts.
func Resolve(workDir string, overrides Overrides) (*model.Config, error) {
	accum := defaultLayer()

	userPath, err := UserConfigPath()
	if err != nil {
		return nil, fmt.Errorf("resolving user config path: %w", err)
	}
	if l, ok, err := loadTOMLLayer(userPath); err != nil {
		return nil, fmt.Errorf("loading user config %s: %w", userPath, err)
	} else if ok {
		if err := mergeLayer(&accum, l); err != nil {
			return nil, fmt.Errorf("merging user config %s: %w", userPath, err)
		}
	}

	if path, ok := FindPyprojectToml(workDir); ok {
		l, found, err := loadPyprojectLayer(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if found {
			if err := mergeLayer(&accum, l); err != nil {
				return nil, fmt.Errorf("merging %s: %w", path, err)
			}
		}
	}

	if path, ok := FindProjectConfigFile(workDir); ok {
		l, found, err := loadTOMLLayer(path)
		if err != nil {
			return nil, fmt.Errorf("loading project config %s: %w", path, err)
		}
		if found {
			if err := mergeLayer(&accum, l); err != nil {
				return nil, fmt.Errorf("merging project config %s: %w", path, err)
			}
		}
	}

	if err := mergeLayer(&accum, overrides.toLayer()); err != nil {
		return nil, fmt.Errorf("merging CLI overrides: %w", err)
	}

	cfg := accum.toModelConfig()
	return &cfg, nil
}
