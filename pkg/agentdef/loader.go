package agentdef

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// SelectorFilename and AggregatorFilename name the two reserved definition
// files excluded from the regular agent roster.
const (
	SelectorFilename   = "selector.toml"
	AggregatorFilename = "aggregator.toml"
)

// LoadAgents loads every regular agent definition from builtinFS, then
// overlays any found under customDir (when non-empty and present). A
// custom file whose `name` matches a built-in overrides it outright; a
// custom file naming a new agent is appended. Files ending in
// selector.toml/aggregator.toml are excluded from both passes. Individual
// file failures are collected as LoadError and do not abort the load —
// the caller continues with whatever did load.
func LoadAgents(builtinFS fs.FS, customDir string) ([]model.AgentDefinition, []model.LoadError) {
	builtin, errs := loadAgentsFromFS(builtinFS, "<builtin>")

	if customDir == "" {
		return builtin, errs
	}
	if info, err := os.Stat(customDir); err != nil || !info.IsDir() {
		return builtin, errs
	}

	custom, customErrs := loadAgentsFromFS(os.DirFS(customDir), customDir)
	errs = append(errs, customErrs...)

	merged := make(map[string]model.AgentDefinition, len(builtin)+len(custom))
	var order []string
	for _, a := range builtin {
		merged[a.Name] = a
		order = append(order, a.Name)
	}
	for _, a := range custom {
		if _, exists := merged[a.Name]; !exists {
			order = append(order, a.Name)
		}
		merged[a.Name] = a
	}

	result := make([]model.AgentDefinition, 0, len(order))
	for _, name := range order {
		result = append(result, merged[name])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, errs
}

func loadAgentsFromFS(dirFS fs.FS, sourceLabel string) ([]model.AgentDefinition, []model.LoadError) {
	var defs []model.AgentDefinition
	var errs []model.LoadError

	entries, err := fs.Glob(dirFS, "*.toml")
	if err != nil {
		return nil, []model.LoadError{{File: sourceLabel, Cause: err.Error()}}
	}

	for _, name := range entries {
		if isReservedFilename(name) {
			continue
		}
		var raw tomlAgent
		if _, err := toml.DecodeFS(dirFS, name, &raw); err != nil {
			errs = append(errs, model.LoadError{File: filepath.Join(sourceLabel, name), Cause: err.Error()})
			continue
		}
		def, err := raw.toDefinition()
		if err != nil {
			errs = append(errs, model.LoadError{Name: raw.Name, File: filepath.Join(sourceLabel, name), Cause: err.Error()})
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs
}

func isReservedFilename(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, SelectorFilename) || strings.HasSuffix(base, AggregatorFilename)
}

// LoadSelector loads the selector definition, preferring customDir's
// selector.toml over the built-in one when present.
func LoadSelector(builtinFS fs.FS, customDir string) (model.SelectorDefinition, error) {
	if customDir != "" {
		path := filepath.Join(customDir, SelectorFilename)
		if _, err := os.Stat(path); err == nil {
			var raw tomlSelector
			if _, err := toml.DecodeFile(path, &raw); err != nil {
				return model.SelectorDefinition{}, fmt.Errorf("loading %s: %w", path, err)
			}
			return raw.toDefinition()
		}
	}

	var raw tomlSelector
	if _, err := toml.DecodeFS(builtinFS, SelectorFilename, &raw); err != nil {
		return model.SelectorDefinition{}, fmt.Errorf("loading built-in %s: %w", SelectorFilename, err)
	}
	return raw.toDefinition()
}

// LoadAggregator loads the aggregator definition, preferring customDir's
// aggregator.toml over the built-in one when present.
func LoadAggregator(builtinFS fs.FS, customDir string) (model.AggregatorDefinition, error) {
	if customDir != "" {
		path := filepath.Join(customDir, AggregatorFilename)
		if _, err := os.Stat(path); err == nil {
			var raw tomlAggregator
			if _, err := toml.DecodeFile(path, &raw); err != nil {
				return model.AggregatorDefinition{}, fmt.Errorf("loading %s: %w", path, err)
			}
			return raw.toDefinition()
		}
	}

	var raw tomlAggregator
	if _, err := toml.DecodeFS(builtinFS, AggregatorFilename, &raw); err != nil {
		return model.AggregatorDefinition{}, fmt.Errorf("loading built-in %s: %w", AggregatorFilename, err)
	}
	return raw.toDefinition()
}
