package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FindScenarios returns the scenario files under dir, recursively, in
// lexical order. A file path is returned as is. Only files with a
// top-level steps list are scenarios, so pack YAML files kept beside them
// are skipped.
func FindScenarios(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario path: %w", err)
	}
	if !info.IsDir() {
		return []string{dir}, nil
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
		default:
			return nil
		}
		ok, err := isScenario(path)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func isScenario(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	var header struct {
		Steps []any `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		// Let LoadScenario report the parse error.
		return true, nil
	}
	return header.Steps != nil, nil
}
