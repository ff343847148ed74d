package config

import (
	"fmt"
	"os"

	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"gopkg.in/yaml.v3"
)

// LoadSettingsSeed reads a YAML file of first-run setting overrides, e.g.
//
//	ignore_search: true
//	excluded_domains:
//	  - mail.example.com
//
// Returns an os.ErrNotExist-wrapped error if the file is absent (caller
// silently skips in that case).
func LoadSettingsSeed(path string) (dedup.Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dedup.Patch{}, fmt.Errorf("settings seed: %w", err)
	}
	var patch dedup.Patch
	if err := yaml.Unmarshal(data, &patch); err != nil {
		return dedup.Patch{}, fmt.Errorf("settings seed: %w", err)
	}
	return patch, nil
}
