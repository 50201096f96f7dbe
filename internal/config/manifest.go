package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"versiond/internal/manifest"
)

const SupportedSchema = "v1"

// LoadManifest parses a resources YAML, validates schema_version and the
// resource list, and returns the parsed file and an absolute path to the
// source config (if set).
func LoadManifest(path string) (manifest.File, string, error) {
	var m manifest.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, "", err
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, "", err
	}
	if m.SchemaVersion == "" {
		m.SchemaVersion = SupportedSchema
	}
	if m.SchemaVersion != SupportedSchema {
		return m, "", fmt.Errorf("manifest schema_version %q not supported (want %q)", m.SchemaVersion, SupportedSchema)
	}
	if err := validateManifest(&m); err != nil {
		return m, "", err
	}
	confPath := m.Source.Config
	if confPath != "" && !filepath.IsAbs(confPath) {
		confPath = filepath.Join(filepath.Dir(path), confPath)
	}
	return m, confPath, nil
}

func validateManifest(m *manifest.File) error {
	for i, r := range m.Resources {
		if r.Name == "" {
			return fmt.Errorf("manifest: resource %d has no name", i)
		}
		if r.Kind == "" {
			m.Resources[i].Kind = r.Name
		}
		// a missing transform_base is reported by the pipelines at request
		// time, like any other misconfigured parser
	}
	names := lo.Map(m.Resources, func(r manifest.ResourceSpec, _ int) string { return r.Name })
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return fmt.Errorf("manifest: duplicate resources %v", dups)
	}
	for _, s := range m.Sinks {
		for _, r := range s.Resources {
			if !lo.Contains(names, r) {
				return fmt.Errorf("manifest: sink %q references unknown resource %q", s.Name, r)
			}
		}
	}
	return nil
}
