package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a platform descriptor from a YAML file.
func Load(path string) (Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Platform{}, fmt.Errorf("failed to read platform file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML platform descriptor.
func Parse(data []byte) (Platform, error) {
	var p Platform
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Platform{}, fmt.Errorf("failed to parse platform descriptor: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Platform{}, err
	}
	return p, nil
}

// Resolve returns the preset with the given name, or loads the
// descriptor at the path when no preset matches and the argument names
// an existing file.
func Resolve(nameOrPath string) (Platform, error) {
	if p, ok := ByName(nameOrPath); ok {
		return p, nil
	}
	if _, err := os.Stat(nameOrPath); err == nil {
		return Load(nameOrPath)
	}
	return Platform{}, fmt.Errorf("unknown platform %q (presets: %v)", nameOrPath, Names())
}
