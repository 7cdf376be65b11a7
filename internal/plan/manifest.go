package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadManifest читает Plan из YAML-манифеста:
//
//	features:
//	  - features/login.feature
//	expected:
//	  - "features/login.feature:valid password"
//
// Если expected не задан, он вычисляется через Discover по features.
func LoadManifest(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}

	if len(p.Expected) == 0 {
		if len(p.Features) == 0 {
			return nil, fmt.Errorf("%w: %s: neither features nor expected given", ErrInvalidManifest, path)
		}
		return Discover(p.Features)
	}

	return &p, nil
}

// WriteManifest сохраняет Plan в YAML.
func WriteManifest(path string, p *Plan) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
