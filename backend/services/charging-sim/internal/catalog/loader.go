package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"chargesim/backend/services/charging-sim/internal/models"
)

//go:embed stations.json
var defaultCatalog []byte

// Load reads the catalog at path, or the built-in catalog when path is empty.
// JSON and YAML are both accepted.
func Load(path string) (*Store, error) {
	data := defaultCatalog
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes a catalog document and validates it.
func Parse(data []byte) (*Store, error) {
	var stations []models.Station
	if err := yaml.Unmarshal(data, &stations); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return NewStore(stations)
}

// Validate checks the structural rules every catalog must satisfy.
func Validate(stations []models.Station) error {
	if len(stations) == 0 {
		return errors.New("catalog: no stations")
	}
	seen := make(map[string]struct{}, len(stations))
	for i, st := range stations {
		if strings.TrimSpace(st.ID) == "" {
			return fmt.Errorf("catalog: station #%d has empty id", i)
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("catalog: duplicate station id %q", st.ID)
		}
		seen[st.ID] = struct{}{}

		if len(st.Connectors) == 0 {
			return fmt.Errorf("catalog: station %q has no connectors", st.ID)
		}
		connectors := make(map[string]struct{}, len(st.Connectors))
		for j, c := range st.Connectors {
			if strings.TrimSpace(c.ID) == "" {
				return fmt.Errorf("catalog: station %q connector #%d has empty id", st.ID, j)
			}
			if _, dup := connectors[c.ID]; dup {
				return fmt.Errorf("catalog: station %q has duplicate connector id %q", st.ID, c.ID)
			}
			connectors[c.ID] = struct{}{}
		}
	}
	return nil
}
