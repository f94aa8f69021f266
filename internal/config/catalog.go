package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/remnawizard/pkg/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Keys that would collide with the step controls sharing the same prefix.
var (
	reservedInternal = map[string]bool{"reset": true, "next": true}
	reservedExternal = map[string]bool{"skip": true}
)

// DefaultCatalog returns the embedded squad catalog.
func DefaultCatalog() domain.Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (domain.Catalog, error) {
	var c domain.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := validateSquads("internal", c.Internal, reservedInternal); err != nil {
		return domain.Catalog{}, err
	}
	if err := validateSquads("external", c.External, reservedExternal); err != nil {
		return domain.Catalog{}, err
	}
	return c, nil
}

func validateSquads(kind string, squads []domain.Squad, reserved map[string]bool) error {
	keys := make(map[string]bool, len(squads))
	ids := make(map[string]bool, len(squads))
	for i, sq := range squads {
		switch {
		case sq.Key == "" || sq.ID == "" || sq.Name == "":
			return fmt.Errorf("%s squad %d: key, name and id are required", kind, i)
		case reserved[sq.Key]:
			return fmt.Errorf("%s squad %d: key %q is reserved", kind, i, sq.Key)
		case keys[sq.Key]:
			return fmt.Errorf("%s squad %d: duplicate key %q", kind, i, sq.Key)
		case ids[sq.ID]:
			return fmt.Errorf("%s squad %d: duplicate id %q", kind, i, sq.ID)
		}
		keys[sq.Key] = true
		ids[sq.ID] = true
	}
	return nil
}
