package config

import (
	"fmt"
	"os"

	"territory/game"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	UnitTypes      []yaml.Node `yaml:"unitTypes"`
	MapObjectTypes []yaml.Node `yaml:"mapObjectTypes"`
	Scenarios      []yaml.Node `yaml:"scenarios"`
}

// LoadCatalog reads unit types, map object types and scenarios from the YAML
// file at path into c. Entries that fail to decode or register are logged
// and skipped; whatever loaded stays in c. The returned count is the number
// of skipped entries.
func LoadCatalog(path string, c *game.Catalog) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data, c)
}

func ParseCatalog(data []byte, c *game.Catalog) (int, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse catalog: %w", err)
	}

	skipped := 0
	for _, node := range file.UnitTypes {
		var t game.UnitType
		if err := node.Decode(&t); err != nil {
			log.Error().Err(err).Int("line", node.Line).Msg("skipping unit type")
			skipped++
			continue
		}
		if err := c.AddUnitType(&t); err != nil {
			log.Error().Err(err).Int("line", node.Line).Msg("skipping unit type")
			skipped++
		}
	}
	for _, node := range file.MapObjectTypes {
		var t game.MapObjectType
		if err := node.Decode(&t); err != nil {
			log.Error().Err(err).Int("line", node.Line).Msg("skipping map object type")
			skipped++
			continue
		}
		if err := c.AddMapObjectType(&t); err != nil {
			log.Error().Err(err).Int("line", node.Line).Msg("skipping map object type")
			skipped++
		}
	}
	// scenarios refer to unit types, so they come last
	for _, node := range file.Scenarios {
		var s game.Scenario
		if err := node.Decode(&s); err != nil {
			log.Error().Err(err).Int("line", node.Line).Msg("skipping scenario")
			skipped++
			continue
		}
		if err := c.AddScenario(&s); err != nil {
			log.Error().Err(err).Int("line", node.Line).Msg("skipping scenario")
			skipped++
		}
	}

	if err := c.Validate(); err != nil {
		log.Error().Err(err).Msg("catalog has dangling references")
	}
	return skipped, nil
}
