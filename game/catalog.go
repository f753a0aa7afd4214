package game

import (
	"fmt"
	"sort"
)

// Catalog is the registry of unit types, map object types and scenarios.
// It is built once at startup and handed to every consumer.
type Catalog struct {
	unitTypes  map[string]*UnitType
	byExternal map[int]*UnitType
	mapObjects map[string]*MapObjectType
	scenarios  map[string]*Scenario
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		unitTypes:  make(map[string]*UnitType),
		byExternal: make(map[int]*UnitType),
		mapObjects: make(map[string]*MapObjectType),
		scenarios:  make(map[string]*Scenario),
	}
}

// AddUnitType registers t. IDs and external IDs must be unique.
func (c *Catalog) AddUnitType(t *UnitType) error {
	if t.ID == "" {
		return fmt.Errorf("unit type has no id")
	}
	if _, ok := c.unitTypes[t.ID]; ok {
		return fmt.Errorf("duplicate unit type %q", t.ID)
	}
	if other, ok := c.byExternal[t.ExternalID]; ok {
		return fmt.Errorf("unit type %q reuses external id %d of %q", t.ID, t.ExternalID, other.ID)
	}
	c.unitTypes[t.ID] = t
	c.byExternal[t.ExternalID] = t
	return nil
}

// AddMapObjectType registers t.
func (c *Catalog) AddMapObjectType(t *MapObjectType) error {
	if t.ID == "" {
		return fmt.Errorf("map object type has no id")
	}
	if _, ok := c.mapObjects[t.ID]; ok {
		return fmt.Errorf("duplicate map object type %q", t.ID)
	}
	c.mapObjects[t.ID] = t
	return nil
}

// AddScenario validates and registers s.
func (c *Catalog) AddScenario(s *Scenario) error {
	if err := s.Validate(c); err != nil {
		return err
	}
	if _, ok := c.scenarios[s.ID]; ok {
		return fmt.Errorf("duplicate scenario %q", s.ID)
	}
	c.scenarios[s.ID] = s
	return nil
}

func (c *Catalog) UnitType(id string) (*UnitType, bool) {
	t, ok := c.unitTypes[id]
	return t, ok
}

func (c *Catalog) UnitTypeByExternalID(id int) (*UnitType, bool) {
	t, ok := c.byExternal[id]
	return t, ok
}

func (c *Catalog) MapObjectType(id string) (*MapObjectType, bool) {
	t, ok := c.mapObjects[id]
	return t, ok
}

func (c *Catalog) Scenario(id string) (*Scenario, bool) {
	s, ok := c.scenarios[id]
	return s, ok
}

// UnitTypes returns all unit types ordered by external ID.
func (c *Catalog) UnitTypes() []*UnitType {
	types := make([]*UnitType, 0, len(c.unitTypes))
	for _, t := range c.unitTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ExternalID < types[j].ExternalID })
	return types
}

// Validate checks that every damage and production entry refers to a registered unit type.
func (c *Catalog) Validate() error {
	for _, t := range c.UnitTypes() {
		for id := range t.Damage {
			if _, ok := c.unitTypes[id]; !ok {
				return fmt.Errorf("unit type %q: damage entry for unknown type %q", t.ID, id)
			}
		}
		for _, id := range t.Builds {
			if _, ok := c.unitTypes[id]; !ok {
				return fmt.Errorf("unit type %q: builds unknown type %q", t.ID, id)
			}
		}
	}
	return nil
}
