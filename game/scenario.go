package game

import "fmt"

// Scenario holds the immutable setup of one game.
type Scenario struct {
	ID               string     `yaml:"id"`
	Name             string     `yaml:"name"`
	StartMoney       int        `yaml:"startMoney"`
	MaxPlayers       int        `yaml:"maxPlayers"`
	Width            int        `yaml:"width"`
	Height           int        `yaml:"height"`
	Diagonal         bool       `yaml:"diagonal"`         // Chebyshev adjacency when set, Manhattan otherwise
	StartMinDistance int        `yaml:"startMinDistance"` // minimum Chebyshev distance between start units
	Seed             uint64     `yaml:"seed"`
	GoldCount        int        `yaml:"goldCount"`
	Gold             []Position `yaml:"gold"`            // explicit gold node positions, the rest are drawn from Seed
	MultipleActions  bool       `yaml:"multipleActions"` // units may act more than once per round
	StartUnit        string     `yaml:"startUnit"`       // unit type ID placed for every player
}

// Validate checks the scenario against the unit types registered in c.
func (s *Scenario) Validate(c *Catalog) error {
	if s.ID == "" {
		return fmt.Errorf("scenario has no id")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("scenario %s: invalid map size %dx%d", s.ID, s.Width, s.Height)
	}
	if s.MaxPlayers <= 0 {
		return fmt.Errorf("scenario %s: maxPlayers must be positive", s.ID)
	}
	if len(s.Gold) > s.GoldCount {
		return fmt.Errorf("scenario %s: %d gold positions given for %d gold nodes", s.ID, len(s.Gold), s.GoldCount)
	}
	for _, p := range s.Gold {
		if p.X < 0 || p.Y < 0 || p.X >= s.Width || p.Y >= s.Height {
			return fmt.Errorf("scenario %s: gold position %v outside the map", s.ID, p)
		}
	}
	if _, ok := c.UnitType(s.StartUnit); !ok {
		return fmt.Errorf("scenario %s: unknown start unit type %q", s.ID, s.StartUnit)
	}
	return nil
}
