package game

import "golang.org/x/exp/slices"

// Radius is an inclusive distance band.
type Radius struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether d lies within [Min, Max].
func (r Radius) Contains(d int) bool {
	return d >= r.Min && d <= r.Max
}

// UnitType describes a kind of unit. Types are immutable once registered in a Catalog.
type UnitType struct {
	ID                 string         `yaml:"id"`
	ExternalID         int            `yaml:"externalId"` // numeric id used by the subprocess protocol and replay files
	Name               string         `yaml:"name"`
	HP                 int            `yaml:"hp"`
	Value              int            `yaml:"value"`              // production cost
	ValuePerRound      int            `yaml:"valuePerRound"`      // passive income paid to the owner at the start of its turn
	ValueOnDestruction int            `yaml:"valueOnDestruction"` // paid to the attacker's owner when a unit of this type is destroyed
	Walk               Radius         `yaml:"walk"`
	Produce            Radius         `yaml:"produce"`
	Fight              Radius         `yaml:"fight"`
	CanFight           bool           `yaml:"canFight"`
	CanProduce         bool           `yaml:"canProduce"`
	Damage             map[string]int `yaml:"damage"` // opposing unit type ID -> damage dealt
	Builds             []string       `yaml:"builds"` // unit type IDs this type can produce
}

// DamageAgainst returns the damage this type deals to other, and whether it can fight it at all.
func (t *UnitType) DamageAgainst(other *UnitType) (int, bool) {
	if !t.CanFight || other == nil {
		return 0, false
	}
	d, ok := t.Damage[other.ID]
	return d, ok
}

// CanBuild reports whether this type may produce other.
func (t *UnitType) CanBuild(other *UnitType) bool {
	if !t.CanProduce || other == nil {
		return false
	}
	return slices.Contains(t.Builds, other.ID)
}

// MapObjectType describes a static map object such as a gold node.
type MapObjectType struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	ValuePerRound int    `yaml:"valuePerRound"` // paid to the owner of a unit standing on the object
}

// GoldType is the map object type ID of gold nodes.
const GoldType = "gold"
