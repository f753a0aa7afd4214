package game

// Unit type IDs of the standard catalog.
const (
	TownCenter = "town_center"
	Worker     = "worker"
	Soldier    = "soldier"
	Archer     = "archer"
	Knight     = "knight"
	Catapult   = "catapult"
	Tower      = "tower"
	Scout      = "scout"
)

var standardIDs = []string{TownCenter, Worker, Soldier, Archer, Knight, Catapult, Tower, Scout}

// damageAll deals d to every standard type, with overrides.
func damageAll(d int, overrides map[string]int) map[string]int {
	table := make(map[string]int, len(standardIDs))
	for _, id := range standardIDs {
		table[id] = d
	}
	for id, v := range overrides {
		table[id] = v
	}
	return table
}

// NewStandardCatalog returns the built-in eight unit type catalog with a gold
// map object and the "standard" (15x20, eight players) and "duel" scenarios.
func NewStandardCatalog() *Catalog {
	c := NewCatalog()
	types := []*UnitType{
		{
			ID: TownCenter, ExternalID: 0, Name: "Town Center", HP: 50, ValuePerRound: 5, ValueOnDestruction: 20,
			Produce: Radius{1, 1}, CanProduce: true,
			Builds: []string{Worker, Soldier, Archer, Knight, Scout},
		},
		{
			ID: Worker, ExternalID: 1, Name: "Worker", HP: 10, Value: 5, ValuePerRound: 2, ValueOnDestruction: 3,
			Walk: Radius{1, 1}, Produce: Radius{1, 1}, CanProduce: true,
			Builds: []string{TownCenter, Tower, Catapult},
		},
		{
			ID: Soldier, ExternalID: 2, Name: "Soldier", HP: 20, Value: 10, ValueOnDestruction: 5,
			Walk: Radius{1, 1}, Fight: Radius{1, 1}, CanFight: true,
			Damage: damageAll(5, map[string]int{Tower: 3}),
		},
		{
			ID: Archer, ExternalID: 3, Name: "Archer", HP: 12, Value: 12, ValueOnDestruction: 6,
			Walk: Radius{1, 1}, Fight: Radius{2, 3}, CanFight: true,
			Damage: damageAll(4, map[string]int{Tower: 2, TownCenter: 2}),
		},
		{
			ID: Knight, ExternalID: 4, Name: "Knight", HP: 30, Value: 20, ValueOnDestruction: 10,
			Walk: Radius{1, 2}, Fight: Radius{1, 1}, CanFight: true,
			Damage: damageAll(8, nil),
		},
		{
			ID: Catapult, ExternalID: 5, Name: "Catapult", HP: 15, Value: 25, ValueOnDestruction: 12,
			Walk: Radius{1, 1}, Fight: Radius{2, 4}, CanFight: true,
			Damage: damageAll(3, map[string]int{Tower: 12, TownCenter: 12}),
		},
		{
			ID: Tower, ExternalID: 6, Name: "Tower", HP: 40, Value: 15, ValueOnDestruction: 8,
			Fight: Radius{1, 2}, CanFight: true,
			Damage: damageAll(4, map[string]int{Tower: 0, TownCenter: 0}),
		},
		{
			ID: Scout, ExternalID: 7, Name: "Scout", HP: 8, Value: 6, ValueOnDestruction: 2,
			Walk: Radius{1, 3}, Fight: Radius{1, 1}, CanFight: true,
			Damage: damageAll(2, nil),
		},
	}
	for _, t := range types {
		if err := c.AddUnitType(t); err != nil {
			panic(err)
		}
	}
	if err := c.AddMapObjectType(&MapObjectType{ID: GoldType, Name: "Gold", ValuePerRound: 3}); err != nil {
		panic(err)
	}
	scenarios := []*Scenario{
		{
			ID: "standard", Name: "Standard", StartMoney: 20, MaxPlayers: 8, Width: 15, Height: 20,
			Diagonal: true, StartMinDistance: 5, Seed: 1, GoldCount: 6, StartUnit: TownCenter,
		},
		{
			ID: "duel", Name: "Duel", StartMoney: 20, MaxPlayers: 2, Width: 10, Height: 10,
			StartMinDistance: 6, Seed: 7, GoldCount: 2, StartUnit: TownCenter,
		},
	}
	for _, s := range scenarios {
		if err := c.AddScenario(s); err != nil {
			panic(err)
		}
	}
	return c
}
