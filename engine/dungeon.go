package engine

import (
	"sort"

	"github.com/nathoo/delveforge/types"
)

// GenerateFiveRoomDungeon produces a dungeon.5room.v1 record. Rooms follow
// the progression table's default order unless the caller supplies an
// override slot list. Each room's level is the base level shifted by the
// slot's difficulty delta and clamped to the budget table's key range. All
// rooms share this generator's single random stream, so room N's draws
// always precede room N+1's.
func (g *EncounterGenerator) GenerateFiveRoomDungeon(baseLevel int, biome string, slots []string) (types.DungeonRecord, error) {
	if len(slots) == 0 {
		slots = g.defaultSlotOrder()
	}

	rooms := make([]types.Room, 0, len(slots))
	for i, slot := range slots {
		delta := g.tables.Progression.Slots[slot].DifficultyDelta
		level := clampLevel(baseLevel+delta, g.tables.Budgets)

		enc, err := g.generateEncounter(level, biome, slot)
		if err != nil {
			return types.DungeonRecord{}, err
		}
		rooms = append(rooms, types.Room{
			Slot:      slot,
			RoomIndex: i + 1,
			Encounter: enc,
		})
	}

	return types.DungeonRecord{
		Schema:    DungeonSchema,
		Seed:      g.rng.Seed(),
		Biome:     biome,
		BaseLevel: baseLevel,
		Rooms:     rooms,
	}, nil
}

// defaultSlotOrder returns the progression's default order, or the slot
// keys sorted by name when no order is configured.
func (g *EncounterGenerator) defaultSlotOrder() []string {
	if len(g.tables.Progression.DefaultOrder) > 0 {
		return g.tables.Progression.DefaultOrder
	}
	keys := make([]string, 0, len(g.tables.Progression.Slots))
	for k := range g.tables.Progression.Slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clampLevel bounds a room level to the minimum and maximum level keys in
// the budget table. With no budgets configured, levels are only floored
// at 1.
func clampLevel(level int, budgets types.Budgets) int {
	if len(budgets.Values) == 0 {
		if level < 1 {
			return 1
		}
		return level
	}

	first := true
	var min, max int
	for k := range budgets.Values {
		if first {
			min, max = k, k
			first = false
			continue
		}
		if k < min {
			min = k
		}
		if k > max {
			max = k
		}
	}
	if level < min {
		return min
	}
	if level > max {
		return max
	}
	return level
}
