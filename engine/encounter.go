// Package engine implements the seeded generators: weighted selection,
// candidate filtering, loot parcels, encounters, and five-room dungeons.
// All generation is a pure function of (tables, seed, inputs); a generator
// owns one sequential random stream and must not be shared across
// goroutines without external serialization.
package engine

import (
	"github.com/nathoo/delveforge/types"
)

// Schema tags on encounter output records.
const (
	EncounterSchema = "encounter.v1"
	DungeonSchema   = "dungeon.5room.v1"
)

// Encounter types produced by the type tables.
const (
	TypeCombat      = "combat"
	TypePuzzle      = "puzzle"
	TypeSocial      = "social"
	TypeExploration = "exploration"
	TypeEmpty       = "empty"
)

// defaultDie is the die size for encounter-type tables that do not set one.
const defaultDie = 20

// EncounterGenerator produces encounters and five-room dungeons from loaded
// tables and a seeded random stream. The id indexes are built once at
// construction; the tables are treated as read-only thereafter.
type EncounterGenerator struct {
	tables *types.Tables
	rng    *RNG

	monsters map[string]types.MonsterDef
	groups   map[string]types.EnemyGroupDef
	factions map[string]types.FactionDef
	presets  map[string]types.EnvironmentPresetDef
}

// NewEncounterGenerator creates an encounter generator over the given
// tables and seed.
func NewEncounterGenerator(tables *types.Tables, seed int64) *EncounterGenerator {
	g := &EncounterGenerator{
		tables:   tables,
		rng:      NewRNG(seed),
		monsters: map[string]types.MonsterDef{},
		groups:   map[string]types.EnemyGroupDef{},
		factions: map[string]types.FactionDef{},
		presets:  map[string]types.EnvironmentPresetDef{},
	}
	for _, m := range tables.Monsters {
		g.monsters[m.ID] = m
	}
	for _, gr := range tables.EnemyGroups {
		g.groups[gr.ID] = gr
	}
	for _, f := range tables.Factions {
		g.factions[f.ID] = f
	}
	for _, p := range tables.Presets {
		g.presets[p.ID] = p
	}
	return g
}

// Seed returns the seed this generator was created from.
func (g *EncounterGenerator) Seed() int64 {
	return g.rng.Seed()
}

// GenerateSingleEncounter produces one encounter wrapped in the
// encounter.v1 record.
func (g *EncounterGenerator) GenerateSingleEncounter(level int, biome, slot string) (types.EncounterRecord, error) {
	enc, err := g.generateEncounter(level, biome, slot)
	if err != nil {
		return types.EncounterRecord{}, err
	}
	return types.EncounterRecord{
		Schema:    EncounterSchema,
		Seed:      g.rng.Seed(),
		Encounter: enc,
	}, nil
}

// generateEncounter picks an encounter type for the slot/biome and
// dispatches to the matching builder.
func (g *EncounterGenerator) generateEncounter(level int, biome, slot string) (types.Encounter, error) {
	switch g.chooseEncounterType(slot, biome) {
	case TypeCombat:
		return g.generateCombat(level, biome, slot)
	case TypePuzzle:
		return g.generateNoncombat(level, biome, slot, TypePuzzle, g.tables.Puzzles)
	case TypeSocial:
		return g.generateNoncombat(level, biome, slot, TypeSocial, g.tables.Socials)
	case TypeExploration:
		return g.generateNoncombat(level, biome, slot, TypeExploration, g.tables.Explores)
	default:
		return g.emptyEncounter(level, biome, slot), nil
	}
}

// chooseEncounterType filters the type tables by slot/biome (falling back
// to the unfiltered list), picks one table uniformly, rolls its die, and
// maps the roll into the table's rows. Two draws, always in that order.
func (g *EncounterGenerator) chooseEncounterType(slot, biome string) string {
	all := g.tables.TypeTables
	if len(all) == 0 {
		return TypeCombat
	}

	var candidates []types.TypeTable
	for _, t := range all {
		if listMatches(t.Biomes, biome) && listMatches(t.Slots, slot) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		candidates = all
	}

	table := candidates[g.rng.Pick(len(candidates))]
	die := table.Die
	if die < 1 {
		die = defaultDie
	}
	roll := g.rng.Roll(die)

	for _, row := range table.Rows {
		if row.Min <= roll && roll <= row.Max {
			return row.Type
		}
	}
	return TypeCombat
}

// generateCombat builds a combat encounter: filtered weighted template
// pick, enemy group instantiation, environment, merged tags, and a
// sub-seeded loot parcel. An empty candidate pool is a hard failure;
// combat cannot degrade to empty.
func (g *EncounterGenerator) generateCombat(level int, biome, slot string) (types.Encounter, error) {
	if len(g.tables.Templates) == 0 {
		return types.Encounter{}, &NoCandidatesError{
			Level: level, Biome: biome, Slot: slot,
			Msg: "no combat encounter templates defined",
		}
	}

	var candidates []types.TemplateDef
	for _, tpl := range g.tables.Templates {
		if gateMatches(tpl.Gate, level, biome, slot) {
			candidates = append(candidates, tpl)
		}
	}
	if len(candidates) == 0 {
		return types.Encounter{}, &NoCandidatesError{Level: level, Biome: biome, Slot: slot}
	}

	weights := make([]float64, len(candidates))
	for i, tpl := range candidates {
		w := tpl.Weight * g.factionWeight(tpl.Factions, biome, slot)
		if w < 0 {
			w = 0
		}
		weights[i] = w
	}
	template := candidates[g.rng.WeightedIndex(weights)]

	enemies, err := g.instantiateEnemies(template.EnemyGroupID)
	if err != nil {
		return types.Encounter{}, err
	}

	env := g.selectEnvironment(biome, template.EnvironmentTags, "")

	loot, err := g.rollLoot(level, template.LootRolls)
	if err != nil {
		return types.Encounter{}, err
	}

	tplID := template.ID
	return types.Encounter{
		Difficulty:  level,
		Type:        TypeCombat,
		Slot:        slot,
		Biome:       biome,
		Enemies:     enemies,
		Environment: env,
		Tags:        mergeTags(template.Tags, env.Tags),
		Loot:        loot,
		Meta: types.Meta{
			TemplateID: &tplID,
			Notes:      template.Notes,
		},
	}, nil
}

// instantiateEnemies resolves an enemy group into concrete enemy lines,
// drawing a count for each entry and skipping entries that roll zero.
// Monster metadata falls back to the raw id when the roster has no entry.
func (g *EncounterGenerator) instantiateEnemies(groupID string) ([]types.EnemyLine, error) {
	if groupID == "" {
		return nil, configErrorf("combat template missing enemy_group_id")
	}
	group, ok := g.groups[groupID]
	if !ok {
		return nil, configErrorf("enemy group not found: %s", groupID)
	}

	out := []types.EnemyLine{}
	for _, entry := range group.Enemies {
		count := g.rng.IntBetween(entry.Count.Min, entry.Count.Max)
		if count <= 0 {
			continue
		}

		line := types.EnemyLine{
			MonsterID: entry.MonsterID,
			Name:      entry.MonsterID,
			Count:     count,
			Faction:   group.Faction,
			Tags:      []string{},
		}
		if m, ok := g.monsters[entry.MonsterID]; ok {
			line.Name = m.Name
			cr := m.CR
			line.CR = &cr
			if m.Faction != "" {
				line.Faction = m.Faction
			}
			if len(m.Tags) > 0 {
				line.Tags = m.Tags
			}
		}
		out = append(out, line)
	}
	return out, nil
}

// factionWeight multiplies the per-faction biome and slot modifiers for
// the template's factions. A misconfigured product that lands at or below
// zero resets to 1.0 so a single bad modifier cannot zero out the whole
// candidate pool.
func (g *EncounterGenerator) factionWeight(factionIDs []string, biome, slot string) float64 {
	if len(factionIDs) == 0 || len(g.factions) == 0 {
		return 1.0
	}
	weight := 1.0
	for _, fid := range factionIDs {
		f, ok := g.factions[fid]
		if !ok {
			continue
		}
		if m, ok := f.Modifiers.Biomes[biome]; ok {
			weight *= m
		}
		if m, ok := f.Modifiers.Slots[slot]; ok {
			weight *= m
		}
	}
	if weight <= 0 {
		return 1.0
	}
	return weight
}

// generateNoncombat builds a puzzle, social, or exploration encounter from
// the given entry table. Faction modifiers do not apply here. Any gap
// (missing table, no entries surviving the filter) degrades silently to an
// empty encounter.
func (g *EncounterGenerator) generateNoncombat(level int, biome, slot, encType string, entries []types.NoncombatEntryDef) (types.Encounter, error) {
	if len(entries) == 0 {
		return g.emptyEncounter(level, biome, slot), nil
	}

	var candidates []types.NoncombatEntryDef
	for _, e := range entries {
		if gateMatches(e.Gate, level, biome, slot) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return g.emptyEncounter(level, biome, slot), nil
	}

	weights := make([]float64, len(candidates))
	for i, e := range candidates {
		weights[i] = e.Weight
	}
	entry := candidates[g.rng.WeightedIndex(weights)]

	env := g.selectEnvironment(biome, entry.EnvironmentTags, entry.EnvironmentID)

	var loot *types.LootRecord
	if entry.AwardLoot {
		var err error
		loot, err = g.rollLoot(level, entry.LootRolls)
		if err != nil {
			return types.Encounter{}, err
		}
	}

	entryID := entry.ID
	return types.Encounter{
		Difficulty:  level,
		Type:        encType,
		Slot:        slot,
		Biome:       biome,
		Enemies:     []types.EnemyLine{},
		Environment: env,
		Tags:        mergeTags(entry.Tags, env.Tags),
		Loot:        loot,
		Meta: types.Meta{
			NoncombatID: &entryID,
			Notes:       entry.Notes,
		},
	}, nil
}

// emptyEncounter is the universal fallback terminal state: no enemies,
// neutral environment, no tags, no loot.
func (g *EncounterGenerator) emptyEncounter(level int, biome, slot string) types.Encounter {
	return types.Encounter{
		Difficulty:  level,
		Type:        TypeEmpty,
		Slot:        slot,
		Biome:       biome,
		Enemies:     []types.EnemyLine{},
		Environment: neutralEnvironment(),
		Tags:        []string{},
	}
}

// rollLoot generates a reward parcel with a freshly drawn sub-seed, so
// loot is reproducible from the parent stream position while keeping the
// loot generator's own stream independent.
func (g *EncounterGenerator) rollLoot(level, rolls int) (*types.LootRecord, error) {
	sub := NewLootGenerator(g.tables.Loot, g.rng.SubSeed())
	record, err := sub.Generate(level, rolls)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
