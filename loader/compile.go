// Package loader loads generator content tables from a directory: JSON or
// YAML table files plus optional Lua content packs, compiled into typed,
// defaulted records and validated once at load time.
package loader

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nathoo/delveforge/types"
)

// Level-gate defaults applied when a table entry omits its bounds.
const (
	defaultMinLevel = 1
	defaultMaxLevel = 99
)

// Raw decode targets. Optional fields are pointers so that absence is
// distinguishable from an explicit zero; compile fills the defaults.

type rawLootData struct {
	CoinValues   map[string]float64 `json:"coin_values_gp"`
	LevelBudgets map[string]float64 `json:"level_budgets_gp"`
	MagicItems   []rawMagicItem     `json:"magic_items"`
	MundaneGoods []rawMundaneItem   `json:"mundane_goods"`
}

type rawMagicItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Rarity   *string  `json:"rarity"`
	GPValue  float64  `json:"gp_value"`
	Weight   *float64 `json:"weight"`
	MinLevel *int     `json:"min_level"`
	MaxLevel *int     `json:"max_level"`
}

type rawMundaneItem struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	GPValue float64  `json:"gp_value"`
	Weight  *float64 `json:"weight"`
}

type rawTypeTables struct {
	Tables []rawTypeTable `json:"tables"`
}

type rawTypeTable struct {
	ID     string       `json:"id"`
	Biomes []string     `json:"biomes"`
	Slots  []string     `json:"slots"`
	Die    *int         `json:"die"`
	Rows   []rawTypeRow `json:"rows"`
}

type rawTypeRow struct {
	Min  *int    `json:"min"`
	Max  *int    `json:"max"`
	Type *string `json:"type"`
}

type rawProgression struct {
	DefaultOrder []string              `json:"default_order"`
	Slots        map[string]rawSlotDef `json:"slots"`
}

type rawSlotDef struct {
	DifficultyDelta *int `json:"difficulty_delta"`
}

type rawBudgets struct {
	Budgets map[string]float64 `json:"budgets"`
}

type rawTemplates struct {
	Templates []rawTemplate `json:"encounter_tables"`
}

type rawTemplate struct {
	ID              string   `json:"id"`
	Biomes          []string `json:"biomes"`
	Slots           []string `json:"slots"`
	MinLevel        *int     `json:"min_level"`
	MaxLevel        *int     `json:"max_level"`
	Weight          *float64 `json:"weight"`
	Factions        []string `json:"factions"`
	EnemyGroupID    string   `json:"enemy_group_id"`
	EnvironmentTags []string `json:"environment_tags"`
	Tags            []string `json:"tags"`
	LootRolls       *int     `json:"loot_rolls"`
	Notes           string   `json:"notes"`
}

type rawGroups struct {
	Groups []rawGroup `json:"groups"`
}

type rawGroup struct {
	ID      string          `json:"id"`
	Faction string          `json:"faction"`
	Enemies []rawEnemyEntry `json:"enemies"`
}

type rawEnemyEntry struct {
	MonsterID string    `json:"monster_id"`
	Count     *rawCount `json:"count"`
}

type rawCount struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

type rawMonsters struct {
	Monsters []rawMonster `json:"monsters"`
}

type rawMonster struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	CR      float64  `json:"cr"`
	Faction string   `json:"faction"`
	Tags    []string `json:"tags"`
}

type rawFactions struct {
	Factions []rawFaction `json:"factions"`
}

type rawFaction struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Modifiers rawModifiers `json:"weight_modifiers"`
}

type rawModifiers struct {
	Biomes map[string]float64 `json:"biomes"`
	Slots  map[string]float64 `json:"slots"`
}

type rawPresets struct {
	Presets []rawPreset `json:"presets"`
}

type rawPreset struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Biomes      []string       `json:"biomes"`
	Tags        []string       `json:"tags"`
	Effects     map[string]any `json:"mechanical_effects"`
}

type rawNoncombatTable struct {
	Entries []rawNoncombatEntry `json:"entries"`
}

type rawNoncombatEntry struct {
	ID              string   `json:"id"`
	Biomes          []string `json:"biomes"`
	Slots           []string `json:"slots"`
	MinLevel        *int     `json:"min_level"`
	MaxLevel        *int     `json:"max_level"`
	Weight          *float64 `json:"weight"`
	EnvironmentID   string   `json:"environment_preset_id"`
	EnvironmentTags []string `json:"environment_tags"`
	Tags            []string `json:"tags"`
	AwardLoot       *bool    `json:"award_loot"`
	LootRolls       *int     `json:"loot_rolls"`
	Notes           string   `json:"notes"`
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func floatOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func stringOr(v *string, def string) string {
	if v != nil {
		return *v
	}
	return def
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func compileGate(biomes, slots []string, minLevel, maxLevel *int) types.Gate {
	return types.Gate{
		Biomes:   biomes,
		Slots:    slots,
		MinLevel: intOr(minLevel, defaultMinLevel),
		MaxLevel: intOr(maxLevel, defaultMaxLevel),
	}
}

// compileLevelKeys converts string level keys to ints, skipping keys that
// do not parse. Malformed keys are reported as warnings by validation.
func compileLevelKeys(in map[string]float64) (map[int]float64, []string) {
	out := make(map[int]float64, len(in))
	var bad []string
	for k, v := range in {
		level, err := strconv.Atoi(k)
		if err != nil {
			bad = append(bad, k)
			continue
		}
		out[level] = v
	}
	return out, bad
}

func compileLoot(raw rawLootData) (types.LootTables, []string) {
	budgets, bad := compileLevelKeys(raw.LevelBudgets)
	var warnings []string
	for _, k := range bad {
		warnings = append(warnings, fmt.Sprintf("loot budget key %q is not a level, skipped", k))
	}

	loot := types.LootTables{
		CoinValues:   raw.CoinValues,
		LevelBudgets: budgets,
	}
	for _, it := range raw.MagicItems {
		loot.MagicItems = append(loot.MagicItems, types.MagicItemDef{
			ID:       it.ID,
			Name:     it.Name,
			Rarity:   stringOr(it.Rarity, "common"),
			GPValue:  it.GPValue,
			Weight:   floatOr(it.Weight, 1.0),
			MinLevel: intOr(it.MinLevel, defaultMinLevel),
			MaxLevel: intOr(it.MaxLevel, defaultMaxLevel),
		})
	}
	for _, it := range raw.MundaneGoods {
		loot.MundaneGoods = append(loot.MundaneGoods, types.MundaneItemDef{
			ID:      it.ID,
			Name:    it.Name,
			GPValue: it.GPValue,
			Weight:  floatOr(it.Weight, 1.0),
		})
	}
	return loot, warnings
}

func compileTypeTable(raw rawTypeTable) types.TypeTable {
	t := types.TypeTable{
		ID:     raw.ID,
		Biomes: raw.Biomes,
		Slots:  raw.Slots,
		Die:    intOr(raw.Die, 20),
	}
	if t.Die < 1 {
		t.Die = 20
	}
	for _, row := range raw.Rows {
		// A row with only a max uses it as min too; a row with only a
		// min closes the range on itself.
		min := intOr(row.Min, intOr(row.Max, 1))
		max := intOr(row.Max, min)
		t.Rows = append(t.Rows, types.TypeRow{
			Min:  min,
			Max:  max,
			Type: stringOr(row.Type, "combat"),
		})
	}
	return t
}

func compileProgression(raw rawProgression) types.ProgressionDef {
	p := types.ProgressionDef{
		DefaultOrder: raw.DefaultOrder,
		Slots:        map[string]types.SlotDef{},
	}
	for name, s := range raw.Slots {
		p.Slots[name] = types.SlotDef{DifficultyDelta: intOr(s.DifficultyDelta, 0)}
	}
	return p
}

func compileBudgets(raw rawBudgets) (types.Budgets, []string) {
	values, bad := compileLevelKeys(raw.Budgets)
	var warnings []string
	for _, k := range bad {
		warnings = append(warnings, fmt.Sprintf("combat budget key %q is not a level, skipped", k))
	}
	return types.Budgets{Values: values}, warnings
}

func compileTemplate(raw rawTemplate) types.TemplateDef {
	return types.TemplateDef{
		ID:              raw.ID,
		Gate:            compileGate(raw.Biomes, raw.Slots, raw.MinLevel, raw.MaxLevel),
		Weight:          floatOr(raw.Weight, 1.0),
		Factions:        raw.Factions,
		EnemyGroupID:    raw.EnemyGroupID,
		EnvironmentTags: raw.EnvironmentTags,
		Tags:            raw.Tags,
		LootRolls:       intOr(raw.LootRolls, 1),
		Notes:           raw.Notes,
	}
}

func compileGroup(raw rawGroup) types.EnemyGroupDef {
	g := types.EnemyGroupDef{
		ID:      raw.ID,
		Faction: raw.Faction,
	}
	for _, e := range raw.Enemies {
		count := types.CountRange{Min: 1, Max: 1}
		if e.Count != nil {
			count.Min = intOr(e.Count.Min, 1)
			count.Max = intOr(e.Count.Max, count.Min)
		}
		g.Enemies = append(g.Enemies, types.EnemyEntryDef{
			MonsterID: e.MonsterID,
			Count:     count,
		})
	}
	return g
}

func compileMonster(raw rawMonster) types.MonsterDef {
	m := types.MonsterDef{
		ID:      raw.ID,
		Name:    raw.Name,
		CR:      raw.CR,
		Faction: raw.Faction,
		Tags:    raw.Tags,
	}
	if m.Name == "" {
		m.Name = m.ID
	}
	return m
}

func compileFaction(raw rawFaction) types.FactionDef {
	return types.FactionDef{
		ID:   raw.ID,
		Name: raw.Name,
		Modifiers: types.WeightModifiers{
			Biomes: raw.Modifiers.Biomes,
			Slots:  raw.Modifiers.Slots,
		},
	}
}

func compilePreset(raw rawPreset) types.EnvironmentPresetDef {
	return types.EnvironmentPresetDef{
		ID:          raw.ID,
		Description: raw.Description,
		Biomes:      raw.Biomes,
		Tags:        raw.Tags,
		Effects:     raw.Effects,
	}
}

func compileNoncombat(raw rawNoncombatEntry) types.NoncombatEntryDef {
	return types.NoncombatEntryDef{
		ID:              raw.ID,
		Gate:            compileGate(raw.Biomes, raw.Slots, raw.MinLevel, raw.MaxLevel),
		Weight:          floatOr(raw.Weight, 1.0),
		EnvironmentID:   raw.EnvironmentID,
		EnvironmentTags: raw.EnvironmentTags,
		Tags:            raw.Tags,
		AwardLoot:       boolOr(raw.AwardLoot, false),
		LootRolls:       intOr(raw.LootRolls, 1),
		Notes:           raw.Notes,
	}
}

// remarshal re-encodes a generic value (a YAML document or a Lua table
// converted to Go values) through JSON into a raw decode target, so every
// input format funnels into the same compile path.
func remarshal(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
