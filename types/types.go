// Package types defines the shared data structures for the delveforge
// generators. This package contains only type definitions, no logic and
// no methods.
package types

// Gate holds the filtering fields shared by gated table entries. An empty
// biome or slot list (or one containing "any") matches everything; level
// bounds default to 1 and 99 at load time.
type Gate struct {
	Biomes   []string
	Slots    []string
	MinLevel int
	MaxLevel int
}

// CountRange is an inclusive [Min, Max] enemy count range.
type CountRange struct {
	Min int
	Max int
}

// MagicItemDef is one level-gated magic item in the loot table.
type MagicItemDef struct {
	ID       string
	Name     string
	Rarity   string
	GPValue  float64
	Weight   float64
	MinLevel int
	MaxLevel int
}

// MundaneItemDef is one mundane good in the loot table. Mundane goods are
// not level-gated.
type MundaneItemDef struct {
	ID      string
	Name    string
	GPValue float64
	Weight  float64
}

// LootTables holds the loot content: coin denominations, per-level GP
// budgets, and the two item pools.
type LootTables struct {
	CoinValues   map[string]float64
	LevelBudgets map[int]float64
	MagicItems   []MagicItemDef
	MundaneGoods []MundaneItemDef
}

// TypeRow maps a die-roll range onto an encounter type.
type TypeRow struct {
	Min  int
	Max  int
	Type string
}

// TypeTable is one encounter-type table: a die size and ordered roll rows,
// gated by biome and slot.
type TypeTable struct {
	ID     string
	Biomes []string
	Slots  []string
	Die    int
	Rows   []TypeRow
}

// SlotDef configures one slot of the five-room progression.
type SlotDef struct {
	DifficultyDelta int
}

// ProgressionDef is the five-room progression table: slot configs plus the
// default slot order.
type ProgressionDef struct {
	DefaultOrder []string
	Slots        map[string]SlotDef
}

// TemplateDef is one combat encounter template.
type TemplateDef struct {
	ID              string
	Gate            Gate
	Weight          float64
	Factions        []string
	EnemyGroupID    string
	EnvironmentTags []string
	Tags            []string
	LootRolls       int
	Notes           string
}

// EnemyEntryDef is one monster line inside an enemy group.
type EnemyEntryDef struct {
	MonsterID string
	Count     CountRange
}

// EnemyGroupDef is a named group of enemy entries.
type EnemyGroupDef struct {
	ID      string
	Faction string
	Enemies []EnemyEntryDef
}

// MonsterDef is one entry in the monster roster.
type MonsterDef struct {
	ID      string
	Name    string
	CR      float64
	Faction string
	Tags    []string
}

// WeightModifiers are a faction's per-biome and per-slot weight multipliers.
type WeightModifiers struct {
	Biomes map[string]float64
	Slots  map[string]float64
}

// FactionDef is one faction with optional template weight modifiers.
type FactionDef struct {
	ID        string
	Name      string
	Modifiers WeightModifiers
}

// EnvironmentPresetDef is one environment preset. Presets gate on biome
// only; tags participate in overlap matching, not gating.
type EnvironmentPresetDef struct {
	ID          string
	Description string
	Biomes      []string
	Tags        []string
	Effects     map[string]any
}

// NoncombatEntryDef is one puzzle, social, or exploration template.
type NoncombatEntryDef struct {
	ID              string
	Gate            Gate
	Weight          float64
	EnvironmentID   string
	EnvironmentTags []string
	Tags            []string
	AwardLoot       bool
	LootRolls       int
	Notes           string
}

// Budgets maps level → GP budget, used to clamp room levels.
type Budgets struct {
	Values map[int]float64
}

// Tables is the complete immutable content set consumed by the generators.
// Required tables must be non-empty after loading; optional ones may be
// zero-valued, enabling the documented degradation paths.
type Tables struct {
	TypeTables  []TypeTable
	Progression ProgressionDef
	Budgets     Budgets
	Templates   []TemplateDef
	EnemyGroups []EnemyGroupDef
	Monsters    []MonsterDef
	Factions    []FactionDef
	Presets     []EnvironmentPresetDef
	Puzzles     []NoncombatEntryDef
	Socials     []NoncombatEntryDef
	Explores    []NoncombatEntryDef
	Loot        LootTables
}

// ItemRef is a selected item inside a loot parcel.
type ItemRef struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Rarity  string  `json:"rarity,omitempty"`
	GPValue float64 `json:"gp_value"`
}

// Parcel is one bundle of loot produced by a single roll. Immutable once
// returned.
type Parcel struct {
	Coins        map[string]int `json:"coins"`
	MagicItems   []ItemRef      `json:"magic_items"`
	MundaneItems []ItemRef      `json:"mundane_items"`
	TotalValueGP float64        `json:"total_value_gp"`
}

// LootRecord is the loot.v1 output record.
type LootRecord struct {
	Schema  string   `json:"schema"`
	Seed    int64    `json:"seed"`
	Level   int      `json:"encounter_level"`
	Rolls   int      `json:"rolls"`
	Parcels []Parcel `json:"parcels"`
}

// EnemyLine is one resolved enemy-group entry inside a combat encounter.
// CR is nil when the monster id did not resolve against the roster.
type EnemyLine struct {
	MonsterID string   `json:"monster_id"`
	Name      string   `json:"name"`
	Count     int      `json:"count"`
	CR        *float64 `json:"cr"`
	Faction   string   `json:"faction"`
	Tags      []string `json:"tags"`
}

// Environment is the resolved environment descriptor of an encounter.
// A nil PresetID marks the neutral descriptor used when no presets exist.
type Environment struct {
	PresetID    *string        `json:"preset_id"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Effects     map[string]any `json:"mechanical_effects"`
}

// Meta carries encounter provenance: which template or noncombat entry
// produced it.
type Meta struct {
	TemplateID  *string `json:"template_id"`
	NoncombatID *string `json:"noncombat_id"`
	Notes       string  `json:"notes"`
}

// Encounter is one generated encounter. Enemies is empty unless Type is
// "combat"; Loot is nil unless the producing template awarded it.
type Encounter struct {
	Difficulty  int         `json:"difficulty"`
	Type        string      `json:"type"`
	Slot        string      `json:"slot"`
	Biome       string      `json:"biome"`
	Enemies     []EnemyLine `json:"enemies"`
	Environment Environment `json:"environment"`
	Tags        []string    `json:"tags"`
	Loot        *LootRecord `json:"loot"`
	Meta        Meta        `json:"meta"`
}

// EncounterRecord is the encounter.v1 wrapper for standalone encounters.
type EncounterRecord struct {
	Schema    string    `json:"schema"`
	Seed      int64     `json:"seed"`
	Encounter Encounter `json:"encounter"`
}

// Room binds a slot and 1-based room index to an encounter.
type Room struct {
	Slot      string    `json:"slot"`
	RoomIndex int       `json:"room_index"`
	Encounter Encounter `json:"encounter"`
}

// DungeonRecord is the dungeon.5room.v1 output record.
type DungeonRecord struct {
	Schema    string `json:"schema"`
	Seed      int64  `json:"seed"`
	Biome     string `json:"biome"`
	BaseLevel int    `json:"base_level"`
	Rooms     []Room `json:"rooms"`
}
