// Package cli wires the table loader and generators together and renders
// generated records as indented JSON.
package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nathoo/delveforge/engine"
	"github.com/nathoo/delveforge/loader"
	"github.com/nathoo/delveforge/types"
)

// Options selects what to generate and from which tables.
type Options struct {
	Command  string // loot, encounter or dungeon
	DataDir  string
	LootDir  string // optional override for the loot tables directory
	LootFile string // optional override for the loot tables filename
	Level    int
	Rolls    int
	Biome    string
	Slot     string
	Rooms    int // 0 generates the full progression
	Seed     int64
}

// Run executes one generation command and returns the indented JSON record.
func Run(opts Options) ([]byte, error) {
	if opts.Biome == "" {
		opts.Biome = "dungeon"
	}

	switch opts.Command {
	case "loot":
		return runLoot(opts)
	case "encounter":
		return runEncounter(opts)
	case "dungeon":
		return runDungeon(opts)
	default:
		return nil, fmt.Errorf("unknown command %q (want loot, encounter or dungeon)", opts.Command)
	}
}

func runLoot(opts Options) ([]byte, error) {
	dir := opts.LootDir
	if dir == "" {
		dir = opts.DataDir
	}
	loot, err := loader.LoadLoot(dir, opts.LootFile)
	if err != nil {
		return nil, err
	}

	record, err := engine.NewLootGenerator(loot, opts.Seed).Generate(opts.Level, opts.Rolls)
	if err != nil {
		return nil, err
	}
	return marshal(record)
}

func runEncounter(opts Options) ([]byte, error) {
	tables, err := loadTables(opts)
	if err != nil {
		return nil, err
	}

	record, err := engine.NewEncounterGenerator(tables, opts.Seed).
		GenerateSingleEncounter(opts.Level, opts.Biome, opts.Slot)
	if err != nil {
		return nil, err
	}
	return marshal(record)
}

func runDungeon(opts Options) ([]byte, error) {
	tables, err := loadTables(opts)
	if err != nil {
		return nil, err
	}

	record, err := engine.NewEncounterGenerator(tables, opts.Seed).
		GenerateFiveRoomDungeon(opts.Level, opts.Biome, roomSlots(opts, tables))
	if err != nil {
		return nil, err
	}
	return marshal(record)
}

func loadTables(opts Options) (*types.Tables, error) {
	tables, err := loader.Load(opts.DataDir)
	if err != nil {
		return nil, err
	}
	if opts.LootDir != "" || opts.LootFile != "" {
		dir := opts.LootDir
		if dir == "" {
			dir = opts.DataDir
		}
		loot, err := loader.LoadLoot(dir, opts.LootFile)
		if err != nil {
			return nil, err
		}
		tables.Loot = loot
	}
	return tables, nil
}

// roomSlots resolves the progression order for a dungeon run, truncated to
// opts.Rooms when a shorter delve was requested.
func roomSlots(opts Options, tables *types.Tables) []string {
	if opts.Rooms <= 0 {
		return nil
	}
	order := tables.Progression.DefaultOrder
	if len(order) == 0 {
		for slot := range tables.Progression.Slots {
			order = append(order, slot)
		}
		sort.Strings(order)
	}
	if opts.Rooms < len(order) {
		order = order[:opts.Rooms]
	}
	return order
}

func marshal(record any) ([]byte, error) {
	return json.MarshalIndent(record, "", "  ")
}
