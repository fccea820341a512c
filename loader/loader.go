package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/delveforge/types"
	lua "github.com/yuin/gopher-lua"
	"gopkg.in/yaml.v3"
)

// Table file base names. Each may be provided as .json, .yaml or .yml.
const (
	fileEncounterTypes = "encounter_types"
	fileProgression    = "five_room_progression"
	fileBudgets        = "combat_budgets"
	fileTemplates      = "encounter_tables"
	fileGroups         = "enemy_groups"
	fileMonsters       = "monsters"
	fileFactions       = "factions"
	filePresets        = "environment_presets"
	filePuzzles        = "puzzle_tables"
	fileSocials        = "social_tables"
	fileExplores       = "exploration_tables"
	fileLoot           = "loot_data"
)

// Load reads all content tables from dir, executes any .lua content packs,
// applies defaults, and validates the result. Unknown references that the
// generator tolerates at run time are reported as warnings on stderr;
// structural problems fail the load with a *ValidationError.
func Load(dir string) (*types.Tables, error) {
	tables := &types.Tables{}
	var warnings []string

	var rawTypes rawTypeTables
	if err := loadTable(dir, fileEncounterTypes, true, &rawTypes); err != nil {
		return nil, err
	}
	for _, t := range rawTypes.Tables {
		tables.TypeTables = append(tables.TypeTables, compileTypeTable(t))
	}

	var rawProg rawProgression
	if err := loadTable(dir, fileProgression, true, &rawProg); err != nil {
		return nil, err
	}
	tables.Progression = compileProgression(rawProg)

	var rawBud rawBudgets
	if err := loadTable(dir, fileBudgets, false, &rawBud); err != nil {
		return nil, err
	}
	budgets, w := compileBudgets(rawBud)
	tables.Budgets = budgets
	warnings = append(warnings, w...)

	var rawTpls rawTemplates
	if err := loadTable(dir, fileTemplates, true, &rawTpls); err != nil {
		return nil, err
	}
	for _, t := range rawTpls.Templates {
		tables.Templates = append(tables.Templates, compileTemplate(t))
	}

	var rawGrps rawGroups
	if err := loadTable(dir, fileGroups, true, &rawGrps); err != nil {
		return nil, err
	}
	for _, g := range rawGrps.Groups {
		tables.EnemyGroups = append(tables.EnemyGroups, compileGroup(g))
	}

	var rawMons rawMonsters
	if err := loadTable(dir, fileMonsters, true, &rawMons); err != nil {
		return nil, err
	}
	for _, m := range rawMons.Monsters {
		tables.Monsters = append(tables.Monsters, compileMonster(m))
	}

	var rawFacs rawFactions
	if err := loadTable(dir, fileFactions, false, &rawFacs); err != nil {
		return nil, err
	}
	for _, f := range rawFacs.Factions {
		tables.Factions = append(tables.Factions, compileFaction(f))
	}

	var rawPres rawPresets
	if err := loadTable(dir, filePresets, false, &rawPres); err != nil {
		return nil, err
	}
	for _, p := range rawPres.Presets {
		tables.Presets = append(tables.Presets, compilePreset(p))
	}

	for _, nc := range []struct {
		file string
		dst  *[]types.NoncombatEntryDef
	}{
		{filePuzzles, &tables.Puzzles},
		{fileSocials, &tables.Socials},
		{fileExplores, &tables.Explores},
	} {
		var raw rawNoncombatTable
		if err := loadTable(dir, nc.file, false, &raw); err != nil {
			return nil, err
		}
		for _, e := range raw.Entries {
			*nc.dst = append(*nc.dst, compileNoncombat(e))
		}
	}

	var rawLoot rawLootData
	if err := loadTable(dir, fileLoot, true, &rawLoot); err != nil {
		return nil, err
	}
	loot, w2 := compileLoot(rawLoot)
	tables.Loot = loot
	warnings = append(warnings, w2...)

	// Content packs extend the file tables.
	if err := runContentPacks(dir, tables); err != nil {
		return nil, err
	}

	if err := validate(tables, warnings); err != nil {
		return nil, err
	}
	return tables, nil
}

// LoadLoot reads a standalone loot table file. filename defaults to
// loot_data.json; the extension selects the decoder.
func LoadLoot(dir, filename string) (types.LootTables, error) {
	if filename == "" {
		filename = fileLoot + ".json"
	}
	var raw rawLootData
	if err := decodeFile(filepath.Join(dir, filename), &raw); err != nil {
		return types.LootTables{}, err
	}
	loot, warnings := compileLoot(raw)
	if err := validateLoot(loot, warnings); err != nil {
		return types.LootTables{}, err
	}
	return loot, nil
}

// loadTable locates base.(json|yaml|yml) under dir and decodes it into dst.
// A missing optional table leaves dst zero.
func loadTable(dir, base string, required bool, dst any) error {
	path, ok := findTable(dir, base)
	if !ok {
		if required {
			return fmt.Errorf("required table %s.(json|yaml|yml) not found in %s", base, dir)
		}
		return nil
	}
	return decodeFile(path, dst)
}

func findTable(dir, base string) (string, bool) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// decodeFile decodes a JSON or YAML table file into dst. YAML documents are
// routed through the JSON decode path so both formats share one set of raw
// structs and defaults.
func decodeFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading table %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := remarshal(doc, dst); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

// runContentPacks executes every .lua file under dir in alphabetical order
// inside a sandboxed VM and appends the collected definitions to tables.
// The VM is discarded after loading.
func runContentPacks(dir string, tables *types.Tables) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var packs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			packs = append(packs, e.Name())
		}
	}
	if len(packs) == 0 {
		return nil
	}
	sort.Strings(packs)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range packs {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing content pack %s: %w", f, err)
		}
	}
	return mergePacks(coll, tables)
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Remove math.randomseed to preserve determinism.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
