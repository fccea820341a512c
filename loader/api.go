package loader

import (
	"fmt"

	"github.com/nathoo/delveforge/types"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during content pack execution.
type collector struct {
	monsters  []rawLuaEntry
	magic     []rawLuaEntry
	mundane   []rawLuaEntry
	groups    []rawLuaEntry
	templates []rawLuaEntry
	factions  []rawLuaEntry
	presets   []rawLuaEntry
	puzzles   []rawLuaEntry
	socials   []rawLuaEntry
	explores  []rawLuaEntry
}

type rawLuaEntry struct {
	id    string
	table *lua.LTable
}

// registerAPI registers the content pack constructors as globals. All
// constructors are curried: Monster "id" { ... }.
func registerAPI(L *lua.LState, coll *collector) {
	curried := map[string]*[]rawLuaEntry{
		"Monster":        &coll.monsters,
		"MagicItem":      &coll.magic,
		"MundaneItem":    &coll.mundane,
		"EnemyGroup":     &coll.groups,
		"CombatTemplate": &coll.templates,
		"Faction":        &coll.factions,
		"Environment":    &coll.presets,
		"Puzzle":         &coll.puzzles,
		"Social":         &coll.socials,
		"Exploration":    &coll.explores,
	}
	for name, dst := range curried {
		dst := dst
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				*dst = append(*dst, rawLuaEntry{id: id, table: tbl})
				return 0
			}))
			return 1
		}))
	}
}

// mergePacks converts the collected Lua tables through the shared raw decode
// path and appends the results to tables.
func mergePacks(coll *collector, tables *types.Tables) error {
	for _, e := range coll.monsters {
		var raw rawMonster
		if err := decodeLuaEntry(e, "Monster", &raw); err != nil {
			return err
		}
		tables.Monsters = append(tables.Monsters, compileMonster(raw))
	}
	for _, e := range coll.magic {
		var raw rawMagicItem
		if err := decodeLuaEntry(e, "MagicItem", &raw); err != nil {
			return err
		}
		tables.Loot.MagicItems = append(tables.Loot.MagicItems, types.MagicItemDef{
			ID:       raw.ID,
			Name:     raw.Name,
			Rarity:   stringOr(raw.Rarity, "common"),
			GPValue:  raw.GPValue,
			Weight:   floatOr(raw.Weight, 1.0),
			MinLevel: intOr(raw.MinLevel, defaultMinLevel),
			MaxLevel: intOr(raw.MaxLevel, defaultMaxLevel),
		})
	}
	for _, e := range coll.mundane {
		var raw rawMundaneItem
		if err := decodeLuaEntry(e, "MundaneItem", &raw); err != nil {
			return err
		}
		tables.Loot.MundaneGoods = append(tables.Loot.MundaneGoods, types.MundaneItemDef{
			ID:      raw.ID,
			Name:    raw.Name,
			GPValue: raw.GPValue,
			Weight:  floatOr(raw.Weight, 1.0),
		})
	}
	for _, e := range coll.groups {
		var raw rawGroup
		if err := decodeLuaEntry(e, "EnemyGroup", &raw); err != nil {
			return err
		}
		tables.EnemyGroups = append(tables.EnemyGroups, compileGroup(raw))
	}
	for _, e := range coll.templates {
		var raw rawTemplate
		if err := decodeLuaEntry(e, "CombatTemplate", &raw); err != nil {
			return err
		}
		tables.Templates = append(tables.Templates, compileTemplate(raw))
	}
	for _, e := range coll.factions {
		var raw rawFaction
		if err := decodeLuaEntry(e, "Faction", &raw); err != nil {
			return err
		}
		tables.Factions = append(tables.Factions, compileFaction(raw))
	}
	for _, e := range coll.presets {
		var raw rawPreset
		if err := decodeLuaEntry(e, "Environment", &raw); err != nil {
			return err
		}
		tables.Presets = append(tables.Presets, compilePreset(raw))
	}
	for _, nc := range []struct {
		name    string
		entries []rawLuaEntry
		dst     *[]types.NoncombatEntryDef
	}{
		{"Puzzle", coll.puzzles, &tables.Puzzles},
		{"Social", coll.socials, &tables.Socials},
		{"Exploration", coll.explores, &tables.Explores},
	} {
		for _, e := range nc.entries {
			var raw rawNoncombatEntry
			if err := decodeLuaEntry(e, nc.name, &raw); err != nil {
				return err
			}
			*nc.dst = append(*nc.dst, compileNoncombat(raw))
		}
	}
	return nil
}

// decodeLuaEntry converts a collected Lua table to Go values, injects the
// curried id, and decodes through the raw struct for kind.
func decodeLuaEntry(e rawLuaEntry, kind string, dst any) error {
	m := tableToAnyMap(e.table)
	m["id"] = e.id
	if err := remarshal(m, dst); err != nil {
		return fmt.Errorf("%s %q: %w", kind, e.id, err)
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively. Tables with
// positive integer keys become slices; all other tables become maps.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

func tableToAnyMap(tbl *lua.LTable) map[string]any {
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}
