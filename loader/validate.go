package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/delveforge/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the loaded tables for referential integrity. References
// the generator degrades gracefully on (unknown monsters, factions and
// presets) are warnings; everything that would make generation fail or
// silently misbehave is an error.
func validate(t *types.Tables, loadWarnings []string) error {
	ve := &ValidationError{Warnings: loadWarnings}

	if len(t.TypeTables) == 0 {
		ve.Errors = append(ve.Errors, "no encounter type tables defined")
	}
	if len(t.Progression.Slots) == 0 {
		ve.Errors = append(ve.Errors, "five-room progression defines no slots")
	}
	for _, slot := range t.Progression.DefaultOrder {
		if _, ok := t.Progression.Slots[slot]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"default_order references undefined slot %q", slot))
		}
	}

	if len(t.Templates) == 0 {
		ve.Errors = append(ve.Errors, "no combat encounter templates defined")
	}
	if len(t.Monsters) == 0 {
		ve.Errors = append(ve.Errors, "no monsters defined")
	}

	checkDuplicateIDs(ve, "encounter type table", ids(t.TypeTables, func(v types.TypeTable) string { return v.ID }))
	checkDuplicateIDs(ve, "combat template", ids(t.Templates, func(v types.TemplateDef) string { return v.ID }))
	groups := checkDuplicateIDs(ve, "enemy group", ids(t.EnemyGroups, func(v types.EnemyGroupDef) string { return v.ID }))
	monsters := checkDuplicateIDs(ve, "monster", ids(t.Monsters, func(v types.MonsterDef) string { return v.ID }))
	factions := checkDuplicateIDs(ve, "faction", ids(t.Factions, func(v types.FactionDef) string { return v.ID }))
	presets := checkDuplicateIDs(ve, "environment preset", ids(t.Presets, func(v types.EnvironmentPresetDef) string { return v.ID }))
	checkDuplicateIDs(ve, "puzzle entry", ids(t.Puzzles, func(v types.NoncombatEntryDef) string { return v.ID }))
	checkDuplicateIDs(ve, "social entry", ids(t.Socials, func(v types.NoncombatEntryDef) string { return v.ID }))
	checkDuplicateIDs(ve, "exploration entry", ids(t.Explores, func(v types.NoncombatEntryDef) string { return v.ID }))

	for _, tpl := range t.Templates {
		if tpl.EnemyGroupID == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"combat template %q has no enemy_group_id", tpl.ID))
		} else if !groups[tpl.EnemyGroupID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"combat template %q references undefined enemy group %q", tpl.ID, tpl.EnemyGroupID))
		}
		for _, f := range tpl.Factions {
			if !factions[f] {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"combat template %q references undefined faction %q", tpl.ID, f))
			}
		}
		if tpl.Weight < 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"combat template %q has negative weight, treated as 0", tpl.ID))
		}
	}

	for _, g := range t.EnemyGroups {
		for _, e := range g.Enemies {
			if !monsters[e.MonsterID] {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"enemy group %q references undefined monster %q", g.ID, e.MonsterID))
			}
		}
		if g.Faction != "" && !factions[g.Faction] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"enemy group %q references undefined faction %q", g.ID, g.Faction))
		}
	}

	for _, table := range t.TypeTables {
		for _, row := range table.Rows {
			if row.Min > row.Max {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"encounter type table %q row %d-%d is inverted and never matches",
					table.ID, row.Min, row.Max))
			}
		}
	}

	validateNoncombat(ve, "puzzle", t.Puzzles, presets)
	validateNoncombat(ve, "social", t.Socials, presets)
	validateNoncombat(ve, "exploration", t.Explores, presets)

	lootInto(ve, t.Loot)

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateLoot checks a standalone loot table load.
func validateLoot(loot types.LootTables, loadWarnings []string) error {
	ve := &ValidationError{Warnings: loadWarnings}
	lootInto(ve, loot)

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func lootInto(ve *ValidationError, loot types.LootTables) {
	if len(loot.CoinValues) == 0 {
		ve.Errors = append(ve.Errors, "loot table defines no coin denominations")
	}
	if len(loot.LevelBudgets) == 0 {
		ve.Errors = append(ve.Errors, "loot table defines no level budgets")
	}
	// Mundane goods are the fallback when no magic item applies, so an
	// empty table would leave parcels without items.
	if len(loot.MundaneGoods) == 0 {
		ve.Errors = append(ve.Errors, "loot table defines no mundane goods")
	}

	checkDuplicateIDs(ve, "magic item", ids(loot.MagicItems, func(v types.MagicItemDef) string { return v.ID }))
	checkDuplicateIDs(ve, "mundane good", ids(loot.MundaneGoods, func(v types.MundaneItemDef) string { return v.ID }))

	for denom, value := range loot.CoinValues {
		if value <= 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"coin denomination %q has non-positive value and is never awarded", denom))
		}
	}
	for _, it := range loot.MagicItems {
		if it.MinLevel > it.MaxLevel {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"magic item %q has min_level > max_level and is never awarded", it.ID))
		}
	}
}

func validateNoncombat(ve *ValidationError, kind string, entries []types.NoncombatEntryDef, presets map[string]bool) {
	for _, e := range entries {
		if e.EnvironmentID != "" && !presets[e.EnvironmentID] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s entry %q references undefined environment preset %q", kind, e.ID, e.EnvironmentID))
		}
		if e.Weight < 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s entry %q has negative weight, treated as 0", kind, e.ID))
		}
	}
}

// checkDuplicateIDs reports duplicates and returns the id set for
// reference checks.
func checkDuplicateIDs(ve *ValidationError, kind string, ids []string) map[string]bool {
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate %s ID %q", kind, id))
		}
		seen[id] = true
	}
	return seen
}

func ids[T any](in []T, id func(T) string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = id(v)
	}
	return out
}
