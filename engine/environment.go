package engine

import "github.com/nathoo/delveforge/types"

// neutralEnvironment is the well-defined empty descriptor returned when no
// presets are configured: nil id, no description, no tags, no effects.
func neutralEnvironment() types.Environment {
	return types.Environment{
		Tags:    []string{},
		Effects: map[string]any{},
	}
}

// selectEnvironment resolves an environment descriptor. A specific preset
// id that resolves is returned directly without consuming a draw.
// Otherwise candidates narrow in stages (biome plus at-least-one-tag
// overlap, then biome only, then the full pool) and one is picked
// uniformly. Presets are optional content: an empty pool yields the
// neutral descriptor, never an error.
func (g *EncounterGenerator) selectEnvironment(biome string, tags []string, specificID string) types.Environment {
	presets := g.tables.Presets
	if len(presets) == 0 {
		return neutralEnvironment()
	}

	if specificID != "" {
		if p, ok := g.presets[specificID]; ok {
			return environmentFromPreset(p)
		}
	}

	var candidates []types.EnvironmentPresetDef
	for _, p := range presets {
		if listMatches(p.Biomes, biome) && tagsOverlap(tags, p.Tags) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		for _, p := range presets {
			if listMatches(p.Biomes, biome) {
				candidates = append(candidates, p)
			}
		}
	}
	if len(candidates) == 0 {
		candidates = presets
	}

	return environmentFromPreset(candidates[g.rng.Pick(len(candidates))])
}

// tagsOverlap reports whether the requested tags intersect the preset's.
// An empty request matches everything.
func tagsOverlap(want, have []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func environmentFromPreset(p types.EnvironmentPresetDef) types.Environment {
	id := p.ID
	env := types.Environment{
		PresetID:    &id,
		Description: p.Description,
		Tags:        p.Tags,
		Effects:     p.Effects,
	}
	if env.Tags == nil {
		env.Tags = []string{}
	}
	if env.Effects == nil {
		env.Effects = map[string]any{}
	}
	return env
}
