package engine

import (
	"math"
	"sort"

	"github.com/nathoo/delveforge/types"
)

// LootSchema is the schema tag on loot output records.
const LootSchema = "loot.v1"

// magicChance is the probability that a parcel's item slot rolls magic
// rather than mundane.
const magicChance = 0.4

// coinBudgetShare is the fraction of a level's GP budget spent on coins.
const coinBudgetShare = 0.20

// LootGenerator produces loot parcels from loaded loot tables and a seeded
// random stream. One generator owns one stream; callers needing parallel
// generation create independent generators.
type LootGenerator struct {
	tables types.LootTables
	rng    *RNG
}

// NewLootGenerator creates a loot generator over the given tables and seed.
func NewLootGenerator(tables types.LootTables, seed int64) *LootGenerator {
	return &LootGenerator{
		tables: tables,
		rng:    NewRNG(seed),
	}
}

// Generate produces a loot.v1 record with one parcel per roll. The level
// must have an entry in the level-budget table; there is no interpolation.
// Rolls below 1 are coerced to 1.
func (g *LootGenerator) Generate(level, rolls int) (types.LootRecord, error) {
	if rolls < 1 {
		rolls = 1
	}

	baseBudget, ok := g.tables.LevelBudgets[level]
	if !ok {
		return types.LootRecord{}, configErrorf("level %d not found in level budgets", level)
	}

	magicPool := magicByLevel(g.tables.MagicItems, level)

	parcels := make([]types.Parcel, 0, rolls)
	for i := 0; i < rolls; i++ {
		parcels = append(parcels, g.generateParcel(baseBudget, magicPool))
	}

	return types.LootRecord{
		Schema:  LootSchema,
		Seed:    g.rng.Seed(),
		Level:   level,
		Rolls:   rolls,
		Parcels: parcels,
	}, nil
}

// generateParcel builds a single parcel: coins from 20% of the budget,
// then one magic or mundane item.
func (g *LootGenerator) generateParcel(baseBudget float64, magicPool []types.MagicItemDef) types.Parcel {
	parcel := types.Parcel{
		Coins:        map[string]int{},
		MagicItems:   []types.ItemRef{},
		MundaneItems: []types.ItemRef{},
	}

	parcel.Coins = g.generateCoins(baseBudget * coinBudgetShare)

	// The probability draw happens before the pool check, so the stream
	// position does not depend on whether any magic items pass the gate.
	rollMagic := g.rng.Float() < magicChance
	if rollMagic && len(magicPool) > 0 {
		weights := make([]float64, len(magicPool))
		for i, it := range magicPool {
			weights[i] = it.Weight
		}
		it := magicPool[g.rng.WeightedIndex(weights)]
		parcel.MagicItems = append(parcel.MagicItems, types.ItemRef{
			ID:      it.ID,
			Name:    it.Name,
			Rarity:  it.Rarity,
			GPValue: it.GPValue,
		})
	} else if len(g.tables.MundaneGoods) > 0 {
		weights := make([]float64, len(g.tables.MundaneGoods))
		for i, it := range g.tables.MundaneGoods {
			weights[i] = it.Weight
		}
		it := g.tables.MundaneGoods[g.rng.WeightedIndex(weights)]
		parcel.MundaneItems = append(parcel.MundaneItems, types.ItemRef{
			ID:      it.ID,
			Name:    it.Name,
			GPValue: it.GPValue,
		})
	}

	parcel.TotalValueGP = round2(parcelValue(parcel, g.tables.CoinValues))
	return parcel
}

// generateCoins converts a GP budget into a random coin mixture, walking
// denominations from highest to lowest value. Each denomination draws a
// uniform count in [0, floor(remaining/value)], so the fill is biased
// toward high denominations but intentionally loose. The total never
// exceeds the budget.
func (g *LootGenerator) generateCoins(budget float64) map[string]int {
	coins := sortedDenominations(g.tables.CoinValues)

	remaining := budget
	out := map[string]int{}
	for _, c := range coins {
		if remaining <= 0 {
			break
		}
		if c.value <= 0 {
			continue
		}
		maxQty := int(remaining / c.value)
		if maxQty <= 0 {
			continue
		}
		qty := g.rng.IntBetween(0, maxQty)
		if qty > 0 {
			out[c.name] = qty
			remaining -= float64(qty) * c.value
		}
	}
	return out
}

// magicByLevel filters magic items by their level gates.
func magicByLevel(items []types.MagicItemDef, level int) []types.MagicItemDef {
	var out []types.MagicItemDef
	for _, it := range items {
		if it.MinLevel <= level && level <= it.MaxLevel {
			out = append(out, it)
		}
	}
	return out
}

// parcelValue totals a parcel in GP: coin quantities times their values
// plus all item values. Unknown denominations count as zero.
func parcelValue(parcel types.Parcel, coinValues map[string]float64) float64 {
	total := 0.0
	for denom, count := range parcel.Coins {
		total += coinValues[denom] * float64(count)
	}
	for _, it := range parcel.MagicItems {
		total += it.GPValue
	}
	for _, it := range parcel.MundaneItems {
		total += it.GPValue
	}
	return total
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type denomination struct {
	name  string
	value float64
}

// sortedDenominations orders coin denominations by descending GP value,
// with a name tie-break so the walk order is stable.
func sortedDenominations(coinValues map[string]float64) []denomination {
	out := make([]denomination, 0, len(coinValues))
	for name, value := range coinValues {
		out = append(out, denomination{name: name, value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].value != out[j].value {
			return out[i].value > out[j].value
		}
		return out[i].name < out[j].name
	})
	return out
}
