package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nathoo/delveforge/types"
)

func testLootTables() types.LootTables {
	return types.LootTables{
		CoinValues: map[string]float64{
			"platinum": 10,
			"gold":     1,
			"silver":   0.1,
			"copper":   0.01,
		},
		LevelBudgets: map[int]float64{
			1: 50,
			2: 100,
			3: 200,
			5: 1000,
		},
		MagicItems: []types.MagicItemDef{
			{ID: "potion_healing", Name: "Potion of Healing", Rarity: "common",
				GPValue: 50, Weight: 5, MinLevel: 1, MaxLevel: 99},
			{ID: "flametongue", Name: "Flametongue", Rarity: "rare",
				GPValue: 500, Weight: 1, MinLevel: 5, MaxLevel: 10},
		},
		MundaneGoods: []types.MundaneItemDef{
			{ID: "rope_silk", Name: "Silk Rope", GPValue: 1, Weight: 5},
			{ID: "lantern", Name: "Hooded Lantern", GPValue: 5, Weight: 2},
		},
	}
}

func TestLoot_UnknownLevel_ConfigError(t *testing.T) {
	g := NewLootGenerator(testLootTables(), 1)

	_, err := g.Generate(4, 1)
	if err == nil {
		t.Fatal("expected error for level with no budget")
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %T, want *ConfigError", err)
	}
}

func TestLoot_RollsCoercedToOne(t *testing.T) {
	g := NewLootGenerator(testLootTables(), 1)

	record, err := g.Generate(1, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if record.Rolls != 1 {
		t.Errorf("Rolls = %d, want 1", record.Rolls)
	}
	if len(record.Parcels) != 1 {
		t.Errorf("parcels = %d, want 1", len(record.Parcels))
	}
}

func TestLoot_RecordShape(t *testing.T) {
	g := NewLootGenerator(testLootTables(), 1234)

	record, err := g.Generate(2, 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if record.Schema != "loot.v1" {
		t.Errorf("Schema = %q, want loot.v1", record.Schema)
	}
	if record.Seed != 1234 {
		t.Errorf("Seed = %d, want 1234", record.Seed)
	}
	if record.Level != 2 {
		t.Errorf("Level = %d, want 2", record.Level)
	}
	if len(record.Parcels) != 3 {
		t.Fatalf("parcels = %d, want 3", len(record.Parcels))
	}
}

func TestLoot_Deterministic(t *testing.T) {
	a, err := NewLootGenerator(testLootTables(), 77).Generate(3, 4)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := NewLootGenerator(testLootTables(), 77).Generate(3, 4)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Errorf("same seed produced different records:\n%s\n%s", aj, bj)
	}
}

func TestLoot_CoinBudgetConservation(t *testing.T) {
	tables := testLootTables()

	for seed := int64(0); seed < 50; seed++ {
		g := NewLootGenerator(tables, seed)
		record, err := g.Generate(5, 2)
		if err != nil {
			t.Fatalf("seed %d: Generate failed: %v", seed, err)
		}

		coinBudget := tables.LevelBudgets[5] * coinBudgetShare
		for i, parcel := range record.Parcels {
			coinValue := 0.0
			for denom, count := range parcel.Coins {
				coinValue += tables.CoinValues[denom] * float64(count)
			}
			if coinValue > coinBudget+1e-9 {
				t.Errorf("seed %d parcel %d: coin value %.4f exceeds budget %.4f",
					seed, i, coinValue, coinBudget)
			}
		}
	}
}

func TestLoot_EveryParcelHasExactlyOneItem(t *testing.T) {
	g := NewLootGenerator(testLootTables(), 5)

	record, err := g.Generate(2, 20)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, parcel := range record.Parcels {
		if got := len(parcel.MagicItems) + len(parcel.MundaneItems); got != 1 {
			t.Errorf("parcel %d: item count = %d, want 1", i, got)
		}
	}
}

func TestLoot_MagicLevelGating(t *testing.T) {
	items := []types.MagicItemDef{
		{ID: "sword", MinLevel: 5, MaxLevel: 10},
	}

	cases := []struct {
		level int
		want  int
	}{
		{4, 0},
		{5, 1},
		{7, 1},
		{10, 1},
		{11, 0},
	}
	for _, tc := range cases {
		got := len(magicByLevel(items, tc.level))
		if got != tc.want {
			t.Errorf("level %d: pool size = %d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestLoot_ParcelValue(t *testing.T) {
	parcel := types.Parcel{
		Coins:        map[string]int{"gold": 10},
		MundaneItems: []types.ItemRef{{ID: "rope", Name: "Rope", GPValue: 5}},
	}
	coinValues := map[string]float64{"gold": 1.0}

	if got := parcelValue(parcel, coinValues); got != 15.0 {
		t.Errorf("parcel value = %v, want 15.0", got)
	}
}

func TestLoot_ParcelValue_UnknownDenomination(t *testing.T) {
	parcel := types.Parcel{Coins: map[string]int{"doubloon": 99}}

	if got := parcelValue(parcel, map[string]float64{"gold": 1.0}); got != 0 {
		t.Errorf("unknown denomination should count as zero, got %v", got)
	}
}

func TestLoot_TotalValueRounded(t *testing.T) {
	g := NewLootGenerator(testLootTables(), 11)

	record, err := g.Generate(3, 10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, parcel := range record.Parcels {
		if round2(parcel.TotalValueGP) != parcel.TotalValueGP {
			t.Errorf("parcel %d: total %v not rounded to 2 decimals", i, parcel.TotalValueGP)
		}
	}
}

func TestLoot_DenominationOrder(t *testing.T) {
	denoms := sortedDenominations(map[string]float64{
		"copper":   0.01,
		"gold":     1,
		"platinum": 10,
		"silver":   0.1,
	})

	want := []string{"platinum", "gold", "silver", "copper"}
	for i, d := range denoms {
		if d.name != want[i] {
			t.Fatalf("denomination %d = %q, want %q", i, d.name, want[i])
		}
	}
}

func TestLoot_MagicPoolEmpty_FallsBackToMundane(t *testing.T) {
	tables := testLootTables()
	tables.MagicItems = nil
	g := NewLootGenerator(tables, 21)

	record, err := g.Generate(1, 20)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i, parcel := range record.Parcels {
		if len(parcel.MagicItems) != 0 {
			t.Errorf("parcel %d: magic items with empty pool", i)
		}
		if len(parcel.MundaneItems) != 1 {
			t.Errorf("parcel %d: mundane items = %d, want 1", i, len(parcel.MundaneItems))
		}
	}
}
