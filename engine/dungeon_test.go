package engine

import (
	"encoding/json"
	"testing"

	"github.com/nathoo/delveforge/types"
)

func TestDungeon_RoomOrderAndIndices(t *testing.T) {
	g := NewEncounterGenerator(testTables(TypeCombat), 1234)

	dungeon, err := g.GenerateFiveRoomDungeon(3, "dungeon", nil)
	if err != nil {
		t.Fatalf("GenerateFiveRoomDungeon failed: %v", err)
	}

	if dungeon.Schema != "dungeon.5room.v1" {
		t.Errorf("Schema = %q, want dungeon.5room.v1", dungeon.Schema)
	}
	if dungeon.Seed != 1234 {
		t.Errorf("Seed = %d, want 1234", dungeon.Seed)
	}
	if dungeon.BaseLevel != 3 {
		t.Errorf("BaseLevel = %d, want 3", dungeon.BaseLevel)
	}

	wantSlots := []string{"entrance", "puzzle", "setback", "climax", "aftermath"}
	if len(dungeon.Rooms) != len(wantSlots) {
		t.Fatalf("rooms = %d, want %d", len(dungeon.Rooms), len(wantSlots))
	}
	for i, room := range dungeon.Rooms {
		if room.RoomIndex != i+1 {
			t.Errorf("room %d: RoomIndex = %d, want %d", i, room.RoomIndex, i+1)
		}
		if room.Slot != wantSlots[i] {
			t.Errorf("room %d: Slot = %q, want %q", i, room.Slot, wantSlots[i])
		}
	}
}

func TestDungeon_DifficultyDeltasAndClamp(t *testing.T) {
	g := NewEncounterGenerator(testTables(TypeCombat), 42)

	// Base 5 is the budget ceiling: climax (+1) clamps back to 5,
	// entrance/aftermath (-1) land on 4.
	dungeon, err := g.GenerateFiveRoomDungeon(5, "dungeon", nil)
	if err != nil {
		t.Fatalf("GenerateFiveRoomDungeon failed: %v", err)
	}

	want := map[string]int{
		"entrance":  4,
		"puzzle":    5,
		"setback":   5,
		"climax":    5,
		"aftermath": 4,
	}
	for _, room := range dungeon.Rooms {
		if got := room.Encounter.Difficulty; got != want[room.Slot] {
			t.Errorf("slot %s: difficulty = %d, want %d", room.Slot, got, want[room.Slot])
		}
	}
}

func TestDungeon_ClampFloor(t *testing.T) {
	g := NewEncounterGenerator(testTables(TypeCombat), 42)

	// Base 1 with entrance delta -1 clamps up to the budget floor 1.
	dungeon, err := g.GenerateFiveRoomDungeon(1, "dungeon", []string{"entrance"})
	if err != nil {
		t.Fatalf("GenerateFiveRoomDungeon failed: %v", err)
	}
	if got := dungeon.Rooms[0].Encounter.Difficulty; got != 1 {
		t.Errorf("clamped difficulty = %d, want 1", got)
	}
}

func TestDungeon_SlotOverride(t *testing.T) {
	g := NewEncounterGenerator(testTables(TypeCombat), 42)

	dungeon, err := g.GenerateFiveRoomDungeon(3, "dungeon", []string{"climax", "entrance"})
	if err != nil {
		t.Fatalf("GenerateFiveRoomDungeon failed: %v", err)
	}
	if len(dungeon.Rooms) != 2 {
		t.Fatalf("rooms = %d, want 2", len(dungeon.Rooms))
	}
	if dungeon.Rooms[0].Slot != "climax" || dungeon.Rooms[1].Slot != "entrance" {
		t.Errorf("slots = %s,%s, want climax,entrance", dungeon.Rooms[0].Slot, dungeon.Rooms[1].Slot)
	}
}

func TestDungeon_EqualsSequentialSingleEncounters(t *testing.T) {
	const seed = 777
	const base = 3

	dungeon, err := NewEncounterGenerator(testTables(TypeCombat), seed).
		GenerateFiveRoomDungeon(base, "dungeon", nil)
	if err != nil {
		t.Fatalf("GenerateFiveRoomDungeon failed: %v", err)
	}

	// A second generator sharing one stream must reproduce every room by
	// issuing the same encounter calls in the same order.
	tables := testTables(TypeCombat)
	g := NewEncounterGenerator(tables, seed)
	for i, slot := range tables.Progression.DefaultOrder {
		level := clampLevel(base+tables.Progression.Slots[slot].DifficultyDelta, tables.Budgets)
		enc, err := g.generateEncounter(level, "dungeon", slot)
		if err != nil {
			t.Fatalf("room %d: generateEncounter failed: %v", i, err)
		}

		wantJSON, _ := json.Marshal(dungeon.Rooms[i].Encounter)
		gotJSON, _ := json.Marshal(enc)
		if string(wantJSON) != string(gotJSON) {
			t.Errorf("room %d (%s): sequential generation diverged:\n%s\n%s",
				i, slot, wantJSON, gotJSON)
		}
	}
}

func TestDungeon_Deterministic(t *testing.T) {
	a, err := NewEncounterGenerator(testTables(TypeCombat), 99).
		GenerateFiveRoomDungeon(3, "dungeon", nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := NewEncounterGenerator(testTables(TypeCombat), 99).
		GenerateFiveRoomDungeon(3, "dungeon", nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Error("same seed produced different dungeons")
	}
}

func TestDungeon_NoDefaultOrder_SortedSlotKeys(t *testing.T) {
	tables := testTables(TypeCombat)
	tables.Progression.DefaultOrder = nil
	g := NewEncounterGenerator(tables, 42)

	dungeon, err := g.GenerateFiveRoomDungeon(3, "dungeon", nil)
	if err != nil {
		t.Fatalf("GenerateFiveRoomDungeon failed: %v", err)
	}
	want := []string{"aftermath", "climax", "entrance", "puzzle", "setback"}
	for i, room := range dungeon.Rooms {
		if room.Slot != want[i] {
			t.Errorf("room %d: Slot = %q, want %q", i, room.Slot, want[i])
		}
	}
}

func TestClampLevel_NoBudgets(t *testing.T) {
	b := types.Budgets{}
	if got := clampLevel(0, b); got != 1 {
		t.Errorf("clampLevel(0) = %d, want 1", got)
	}
	if got := clampLevel(42, b); got != 42 {
		t.Errorf("clampLevel(42) = %d, want 42", got)
	}
}
