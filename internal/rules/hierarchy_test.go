package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func testH() Hierarchy {
	return Hierarchy{
		PriorityOrder: []HierarchyEntry{
			{Name: "Category 1", Level: 3},
			{Name: "Category 2", Level: 5},
			{Name: "Category 3", Level: 8},
		},
		CategoryAliases: map[string]string{"cat1": "Category 1"},
		BlockedUpgrades: []BlockedUpgrade{{From: "Category 3", To: "Category 1"}},
	}
}

func TestHierarchyLevel(t *testing.T) {
	h := testH()
	cases := map[string]int{
		"Category 2": 5,
		"CATEGORY 2": 5,
		"cat1":       3, // alias
		"Terrace":    UnknownLevel,
	}
	for in, want := range cases {
		if got := h.Level(in); got != want {
			t.Errorf("Level(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestHierarchyUpgrades(t *testing.T) {
	h := testH()
	got := h.Upgrades("Category 3")
	if len(got) != 2 || got[0] != "Category 1" || got[1] != "Category 2" {
		t.Fatalf("Upgrades = %v, want [Category 1, Category 2] best first", got)
	}
	if ups := h.Upgrades("Category 1"); len(ups) != 0 {
		t.Errorf("best category has upgrades %v, want none", ups)
	}
}

func TestHierarchyUpgradeBlocked(t *testing.T) {
	h := testH()
	if !h.UpgradeBlocked("Category 3 - Fondo", "Category 1") {
		t.Error("substring match should block the pairing")
	}
	if h.UpgradeBlocked("Category 2", "Category 1") {
		t.Error("unrelated pairing wrongly blocked")
	}
}

func TestLoadHierarchy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hierarchy.json")
	content := `{
		"priority_order": [{"name": "Category 1", "level": 3}],
		"category_aliases": {"cat1": "Category 1"},
		"blocked_upgrades": [{"from": "Shortside", "to": "Lateral"}]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := LoadHierarchy(path)
	if err != nil {
		t.Fatal(err)
	}
	if h.Level("cat1") != 3 {
		t.Errorf("alias level = %d, want 3", h.Level("cat1"))
	}
}

func TestLoadHierarchyRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hierarchy.json")
	if err := os.WriteFile(path, []byte(`{"priority_order": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHierarchy(path); err == nil {
		t.Fatal("want error for empty priority_order")
	}
}
