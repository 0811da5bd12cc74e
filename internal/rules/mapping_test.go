package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMapping(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMappingDir(t *testing.T) {
	dir := t.TempDir()
	writeMapping(t, dir, "livefootballtickets.json", `{
		"Category 1": ["517", 518],
		"Category 2": ["421"]
	}`)
	writeMapping(t, dir, "goldenseat.json", `{"Category 2": ["421"]}`)

	set, err := LoadMappingDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := set["livefootballtickets"]
	if len(m) != 2 {
		t.Fatalf("got %d entries, want 2", len(m))
	}
	// Numeric block values load as their string spelling.
	if m[0].Blocks[1] != "518" {
		t.Errorf("blocks = %v, want numeric 518 as string", m[0].Blocks)
	}
	if !set.Exclusive("517", "livefootballtickets") {
		t.Error("517 should be exclusive to livefootballtickets")
	}
	if set.Exclusive("421", "livefootballtickets") {
		t.Error("421 is shared and must not be exclusive")
	}
}

func TestLoadMappingDirEmpty(t *testing.T) {
	if _, err := LoadMappingDir(t.TempDir()); err == nil {
		t.Fatal("want error for a directory without mapping files")
	}
}

func TestMappingPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	writeMapping(t, dir, "src.json", `{
		"Category 2 Lateral": ["427"],
		"Category 2": ["421"],
		"Category 1": ["517"]
	}`)
	set, err := LoadMappingDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := set["src"]
	want := []string{"Category 2 Lateral", "Category 2", "Category 1"}
	for i, e := range m {
		if e.Category != want[i] {
			t.Fatalf("entry %d = %q, want %q (file order must be preserved)", i, e.Category, want[i])
		}
	}
}

func TestMappingExpandsParents(t *testing.T) {
	// A parent with an empty list inherits the blocks of the children
	// that follow it, up to the next parent.
	dir := t.TempDir()
	writeMapping(t, dir, "src.json", `{
		"Category 1 Premium": [],
		"Category 1 Premium Central": ["524"],
		"Category 1 Premium Wing": ["523", "526"],
		"Category 2": [],
		"Category 2 East": ["427"]
	}`)
	set, err := LoadMappingDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := set["src"]
	if got := m[0].Blocks; len(got) != 3 || got[0] != "524" || got[2] != "526" {
		t.Fatalf("parent blocks = %v, want the children's [524 523 526]", got)
	}
	if got := m[3].Blocks; len(got) != 1 || got[0] != "427" {
		t.Fatalf("second parent blocks = %v, want [427]", got)
	}
}
