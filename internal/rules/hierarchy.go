package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// UnknownLevel is the level assigned to categories absent from the
// hierarchy. It ranks below every configured category so unknown
// categories sort last and never receive upgrades.
const UnknownLevel = 99

// HierarchyEntry names one category and its priority level
// (1 = best, 11 = worst).
type HierarchyEntry struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// BlockedUpgrade forbids a directional upgrade pairing: an order in a
// category matching From may not be upgraded into a category matching
// To. Matching is by case-insensitive substring, so a rule like
// {from: "SHORTSIDE", to: "LATERAL"} covers every shortside tier.
type BlockedUpgrade struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Hierarchy is the category hierarchy document: the ordered category
// levels, alias spellings, and the directional upgrade restrictions.
// Loaded once, read-only for the run.
type Hierarchy struct {
	PriorityOrder   []HierarchyEntry  `json:"priority_order"`
	CategoryAliases map[string]string `json:"category_aliases"`
	BlockedUpgrades []BlockedUpgrade  `json:"blocked_upgrades"`
}

// LoadHierarchy reads and validates the category-hierarchy JSON file.
func LoadHierarchy(path string) (Hierarchy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Hierarchy{}, fmt.Errorf("%w: read hierarchy: %v", ErrConfig, err)
	}
	var h Hierarchy
	if err := json.Unmarshal(b, &h); err != nil {
		return Hierarchy{}, fmt.Errorf("%w: parse hierarchy: %v", ErrConfig, err)
	}
	if len(h.PriorityOrder) == 0 {
		return Hierarchy{}, fmt.Errorf("%w: hierarchy has no priority_order entries", ErrConfig)
	}
	for _, e := range h.PriorityOrder {
		if e.Name == "" || e.Level <= 0 {
			return Hierarchy{}, fmt.Errorf("%w: bad hierarchy entry %+v", ErrConfig, e)
		}
	}
	return h, nil
}

// Level returns the priority level of a category, resolving aliases.
// Unknown categories get UnknownLevel.
func (h Hierarchy) Level(category string) int {
	cat := strings.ToUpper(strings.TrimSpace(category))
	for _, e := range h.PriorityOrder {
		if cat == strings.ToUpper(e.Name) {
			return e.Level
		}
	}
	for alias, canonical := range h.CategoryAliases {
		if cat == strings.ToUpper(strings.TrimSpace(alias)) {
			for _, e := range h.PriorityOrder {
				if strings.EqualFold(canonical, e.Name) {
					return e.Level
				}
			}
		}
	}
	return UnknownLevel
}

// Upgrades returns the names of every category strictly better
// (lower level) than the given one, best first.
func (h Hierarchy) Upgrades(category string) []string {
	level := h.Level(category)
	var out []string
	for _, e := range h.PriorityOrder {
		if e.Level < level {
			out = append(out, e.Name)
		}
	}
	return out
}

// UpgradeBlocked reports whether upgrading from one category into
// another is forbidden by a directional restriction.
func (h Hierarchy) UpgradeBlocked(from, to string) bool {
	f := strings.ToUpper(from)
	t := strings.ToUpper(to)
	for _, b := range h.BlockedUpgrades {
		if strings.Contains(f, strings.ToUpper(b.From)) && strings.Contains(t, strings.ToUpper(b.To)) {
			return true
		}
	}
	return false
}
