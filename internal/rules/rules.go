// Package rules loads the static, versioned rule configuration the
// allocation engine runs under: seating rules, the category hierarchy
// and the per-source category→block mappings. Everything is loaded
// once at run start into immutable values passed explicitly into the
// engine; there is no in-core global state.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrConfig wraps any missing or invalid rule configuration. A run
// aborts on ErrConfig before processing any order.
var ErrConfig = errors.New("invalid rules configuration")

// SingleRule controls how quantity-1 orders are resolved when no true
// single seat exists.
type SingleRule struct {
	// StrictSingleOnly rejects the order outright when no SINGLE
	// group is available (unless the order names a specific block).
	StrictSingleOnly bool `json:"strict_single_only"`
	// BehaviorIfNoSingle applies only when StrictSingleOnly is
	// false: "reject", "break_pair" or "use_sch".
	BehaviorIfNoSingle string `json:"behavior_if_no_single"`
}

// SourcePolicy is the per-source allocation policy.
type SourcePolicy struct {
	// AllowSCH permits a single seat-gap (step of 4) inside a
	// multi-seat selection for this source.
	AllowSCH bool `json:"allow_sch"`
	// SCHPriority orders gap classes during group selection:
	// "first" ranks one-gap groups before gapless ones, "last" (the
	// default) the other way round.
	SCHPriority string `json:"sch_priority"`
}

// Protection guards larger adjacency groups from being broken up by
// smaller orders.
type Protection struct {
	DoNotBreakGroupsForSmallerOrders bool  `json:"do_not_break_groups_for_smaller_orders"`
	ProtectGroupSizes                []int `json:"protect_group_sizes"`
}

// Seating is the full seating-rules document.
type Seating struct {
	SingleRule SingleRule              `json:"single_rule"`
	Sources    map[string]SourcePolicy `json:"sources"`
	Protection Protection              `json:"protection"`
}

// Source returns the policy for a source id, or a zero policy (no
// SCH, default priority) when the source is not configured.
func (s Seating) Source(id string) SourcePolicy {
	return s.Sources[id]
}

// ProtectedSize reports whether groups of the given size are
// protected from partial consumption.
func (s Seating) ProtectedSize(n int) bool {
	if !s.Protection.DoNotBreakGroupsForSmallerOrders {
		return false
	}
	for _, p := range s.Protection.ProtectGroupSizes {
		if p == n {
			return true
		}
	}
	return false
}

// LoadSeating reads and validates the seating-rules JSON file.
func LoadSeating(path string) (Seating, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Seating{}, fmt.Errorf("%w: read seating rules: %v", ErrConfig, err)
	}
	var s Seating
	if err := json.Unmarshal(b, &s); err != nil {
		return Seating{}, fmt.Errorf("%w: parse seating rules: %v", ErrConfig, err)
	}
	switch s.SingleRule.BehaviorIfNoSingle {
	case "", "reject", "break_pair", "use_sch":
	default:
		return Seating{}, fmt.Errorf("%w: unknown behavior_if_no_single %q", ErrConfig, s.SingleRule.BehaviorIfNoSingle)
	}
	for id, p := range s.Sources {
		switch p.SCHPriority {
		case "", "first", "last":
		default:
			return Seating{}, fmt.Errorf("%w: source %s: unknown sch_priority %q", ErrConfig, id, p.SCHPriority)
		}
	}
	return s, nil
}
