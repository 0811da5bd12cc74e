package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeating(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seating_rules.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSeating(t *testing.T) {
	path := writeSeating(t, `{
		"single_rule": {"strict_single_only": false, "behavior_if_no_single": "break_pair"},
		"sources": {"tixstock": {"allow_sch": true, "sch_priority": "first"}},
		"protection": {"do_not_break_groups_for_smaller_orders": true, "protect_group_sizes": [4, 5]}
	}`)
	s, err := LoadSeating(path)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Source("tixstock").AllowSCH {
		t.Error("tixstock allow_sch not loaded")
	}
	if s.Source("unknown").AllowSCH {
		t.Error("unconfigured source must default to no SCH")
	}
	if !s.ProtectedSize(4) || s.ProtectedSize(3) {
		t.Error("protected sizes misread")
	}
}

func TestLoadSeatingRejectsBadEnum(t *testing.T) {
	path := writeSeating(t, `{"single_rule": {"behavior_if_no_single": "improvise"}}`)
	if _, err := LoadSeating(path); err == nil {
		t.Fatal("want error for unknown behavior_if_no_single")
	}

	path = writeSeating(t, `{"sources": {"x": {"sch_priority": "middle"}}}`)
	if _, err := LoadSeating(path); err == nil {
		t.Fatal("want error for unknown sch_priority")
	}
}

func TestProtectionDisabled(t *testing.T) {
	s := Seating{Protection: Protection{ProtectGroupSizes: []int{4}}}
	if s.ProtectedSize(4) {
		t.Error("protection sizes must be inert while the switch is off")
	}
}
