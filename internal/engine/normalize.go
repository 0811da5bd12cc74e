// Package engine implements the allocation core: resolving which
// blocks an order may draw from, classifying unassigned tickets into
// adjacency groups, and deciding which group satisfies each order.
// All decisions are rule-based and reproducible from the same inputs.
package engine

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	spaceRe     = regexp.MustCompile(`\s+`)
	parensRe    = regexp.MustCompile(`\([^)]*\)`)
	dateRe      = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	teamSplit   = regexp.MustCompile(`(?i)\s+(?:VS\.?|V|-|–)\s+`)
	categoriaRe = regexp.MustCompile(`(?i)categor[íi]a`)
	fondoRe     = regexp.MustCompile(`\s*-\s*fondo\s*\d*`)
	trailBlock  = regexp.MustCompile(`\b(\d{3})\s*$`)
	nonDigitRe  = regexp.MustCompile(`\D`)
)

// norm collapses internal whitespace and trims the string.
func norm(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeSource folds the known spellings of each ticket source to
// its canonical id.
func NormalizeSource(src string) string {
	s := strings.ToLower(strings.TrimSpace(src))
	switch {
	case strings.Contains(s, "livefootball"):
		return "livefootballtickets"
	case strings.Contains(s, "footballticketnet"):
		return "footballticketnet"
	case strings.Contains(s, "sportsevents"):
		return "sportsevents365"
	case strings.Contains(s, "tixstock"):
		return "tixstock"
	case strings.Contains(s, "golden"):
		return "goldenseat"
	}
	return s
}

// ExtractBlock returns the explicit block number when the category
// string ends with one (e.g. "CATEGORIA 1 PREMIUM 304"), or "".
func ExtractBlock(category string) string {
	if m := trailBlock.FindStringSubmatch(strings.TrimSpace(category)); m != nil {
		return m[1]
	}
	return ""
}

// NormalizeCategory lowers, strips parenthesised notes and the
// "- fondo" suffix, and folds Spanish "categoría" to "category" so
// source spellings compare equal.
func NormalizeCategory(category string) string {
	s := strings.ToLower(strings.TrimSpace(category))
	s = parensRe.ReplaceAllString(s, "")
	s = categoriaRe.ReplaceAllString(s, "category")
	s = fondoRe.ReplaceAllString(s, "")
	return norm(s)
}

// categoryAbbrev expands the short codes sources use for the common
// category names. Keyed and valued in normalized form.
var categoryAbbrev = map[string][]string{
	"category 1":         {"cat1", "cat 1"},
	"category 2":         {"cat2", "cat 2"},
	"category 3":         {"cat3", "cat 3"},
	"category 4":         {"cat4", "cat 4"},
	"category 1 premium": {"cat1 premium", "cat 1 premium"},
	"category 2 lateral": {"cat2 lateral", "cat 2 lateral"},
}

// CategoryMatches reports whether an order category matches a mapping
// key, trying exact, substring and abbreviation-expansion matches on
// the normalized forms.
func CategoryMatches(category, mappingKey string) bool {
	cat := NormalizeCategory(category)
	key := NormalizeCategory(mappingKey)
	if cat == key {
		return true
	}
	if cat != "" && key != "" && (strings.Contains(cat, key) || strings.Contains(key, cat)) {
		return true
	}
	for full, shorts := range categoryAbbrev {
		if matchesAny(cat, full, shorts) && matchesAny(key, full, shorts) {
			return true
		}
	}
	return false
}

func matchesAny(s, full string, shorts []string) bool {
	if s == full {
		return true
	}
	for _, sh := range shorts {
		if s == sh {
			return true
		}
	}
	return false
}

// ExtractTeams pulls the team names out of a game string like
// "Real Madrid vs Barcelona (Santiago Bernabéu)", dropping the
// stadium/date noise.
func ExtractTeams(game string) []string {
	s := strings.ToUpper(norm(game))
	s = parensRe.ReplaceAllString(s, "")
	s = dateRe.ReplaceAllString(s, "")
	parts := teamSplit.Split(s, -1)
	var teams []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); len(t) > 2 {
			teams = append(teams, t)
		}
	}
	return teams
}

// GamesMatch reports whether an order's event refers to the same game
// as a ticket, tolerating team-name variants: it is enough for one
// team of the order to contain, or be contained in, one team of the
// ticket ("REAL MADRID" vs "R. MADRID").
func GamesMatch(orderEvent, ticketGame string) bool {
	for _, ot := range ExtractTeams(orderEvent) {
		for _, tt := range ExtractTeams(ticketGame) {
			if strings.Contains(ot, tt) || strings.Contains(tt, ot) {
				return true
			}
		}
	}
	return false
}

// tixstockBlocks translates between TixStock's block numbering and the
// venue's. The table is symmetric: 1↔101 … 24↔124.
var tixstockBlocks = map[string]string{
	"1": "101", "2": "102", "3": "103", "4": "104", "5": "105", "6": "106",
	"15": "115", "17": "117", "18": "118", "19": "119", "20": "120",
	"21": "121", "22": "122", "23": "123", "24": "124",
	"101": "1", "102": "2", "103": "3", "104": "4", "105": "5", "106": "6",
	"115": "15", "117": "17", "118": "18", "119": "19", "120": "20",
	"121": "21", "122": "22", "123": "23", "124": "24",
}

// TranslateBlock returns the block spellings to accept for a source.
// Only TixStock uses an alternate numbering; other sources get the
// block back unchanged.
func TranslateBlock(block, source string) []string {
	b := strings.ToUpper(strings.TrimSpace(block))
	if NormalizeSource(source) != "tixstock" {
		return []string{b}
	}
	if alt, ok := tixstockBlocks[b]; ok {
		return []string{b, alt}
	}
	return []string{b}
}

// BlockNumber extracts the numeric part of a block identifier for the
// higher-block-is-cheaper ordering convention. Non-numeric blocks
// sort as zero.
func BlockNumber(block string) int {
	digits := nonDigitRe.ReplaceAllString(block, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// ParseUpTo reads the seating-arrangement text of an order: "Single
// Seat(s)" means one, "Up To N Together" means N. Zero means the text
// carries no constraint.
func ParseUpTo(seating string) int {
	s := strings.ToLower(norm(seating))
	if strings.Contains(s, "single") {
		return 1
	}
	if m := upToRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

var upToRe = regexp.MustCompile(`up\s*to\s*(\d+)\s*together`)
