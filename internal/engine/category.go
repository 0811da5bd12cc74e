package engine

import (
	"sort"
	"strings"

	"github.com/iliyamo/ticket-allocation/internal/rules"
)

// EligibleBlock is one block an order may draw from, tagged with its
// exclusivity: a block only this order's source can use ranks before
// blocks shared between sources.
type EligibleBlock struct {
	Block     string
	Exclusive bool
}

// Eligibility is the ordered block list resolved for one order.
// Specific is true when the order's category named the block
// explicitly; such orders bypass mapping and upgrades entirely.
type Eligibility struct {
	Blocks   []EligibleBlock
	Specific bool
}

// Empty reports whether no block is eligible, i.e. the category had
// no mapping and no explicit block token.
func (e Eligibility) Empty() bool { return len(e.Blocks) == 0 }

// BlockIndex returns the rank of a block inside the eligibility list
// (0 = most preferred), or -1 when the block is not eligible.
func (e Eligibility) BlockIndex(block string) int {
	b := strings.ToUpper(strings.TrimSpace(block))
	for i, eb := range e.Blocks {
		if strings.ToUpper(eb.Block) == b {
			return i
		}
	}
	return -1
}

// CategoryResolver maps an order's category string to its ordered
// eligible blocks: explicit-block short-circuit, flexible mapping
// lookup, hierarchy upgrades, exclusivity ordering. It holds no
// mutable state and is safe for reuse across orders.
type CategoryResolver struct {
	mapping      rules.MappingSet
	hierarchy    rules.Hierarchy
	blockSources map[string]map[string]bool
}

// NewCategoryResolver builds a resolver over the loaded mapping set
// and hierarchy. The block→sources table is computed once here so
// per-order resolution stays cheap.
func NewCategoryResolver(mapping rules.MappingSet, hierarchy rules.Hierarchy) *CategoryResolver {
	return &CategoryResolver{
		mapping:      mapping,
		hierarchy:    hierarchy,
		blockSources: mapping.BlockSources(),
	}
}

// Resolve computes the eligibility for one (category, source) pair.
// An empty result is not an error here; the order is reported
// unassignable when the resolver stage finds nothing to allocate.
func (r *CategoryResolver) Resolve(category, source string) Eligibility {
	// Explicit block token: absolute priority, nothing else applies.
	if b := ExtractBlock(category); b != "" {
		return Eligibility{
			Blocks:   []EligibleBlock{{Block: b, Exclusive: true}},
			Specific: true,
		}
	}

	base := r.lookupBlocks(source, category)

	seen := make(map[string]bool, len(base))
	blocks := make([]EligibleBlock, 0, len(base))
	add := func(b string) {
		key := strings.ToUpper(strings.TrimSpace(b))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		blocks = append(blocks, EligibleBlock{Block: key, Exclusive: r.exclusive(key, source)})
	}
	for _, b := range base {
		add(b)
	}

	// Upgrade extension: append blocks of strictly better categories,
	// unless the pairing is forbidden (e.g. shortside never upgrades
	// into lateral).
	for _, up := range r.hierarchy.Upgrades(category) {
		if r.hierarchy.UpgradeBlocked(category, up) {
			continue
		}
		for _, b := range r.lookupBlocks(source, up) {
			add(b)
		}
	}

	// Exclusive blocks first; within each tag group higher block
	// numbers first (higher block = cheaper under the venue's
	// convention), then the identifier itself for determinism.
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Exclusive != blocks[j].Exclusive {
			return blocks[i].Exclusive
		}
		ni, nj := BlockNumber(blocks[i].Block), BlockNumber(blocks[j].Block)
		if ni != nj {
			return ni > nj
		}
		return blocks[i].Block < blocks[j].Block
	})

	return Eligibility{Blocks: blocks}
}

// lookupBlocks finds the mapping entry of the source matching the
// category and returns its blocks. An exact match on the normalized
// names wins over the flexible match, so "Category 2" never lands on
// "Category 2 Lateral" just because the file lists lateral first.
func (r *CategoryResolver) lookupBlocks(source, category string) []string {
	m := r.mapping[NormalizeSource(source)]
	cat := NormalizeCategory(category)
	for _, e := range m {
		if NormalizeCategory(e.Category) == cat {
			return e.Blocks
		}
	}
	for _, e := range m {
		if CategoryMatches(category, e.Category) {
			return e.Blocks
		}
	}
	return nil
}

func (r *CategoryResolver) exclusive(block, source string) bool {
	srcs := r.blockSources[strings.ToUpper(block)]
	return len(srcs) == 1 && srcs[NormalizeSource(source)]
}
