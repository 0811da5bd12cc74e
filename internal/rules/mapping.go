package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MappingEntry maps one category name to the blocks it may draw from.
// An entry with an empty block list is a parent category: it inherits
// the blocks of every child entry that follows it, up to the next
// parent (hierarchical mapping files).
type MappingEntry struct {
	Category string
	Blocks   []string
}

// Mapping is the ordered category→blocks table of one source. Order
// matters: lookup takes the first matching entry, and hierarchical
// expansion depends on parent entries preceding their children.
type Mapping []MappingEntry

// MappingSet holds the mapping of every configured source.
type MappingSet map[string]Mapping

// LoadMappingDir loads every <source>.json file in dir into a
// MappingSet keyed by the file's base name. Parent categories are
// expanded in place.
func LoadMappingDir(dir string) (MappingSet, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: scan mapping dir: %v", ErrConfig, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no category mappings in %s", ErrConfig, dir)
	}
	set := make(MappingSet, len(matches))
	for _, path := range matches {
		source := strings.TrimSuffix(filepath.Base(path), ".json")
		m, err := loadMapping(path)
		if err != nil {
			return nil, err
		}
		set[source] = m.expandParents()
	}
	return set, nil
}

// loadMapping parses one mapping file preserving key order. The file
// is a JSON object of category → block list; block values may be
// numbers or strings.
func loadMapping(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read mapping %s: %v", ErrConfig, path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: parse mapping %s: %v", ErrConfig, path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: mapping %s: expected JSON object", ErrConfig, path)
	}

	var m Mapping
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: parse mapping %s: %v", ErrConfig, path, err)
		}
		key, _ := keyTok.(string)
		var vals []any
		if err := dec.Decode(&vals); err != nil {
			return nil, fmt.Errorf("%w: mapping %s: category %q: %v", ErrConfig, path, key, err)
		}
		blocks := make([]string, 0, len(vals))
		for _, v := range vals {
			switch b := v.(type) {
			case string:
				blocks = append(blocks, strings.TrimSpace(b))
			case json.Number:
				blocks = append(blocks, b.String())
			default:
				blocks = append(blocks, strings.TrimSpace(fmt.Sprint(v)))
			}
		}
		m = append(m, MappingEntry{Category: key, Blocks: blocks})
	}
	return m, nil
}

// expandParents fills parent categories (empty block lists) with the
// blocks of the child entries that follow them.
func (m Mapping) expandParents() Mapping {
	out := make(Mapping, len(m))
	copy(out, m)

	parent := -1
	var collected []string
	flush := func() {
		if parent >= 0 {
			out[parent].Blocks = collected
		}
	}
	for i, e := range m {
		if len(e.Blocks) == 0 {
			flush()
			parent = i
			collected = nil
			continue
		}
		collected = append(collected, e.Blocks...)
	}
	flush()
	return out
}

// BlockSources maps every block to the set of sources whose mapping
// mentions it. A block used by exactly one source is exclusive to it;
// blocks used by several sources are shared.
func (s MappingSet) BlockSources() map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for source, m := range s {
		for _, e := range m {
			for _, b := range e.Blocks {
				key := strings.ToUpper(strings.TrimSpace(b))
				if out[key] == nil {
					out[key] = make(map[string]bool)
				}
				out[key][source] = true
			}
		}
	}
	return out
}

// Exclusive reports whether block is usable only by the given source.
func (s MappingSet) Exclusive(block, source string) bool {
	srcs := s.BlockSources()[strings.ToUpper(strings.TrimSpace(block))]
	return len(srcs) == 1 && srcs[source]
}
