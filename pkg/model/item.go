package model

import "strings"

// Item tracks the match and filter state of one source row.
// The candidate attributes it sorts and filters on are captured when it is tracked.
type Item struct {
	group GroupID
	row   RowID
	seq   uint64

	name string
	// key is the folded name, also used by the name index.
	key   string
	props Properties
	depth int

	matching bool
	passes   bool
}

func newItem(id RowID, seq uint64, c Candidate, f *folder) *Item {
	return &Item{
		row:   id,
		seq:   seq,
		name:  c.Name,
		key:   f.fold(c.Name),
		props: c.Properties,
		depth: c.InheritanceDepth,
	}
}

func (it *Item) Row() RowID { return it.row }
func (it *Item) Group() GroupID { return it.group }
func (it *Item) IsMatching() bool { return it.matching }
func (it *Item) IsFiltered() bool { return !it.passes }
func (it *Item) IsVisible() bool { return it.matching && it.passes }

// nameFor returns the name compared under cs.
func (it *Item) nameFor(cs CaseSensitivity) string {
	if cs == CaseSensitive {
		return it.name
	}
	return it.key
}

// match recomputes whether the name starts with prefix and reports a flip.
// prefix must already be in the form folder.key returns for cs.
func (it *Item) match(prefix string, cs CaseSensitivity) bool {
	was := it.matching
	it.matching = strings.HasPrefix(it.nameFor(cs), prefix)
	return was != it.matching
}

// filter recomputes whether the item passes the active filters and reports a flip.
func (it *Item) filter(cfg *FilteringConfig, contextMatches bool) bool {
	was := it.passes
	it.passes = passesFilters(cfg, it.props, it.depth, contextMatches)
	return was != it.passes
}

func passesFilters(cfg *FilteringConfig, props Properties, depth int, contextMatches bool) bool {
	if !cfg.Enabled {
		return true
	}
	if cfg.ContextMatchesOnly && !contextMatches {
		return false
	}
	if cfg.ByAttribute && cfg.Attributes&props != 0 {
		return false
	}
	if cfg.MaxInheritanceDepth > 0 && depth > cfg.MaxInheritanceDepth {
		return false
	}
	return true
}
