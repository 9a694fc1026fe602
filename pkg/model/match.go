package model

import (
	"strings"
)

// ChangeType classifies how the typed prefix moved.
type ChangeType int

const (
	Unchanged ChangeType = iota
	// Narrow means the new prefix extends the old one; only matching rows can change.
	Narrow
	// Broaden means the new prefix is a prefix of the old one; only non-matching rows can change.
	Broaden
	// Change is any other edit and retests every row.
	Change
)

func (t ChangeType) String() string {
	switch t {
	case Unchanged:
		return "unchanged"
	case Narrow:
		return "narrow"
	case Broaden:
		return "broaden"
	case Change:
		return "change"
	}
	return "unknown"
}

// Classify reports how moving from prev to next affects the matching set.
func Classify(prev, next string) ChangeType {
	switch {
	case prev == next:
		return Unchanged
	case strings.HasPrefix(next, prev):
		return Narrow
	case strings.HasPrefix(prev, next):
		return Broaden
	}
	return Change
}

// CurrentCompletion returns the typed prefix rows are matched against.
func (m *Model) CurrentCompletion() string {
	return m.currentMatch
}

// SetCurrentCompletion updates the typed prefix and returns how it was classified.
// Only the rows that can flip are retested.
func (m *Model) SetCurrentCompletion(prefix string) ChangeType {
	ct := Classify(m.currentMatch, prefix)
	if ct == Unchanged {
		return ct
	}
	m.currentMatch = prefix

	var candidates []*Item
	switch ct {
	case Narrow:
		for _, id := range m.index.snapshotMatching() {
			if it, ok := m.items[RowID(id)]; ok {
				candidates = append(candidates, it)
			}
		}
	case Broaden:
		if prefix == "" {
			// Rows with an empty name never enter the index.
			for _, it := range m.allItems() {
				if !it.matching {
					candidates = append(candidates, it)
				}
			}
			break
		}
		rows := m.index.subtree(m.fold.fold(prefix))
		rows.AndNot(m.index.matching)
		it := rows.Iterator()
		for it.HasNext() {
			if item, ok := m.items[RowID(it.Next())]; ok {
				candidates = append(candidates, item)
			}
		}
	default:
		candidates = m.allItems()
	}
	m.log.Debug("Completion prefix changed", "prefix", prefix, "change", ct, "retested", len(candidates))
	m.rematch(candidates)
	return ct
}

// matchPrefix returns the current prefix in the form item names are matched against.
func (m *Model) matchPrefix() string {
	return m.fold.key(m.currentMatch, m.cfg.MatchCaseSensitivity)
}

func (m *Model) allItems() []*Item {
	out := make([]*Item, 0, len(m.items))
	for _, g := range m.groups {
		out = append(out, g.prefilter...)
	}
	return out
}

// rematch retests items against the current prefix and moves the ones whose visibility flipped.
func (m *Model) rematch(items []*Item) {
	shown := make(map[GroupID][]*Item)
	hidden := make(map[GroupID][]*Item)
	prefix := m.matchPrefix()
	for _, it := range items {
		was := it.IsVisible()
		if !it.match(prefix, m.cfg.MatchCaseSensitivity) {
			continue
		}
		m.index.setMatching(it.row, it.matching)
		switch now := it.IsVisible(); {
		case now && !was:
			shown[it.group] = append(shown[it.group], it)
		case !now && was:
			hidden[it.group] = append(hidden[it.group], it)
		}
	}
	for _, g := range m.groups {
		g.hideAll(hidden[g.id], m.cmp, m)
		g.showAll(shown[g.id], m.cmp, m)
	}
}
