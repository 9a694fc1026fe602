package model

import (
	"slices"

	"github.com/zeebo/xxh3"
)

// groupKey hashes a reduced grouping key. Collisions are resolved by comparing
// attribute and scope within the bucket.
func groupKey(attr Properties, scope string) uint64 {
	return xxh3.HashStringSeed(scope, uint64(attr))
}

func (m *Model) newGroup(attr Properties, scope string, ungrouped bool) *Group {
	g := &Group{
		id:        GroupID(len(m.groups)),
		attribute: attr,
		scope:     scope,
		scopeKey:  m.fold.fold(scope),
		title:     groupTitle(attr, scope),
		ungrouped: ungrouped,
		isEmpty:   true,
	}
	m.groups = append(m.groups, g)
	return g
}

func (m *Model) ungroupedGroup() *Group {
	if m.ungrouped == nil {
		m.ungrouped = m.newGroup(NoProperty, "", true)
	}
	return m.ungrouped
}

func (m *Model) groupByID(id GroupID) *Group {
	if id < 0 || int(id) >= len(m.groups) {
		return nil
	}
	return m.groups[id]
}

// fetchGroup returns the group for a reduced key, creating it on first use.
// The empty key resolves to the ungrouped group.
func (m *Model) fetchGroup(attr Properties, scope string) *Group {
	if attr == NoProperty && scope == "" {
		return m.ungroupedGroup()
	}
	key := groupKey(attr, scope)
	for _, g := range m.registry[key] {
		if g.attribute == attr && g.scope == scope {
			return g
		}
	}
	g := m.newGroup(attr, scope, false)
	m.registry[key] = append(m.registry[key], g)
	m.log.Debug("Created group", "id", g.id, "title", g.title)
	return g
}

// groupFor resolves the group a candidate belongs to under the current grouping.
func (m *Model) groupFor(c Candidate) *Group {
	attr, invalid := groupingAttributes(&m.cfg.Grouping, c.Properties)
	if invalid {
		m.log.Warn("Candidate carries conflicting grouping bits", "name", c.Name, "properties", c.Properties)
	}
	return m.fetchGroup(attr, groupingScope(&m.cfg.Grouping, c.Scope))
}

// hideOrShowGroup keeps the Row Table in sync with whether g has visible rows.
func (m *Model) hideOrShowGroup(g *Group) {
	switch {
	case g.isEmpty && len(g.rows) > 0:
		m.showGroup(g)
	case !g.isEmpty && len(g.rows) == 0:
		m.hideGroup(g)
	}
}

// showGroup adds g to the Row Table at its sorted position.
func (m *Model) showGroup(g *Group) {
	pos, _ := slices.BinarySearchFunc(m.rowTable, g, m.cmp.compareGroups)
	m.editRowTable(RowsAboutToBeInserted, RowsInserted, pos, func() {
		m.rowTable = slices.Insert(m.rowTable, pos, g)
		g.isEmpty = false
	})
}

// hideGroup drops g and any rows it still shows from the Row Table.
func (m *Model) hideGroup(g *Group) {
	pos := slices.Index(m.rowTable, g)
	if pos < 0 {
		g.rows = g.rows[:0]
		g.isEmpty = true
		return
	}
	m.editRowTable(RowsAboutToBeRemoved, RowsRemoved, pos, func() {
		g.rows = g.rows[:0]
		m.rowTable = slices.Delete(m.rowTable, pos, pos+1)
		g.isEmpty = true
	})
}

// editRowTable runs edit between the header events for pos. Without headers the
// Row Table is not part of the view and nothing is announced.
func (m *Model) editRowTable(before, after EventKind, pos int, edit func()) {
	headers := m.cfg.hasGroups()
	if headers {
		m.emit(Event{Kind: before, Parent: Index{}, First: pos, Last: pos})
	}
	edit()
	if headers {
		m.emit(Event{Kind: after, Parent: Index{}, First: pos, Last: pos})
	}
}

// clearGroups discards every group, item and index entry.
func (m *Model) clearGroups() {
	for _, g := range m.groups {
		g.clear()
	}
	m.groups = nil
	m.ungrouped = nil
	m.rowTable = nil
	clear(m.registry)
	clear(m.items)
	m.index.clear()
}

// createGroups rebuilds all groups from the source's current rows, announced as a reset.
func (m *Model) createGroups() {
	m.emit(Event{Kind: ModelAboutToReset})
	m.resetting = true
	m.clearGroups()
	m.insert(m.src.Rows())
	m.resetting = false
	m.emit(Event{Kind: ModelReset})
	m.log.Debug("Rebuilt groups", "items", len(m.items), "groups", len(m.groups), "shown", len(m.rowTable))
}
