package model

import (
	"slices"
)

// GroupID addresses a Group in the model's group arena. Ids are stable until the next rebuild.
type GroupID int

// Group is a bucket of items sharing a grouping key.
// rows holds the visible items in comparator order; prefilter holds every item ever assigned.
type Group struct {
	id        GroupID
	attribute Properties
	scope     string
	scopeKey  string
	title     string
	ungrouped bool

	rows      []*Item
	prefilter []*Item
	// isEmpty is true while the group is absent from the Row Table.
	isEmpty bool
}

func (g *Group) ID() GroupID { return g.id }
func (g *Group) Attribute() Properties { return g.attribute }
func (g *Group) Scope() string { return g.scope }
func (g *Group) Title() string { return g.title }
func (g *Group) Len() int { return len(g.rows) }
func (g *Group) IsEmpty() bool { return g.isEmpty }

// rowSink performs visible-row mutations on behalf of a group so they can be announced.
type rowSink interface {
	insertRows(g *Group, first int, items []*Item)
	removeRows(g *Group, first, last int)
}

func (g *Group) insertPos(it *Item, c *comparator) int {
	pos, _ := slices.BinarySearchFunc(g.rows, it, c.compare)
	return pos
}

func (g *Group) rowPos(it *Item, c *comparator) (int, bool) {
	pos, found := slices.BinarySearchFunc(g.rows, it, c.compare)
	if found && g.rows[pos] != it {
		found = false
	}
	if !found {
		// A miss is confirmed with a scan.
		pos = slices.Index(g.rows, it)
		found = pos >= 0
	}
	return pos, found
}

// addItems records items in prefilter and shows the visible ones in sorted position.
func (g *Group) addItems(items []*Item, c *comparator, sink rowSink) {
	var shown []*Item
	for _, it := range items {
		it.group = g.id
		g.prefilter = append(g.prefilter, it)
		if it.IsVisible() {
			shown = append(shown, it)
		}
	}
	g.showAll(shown, c, sink)
}

// removeItems drops items from both lists.
func (g *Group) removeItems(items []*Item, c *comparator, sink rowSink) {
	gone := make(map[*Item]struct{}, len(items))
	var hidden []*Item
	for _, it := range items {
		gone[it] = struct{}{}
		if it.IsVisible() {
			hidden = append(hidden, it)
		}
	}
	g.hideAll(hidden, c, sink)
	g.prefilter = slices.DeleteFunc(g.prefilter, func(it *Item) bool {
		_, ok := gone[it]
		return ok
	})
}

// resort rebuilds rows from prefilter under the current comparator.
func (g *Group) resort(c *comparator) {
	g.rows = g.rows[:0]
	for _, it := range g.prefilter {
		if it.IsVisible() {
			g.rows = append(g.rows, it)
		}
	}
	slices.SortFunc(g.rows, c.compare)
}

// refilter re-evaluates every item with apply and moves only the items whose visibility flipped.
func (g *Group) refilter(apply func(*Item) bool, c *comparator, sink rowSink) {
	var shown, hidden []*Item
	for _, it := range g.prefilter {
		was := it.IsVisible()
		apply(it)
		switch now := it.IsVisible(); {
		case now && !was:
			shown = append(shown, it)
		case !now && was:
			hidden = append(hidden, it)
		}
	}
	g.hideAll(hidden, c, sink)
	g.showAll(shown, c, sink)
}

// showAll inserts items into rows, announcing each contiguous run once.
func (g *Group) showAll(items []*Item, c *comparator, sink rowSink) {
	if len(items) == 0 {
		return
	}
	slices.SortFunc(items, c.compare)
	bases := make([]int, len(items))
	for i, it := range items {
		bases[i] = g.insertPos(it, c)
	}
	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && bases[end] == bases[start] {
			end++
		}
		sink.insertRows(g, bases[start]+start, items[start:end])
		start = end
	}
}

// hideAll removes items from rows, announcing each contiguous run once.
func (g *Group) hideAll(items []*Item, c *comparator, sink rowSink) {
	positions := make([]int, 0, len(items))
	for _, it := range items {
		if pos, ok := g.rowPos(it, c); ok {
			positions = append(positions, pos)
		}
	}
	slices.Sort(positions)
	for i := len(positions) - 1; i >= 0; {
		last := positions[i]
		first := last
		i--
		for i >= 0 && positions[i] == first-1 {
			first = positions[i]
			i--
		}
		sink.removeRows(g, first, last)
	}
}

func (g *Group) clear() {
	g.rows = nil
	g.prefilter = nil
}
