package model

import (
	"fmt"
	"slices"
	"strings"
)

type indexKind uint8

const (
	invalidIndex indexKind = iota
	headerIndex
	rowIndex
)

// Index addresses a cell of the view: a group header at the top level or a
// candidate row. The zero Index is invalid and stands for the root.
type Index struct {
	kind   indexKind
	group  GroupID
	row    int
	column int
}

func (i Index) IsValid() bool { return i.kind != invalidIndex }

// IsHeader reports whether i addresses a group header.
func (i Index) IsHeader() bool { return i.kind == headerIndex }

// Row returns the position of i within its parent.
func (i Index) Row() int { return i.row }

func (i Index) Column() int { return i.column }

// Group returns the group i belongs to, or the group it heads.
func (i Index) Group() GroupID { return i.group }

func (i Index) String() string {
	switch i.kind {
	case headerIndex:
		return fmt.Sprintf("header(%d,%d)", i.row, i.column)
	case rowIndex:
		return fmt.Sprintf("row(g%d:%d,%d)", i.group, i.row, i.column)
	}
	return "root"
}

func (m *Model) headerIndex(g *Group, column int) Index {
	pos := slices.Index(m.rowTable, g)
	if pos < 0 {
		return Index{}
	}
	return Index{kind: headerIndex, group: g.id, row: pos, column: column}
}

// RowCount returns the number of children of parent. In grouped mode the root
// holds one row per non-empty group; otherwise it holds the visible rows directly.
func (m *Model) RowCount(parent Index) int {
	switch parent.kind {
	case invalidIndex:
		if m.cfg.hasGroups() {
			return len(m.rowTable)
		}
		if m.ungrouped == nil {
			return 0
		}
		return len(m.ungrouped.rows)
	case headerIndex:
		if g := m.groupByID(parent.group); g != nil {
			return len(g.rows)
		}
	}
	return 0
}

// ColumnCount returns the number of view columns, which shrinks to the merge count
// while column merging is enabled.
func (m *Model) ColumnCount() int {
	if m.cfg.Columns.MergingEnabled && len(m.cfg.Columns.Merges) > 0 {
		return len(m.cfg.Columns.Merges)
	}
	return ColumnCount
}

// Index returns the index of (row, column) under parent, or the invalid index when out of range.
func (m *Model) Index(row, column int, parent Index) Index {
	if row < 0 || column < 0 || column >= m.ColumnCount() {
		return Index{}
	}
	switch parent.kind {
	case invalidIndex:
		if m.cfg.hasGroups() {
			if row >= len(m.rowTable) {
				return Index{}
			}
			return Index{kind: headerIndex, group: m.rowTable[row].id, row: row, column: column}
		}
		if m.ungrouped == nil || row >= len(m.ungrouped.rows) {
			return Index{}
		}
		return Index{kind: rowIndex, group: m.ungrouped.id, row: row, column: column}
	case headerIndex:
		g := m.groupByID(parent.group)
		if g == nil || row >= len(g.rows) {
			return Index{}
		}
		return Index{kind: rowIndex, group: g.id, row: row, column: column}
	}
	return Index{}
}

// Sibling returns the index at (row, column) sharing idx's parent.
func (m *Model) Sibling(row, column int, idx Index) Index {
	return m.Index(row, column, m.Parent(idx))
}

// Parent returns the header of a row in grouped mode and the invalid index otherwise.
func (m *Model) Parent(idx Index) Index {
	if idx.kind != rowIndex || !m.cfg.hasGroups() {
		return Index{}
	}
	g := m.groupByID(idx.group)
	if g == nil {
		return Index{}
	}
	return m.headerIndex(g, 0)
}

// HasChildren reports whether parent has at least one child row.
func (m *Model) HasChildren(parent Index) bool {
	if parent.kind == rowIndex {
		return false
	}
	return m.RowCount(parent) > 0
}

func (m *Model) itemAt(idx Index) *Item {
	if idx.kind != rowIndex {
		return nil
	}
	g := m.groupByID(idx.group)
	if g == nil || idx.row < 0 || idx.row >= len(g.rows) {
		return nil
	}
	return g.rows[idx.row]
}

// IndexIsCompletion reports whether idx addresses a candidate row rather than a header.
func (m *Model) IndexIsCompletion(idx Index) bool {
	return m.itemAt(idx) != nil
}

// Data returns the display text at idx. Headers show their title in the first column.
// ok is false when idx is invalid or its row has lost its backing candidate.
func (m *Model) Data(idx Index) (text string, ok bool) {
	switch idx.kind {
	case headerIndex:
		g := m.groupByID(idx.group)
		if g == nil {
			return "", false
		}
		if idx.column == 0 {
			return g.title, true
		}
		return "", true
	case rowIndex:
		it := m.itemAt(idx)
		if it == nil {
			return "", false
		}
		c, found := m.src.Candidate(it.row)
		if !found {
			m.log.Warn("Row lost its backing candidate", "row", it.row)
			return "", false
		}
		return m.columnText(c, idx.column), true
	}
	return "", false
}

// Texts returns the text of every view column at the row addressed by idx.
func (m *Model) Texts(idx Index) []string {
	out := make([]string, m.ColumnCount())
	for col := range out {
		out[col], _ = m.Data(Index{kind: idx.kind, group: idx.group, row: idx.row, column: col})
	}
	return out
}

func (m *Model) columnText(c Candidate, column int) string {
	if !m.cfg.Columns.MergingEnabled || len(m.cfg.Columns.Merges) == 0 {
		return c.Text(Column(column))
	}
	if column >= len(m.cfg.Columns.Merges) {
		return ""
	}
	var parts []string
	for _, col := range m.cfg.Columns.Merges[column] {
		if t := c.Text(col); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// TranslateColumn maps a source column to the view column displaying it, or -1 when hidden.
func (m *Model) TranslateColumn(source Column) int {
	if source < 0 || int(source) >= ColumnCount {
		return -1
	}
	if !m.cfg.Columns.MergingEnabled || len(m.cfg.Columns.Merges) == 0 {
		return int(source)
	}
	for i, merge := range m.cfg.Columns.Merges {
		if slices.Contains(merge, source) {
			return i
		}
	}
	return -1
}

// MapToSource returns the source row behind idx.
func (m *Model) MapToSource(idx Index) (RowID, bool) {
	it := m.itemAt(idx)
	if it == nil {
		return 0, false
	}
	return it.row, true
}

// MapFromSource returns the view index of a source row in column 0, or the invalid
// index when the row is untracked or not visible.
func (m *Model) MapFromSource(id RowID) Index {
	it, ok := m.items[id]
	if !ok || !it.IsVisible() {
		return Index{}
	}
	g := m.groupByID(it.group)
	if g == nil || g.isEmpty {
		return Index{}
	}
	if !m.cfg.hasGroups() && g != m.ungrouped {
		return Index{}
	}
	pos, found := g.rowPos(it, m.cmp)
	if !found {
		return Index{}
	}
	return Index{kind: rowIndex, group: g.id, row: pos}
}

// ViewRow is one line of a flattened view.
type ViewRow struct {
	Index  Index
	Header bool
	Title  string
	Row    RowID
}

// Flatten walks the view depth-first: each header followed by its rows in grouped
// mode, the visible rows alone otherwise.
func (m *Model) Flatten() []ViewRow {
	var out []ViewRow
	appendRows := func(g *Group) {
		for i, it := range g.rows {
			out = append(out, ViewRow{
				Index: Index{kind: rowIndex, group: g.id, row: i},
				Row:   it.row,
			})
		}
	}
	if !m.cfg.hasGroups() {
		if m.ungrouped != nil {
			appendRows(m.ungrouped)
		}
		return out
	}
	for pos, g := range m.rowTable {
		out = append(out, ViewRow{
			Index:  Index{kind: headerIndex, group: g.id, row: pos},
			Header: true,
			Title:  g.title,
		})
		appendRows(g)
	}
	return out
}

// Groups returns the displayed groups in Row Table order.
func (m *Model) Groups() []*Group {
	return slices.Clone(m.rowTable)
}

// Group returns the group with the given id, or nil.
func (m *Model) Group(id GroupID) *Group {
	return m.groupByID(id)
}
