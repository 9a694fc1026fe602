// Package model filters, sorts and groups completion candidates supplied by a Source
// and exposes the result as a two-level view of group headers and rows.
//
// A Model is single-threaded: every mutation and query must come from the same
// goroutine, and every mutation is fully applied before it returns. Observers
// registered with Subscribe are called synchronously around each structural change,
// and indices obtained before a change must not be used after it.
package model

import (
	"slices"

	"github.com/charmbracelet/log"
)

// Model is the completion filtering, sorting and grouping engine.
type Model struct {
	src  Source
	cfg  Config
	log  *log.Logger
	fold *folder
	cmp  *comparator

	currentMatch string

	items   map[RowID]*Item
	nextSeq uint64
	index   *nameIndex

	// groups is the arena addressed by GroupID.
	groups    []*Group
	ungrouped *Group
	// rowTable holds the non-empty groups in display order.
	rowTable []*Group
	registry map[uint64][]*Group

	obs       observers
	resetting bool
}

// Option configures a Model at construction.
type Option func(*Model)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(m *Model) {
		m.cfg = cfg.Clone()
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithCurrentCompletion sets the typed prefix before the first build.
func WithCurrentCompletion(prefix string) Option {
	return func(m *Model) {
		m.currentMatch = prefix
	}
}

type emptySource struct{}

func (emptySource) Rows() []RowID                     { return nil }
func (emptySource) Candidate(RowID) (Candidate, bool) { return Candidate{}, false }
func (emptySource) ContextMatches(RowID) bool         { return true }

// New builds a model over every row src currently holds.
func New(src Source, opts ...Option) *Model {
	if src == nil {
		src = emptySource{}
	}
	m := &Model{
		src:      src,
		cfg:      DefaultConfig(),
		log:      log.Default().WithPrefix("model"),
		fold:     newFolder(),
		items:    make(map[RowID]*Item),
		index:    newNameIndex(),
		registry: make(map[uint64][]*Group),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cfg.normalize()
	m.cmp = &comparator{cfg: &m.cfg.Sorting}
	m.createGroups()
	return m
}

// Subscribe registers fn for structural change events and returns a function that removes it.
func (m *Model) Subscribe(fn Observer) (cancel func()) {
	return m.obs.add(fn)
}

// Source returns the provider the model reads from.
func (m *Model) Source() Source {
	return m.src
}

func (m *Model) emit(e Event) {
	if m.resetting {
		return
	}
	m.obs.emit(e)
}

// Insert tracks newly inserted source rows. Already tracked ids and ids without
// backing data are skipped. Rows landing next to each other in a group are
// announced as one range.
func (m *Model) Insert(ids ...RowID) {
	added := m.insert(ids)
	m.log.Debugf("Inserted %d of %d rows", added, len(ids))
}

func (m *Model) insert(ids []RowID) int {
	var batch groupBatch
	prefix := m.matchPrefix()
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			m.log.Debug("Ignoring re-insert of tracked row", "row", id)
			continue
		}
		c, ok := m.src.Candidate(id)
		if !ok {
			m.log.Warn("Row has no backing candidate", "row", id)
			continue
		}
		batch.add(m.groupFor(c), m.track(id, c, prefix))
	}
	for _, g := range batch.order {
		g.addItems(batch.items[g], m.cmp, m)
	}
	return batch.n
}

// track creates the item for a row and evaluates it against prefix and the filters.
func (m *Model) track(id RowID, c Candidate, prefix string) *Item {
	it := newItem(id, m.nextSeq, c, m.fold)
	m.nextSeq++
	it.match(prefix, m.cfg.MatchCaseSensitivity)
	it.filter(&m.cfg.Filtering, m.src.ContextMatches(id))
	m.items[id] = it
	m.index.add(it.key, id)
	m.index.setMatching(id, it.matching)
	return it
}

// Remove stops tracking source rows. It must be called while the rows are still
// readable from the source. Unknown ids are ignored.
func (m *Model) Remove(ids ...RowID) {
	var batch groupBatch
	var removed []*Item
	seen := make(map[RowID]struct{}, len(ids))
	for _, id := range ids {
		it, ok := m.items[id]
		if _, dup := seen[id]; !ok || dup {
			continue
		}
		seen[id] = struct{}{}
		removed = append(removed, it)
		if g := m.groupByID(it.group); g != nil {
			batch.add(g, it)
		}
	}
	for _, g := range batch.order {
		g.removeItems(batch.items[g], m.cmp, m)
	}
	for _, it := range removed {
		m.untrack(it)
	}
	m.log.Debugf("Removed %d of %d rows", len(removed), len(ids))
}

func (m *Model) untrack(it *Item) {
	m.index.remove(it.key, it.row)
	delete(m.items, it.row)
}

// groupBatch collects the items of one Insert or Remove per group, keeping the
// groups in first-seen order.
type groupBatch struct {
	order []*Group
	items map[*Group][]*Item
	n     int
}

func (b *groupBatch) add(g *Group, it *Item) {
	if b.items == nil {
		b.items = make(map[*Group][]*Item)
	}
	if _, ok := b.items[g]; !ok {
		b.order = append(b.order, g)
	}
	b.items[g] = append(b.items[g], it)
	b.n++
}

// Reset discards all state and rebuilds it from the source's current rows.
func (m *Model) Reset() {
	m.createGroups()
}

// insertRows implements rowSink.
func (m *Model) insertRows(g *Group, first int, items []*Item) {
	last := first + len(items) - 1
	announce := m.rowsAnnounced(g)
	parent := m.parentOf(g)
	if announce {
		m.emit(Event{Kind: RowsAboutToBeInserted, Parent: parent, First: first, Last: last})
	}
	g.rows = slices.Insert(g.rows, first, items...)
	if announce {
		m.emit(Event{Kind: RowsInserted, Parent: parent, First: first, Last: last})
	}
	m.hideOrShowGroup(g)
}

// removeRows implements rowSink.
func (m *Model) removeRows(g *Group, first, last int) {
	if m.cfg.hasGroups() && !g.isEmpty && first == 0 && last == len(g.rows)-1 {
		// The header goes away together with its last rows.
		m.hideGroup(g)
		return
	}
	announce := m.rowsAnnounced(g)
	parent := m.parentOf(g)
	if announce {
		m.emit(Event{Kind: RowsAboutToBeRemoved, Parent: parent, First: first, Last: last})
	}
	g.rows = slices.Delete(g.rows, first, last+1)
	if announce {
		m.emit(Event{Kind: RowsRemoved, Parent: parent, First: first, Last: last})
	}
	m.hideOrShowGroup(g)
}

// rowsAnnounced reports whether row changes inside g are visible as row events.
// Changes in a hidden group surface as the insertion of its header instead.
func (m *Model) rowsAnnounced(g *Group) bool {
	if !m.cfg.hasGroups() {
		return g == m.ungrouped
	}
	return !g.isEmpty
}

func (m *Model) parentOf(g *Group) Index {
	if !m.cfg.hasGroups() {
		return Index{}
	}
	return m.headerIndex(g, 0)
}

// Stats reports counters in the style of the completer stats map.
func (m *Model) Stats() map[string]int {
	visible := 0
	for _, g := range m.rowTable {
		visible += len(g.rows)
	}
	return map[string]int{
		"items":          len(m.items),
		"matching":       int(m.index.matching.GetCardinality()),
		"visible":        visible,
		"groups":         len(m.groups),
		"displayedGroup": len(m.rowTable),
	}
}
