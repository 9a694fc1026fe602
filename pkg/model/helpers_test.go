package model

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// memSource is an in-memory Source for tests.
type memSource struct {
	order   []RowID
	rows    map[RowID]Candidate
	noMatch map[RowID]bool
	next    RowID
	// reads counts Candidate calls.
	reads int
}

func newMemSource() *memSource {
	return &memSource{rows: make(map[RowID]Candidate), noMatch: make(map[RowID]bool)}
}

func (s *memSource) add(c Candidate) RowID {
	id := s.next
	s.next++
	s.order = append(s.order, id)
	s.rows[id] = c
	return id
}

func (s *memSource) addNames(names ...string) []RowID {
	ids := make([]RowID, 0, len(names))
	for _, n := range names {
		ids = append(ids, s.add(Candidate{Name: n}))
	}
	return ids
}

func (s *memSource) drop(id RowID) {
	delete(s.rows, id)
	delete(s.noMatch, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func (s *memSource) Rows() []RowID { return slices.Clone(s.order) }

func (s *memSource) Candidate(id RowID) (Candidate, bool) {
	s.reads++
	c, ok := s.rows[id]
	return c, ok
}

func (s *memSource) ContextMatches(id RowID) bool { return !s.noMatch[id] }

func flatConfig() Config {
	cfg := DefaultConfig()
	cfg.Grouping.Enabled = false
	return cfg
}

// visibleNames returns the names of the rows in view order, headers excluded.
func visibleNames(t *testing.T, m *Model) []string {
	t.Helper()
	var out []string
	for _, r := range m.Flatten() {
		if r.Header {
			continue
		}
		c, ok := m.src.Candidate(r.Row)
		require.True(t, ok, "row %d has no candidate", r.Row)
		out = append(out, c.Name)
	}
	return out
}

func headerTitles(m *Model) []string {
	var out []string
	for _, r := range m.Flatten() {
		if r.Header {
			out = append(out, r.Title)
		}
	}
	return out
}

// checkInvariants verifies the structural invariants of the model.
func checkInvariants(t *testing.T, m *Model) {
	t.Helper()
	seen := make(map[RowID]GroupID)
	for _, g := range m.groups {
		visible := 0
		for _, it := range g.prefilter {
			_, dup := seen[it.row]
			require.False(t, dup, "row %d in more than one group", it.row)
			seen[it.row] = g.id
			require.Equal(t, g.id, it.group)
			if it.IsVisible() {
				visible++
				require.Contains(t, g.rows, it, "visible row %d missing from group %q", it.row, g.title)
			}
		}
		require.Len(t, g.rows, visible, "group %q", g.title)
		for i := 1; i < len(g.rows); i++ {
			require.Negative(t, m.cmp.compare(g.rows[i-1], g.rows[i]), "group %q rows out of order at %d", g.title, i)
		}
		require.Equal(t, len(g.rows) == 0, g.isEmpty, "group %q emptiness flag", g.title)
		require.Equal(t, !g.isEmpty, slices.Contains(m.rowTable, g), "group %q row table membership", g.title)
		if !m.cfg.hasGroups() {
			require.True(t, g == m.ungrouped || len(g.prefilter) == 0, "flat mode keeps rows outside the ungrouped group")
		}
	}
	require.Len(t, seen, len(m.items))
	for i := 1; i < len(m.rowTable); i++ {
		require.Negative(t, m.cmp.compareGroups(m.rowTable[i-1], m.rowTable[i]))
	}
	for id, it := range m.items {
		assert.Equal(t, it.matching, m.index.matching.Contains(uint32(id)), "matching bitmap for row %d", id)
		c, _ := m.src.Candidate(id)
		cs := m.cfg.MatchCaseSensitivity
		want := strings.HasPrefix(m.fold.key(c.Name, cs), m.fold.key(m.currentMatch, cs))
		assert.Equal(t, want, it.matching, "row %d %q vs %q", id, c.Name, m.currentMatch)
	}
}

// shadowView replays events to rebuild row counts the way an attached view would.
type shadowView struct {
	m        *Model
	root     int
	children []int
	pending  []Event
	cancel   func()
}

func attachShadow(m *Model) *shadowView {
	s := &shadowView{m: m}
	s.snapshot()
	s.cancel = m.Subscribe(s.handle)
	return s
}

func (s *shadowView) snapshot() {
	s.root = s.m.RowCount(Index{})
	s.children = s.children[:0]
	if s.m.HasGroups() {
		for i := 0; i < s.root; i++ {
			s.children = append(s.children, s.m.RowCount(s.m.Index(i, 0, Index{})))
		}
	}
}

func (s *shadowView) handle(e Event) {
	switch e.Kind {
	case RowsAboutToBeInserted, RowsAboutToBeRemoved, LayoutAboutToChange, ModelAboutToReset:
		s.pending = append(s.pending, e)
		return
	}
	n := e.Last - e.First + 1
	switch e.Kind {
	case RowsInserted:
		if !e.Parent.IsValid() {
			s.root += n
			if s.m.HasGroups() {
				for pos := e.First; pos <= e.Last; pos++ {
					count := s.m.RowCount(s.m.Index(pos, 0, Index{}))
					s.children = slices.Insert(s.children, pos, count)
				}
			}
		} else {
			s.children[e.Parent.Row()] += n
		}
	case RowsRemoved:
		if !e.Parent.IsValid() {
			s.root -= n
			if s.m.HasGroups() {
				s.children = slices.Delete(s.children, e.First, e.Last+1)
			}
		} else {
			s.children[e.Parent.Row()] -= n
		}
	case LayoutChanged, ModelReset:
		s.snapshot()
	}
	s.pending = s.pending[:len(s.pending)-1]
}

func (s *shadowView) verify(t *testing.T) {
	t.Helper()
	require.Empty(t, s.pending, "unpaired events")
	require.Equal(t, s.m.RowCount(Index{}), s.root, "root row count")
	if s.m.HasGroups() {
		require.Len(t, s.children, s.root)
		for i, n := range s.children {
			require.Equal(t, s.m.RowCount(s.m.Index(i, 0, Index{})), n, "children of header %d", i)
		}
	}
}

type eventLog struct {
	events []Event
}

func record(m *Model) *eventLog {
	l := &eventLog{}
	m.Subscribe(func(e Event) { l.events = append(l.events, e) })
	return l
}

func (l *eventLog) kinds() []EventKind {
	out := make([]EventKind, len(l.events))
	for i, e := range l.events {
		out[i] = e.Kind
	}
	return out
}

func (l *eventLog) reset() { l.events = nil }

// ranges returns the [first, last] pairs of the events of kind k.
func (l *eventLog) ranges(k EventKind) [][2]int {
	var out [][2]int
	for _, e := range l.events {
		if e.Kind == k {
			out = append(out, [2]int{e.First, e.Last})
		}
	}
	return out
}
