package model

import (
	"slices"
)

// Config returns a copy of the active configuration.
func (m *Model) Config() Config {
	return m.cfg.Clone()
}

// ApplyConfig switches to cfg, running only the work the differences require:
// a grouping change rebuilds, a sorting change resorts, a filtering change refilters
// and a match case change rematches. Applying an identical configuration does nothing.
func (m *Model) ApplyConfig(cfg Config) {
	cfg = cfg.Clone()
	cfg.normalize()
	old := m.cfg
	m.cfg = cfg

	if groupingChanged(&old.Grouping, &cfg.Grouping) {
		m.log.Debug("Grouping changed, rebuilding", "method", cfg.Grouping.Method, "enabled", cfg.Grouping.Enabled)
		m.createGroups()
		return
	}
	if sortingChanged(&old.Sorting, &cfg.Sorting) {
		m.resort()
	}
	if old.Filtering != cfg.Filtering {
		m.refilter()
	}
	if old.MatchCaseSensitivity != cfg.MatchCaseSensitivity {
		m.rematch(m.allItems())
	}
	if columnsChanged(&old.Columns, &cfg.Columns) {
		m.emit(Event{Kind: LayoutAboutToChange})
		m.emit(Event{Kind: LayoutChanged})
	}
}

func (m *Model) update(fn func(c *Config)) {
	cfg := m.cfg.Clone()
	fn(&cfg)
	m.ApplyConfig(cfg)
}

func groupingChanged(a, b *GroupingConfig) bool {
	if a.Enabled != b.Enabled || a.Method != b.Method {
		return true
	}
	if !b.Enabled || b.Method&AccessType == 0 {
		return false
	}
	return a.IncludeConst != b.IncludeConst ||
		a.IncludeStatic != b.IncludeStatic ||
		a.IncludeSignalSlot != b.IncludeSignalSlot
}

func sortingChanged(a, b *SortingConfig) bool {
	return a.Enabled != b.Enabled ||
		a.Alphabetical != b.Alphabetical ||
		a.CaseSensitivity != b.CaseSensitivity ||
		a.Reverse != b.Reverse ||
		!slices.Equal(a.Keys, b.Keys)
}

func columnsChanged(a, b *ColumnConfig) bool {
	return a.MergingEnabled != b.MergingEnabled ||
		!slices.EqualFunc(a.Merges, b.Merges, func(x, y []Column) bool { return slices.Equal(x, y) })
}

// resort reorders every group and the Row Table, announced as a layout change.
func (m *Model) resort() {
	m.emit(Event{Kind: LayoutAboutToChange})
	for _, g := range m.groups {
		g.resort(m.cmp)
	}
	slices.SortFunc(m.rowTable, m.cmp.compareGroups)
	m.emit(Event{Kind: LayoutChanged})
}

// refilter re-evaluates the filters of every item, group by group.
func (m *Model) refilter() {
	apply := func(it *Item) bool {
		return it.filter(&m.cfg.Filtering, m.src.ContextMatches(it.row))
	}
	for _, g := range m.groups {
		g.refilter(apply, m.cmp, m)
	}
}

// SetMatchCaseSensitivity sets how the typed prefix is matched against names.
func (m *Model) SetMatchCaseSensitivity(cs CaseSensitivity) {
	m.update(func(c *Config) { c.MatchCaseSensitivity = cs })
}

func (m *Model) SetSortingEnabled(enable bool) {
	m.update(func(c *Config) { c.Sorting.Enabled = enable })
}

func (m *Model) SetSortingAlphabetical(alphabetical bool) {
	m.update(func(c *Config) { c.Sorting.Alphabetical = alphabetical })
}

func (m *Model) SetSortingCaseSensitivity(cs CaseSensitivity) {
	m.update(func(c *Config) { c.Sorting.CaseSensitivity = cs })
}

func (m *Model) SetSortingReverse(reverse bool) {
	m.update(func(c *Config) { c.Sorting.Reverse = reverse })
}

// SetSortingKeys replaces the ordered list of sort keys.
func (m *Model) SetSortingKeys(keys []SortOrder) {
	m.update(func(c *Config) { c.Sorting.Keys = slices.Clone(keys) })
}

func (m *Model) SetFilteringEnabled(enable bool) {
	m.update(func(c *Config) { c.Filtering.Enabled = enable })
}

func (m *Model) SetFilterContextMatchesOnly(only bool) {
	m.update(func(c *Config) { c.Filtering.ContextMatchesOnly = only })
}

func (m *Model) SetFilterByAttribute(filter bool) {
	m.update(func(c *Config) { c.Filtering.ByAttribute = filter })
}

// SetFilterAttributes sets the bits that reject a candidate when attribute filtering is on.
func (m *Model) SetFilterAttributes(attrs Properties) {
	m.update(func(c *Config) { c.Filtering.Attributes = attrs })
}

// SetMaximumInheritanceDepth hides candidates deeper than depth. Zero or less means unlimited.
func (m *Model) SetMaximumInheritanceDepth(depth int) {
	m.update(func(c *Config) { c.Filtering.MaxInheritanceDepth = depth })
}

func (m *Model) SetGroupingEnabled(enable bool) {
	m.update(func(c *Config) { c.Grouping.Enabled = enable })
}

// SetGroupingMethod selects the grouping dimensions. Unknown bits are dropped.
func (m *Model) SetGroupingMethod(method GroupingMethod) {
	m.update(func(c *Config) { c.Grouping.Method = method })
}

func (m *Model) SetAccessIncludeConst(include bool) {
	m.update(func(c *Config) { c.Grouping.IncludeConst = include })
}

func (m *Model) SetAccessIncludeStatic(include bool) {
	m.update(func(c *Config) { c.Grouping.IncludeStatic = include })
}

func (m *Model) SetAccessIncludeSignalSlot(include bool) {
	m.update(func(c *Config) { c.Grouping.IncludeSignalSlot = include })
}

func (m *Model) SetColumnMergingEnabled(enable bool) {
	m.update(func(c *Config) { c.Columns.MergingEnabled = enable })
}

// SetColumnMerges sets which source columns are concatenated into each view column.
func (m *Model) SetColumnMerges(merges [][]Column) {
	m.update(func(c *Config) { c.Columns.Merges = merges })
}

func (m *Model) IsSortingEnabled() bool { return m.cfg.Sorting.Enabled }
func (m *Model) IsFilteringEnabled() bool { return m.cfg.Filtering.Enabled }
func (m *Model) IsGroupingEnabled() bool { return m.cfg.Grouping.Enabled }

// HasGroups reports whether the view currently shows group headers.
func (m *Model) HasGroups() bool { return m.cfg.hasGroups() }
