package model

import (
	"slices"
	"strings"
)

// CaseSensitivity selects how names are compared.
type CaseSensitivity int

const (
	CaseInsensitive CaseSensitivity = iota
	CaseSensitive
)

func (cs CaseSensitivity) String() string {
	if cs == CaseSensitive {
		return "sensitive"
	}
	return "insensitive"
}

// GroupingMethod is a bitmask of grouping dimensions.
type GroupingMethod int

const (
	ScopeType  GroupingMethod = 0x1
	Scope      GroupingMethod = 0x2
	AccessType GroupingMethod = 0x4
	ItemType   GroupingMethod = 0x8
)

var groupingMethodNames = []struct {
	m    GroupingMethod
	name string
}{
	{ScopeType, "scope_type"},
	{Scope, "scope"},
	{AccessType, "access_type"},
	{ItemType, "item_type"},
}

// ParseGroupingMethod parses a single dimension name such as "scope_type".
// "access" and "item" are accepted as short forms.
func ParseGroupingMethod(name string) (GroupingMethod, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "access":
		return AccessType, true
	case "item", "kind":
		return ItemType, true
	}
	for _, gm := range groupingMethodNames {
		if gm.name == name {
			return gm.m, true
		}
	}
	return 0, false
}

func (m GroupingMethod) String() string {
	var parts []string
	for _, gm := range groupingMethodNames {
		if m&gm.m != 0 {
			parts = append(parts, gm.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// SortKey is one ordering criterion applied to items and groups.
type SortKey int

const (
	SortByName SortKey = iota
	SortByAccess
	SortByScopeType
	SortByItemType
	SortByInheritance
)

var sortKeyNames = map[SortKey]string{
	SortByName:        "name",
	SortByAccess:      "access",
	SortByScopeType:   "scope_type",
	SortByItemType:    "item_type",
	SortByInheritance: "inheritance",
}

func (k SortKey) String() string { return sortKeyNames[k] }

// SortOrder is a SortKey with a direction.
type SortOrder struct {
	Key        SortKey
	Descending bool
}

// ParseSortOrder accepts a key name, optionally prefixed with "-" for descending order.
func ParseSortOrder(s string) (SortOrder, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	desc := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	for k, name := range sortKeyNames {
		if name == s {
			return SortOrder{Key: k, Descending: desc}, true
		}
	}
	return SortOrder{}, false
}

func (o SortOrder) String() string {
	if o.Descending {
		return "-" + o.Key.String()
	}
	return o.Key.String()
}

type SortingConfig struct {
	Enabled         bool
	Alphabetical    bool
	CaseSensitivity CaseSensitivity
	Reverse         bool
	Keys            []SortOrder
}

type FilteringConfig struct {
	Enabled            bool
	ContextMatchesOnly bool
	ByAttribute        bool
	Attributes         Properties
	// MaxInheritanceDepth <= 0 means unlimited.
	MaxInheritanceDepth int
}

type GroupingConfig struct {
	Enabled           bool
	Method            GroupingMethod
	IncludeConst      bool
	IncludeStatic     bool
	IncludeSignalSlot bool
}

type ColumnConfig struct {
	MergingEnabled bool
	Merges         [][]Column
}

// Config is the full configuration owned by one Model.
type Config struct {
	MatchCaseSensitivity CaseSensitivity
	Sorting              SortingConfig
	Filtering            FilteringConfig
	Grouping             GroupingConfig
	Columns              ColumnConfig
}

// DefaultConfig returns the configuration a new Model starts with.
func DefaultConfig() Config {
	return Config{
		MatchCaseSensitivity: CaseInsensitive,
		Sorting: SortingConfig{
			Enabled:         true,
			Alphabetical:    true,
			CaseSensitivity: CaseInsensitive,
			Keys:            []SortOrder{{Key: SortByName}},
		},
		Grouping: GroupingConfig{
			Enabled:           true,
			Method:            ScopeType | AccessType,
			IncludeConst:      true,
			IncludeStatic:     true,
			IncludeSignalSlot: true,
		},
		Columns: ColumnConfig{
			Merges: [][]Column{
				{PrefixColumn, IconColumn},
				{ScopeColumn, NameColumn, ArgumentsColumn},
				{PostfixColumn},
			},
		},
	}
}

// Clone returns a deep copy so callers can edit slices without aliasing the model's state.
func (c Config) Clone() Config {
	out := c
	out.Sorting.Keys = slices.Clone(c.Sorting.Keys)
	out.Columns.Merges = make([][]Column, len(c.Columns.Merges))
	for i, m := range c.Columns.Merges {
		out.Columns.Merges[i] = slices.Clone(m)
	}
	return out
}

// normalize clamps out-of-range values to their nearest valid meaning.
func (c *Config) normalize() {
	if c.Filtering.MaxInheritanceDepth < 0 {
		c.Filtering.MaxInheritanceDepth = 0
	}
	c.Grouping.Method &= ScopeType | Scope | AccessType | ItemType
	merges := c.Columns.Merges[:0:0]
	for _, m := range c.Columns.Merges {
		var cols []Column
		for _, col := range m {
			if col >= 0 && int(col) < ColumnCount {
				cols = append(cols, col)
			}
		}
		if len(cols) > 0 {
			merges = append(merges, cols)
		}
	}
	c.Columns.Merges = merges
}

// hasGroups reports whether the view shows group headers.
func (c *Config) hasGroups() bool {
	return c.Grouping.Enabled && c.Grouping.Method != 0
}
