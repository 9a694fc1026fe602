package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupingAttributes(t *testing.T) {
	all := GroupingConfig{
		Enabled:           true,
		Method:            ScopeType | AccessType | ItemType,
		IncludeConst:      true,
		IncludeStatic:     true,
		IncludeSignalSlot: true,
	}
	testCases := []struct {
		name    string
		cfg     GroupingConfig
		props   Properties
		want    Properties
		invalid bool
	}{
		{"disabled", GroupingConfig{Method: ScopeType}, Public | GlobalScope, NoProperty, false},
		{"all dimensions", all, Public | Function | GlobalScope | Virtual, Public | Function | GlobalScope, false},
		{"extras kept", all, Private | Static | Const | Slot, Private | Static | Const | Slot, false},
		{"conflicting access", all, Public | Private, Public, true},
		{"conflicting scope", all, LocalScope | GlobalScope, GlobalScope, true},
		{"item type only", GroupingConfig{Enabled: true, Method: ItemType}, Public | Class, Class, false},
		{"const excluded", GroupingConfig{Enabled: true, Method: AccessType, IncludeStatic: true}, Public | Const | Static, Public | Static, false},
		{"scope dimension carries no bits", GroupingConfig{Enabled: true, Method: Scope}, Public | GlobalScope, NoProperty, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, invalid := groupingAttributes(&tc.cfg, tc.props)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.invalid, invalid)
		})
	}
}

func TestGroupTitle(t *testing.T) {
	assert.Equal(t, "Other", groupTitle(NoProperty, ""))
	assert.Equal(t, "Global Public", groupTitle(Public|GlobalScope, ""))
	assert.Equal(t, "Namespace Protected Static Functions std", groupTitle(Protected|Static|Function|NamespaceScope, "std"))
	assert.Equal(t, "Signals Slots", groupTitle(Signal|Slot, ""))
}

func TestGroupKeyCollisionsResolved(t *testing.T) {
	m := New(nil)
	a := m.fetchGroup(Public, "x")
	b := m.fetchGroup(Private, "x")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, a, m.fetchGroup(Public, "x"))
	assert.Same(t, m.fetchGroup(NoProperty, ""), m.ungroupedGroup())

	// Force both keys into one bucket.
	key := groupKey(Public, "x")
	m.registry[key] = append(m.registry[key], b)
	assert.Same(t, b, m.fetchGroup(Private, "x"))
	assert.Same(t, a, m.fetchGroup(Public, "x"))
}

func TestPropertyNames(t *testing.T) {
	for _, p := range []Properties{Public, Const, Enum, Slot, GlobalScope} {
		name := PropertyName(p)
		require.NotEmpty(t, name)
		back, ok := ParseProperty(name)
		require.True(t, ok)
		assert.Equal(t, p, back)
	}
	assert.Equal(t, "public|function", (Public | Function).String())
	assert.Equal(t, "none", NoProperty.String())
	_, ok := ParseProperty("bogus")
	assert.False(t, ok)
}

func TestParseConfigValues(t *testing.T) {
	gm, ok := ParseGroupingMethod("access")
	require.True(t, ok)
	assert.Equal(t, AccessType, gm)
	assert.Equal(t, "scope_type|access_type", (ScopeType | AccessType).String())

	o, ok := ParseSortOrder("-inheritance")
	require.True(t, ok)
	assert.Equal(t, SortOrder{Key: SortByInheritance, Descending: true}, o)
	assert.Equal(t, "-inheritance", o.String())

	col, ok := ParseColumn("arguments")
	require.True(t, ok)
	assert.Equal(t, ArgumentsColumn, col)
}

func TestNormalizeClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filtering.MaxInheritanceDepth = -3
	cfg.Grouping.Method = 0xff
	cfg.Columns.Merges = [][]Column{{NameColumn, Column(17)}, {Column(-1)}}
	cfg.normalize()
	assert.Equal(t, 0, cfg.Filtering.MaxInheritanceDepth)
	assert.Equal(t, ScopeType|Scope|AccessType|ItemType, cfg.Grouping.Method)
	assert.Equal(t, [][]Column{{NameColumn}}, cfg.Columns.Merges)
}
