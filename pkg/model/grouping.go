package model

import "strings"

var (
	scopeTypePriority = []Properties{GlobalScope, NamespaceScope, LocalScope}
	accessPriority    = []Properties{Public, Protected, Private}
	itemTypePriority  = []Properties{Namespace, Class, Struct, Union, Function, Variable, Enum}
)

func firstBit(p Properties, priority []Properties) Properties {
	for _, bit := range priority {
		if p&bit != 0 {
			return bit
		}
	}
	return NoProperty
}

// groupingAttributes reduces p to the bits of the enabled grouping dimensions.
// invalid is set when p carries more than one bit inside a single-valued mask.
func groupingAttributes(cfg *GroupingConfig, p Properties) (attr Properties, invalid bool) {
	if !cfg.Enabled {
		return NoProperty, false
	}
	if cfg.Method&ScopeType != 0 {
		invalid = invalid || countBits(p&ScopeTypeMask) > 1
		attr |= firstBit(p, scopeTypePriority)
	}
	if cfg.Method&AccessType != 0 {
		invalid = invalid || countBits(p&AccessTypeMask) > 1
		attr |= firstBit(p, accessPriority)
		if cfg.IncludeStatic {
			attr |= p & Static
		}
		if cfg.IncludeConst {
			attr |= p & Const
		}
		if cfg.IncludeSignalSlot {
			attr |= p & (Signal | Slot)
		}
	}
	if cfg.Method&ItemType != 0 {
		invalid = invalid || countBits(p&ItemTypeMask) > 1
		attr |= firstBit(p, itemTypePriority)
	}
	return attr, invalid
}

// groupingScope returns the scope part of the grouping key.
func groupingScope(cfg *GroupingConfig, scope string) string {
	if !cfg.Enabled || cfg.Method&Scope == 0 {
		return ""
	}
	return scope
}

var titleWords = []struct {
	prop Properties
	word string
}{
	{GlobalScope, "Global"},
	{NamespaceScope, "Namespace"},
	{LocalScope, "Local"},
	{Public, "Public"},
	{Protected, "Protected"},
	{Private, "Private"},
	{Static, "Static"},
	{Const, "Const"},
	{Signal, "Signals"},
	{Slot, "Slots"},
	{Namespace, "Namespaces"},
	{Class, "Classes"},
	{Struct, "Structs"},
	{Union, "Unions"},
	{Function, "Functions"},
	{Variable, "Variables"},
	{Enum, "Enumerations"},
}

const ungroupedTitle = "Other"

// groupTitle derives the header text of a group from its reduced key.
func groupTitle(attr Properties, scope string) string {
	var parts []string
	for _, tw := range titleWords {
		if attr&tw.prop != 0 {
			parts = append(parts, tw.word)
		}
	}
	if scope != "" {
		parts = append(parts, scope)
	}
	if len(parts) == 0 {
		return ungroupedTitle
	}
	return strings.Join(parts, " ")
}
