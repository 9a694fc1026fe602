package model

import (
	"math/bits"
	"strings"
)

// Properties is the completion property bitmask a provider attaches to each candidate.
type Properties uint32

const (
	NoProperty Properties = 0

	// Access specifiers, at most one per candidate.
	Public    Properties = 0x1
	Protected Properties = 0x2
	Private   Properties = 0x4

	// Extra access specifiers, any number per candidate.
	Static Properties = 0x8
	Const  Properties = 0x10

	// Item types, at most one per candidate (Template excepted).
	Namespace Properties = 0x20
	Class     Properties = 0x40
	Struct    Properties = 0x80
	Union     Properties = 0x100
	Function  Properties = 0x200
	Variable  Properties = 0x400
	Enum      Properties = 0x800
	Template  Properties = 0x1000
	TypeAlias Properties = 0x2000

	// Special attributes, any number per candidate.
	Virtual  Properties = 0x4000
	Override Properties = 0x8000
	Inline   Properties = 0x10000
	Friend   Properties = 0x20000
	Signal   Properties = 0x40000
	Slot     Properties = 0x80000

	// Scope types, at most one per candidate.
	LocalScope     Properties = 0x100000
	NamespaceScope Properties = 0x200000
	GlobalScope    Properties = 0x400000
)

const (
	AccessTypeMask = Public | Protected | Private
	ItemTypeMask   = Namespace | Class | Struct | Union | Function | Variable | Enum
	ScopeTypeMask  = LocalScope | NamespaceScope | GlobalScope
)

var propertyNames = []struct {
	prop Properties
	name string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Static, "static"},
	{Const, "const"},
	{Namespace, "namespace"},
	{Class, "class"},
	{Struct, "struct"},
	{Union, "union"},
	{Function, "function"},
	{Variable, "variable"},
	{Enum, "enum"},
	{Template, "template"},
	{TypeAlias, "typealias"},
	{Virtual, "virtual"},
	{Override, "override"},
	{Inline, "inline"},
	{Friend, "friend"},
	{Signal, "signal"},
	{Slot, "slot"},
	{LocalScope, "local"},
	{NamespaceScope, "namespace_scope"},
	{GlobalScope, "global"},
}

// PropertyName returns the lowercase name of a single property bit, or "" if p is not one.
func PropertyName(p Properties) string {
	for _, pn := range propertyNames {
		if pn.prop == p {
			return pn.name
		}
	}
	return ""
}

// ParseProperty is the inverse of PropertyName.
func ParseProperty(name string) (Properties, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, pn := range propertyNames {
		if pn.name == name {
			return pn.prop, true
		}
	}
	return NoProperty, false
}

// Names lists the names of every bit set in p, lowest bit first.
func (p Properties) Names() []string {
	var names []string
	for _, pn := range propertyNames {
		if p&pn.prop != 0 {
			names = append(names, pn.name)
		}
	}
	return names
}

func (p Properties) String() string {
	if p == NoProperty {
		return "none"
	}
	return strings.Join(p.Names(), "|")
}

func countBits(p Properties) int {
	return bits.OnesCount32(uint32(p))
}

// Column identifies a display column of a candidate row.
type Column int

const (
	PrefixColumn Column = iota
	IconColumn
	ScopeColumn
	NameColumn
	ArgumentsColumn
	PostfixColumn

	ColumnCount = int(PostfixColumn) + 1
)

var columnNames = [ColumnCount]string{"Prefix", "Icon", "Scope", "Name", "Arguments", "Postfix"}

// ColumnName returns the display name of a source column.
func ColumnName(c Column) string {
	if c < 0 || int(c) >= ColumnCount {
		return ""
	}
	return columnNames[c]
}

// ParseColumn accepts the names returned by ColumnName, case-insensitively.
func ParseColumn(name string) (Column, bool) {
	for i, n := range columnNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Column(i), true
		}
	}
	return -1, false
}
