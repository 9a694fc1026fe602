package model

import (
	"cmp"
	"strings"
)

// comparator orders items and groups according to the sorting configuration.
// It only reads state cached on items and groups, never the source.
type comparator struct {
	cfg *SortingConfig
}

func accessRank(p Properties) int {
	switch {
	case p&Public != 0:
		return 0
	case p&Protected != 0:
		return 1
	case p&Private != 0:
		return 2
	}
	return 3
}

func scopeTypeRank(p Properties) int {
	switch {
	case p&LocalScope != 0:
		return 0
	case p&NamespaceScope != 0:
		return 1
	case p&GlobalScope != 0:
		return 2
	}
	return 3
}

func itemTypeRank(p Properties) int {
	t := p & ItemTypeMask
	for i, bit := range []Properties{Namespace, Class, Struct, Union, Function, Variable, Enum} {
		if t&bit != 0 {
			return i
		}
	}
	return 7
}

// compareNames compares raw names or their folded keys, depending on the sorting case.
func (c *comparator) compareNames(a, foldedA, b, foldedB string) int {
	if c.cfg.CaseSensitivity == CaseSensitive {
		return strings.Compare(a, b)
	}
	return strings.Compare(foldedA, foldedB)
}

// compare returns a negative number when a sorts before b.
func (c *comparator) compare(a, b *Item) int {
	if a == b {
		return 0
	}
	ret := 0
	if c.cfg.Enabled {
		for _, o := range c.cfg.Keys {
			if ret = c.compareKey(o.Key, a, b); ret != 0 {
				if o.Descending {
					ret = -ret
				}
				break
			}
		}
		// The case-sensitive name only breaks ties under alphabetical sorting;
		// otherwise insertion sequence decides.
		if ret == 0 && c.cfg.Alphabetical {
			ret = strings.Compare(a.name, b.name)
		}
	}
	if ret == 0 {
		ret = cmp.Compare(a.seq, b.seq)
	}
	if c.cfg.Reverse {
		ret = -ret
	}
	return ret
}

func (c *comparator) compareKey(k SortKey, a, b *Item) int {
	switch k {
	case SortByName:
		if !c.cfg.Alphabetical {
			return 0
		}
		return c.compareNames(a.name, a.key, b.name, b.key)
	case SortByAccess:
		return cmp.Compare(accessRank(a.props), accessRank(b.props))
	case SortByScopeType:
		return cmp.Compare(scopeTypeRank(a.props), scopeTypeRank(b.props))
	case SortByItemType:
		return cmp.Compare(itemTypeRank(a.props), itemTypeRank(b.props))
	case SortByInheritance:
		return cmp.Compare(a.depth, b.depth)
	}
	return 0
}

// compareGroups orders Row Table entries: scope type, scope, access, item type, then creation.
// The ungrouped group always sorts last.
func (c *comparator) compareGroups(a, b *Group) int {
	if a == b {
		return 0
	}
	if a.ungrouped != b.ungrouped {
		if a.ungrouped {
			return 1
		}
		return -1
	}
	ret := 0
	if c.cfg.Enabled {
		ret = cmp.Compare(scopeTypeRank(a.attribute), scopeTypeRank(b.attribute))
		if ret == 0 {
			ret = c.compareNames(a.scope, a.scopeKey, b.scope, b.scopeKey)
		}
		if ret == 0 {
			ret = cmp.Compare(accessRank(a.attribute), accessRank(b.attribute))
		}
		if ret == 0 {
			ret = cmp.Compare(itemTypeRank(a.attribute), itemTypeRank(b.attribute))
		}
		if ret == 0 {
			ret = cmp.Compare(a.attribute, b.attribute)
		}
	}
	if ret == 0 {
		ret = cmp.Compare(a.id, b.id)
	}
	if c.cfg.Reverse {
		ret = -ret
	}
	return ret
}
