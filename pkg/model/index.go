package model

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// nameIndex maps folded candidate names to the rows carrying them, so a Broaden pass
// only visits rows whose name can match the new prefix.
type nameIndex struct {
	trie *patricia.Trie
	// matching holds the rows whose matching flag is set.
	matching *roaring.Bitmap
}

func newNameIndex() *nameIndex {
	return &nameIndex{
		trie:     patricia.NewTrie(),
		matching: roaring.New(),
	}
}

func (ni *nameIndex) add(key string, id RowID) {
	if key == "" {
		return
	}
	if item := ni.trie.Get(patricia.Prefix(key)); item != nil {
		item.(*roaring.Bitmap).Add(uint32(id))
		return
	}
	ni.trie.Insert(patricia.Prefix(key), roaring.BitmapOf(uint32(id)))
}

func (ni *nameIndex) remove(key string, id RowID) {
	ni.matching.Remove(uint32(id))
	if key == "" {
		return
	}
	item := ni.trie.Get(patricia.Prefix(key))
	if item == nil {
		return
	}
	rows := item.(*roaring.Bitmap)
	rows.Remove(uint32(id))
	if rows.IsEmpty() {
		ni.trie.Delete(patricia.Prefix(key))
	}
}

func (ni *nameIndex) setMatching(id RowID, matching bool) {
	if matching {
		ni.matching.Add(uint32(id))
	} else {
		ni.matching.Remove(uint32(id))
	}
}

// subtree returns the rows whose folded name starts with foldedPrefix.
func (ni *nameIndex) subtree(foldedPrefix string) *roaring.Bitmap {
	out := roaring.New()
	visit := func(_ patricia.Prefix, item patricia.Item) error {
		out.Or(item.(*roaring.Bitmap))
		return nil
	}
	var err error
	if foldedPrefix == "" {
		err = ni.trie.Visit(visit)
	} else {
		err = ni.trie.VisitSubtree(patricia.Prefix(foldedPrefix), visit)
	}
	if err != nil {
		log.Errorf("Error visiting name index subtree: %v", err)
	}
	return out
}

// snapshotMatching returns a copy of the matching set, safe to iterate while it changes.
func (ni *nameIndex) snapshotMatching() []uint32 {
	return ni.matching.ToArray()
}

func (ni *nameIndex) clear() {
	ni.trie = patricia.NewTrie()
	ni.matching.Clear()
}
