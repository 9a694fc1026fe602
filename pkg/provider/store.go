// Package provider holds completion candidates in memory and loads them from files.
package provider

import (
	"fmt"
	"maps"
	"slices"

	"github.com/bastiangx/compmodel/pkg/model"
	"github.com/charmbracelet/log"
)

// Listener is told about rows entering and leaving a Store. *model.Model satisfies it.
type Listener interface {
	Insert(ids ...model.RowID)
	Remove(ids ...model.RowID)
}

type entry struct {
	candidate      model.Candidate
	contextMatches bool
	origin         string
}

// Store is an in-memory model.Source. Row ids are assigned in insertion order and never reused.
// A Store is not safe for concurrent use; it lives on the same goroutine as its model.
type Store struct {
	order     []model.RowID
	rows      map[model.RowID]entry
	next      model.RowID
	listeners []Listener
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rows: make(map[model.RowID]entry)}
}

// Attach registers l for insert and remove notifications.
func (s *Store) Attach(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Add converts and appends records, then notifies listeners once for the batch.
// Nothing is added when any record is invalid.
func (s *Store) Add(records ...Record) ([]model.RowID, error) {
	return s.AddFrom("", records...)
}

// AddFrom is Add with an origin tag, typically the file the records came from.
func (s *Store) AddFrom(origin string, records ...Record) ([]model.RowID, error) {
	entries := make([]entry, 0, len(records))
	for i, r := range records {
		c, err := r.Candidate()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		entries = append(entries, entry{candidate: c, contextMatches: !r.OutOfContext, origin: origin})
	}
	ids := make([]model.RowID, 0, len(entries))
	for _, e := range entries {
		id := s.next
		s.next++
		s.rows[id] = e
		s.order = append(s.order, id)
		ids = append(ids, id)
	}
	for _, l := range s.listeners {
		l.Insert(ids...)
	}
	log.Debugf("Added %d candidates (origin=%q)", len(ids), origin)
	return ids, nil
}

// Remove notifies listeners and then drops the rows. Unknown ids are skipped.
func (s *Store) Remove(ids ...model.RowID) int {
	known := make([]model.RowID, 0, len(ids))
	seen := make(map[model.RowID]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.rows[id]; ok && !seen[id] {
			seen[id] = true
			known = append(known, id)
		}
	}
	if len(known) == 0 {
		return 0
	}
	for _, l := range s.listeners {
		l.Remove(known...)
	}
	for _, id := range known {
		delete(s.rows, id)
	}
	s.order = slices.DeleteFunc(s.order, func(id model.RowID) bool { return seen[id] })
	return len(known)
}

// RemoveOrigin removes every row added with the given origin tag.
func (s *Store) RemoveOrigin(origin string) int {
	var ids []model.RowID
	for _, id := range s.order {
		if s.rows[id].origin == origin {
			ids = append(ids, id)
		}
	}
	return s.Remove(ids...)
}

// Origins lists the distinct origin tags currently held, sorted.
func (s *Store) Origins() []string {
	set := make(map[string]struct{})
	for _, e := range s.rows {
		if e.origin != "" {
			set[e.origin] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Clear removes every row.
func (s *Store) Clear() int {
	return s.Remove(slices.Clone(s.order)...)
}

// Len returns the number of rows held.
func (s *Store) Len() int {
	return len(s.order)
}

// Rows implements model.Source.
func (s *Store) Rows() []model.RowID {
	return slices.Clone(s.order)
}

// Candidate implements model.Source.
func (s *Store) Candidate(id model.RowID) (model.Candidate, bool) {
	e, ok := s.rows[id]
	return e.candidate, ok
}

// ContextMatches implements model.Source.
func (s *Store) ContextMatches(id model.RowID) bool {
	e, ok := s.rows[id]
	return ok && e.contextMatches
}

// Record returns the serialized form of a row.
func (s *Store) Record(id model.RowID) (Record, bool) {
	e, ok := s.rows[id]
	if !ok {
		return Record{}, false
	}
	return RecordFromCandidate(e.candidate, e.contextMatches), true
}
