package model

import "fmt"

// EventKind is the kind of structural change announced to observers.
type EventKind int

const (
	RowsAboutToBeInserted EventKind = iota
	RowsInserted
	RowsAboutToBeRemoved
	RowsRemoved
	LayoutAboutToChange
	LayoutChanged
	ModelAboutToReset
	ModelReset
)

var eventKindNames = [...]string{
	"rows_about_to_be_inserted",
	"rows_inserted",
	"rows_about_to_be_removed",
	"rows_removed",
	"layout_about_to_change",
	"layout_changed",
	"model_about_to_reset",
	"model_reset",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("event(%d)", int(k))
	}
	return eventKindNames[k]
}

// Event describes a structural change. For row events Parent is the parent index
// (invalid for top-level rows) and First..Last the inclusive affected range.
type Event struct {
	Kind   EventKind
	Parent Index
	First  int
	Last   int
}

func (e Event) String() string {
	switch e.Kind {
	case RowsAboutToBeInserted, RowsInserted, RowsAboutToBeRemoved, RowsRemoved:
		return fmt.Sprintf("%s parent=%s [%d,%d]", e.Kind, e.Parent, e.First, e.Last)
	}
	return e.Kind.String()
}

// Observer receives structural change events synchronously.
type Observer func(Event)

type observers struct {
	next int
	fns  map[int]Observer
}

func (o *observers) add(fn Observer) func() {
	if o.fns == nil {
		o.fns = make(map[int]Observer)
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() { delete(o.fns, id) }
}

func (o *observers) emit(e Event) {
	for i := 0; i < o.next; i++ {
		if fn, ok := o.fns[i]; ok {
			fn(e)
		}
	}
}
