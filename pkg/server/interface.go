/*
Package server implements msgpack IPC for the completion model.

The server exposes one model over stdin/stdout. Clients write a stream of msgpack
encoded requests and read a stream of msgpack encoded responses, one per request,
in order. Requests are processed synchronously on a single goroutine, so the model
is never touched concurrently; config file reloads are queued into the same loop.

# IPC

The first message the server writes is the ready message:

	{"status": "ready", "session": "2f1c...", "rows": 1200}

Every request carries an ID and an action:

	{"id": "r1", "action": "complete", "p": "push"}
	{"id": "r2", "action": "insert", "records": [{"name": "push_back", "properties": ["public", "function"]}]}
	{"id": "r3", "action": "remove", "rows": [4, 9]}
	{"id": "r4", "action": "config", "config": {"grouping_dimensions": ["scope"]}}

Responses echo the ID and carry the flattened view, the structural events the
request caused, and the time taken in microseconds:

	{"id": "r1", "status": "ok", "change": "narrow", "v": [{"h": true, "g": "Global Public"}, {"r": 12, "w": "push_back", "c": ["void", "push_back(const T&)", ""]}], "n": 1, "t": 85}

# Actions

  - complete: set the typed prefix ("p") and return the view.
  - view: return the view without changing anything.
  - insert: add "records" to the store; the response lists the new row ids.
  - remove: remove "rows" by id.
  - load: load candidate files from "path" (a file or a directory).
  - unload: remove every row loaded from "path".
  - config: apply a partial configuration update; "save" persists it to the config file.
  - reset: rebuild the model from the store.
  - stats: return counters.

Errors are reported in the response with a status of "error" and an HTTP-like code.
*/
package server

import (
	"github.com/bastiangx/compmodel/pkg/provider"
)

// Request is one client message.
type Request struct {
	ID      string            `msgpack:"id"`
	Action  string            `msgpack:"action"`
	Prefix  string            `msgpack:"p,omitempty"`
	Limit   int               `msgpack:"l,omitempty"`
	Records []provider.Record `msgpack:"records,omitempty"`
	Rows    []uint32          `msgpack:"rows,omitempty"`
	Path    string            `msgpack:"path,omitempty"`
	Config  *ConfigUpdate     `msgpack:"config,omitempty"`
}

// ConfigUpdate is a partial configuration change; nil fields are left as they are.
type ConfigUpdate struct {
	CaseSensitive       *bool       `msgpack:"case_sensitive,omitempty"`
	SortingEnabled      *bool       `msgpack:"sorting_enabled,omitempty"`
	Alphabetical        *bool       `msgpack:"alphabetical,omitempty"`
	SortCaseSensitive   *bool       `msgpack:"sort_case_sensitive,omitempty"`
	Reverse             *bool       `msgpack:"reverse,omitempty"`
	SortKeys            *[]string   `msgpack:"sort_keys,omitempty"`
	FilteringEnabled    *bool       `msgpack:"filtering_enabled,omitempty"`
	ContextMatchesOnly  *bool       `msgpack:"context_matches_only,omitempty"`
	FilterByAttribute   *bool       `msgpack:"filter_by_attribute,omitempty"`
	FilterAttributes    *[]string   `msgpack:"filter_attributes,omitempty"`
	MaxInheritanceDepth *int        `msgpack:"max_inheritance_depth,omitempty"`
	GroupingEnabled     *bool       `msgpack:"grouping_enabled,omitempty"`
	GroupingDimensions  *[]string   `msgpack:"grouping_dimensions,omitempty"`
	IncludeConst        *bool       `msgpack:"include_const,omitempty"`
	IncludeStatic       *bool       `msgpack:"include_static,omitempty"`
	IncludeSignalSlot   *bool       `msgpack:"include_signal_slot,omitempty"`
	ColumnMerging       *bool       `msgpack:"column_merging,omitempty"`
	ColumnMerges        *[][]string `msgpack:"column_merges,omitempty"`
	Save                bool        `msgpack:"save,omitempty"`
}

// ViewRow is one line of the flattened view: a group header or a candidate row.
// Word is the text a client inserts; Columns is what it displays.
type ViewRow struct {
	Header  bool     `msgpack:"h,omitempty"`
	Title   string   `msgpack:"g,omitempty"`
	Row     uint32   `msgpack:"r,omitempty"`
	Word    string   `msgpack:"w,omitempty"`
	Columns []string `msgpack:"c,omitempty"`
}

// EventInfo describes a structural change. Parent is the header position for rows
// inside a group and -1 for top-level rows.
type EventInfo struct {
	Kind   string `msgpack:"k"`
	Parent int    `msgpack:"p"`
	First  int    `msgpack:"f"`
	Last   int    `msgpack:"l"`
}

// Response answers one Request.
type Response struct {
	ID        string         `msgpack:"id"`
	Status    string         `msgpack:"status"`
	Error     string         `msgpack:"error,omitempty"`
	Code      int            `msgpack:"code,omitempty"`
	Change    string         `msgpack:"change,omitempty"`
	View      []ViewRow      `msgpack:"v,omitempty"`
	Count     int            `msgpack:"n"`
	Truncated bool           `msgpack:"truncated,omitempty"`
	Inserted  []uint32       `msgpack:"inserted,omitempty"`
	Events    []EventInfo    `msgpack:"events,omitempty"`
	Stats     map[string]int `msgpack:"stats,omitempty"`
	TimeTaken int64          `msgpack:"t"`
}

// ReadyMessage is written once before the first response.
type ReadyMessage struct {
	Status  string `msgpack:"status"`
	Session string `msgpack:"session"`
	Rows    int    `msgpack:"rows"`
}
