package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bastiangx/compmodel/pkg/config"
	"github.com/bastiangx/compmodel/pkg/model"
	"github.com/bastiangx/compmodel/pkg/provider"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadRequest    = errors.New("bad request")
)

const (
	codeBadRequest    = 400
	codeUnknownAction = 404
	codeInvalidConfig = 422
	codeInternal      = 500
)

// Server handles the IPC for one model
type Server struct {
	store      *provider.Store
	model      *model.Model
	cfg        *config.Config
	configPath string

	dec     *msgpack.Decoder
	enc     *msgpack.Encoder
	session string
	log     *log.Logger

	reloads chan *config.Config
	events  []model.Event
}

// NewServer creates a server reading requests from r and writing responses to w.
// The store must already be attached to m.
func NewServer(store *provider.Store, m *model.Model, cfg *config.Config, configPath string, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		store:      store,
		model:      m,
		cfg:        cfg,
		configPath: configPath,
		dec:        msgpack.NewDecoder(r),
		enc:        msgpack.NewEncoder(w),
		session:    uuid.NewString(),
		reloads:    make(chan *config.Config, 1),
	}
	s.log = log.Default().With("session", s.session[:8])
	m.Subscribe(func(e model.Event) { s.events = append(s.events, e) })
	return s
}

// Session returns the id announced in the ready message.
func (s *Server) Session() string {
	return s.session
}

// Reload queues a config to be applied between requests. A pending reload that
// has not been applied yet is replaced.
func (s *Server) Reload(c *config.Config) {
	for {
		select {
		case s.reloads <- c:
			return
		default:
		}
		select {
		case <-s.reloads:
		default:
		}
	}
}

type decoded struct {
	req Request
	err error
}

// Start writes the ready message and serves requests until the input ends or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.")
	if err := s.enc.Encode(ReadyMessage{Status: "ready", Session: s.session, Rows: s.store.Len()}); err != nil {
		return fmt.Errorf("failed to write ready message: %w", err)
	}

	requests := make(chan decoded)
	readErr := make(chan error, 1)
	go s.readLoop(ctx, requests, readErr)

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-s.reloads:
			s.applyReload(c)
		case d := <-requests:
			var resp Response
			if d.err != nil {
				resp = s.errorResponse(d.req.ID, fmt.Errorf("%w: %v", ErrBadRequest, d.err))
			} else {
				resp = s.handleRequest(d.req)
			}
			if err := s.enc.Encode(resp); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		case err := <-readErr:
			if err == nil || errors.Is(err, io.EOF) {
				s.log.Debug("Input closed, stopping server.")
				return nil
			}
			return err
		}
	}
}

// readLoop decodes one msgpack value per request. A value that is not a valid
// Request is reported and skipped; a broken stream ends the loop.
func (s *Server) readLoop(ctx context.Context, out chan<- decoded, readErr chan<- error) {
	for {
		var raw msgpack.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			readErr <- err
			return
		}
		var d decoded
		if err := msgpack.Unmarshal(raw, &d.req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			d.err = err
		}
		select {
		case out <- d:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) applyReload(c *config.Config) {
	mc, err := c.Model()
	if err != nil {
		s.log.Warnf("Ignoring reloaded config: %v", err)
		return
	}
	s.cfg = c
	s.model.ApplyConfig(mc)
	s.events = s.events[:0]
	s.log.Info("Applied reloaded config")
}

// handleRequest runs one request against the model
func (s *Server) handleRequest(req Request) Response {
	start := time.Now()
	s.events = s.events[:0]
	resp := Response{ID: req.ID, Status: "ok"}

	var err error
	switch req.Action {
	case "complete":
		resp.Change = s.model.SetCurrentCompletion(req.Prefix).String()
	case "view":
	case "insert":
		var ids []model.RowID
		if ids, err = s.store.Add(req.Records...); err == nil {
			for _, id := range ids {
				resp.Inserted = append(resp.Inserted, uint32(id))
			}
		}
	case "remove":
		ids := make([]model.RowID, 0, len(req.Rows))
		for _, r := range req.Rows {
			ids = append(ids, model.RowID(r))
		}
		s.store.Remove(ids...)
	case "load":
		if req.Path == "" {
			err = fmt.Errorf("%w: missing path", ErrBadRequest)
		} else {
			_, err = provider.LoadInto(s.store, req.Path)
		}
	case "unload":
		s.unload(req.Path)
	case "config":
		err = s.handleConfig(req.Config)
	case "reset":
		s.model.Reset()
	case "stats":
		resp.Stats = s.model.Stats()
		resp.Stats["store"] = s.store.Len()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	if err != nil {
		s.log.Warn("Request failed", "id", req.ID, "action", req.Action, "err", err)
		errResp := s.errorResponse(req.ID, err)
		errResp.TimeTaken = time.Since(start).Microseconds()
		return errResp
	}

	s.fillView(&resp, req.Limit)
	if s.cfg.Server.EmitEvents {
		resp.Events = eventInfos(s.events)
	}
	resp.TimeTaken = time.Since(start).Microseconds()
	s.log.Debug("Handled request", "id", req.ID, "action", req.Action, "rows", resp.Count, "us", resp.TimeTaken)
	return resp
}

// unload drops rows loaded from path, or from any file below it when path is a directory.
func (s *Server) unload(path string) {
	dir := strings.TrimSuffix(path, string(filepath.Separator)) + string(filepath.Separator)
	removed := 0
	for _, origin := range s.store.Origins() {
		if origin == path || strings.HasPrefix(origin, dir) {
			removed += s.store.RemoveOrigin(origin)
		}
	}
	s.log.Debugf("Unloaded %d rows from %s", removed, path)
}

func (s *Server) handleConfig(u *ConfigUpdate) error {
	if u == nil {
		return fmt.Errorf("%w: missing config", ErrBadRequest)
	}
	next := *s.cfg
	u.apply(&next)
	mc, err := next.Model()
	if err != nil {
		return err
	}
	s.model.ApplyConfig(mc)
	s.cfg = &next
	if u.Save && s.configPath != "" {
		if err := s.cfg.Update(s.configPath, s.model.Config()); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	return nil
}

func (s *Server) fillView(resp *Response, limit int) {
	if limit <= 0 {
		limit = s.cfg.Server.MaxRows
	}
	rows := s.model.Flatten()
	resp.Count = len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
		resp.Truncated = true
	}
	resp.View = make([]ViewRow, 0, len(rows))
	for _, r := range rows {
		if r.Header {
			resp.View = append(resp.View, ViewRow{Header: true, Title: r.Title})
			continue
		}
		c, _ := s.store.Candidate(r.Row)
		resp.View = append(resp.View, ViewRow{Row: uint32(r.Row), Word: c.Name, Columns: s.model.Texts(r.Index)})
	}
}

func eventInfos(events []model.Event) []EventInfo {
	out := make([]EventInfo, 0, len(events))
	for _, e := range events {
		parent := -1
		if e.Parent.IsValid() {
			parent = e.Parent.Row()
		}
		out = append(out, EventInfo{Kind: e.Kind.String(), Parent: parent, First: e.First, Last: e.Last})
	}
	return out
}

func (s *Server) errorResponse(id string, err error) Response {
	code := codeInternal
	switch {
	case errors.Is(err, ErrUnknownAction):
		code = codeUnknownAction
	case errors.Is(err, config.ErrInvalidValue):
		code = codeInvalidConfig
	case errors.Is(err, ErrBadRequest), errors.Is(err, provider.ErrUnknownProperty):
		code = codeBadRequest
	}
	return Response{ID: id, Status: "error", Error: err.Error(), Code: code}
}

func (u *ConfigUpdate) apply(c *config.Config) {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Matching.CaseSensitive, u.CaseSensitive)
	set(&c.Sorting.Enabled, u.SortingEnabled)
	set(&c.Sorting.Alphabetical, u.Alphabetical)
	set(&c.Sorting.CaseSensitive, u.SortCaseSensitive)
	set(&c.Sorting.Reverse, u.Reverse)
	set(&c.Filtering.Enabled, u.FilteringEnabled)
	set(&c.Filtering.ContextMatchesOnly, u.ContextMatchesOnly)
	set(&c.Filtering.ByAttribute, u.FilterByAttribute)
	set(&c.Grouping.Enabled, u.GroupingEnabled)
	set(&c.Grouping.IncludeConst, u.IncludeConst)
	set(&c.Grouping.IncludeStatic, u.IncludeStatic)
	set(&c.Grouping.IncludeSignalSlot, u.IncludeSignalSlot)
	set(&c.Columns.Merging, u.ColumnMerging)
	if u.SortKeys != nil {
		c.Sorting.Keys = *u.SortKeys
	}
	if u.FilterAttributes != nil {
		c.Filtering.Attributes = *u.FilterAttributes
	}
	if u.MaxInheritanceDepth != nil {
		c.Filtering.MaxInheritanceDepth = *u.MaxInheritanceDepth
	}
	if u.GroupingDimensions != nil {
		c.Grouping.Dimensions = *u.GroupingDimensions
	}
	if u.ColumnMerges != nil {
		c.Columns.Merges = *u.ColumnMerges
	}
}
