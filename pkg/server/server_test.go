package server

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/compmodel/pkg/config"
	"github.com/bastiangx/compmodel/pkg/model"
	"github.com/bastiangx/compmodel/pkg/provider"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func newTestServer(t *testing.T, records ...provider.Record) (*Server, *provider.Store) {
	t.Helper()
	store := provider.NewStore()
	_, err := store.Add(records...)
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	mc, err := cfg.Model()
	require.NoError(t, err)
	m := model.New(store, model.WithConfig(mc))
	store.Attach(m)
	return NewServer(store, m, cfg, "", &bytes.Buffer{}, io.Discard), store
}

func rec(name string, props ...string) provider.Record {
	return provider.Record{Name: name, Properties: props}
}

func names(view []ViewRow) []string {
	var out []string
	for _, r := range view {
		if r.Header {
			out = append(out, "#"+r.Title)
			continue
		}
		out = append(out, r.Word)
	}
	return out
}

func TestCompleteNarrowsView(t *testing.T) {
	s, _ := newTestServer(t,
		rec("push_back", "global", "public", "function"),
		rec("push_front", "global", "public", "function"),
		rec("pop_back", "global", "private", "function"),
	)

	resp := s.handleRequest(Request{ID: "1", Action: "view"})
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"#Global Public", "push_back", "push_front", "#Global Private", "pop_back"}, names(resp.View))
	assert.Equal(t, 5, resp.Count)

	resp = s.handleRequest(Request{ID: "2", Action: "complete", Prefix: "pu"})
	assert.Equal(t, "narrow", resp.Change)
	assert.Equal(t, []string{"#Global Public", "push_back", "push_front"}, names(resp.View))
	assert.NotEmpty(t, resp.Events)

	resp = s.handleRequest(Request{ID: "3", Action: "complete", Prefix: "p"})
	assert.Equal(t, "broaden", resp.Change)
	assert.Equal(t, 5, resp.Count)

	resp = s.handleRequest(Request{ID: "4", Action: "complete", Prefix: "p"})
	assert.Equal(t, "unchanged", resp.Change)
	assert.Empty(t, resp.Events)
}

func TestInsertAndRemove(t *testing.T) {
	s, store := newTestServer(t)

	resp := s.handleRequest(Request{ID: "1", Action: "insert", Records: []provider.Record{
		rec("alpha", "global", "public", "variable"),
		rec("beta", "global", "public", "variable"),
	}})
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, []uint32{0, 1}, resp.Inserted)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"#Global Public", "alpha", "beta"}, names(resp.View))

	resp = s.handleRequest(Request{ID: "2", Action: "remove", Rows: []uint32{0, 42}})
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"#Global Public", "beta"}, names(resp.View))

	resp = s.handleRequest(Request{ID: "3", Action: "insert", Records: []provider.Record{rec("gamma", "bogus")}})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, codeBadRequest, resp.Code)
	assert.Equal(t, 1, store.Len())
}

func TestConfigUpdate(t *testing.T) {
	s, _ := newTestServer(t,
		rec("b", "global", "public", "function"),
		rec("a", "global", "private", "function"),
	)

	off := false
	resp := s.handleRequest(Request{ID: "1", Action: "config", Config: &ConfigUpdate{GroupingEnabled: &off}})
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"a", "b"}, names(resp.View))
	assert.False(t, s.cfg.Grouping.Enabled)
	require.NotEmpty(t, resp.Events)
	assert.Equal(t, "model_about_to_reset", resp.Events[0].Kind)

	on := true
	resp = s.handleRequest(Request{ID: "2", Action: "config", Config: &ConfigUpdate{Reverse: &on}})
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"b", "a"}, names(resp.View))

	bad := []string{"file"}
	resp = s.handleRequest(Request{ID: "3", Action: "config", Config: &ConfigUpdate{GroupingDimensions: &bad}})
	assert.Equal(t, codeInvalidConfig, resp.Code)
	assert.False(t, s.cfg.Grouping.Enabled, "a rejected update leaves the config alone")

	resp = s.handleRequest(Request{ID: "4", Action: "config"})
	assert.Equal(t, codeBadRequest, resp.Code)
}

func TestConfigSave(t *testing.T) {
	s, _ := newTestServer(t, rec("a", "global", "public", "function"))
	s.configPath = filepath.Join(t.TempDir(), "config.toml")

	dims := []string{"scope"}
	resp := s.handleRequest(Request{ID: "1", Action: "config", Config: &ConfigUpdate{GroupingDimensions: &dims, Save: true}})
	require.Equal(t, "ok", resp.Status)

	loaded, err := config.LoadConfig(s.configPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"scope"}, loaded.Grouping.Dimensions)
	assert.Equal(t, s.cfg.Server, loaded.Server)
}

func TestLimitTruncatesView(t *testing.T) {
	s, _ := newTestServer(t,
		rec("a", "global", "public", "function"),
		rec("b", "global", "public", "function"),
		rec("c", "global", "public", "function"),
	)
	resp := s.handleRequest(Request{ID: "1", Action: "view", Limit: 2})
	assert.True(t, resp.Truncated)
	assert.Len(t, resp.View, 2)
	assert.Equal(t, 4, resp.Count)
}

func TestLoadAndUnload(t *testing.T) {
	s, store := newTestServer(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "symbols.mp")
	var buf bytes.Buffer
	require.NoError(t, provider.WriteMsgpack(&buf, []provider.Record{rec("one", "global"), rec("two", "global")}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	resp := s.handleRequest(Request{ID: "1", Action: "load", Path: dir})
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, 2, store.Len())

	resp = s.handleRequest(Request{ID: "2", Action: "unload", Path: dir})
	require.Equal(t, "ok", resp.Status)
	assert.Zero(t, store.Len())
	assert.Empty(t, resp.View)

	resp = s.handleRequest(Request{ID: "3", Action: "load"})
	assert.Equal(t, codeBadRequest, resp.Code)
}

func TestStatsAndUnknownAction(t *testing.T) {
	s, _ := newTestServer(t, rec("a", "global", "public", "function"))

	resp := s.handleRequest(Request{ID: "1", Action: "stats"})
	assert.Equal(t, 1, resp.Stats["items"])
	assert.Equal(t, 1, resp.Stats["store"])

	resp = s.handleRequest(Request{ID: "2", Action: "shutdown"})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, codeUnknownAction, resp.Code)
	assert.Equal(t, "2", resp.ID)
}

func TestStartStream(t *testing.T) {
	store := provider.NewStore()
	_, err := store.Add(rec("push_back", "global", "public", "function"), rec("insert", "global", "public", "function"))
	require.NoError(t, err)
	m := model.New(store)
	store.Attach(m)

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	s := NewServer(store, m, nil, "", inR, outW)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
		outW.Close()
	}()

	dec := msgpack.NewDecoder(outR)
	var ready ReadyMessage
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, s.Session(), ready.Session)
	assert.Equal(t, 2, ready.Rows)

	enc := msgpack.NewEncoder(inW)
	go func() {
		_ = enc.Encode(Request{ID: "a", Action: "complete", Prefix: "push"})
		_ = enc.Encode("not a request")
		_ = enc.Encode(Request{ID: "b", Action: "stats"})
		inW.Close()
	}()

	var resp Response
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "a", resp.ID)
	assert.Equal(t, 2, resp.Count)

	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, codeBadRequest, resp.Code)

	resp = Response{}
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "b", resp.ID)
	assert.Equal(t, 1, resp.Stats["matching"])

	require.NoError(t, <-done)
}

func TestReloadReplacesPending(t *testing.T) {
	s, _ := newTestServer(t, rec("a", "global", "public", "function"), rec("b", "global", "public", "function"))
	first := config.DefaultConfig()
	second := config.DefaultConfig()
	second.Sorting.Reverse = true
	s.Reload(first)
	s.Reload(second)

	s.applyReload(<-s.reloads)
	assert.True(t, s.model.Config().Sorting.Reverse)
	select {
	case <-s.reloads:
		t.Fatal("only the latest reload should stay queued")
	default:
	}

	bad := config.DefaultConfig()
	bad.Sorting.Keys = []string{"size"}
	s.applyReload(bad)
	assert.Equal(t, second, s.cfg)
}
