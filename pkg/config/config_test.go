package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/compmodel/pkg/model"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestDefaultConfigMatchesModel(t *testing.T) {
	mc, err := DefaultConfig().Model()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), mc)
}

func TestModelConversion(t *testing.T) {
	c := DefaultConfig()
	c.Matching.CaseSensitive = true
	c.Sorting.Keys = []string{"-access", "name"}
	c.Filtering.Attributes = []string{"private", "static"}
	c.Grouping.Dimensions = []string{"scope", "item"}
	c.Columns.Merges = [][]string{{"name", "arguments"}}

	mc, err := c.Model()
	require.NoError(t, err)
	assert.Equal(t, model.CaseSensitive, mc.MatchCaseSensitivity)
	assert.Equal(t, []model.SortOrder{{Key: model.SortByAccess, Descending: true}, {Key: model.SortByName}}, mc.Sorting.Keys)
	assert.Equal(t, model.Private|model.Static, mc.Filtering.Attributes)
	assert.Equal(t, model.Scope|model.ItemType, mc.Grouping.Method)
	assert.Equal(t, [][]model.Column{{model.NameColumn, model.ArgumentsColumn}}, mc.Columns.Merges)

	back := FromModel(mc)
	assert.Equal(t, []string{"-access", "name"}, back.Sorting.Keys)
	assert.Equal(t, []string{"scope", "item_type"}, back.Grouping.Dimensions)
	assert.Equal(t, [][]string{{"Name", "Arguments"}}, back.Columns.Merges)

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sort key", func(c *Config) { c.Sorting.Keys = []string{"size"} }},
		{"attribute", func(c *Config) { c.Filtering.Attributes = []string{"mutable"} }},
		{"dimension", func(c *Config) { c.Grouping.Dimensions = []string{"file"} }},
		{"column", func(c *Config) { c.Columns.Merges = [][]string{{"type"}} }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(c)
			_, err := c.Model()
			require.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	c := DefaultConfig()
	c.Sorting.Reverse = true
	c.Grouping.Dimensions = []string{"scope"}
	c.Server.MaxRows = 7
	require.NoError(t, SaveConfig(c, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestPartialParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[sorting]
reverse = true
enabled = "yes"

[grouping]
dimensions = ["access"]

[server]
max_rows = 5
`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, c.Sorting.Reverse)
	assert.True(t, c.Sorting.Enabled, "a mistyped value keeps its default")
	assert.Equal(t, []string{"access"}, c.Grouping.Dimensions)
	assert.Equal(t, 5, c.Server.MaxRows)
}

func TestLoadConfigRejectsUnknownNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[grouping]\ndimensions = [\"file\"]\n"), 0o644))
	_, err := LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	c, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.FileExists(t, path)
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, func(c *Config) { reloaded <- c }))

	c := DefaultConfig()
	c.Sorting.Reverse = true
	require.NoError(t, SaveConfig(c, path))

	select {
	case got := <-reloaded:
		assert.True(t, got.Sorting.Reverse)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestRebuildConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[sorting]\nreverse = true\n"), 0o644))

	require.NoError(t, RebuildConfigFile())
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.Equal(t, path, GetActiveConfigPath(""))
}
