/*
Package config manages the TOML config for compmodel services.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/compmodel/internal/utils"
	"github.com/bastiangx/compmodel/pkg/model"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Matching  MatchingConfig  `toml:"matching"`
	Sorting   SortingConfig   `toml:"sorting"`
	Filtering FilteringConfig `toml:"filtering"`
	Grouping  GroupingConfig  `toml:"grouping"`
	Columns   ColumnsConfig   `toml:"columns"`
	Server    ServerConfig    `toml:"server"`
	CLI       CliConfig       `toml:"cli"`
}

// MatchingConfig controls how the typed prefix is compared with names.
type MatchingConfig struct {
	CaseSensitive bool `toml:"case_sensitive"`
}

// SortingConfig orders rows inside groups. Keys are names like "name" or "-inheritance".
type SortingConfig struct {
	Enabled       bool     `toml:"enabled"`
	Alphabetical  bool     `toml:"alphabetical"`
	CaseSensitive bool     `toml:"case_sensitive"`
	Reverse       bool     `toml:"reverse"`
	Keys          []string `toml:"keys"`
}

// FilteringConfig hides rows. Attributes are property names such as "private".
type FilteringConfig struct {
	Enabled             bool     `toml:"enabled"`
	ContextMatchesOnly  bool     `toml:"context_matches_only"`
	ByAttribute         bool     `toml:"by_attribute"`
	Attributes          []string `toml:"attributes"`
	MaxInheritanceDepth int      `toml:"max_inheritance_depth"`
}

// GroupingConfig selects grouping dimensions: scope_type, scope, access_type, item_type.
type GroupingConfig struct {
	Enabled           bool     `toml:"enabled"`
	Dimensions        []string `toml:"dimensions"`
	IncludeConst      bool     `toml:"include_const"`
	IncludeStatic     bool     `toml:"include_static"`
	IncludeSignalSlot bool     `toml:"include_signal_slot"`
}

// ColumnsConfig lists the source columns merged into each view column.
type ColumnsConfig struct {
	Merging bool       `toml:"merging"`
	Merges  [][]string `toml:"merges"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	// MaxRows caps the flattened rows returned per response; 0 means no cap.
	MaxRows     int  `toml:"max_rows"`
	EmitEvents  bool `toml:"emit_events"`
	WatchConfig bool `toml:"watch_config"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	MaxRows    int  `toml:"max_rows"`
	ShowEvents bool `toml:"show_events"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "compmodel")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "compmodel")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/compmodel/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config mirroring model.DefaultConfig plus service defaults.
func DefaultConfig() *Config {
	c := FromModel(model.DefaultConfig())
	c.Server = ServerConfig{
		MaxRows:     200,
		EmitEvents:  true,
		WatchConfig: true,
	}
	c.CLI = CliConfig{
		MaxRows:    40,
		ShowEvents: false,
	}
	return c
}

// FromModel renders an engine configuration in file form.
func FromModel(mc model.Config) *Config {
	c := &Config{
		Matching: MatchingConfig{CaseSensitive: mc.MatchCaseSensitivity == model.CaseSensitive},
		Sorting: SortingConfig{
			Enabled:       mc.Sorting.Enabled,
			Alphabetical:  mc.Sorting.Alphabetical,
			CaseSensitive: mc.Sorting.CaseSensitivity == model.CaseSensitive,
			Reverse:       mc.Sorting.Reverse,
			Keys:          []string{},
		},
		Filtering: FilteringConfig{
			Enabled:             mc.Filtering.Enabled,
			ContextMatchesOnly:  mc.Filtering.ContextMatchesOnly,
			ByAttribute:         mc.Filtering.ByAttribute,
			Attributes:          mc.Filtering.Attributes.Names(),
			MaxInheritanceDepth: mc.Filtering.MaxInheritanceDepth,
		},
		Grouping: GroupingConfig{
			Enabled:           mc.Grouping.Enabled,
			Dimensions:        []string{},
			IncludeConst:      mc.Grouping.IncludeConst,
			IncludeStatic:     mc.Grouping.IncludeStatic,
			IncludeSignalSlot: mc.Grouping.IncludeSignalSlot,
		},
		Columns: ColumnsConfig{Merging: mc.Columns.MergingEnabled},
	}
	if c.Filtering.Attributes == nil {
		c.Filtering.Attributes = []string{}
	}
	for _, k := range mc.Sorting.Keys {
		c.Sorting.Keys = append(c.Sorting.Keys, k.String())
	}
	for _, dim := range []model.GroupingMethod{model.ScopeType, model.Scope, model.AccessType, model.ItemType} {
		if mc.Grouping.Method&dim != 0 {
			c.Grouping.Dimensions = append(c.Grouping.Dimensions, dim.String())
		}
	}
	for _, merge := range mc.Columns.Merges {
		names := make([]string, 0, len(merge))
		for _, col := range merge {
			names = append(names, model.ColumnName(col))
		}
		c.Columns.Merges = append(c.Columns.Merges, names)
	}
	return c
}

// Model converts the file form into an engine configuration.
func (c *Config) Model() (model.Config, error) {
	mc := model.Config{
		MatchCaseSensitivity: caseSensitivity(c.Matching.CaseSensitive),
		Sorting: model.SortingConfig{
			Enabled:         c.Sorting.Enabled,
			Alphabetical:    c.Sorting.Alphabetical,
			CaseSensitivity: caseSensitivity(c.Sorting.CaseSensitive),
			Reverse:         c.Sorting.Reverse,
		},
		Filtering: model.FilteringConfig{
			Enabled:             c.Filtering.Enabled,
			ContextMatchesOnly:  c.Filtering.ContextMatchesOnly,
			ByAttribute:         c.Filtering.ByAttribute,
			MaxInheritanceDepth: c.Filtering.MaxInheritanceDepth,
		},
		Grouping: model.GroupingConfig{
			Enabled:           c.Grouping.Enabled,
			IncludeConst:      c.Grouping.IncludeConst,
			IncludeStatic:     c.Grouping.IncludeStatic,
			IncludeSignalSlot: c.Grouping.IncludeSignalSlot,
		},
		Columns: model.ColumnConfig{MergingEnabled: c.Columns.Merging},
	}
	for _, k := range c.Sorting.Keys {
		o, ok := model.ParseSortOrder(k)
		if !ok {
			return model.Config{}, fmt.Errorf("sorting.keys: %w: %q", ErrInvalidValue, k)
		}
		mc.Sorting.Keys = append(mc.Sorting.Keys, o)
	}
	for _, a := range c.Filtering.Attributes {
		p, ok := model.ParseProperty(a)
		if !ok {
			return model.Config{}, fmt.Errorf("filtering.attributes: %w: %q", ErrInvalidValue, a)
		}
		mc.Filtering.Attributes |= p
	}
	for _, d := range c.Grouping.Dimensions {
		m, ok := model.ParseGroupingMethod(d)
		if !ok {
			return model.Config{}, fmt.Errorf("grouping.dimensions: %w: %q", ErrInvalidValue, d)
		}
		mc.Grouping.Method |= m
	}
	for _, merge := range c.Columns.Merges {
		cols := make([]model.Column, 0, len(merge))
		for _, name := range merge {
			col, ok := model.ParseColumn(name)
			if !ok {
				return model.Config{}, fmt.Errorf("columns.merges: %w: %q", ErrInvalidValue, name)
			}
			cols = append(cols, col)
		}
		mc.Columns.Merges = append(mc.Columns.Merges, cols)
	}
	return mc, nil
}

func caseSensitivity(sensitive bool) model.CaseSensitivity {
	if sensitive {
		return model.CaseSensitive
	}
	return model.CaseInsensitive
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. A file with syntax or type errors is salvaged
// section by section; values that do not convert to an engine config are an error.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		if config, err = tryPartialParse(configPath); err != nil {
			return nil, err
		}
	}
	if _, err := config.Model(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return config, nil
}

// tryPartialParse keeps every value it can read and defaults the rest
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "matching"); ok {
		setBool(section, "case_sensitive", &config.Matching.CaseSensitive)
	}
	if section, ok := utils.ExtractSection(tempConfig, "sorting"); ok {
		extractSortingConfig(section, &config.Sorting)
	}
	if section, ok := utils.ExtractSection(tempConfig, "filtering"); ok {
		extractFilteringConfig(section, &config.Filtering)
	}
	if section, ok := utils.ExtractSection(tempConfig, "grouping"); ok {
		extractGroupingConfig(section, &config.Grouping)
	}
	if section, ok := utils.ExtractSection(tempConfig, "columns"); ok {
		setBool(section, "merging", &config.Columns.Merging)
		if val, ok := utils.ExtractStringMatrix(section, "merges"); ok {
			config.Columns.Merges = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		setInt(section, "max_rows", &config.Server.MaxRows)
		setBool(section, "emit_events", &config.Server.EmitEvents)
		setBool(section, "watch_config", &config.Server.WatchConfig)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		setInt(section, "max_rows", &config.CLI.MaxRows)
		setBool(section, "show_events", &config.CLI.ShowEvents)
	}
	return config, nil
}

func setBool(data map[string]any, key string, dst *bool) {
	if val, ok := utils.Extract[bool](data, key); ok {
		*dst = val
	}
}

func setInt(data map[string]any, key string, dst *int) {
	if val, ok := utils.ExtractInt(data, key); ok {
		*dst = val
	}
}

func setStrings(data map[string]any, key string, dst *[]string) {
	if val, ok := utils.ExtractStrings(data, key); ok {
		*dst = val
	}
}

func extractSortingConfig(data map[string]any, sorting *SortingConfig) {
	setBool(data, "enabled", &sorting.Enabled)
	setBool(data, "alphabetical", &sorting.Alphabetical)
	setBool(data, "case_sensitive", &sorting.CaseSensitive)
	setBool(data, "reverse", &sorting.Reverse)
	setStrings(data, "keys", &sorting.Keys)
}

func extractFilteringConfig(data map[string]any, filtering *FilteringConfig) {
	setBool(data, "enabled", &filtering.Enabled)
	setBool(data, "context_matches_only", &filtering.ContextMatchesOnly)
	setBool(data, "by_attribute", &filtering.ByAttribute)
	setStrings(data, "attributes", &filtering.Attributes)
	setInt(data, "max_inheritance_depth", &filtering.MaxInheritanceDepth)
}

func extractGroupingConfig(data map[string]any, grouping *GroupingConfig) {
	setBool(data, "enabled", &grouping.Enabled)
	setStrings(data, "dimensions", &grouping.Dimensions)
	setBool(data, "include_const", &grouping.IncludeConst)
	setBool(data, "include_static", &grouping.IncludeStatic)
	setBool(data, "include_signal_slot", &grouping.IncludeSignalSlot)
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update replaces the engine part of the config and saves to file
func (c *Config) Update(configPath string, mc model.Config) error {
	next := FromModel(mc)
	next.Server = c.Server
	next.CLI = c.CLI
	*c = *next
	return SaveConfig(c, configPath)
}
