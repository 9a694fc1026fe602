// Copyright 2025 The compmodel Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the completion model server and CLI [DBG] application.

compmodel keeps a list of code completion candidates filtered by the typed
prefix, sorted, and grouped under headers such as "Global Public" or
"Private Functions". It can operate as a MessagePack IPC server for editors,
or as a CLI application for testing and debugging the model.

# Usage

Start the server with default settings:

	compmodel

Use a custom data path and enable debug mode:

	compmodel --data /path/to/symbols -d

Run in CLI mode for interactive testing:

	compmodel cli --data symbols.tsv

The data path is a candidate file or a directory of them. Tab separated files
(.tsv, .txt) list one candidate per line; msgpack files (.msgpack, .mp) hold an
array of records.

	push_back	public|function	std::vector	0	void	(const T& value)

# Configuration

Runtime configuration is a TOML file, created with defaults if it doesn't exist:

	[sorting]
	enabled = true
	alphabetical = true
	keys = ["name"]

	[grouping]
	enabled = true
	dimensions = ["scope_type", "access_type"]

	[server]
	max_rows = 200
	watch_config = true

With watch_config set, the server applies edits to the file without a restart.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout; see package server
for the full list of actions.

	{"id": "r1", "action": "complete", "p": "push"}
	{"id": "r1", "status": "ok", "change": "narrow", "v": [...], "n": 3, "t": 85}

# CLI Mode

CLI mode reads lines from stdin, takes the identifier at the end of each line
as the prefix, and prints the grouped view. Lines starting with ':' change the
configuration; ':help' lists them.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/compmodel/internal/cli"
	"github.com/bastiangx/compmodel/internal/logger"
	"github.com/bastiangx/compmodel/internal/utils"
	"github.com/bastiangx/compmodel/pkg/config"
	"github.com/bastiangx/compmodel/pkg/model"
	"github.com/bastiangx/compmodel/pkg/provider"
	"github.com/bastiangx/compmodel/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0-beta"
	AppName = "compmodel"
	gh      = "https://github.com/bastiangx/compmodel"
)

type options struct {
	dataPath    string
	configPath  string
	logFile     string
	debug       bool
	showVersion bool
	resetConfig bool

	// modelLog is set by setupLogging.
	modelLog *log.Logger
}

func main() {
	opts := &options{}
	root := newRootCmd(opts)
	root.AddCommand(newCLICmd(opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   AppName,
		Short: "Filters, sorts and groups code completion candidates",
		Long: `compmodel keeps a completion list grouped and sorted while the prefix is typed.
By default it serves MessagePack requests on stdin/stdout.`,
		Example: `
# Serve candidates from a directory
compmodel --data ./symbols

# Serve with debug logging written to a file
compmodel -d --log-file /tmp/compmodel.log

# Explore the model interactively
compmodel cli --data symbols.tsv
  `,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				printVersion()
				return nil
			}
			if opts.resetConfig {
				if err := config.RebuildConfigFile(); err != nil {
					return fmt.Errorf("failed to rebuild config: %w", err)
				}
				path, _ := config.GetDefaultConfigPath()
				fmt.Fprintf(os.Stderr, "Wrote default config to %s\n", path)
				return nil
			}
			return runServer(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.dataPath, "data", "", "Candidate file or directory (default \"data\")")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a custom config file")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Toggle debug mode")
	cmd.Flags().BoolVarP(&opts.showVersion, "version", "v", false, "Show current version")
	cmd.Flags().BoolVar(&opts.resetConfig, "reset-config", false, "Overwrite the default config file with defaults and exit")
	return cmd
}

func newCLICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cli",
		Short: "Interactive shell for testing and debugging the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCLI(cmd.Context(), opts)
		},
	}
}

// setupLogging sets the global logger. The returned closer is never nil.
func setupLogging(opts *options) io.Closer {
	level := log.WarnLevel
	if opts.debug {
		level = log.DebugLevel
	}
	if opts.logFile != "" {
		l, closer := logger.NewFile(opts.logFile, AppName, level, logger.DefaultFileOptions())
		log.SetDefault(l)
		opts.modelLog = l.WithPrefix("model")
		return closer
	}
	log.SetLevel(level)
	log.SetReportTimestamp(opts.debug)
	opts.modelLog = logger.New("model")
	return io.NopCloser(nil)
}

// setup loads config and candidates and wires the store to a new model.
func setup(opts *options) (*provider.Store, *model.Model, *config.Config, string, error) {
	cfg, cfgPath, err := config.LoadConfigWithPriority(opts.configPath)
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	mc, err := cfg.Model()
	if err != nil {
		return nil, nil, nil, "", err
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(cfgPath))

	store := provider.NewStore()
	configDir := ""
	if cfgPath != "" {
		configDir = filepath.Dir(cfgPath)
	}
	dataPath, err := utils.ResolveDataPath(opts.dataPath, configDir, hasCandidates)
	switch {
	case err == nil:
		n, err := provider.LoadInto(store, dataPath)
		if err != nil {
			return nil, nil, nil, "", fmt.Errorf("failed to load candidates: %w", err)
		}
		log.Debugf("Loaded %d candidates from %s", n, dataPath)
	case opts.dataPath != "":
		return nil, nil, nil, "", err
	default:
		log.Warn("No candidate data found, starting with an empty model...")
	}

	m := model.New(store, model.WithConfig(mc), model.WithLogger(opts.modelLog))
	store.Attach(m)
	return store, m, cfg, cfgPath, nil
}

func hasCandidates(path string) bool {
	if _, err := provider.DetectFileFormat(path); err == nil {
		return true
	}
	files, err := provider.CandidateFiles(path)
	return err == nil && len(files) > 0
}

func runServer(ctx context.Context, opts *options) error {
	closer := setupLogging(opts)
	defer closer.Close()

	store, m, cfg, cfgPath, err := setup(opts)
	if err != nil {
		return err
	}
	srv := server.NewServer(store, m, cfg, cfgPath, os.Stdin, os.Stdout)

	if cfg.Server.WatchConfig && cfgPath != "" {
		if err := config.Watch(ctx, cfgPath, srv.Reload); err != nil {
			log.Warnf("Config reloads disabled: %v", err)
		}
	}

	log.Info("Server ready", "pid", os.Getpid(), "rows", store.Len(), "session", srv.Session())
	return srv.Start(ctx)
}

func runCLI(ctx context.Context, opts *options) error {
	closer := setupLogging(opts)
	defer closer.Close()

	// stdin reads do not observe ctx
	go func() {
		<-ctx.Done()
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		closer.Close()
		os.Exit(0)
	}()

	_, m, cfg, _, err := setup(opts)
	if err != nil {
		return err
	}
	log.SetReportTimestamp(false)
	log.Debug("CLI info:", "maxRows", cfg.CLI.MaxRows, "showEvents", cfg.CLI.ShowEvents)
	return cli.NewInputHandler(m, cfg, os.Stdout).Start(os.Stdin)
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ compmodel ] Grouped and sorted code completions")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}
