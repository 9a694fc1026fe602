// Package cli provides an interactive shell over a completion model, for debugging
// grouping, sorting and filtering in real-time.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/compmodel/internal/utils"
	"github.com/bastiangx/compmodel/pkg/config"
	"github.com/bastiangx/compmodel/pkg/model"
	"github.com/charmbracelet/log"
)

var (
	errQuit           = errors.New("quit")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
)

const helpText = `Type text and press Enter; the identifier at the end of the line is the prefix.
Commands:
  :group off | on | <dimension,...>   scope_type, scope, access_type, item_type
  :sort off | on | <key,...>          name, -access, scope_type, item_type, inheritance
  :reverse [on | off]                 reversed sorting, toggled without argument
  :depth <n>                          maximum inheritance depth, 0 for none
  :case on | off                      case sensitive matching
  :filter off | on | <property,...>   hide rows having any of the properties
  :context on | off                   only rows matching the editing context
  :merge on | off                     merge columns
  :events on | off                    print structural events
  :stats                              print counters
  :quit`

// command is a parsed ':' line.
type command struct {
	name string
	args []string
}

// parseCommand splits ":name a,b c" into the name and its arguments. Arguments
// are separated by spaces or commas.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) == 0 {
		return command{}, fmt.Errorf("%w: empty", ErrUnknownCommand)
	}
	return command{name: strings.ToLower(fields[0]), args: fields[1:]}, nil
}

func parseSwitch(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("%w: want on or off", ErrBadArgument)
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not on or off", ErrBadArgument, args[0])
}

// InputHandler reads lines, feeds their trailing identifier to the model and prints the view.
type InputHandler struct {
	model      *model.Model
	cfg        *config.Config
	out        io.Writer
	maxRows    int
	showEvents bool

	prefix string
	events []model.Event
}

// NewInputHandler creates a handler printing to out. cfg must describe the model's current configuration.
func NewInputHandler(m *model.Model, cfg *config.Config, out io.Writer) *InputHandler {
	if cfg == nil {
		cfg = config.FromModel(m.Config())
	}
	h := &InputHandler{
		model:      m,
		cfg:        cfg,
		out:        out,
		maxRows:    cfg.CLI.MaxRows,
		showEvents: cfg.CLI.ShowEvents,
		prefix:     m.CurrentCompletion(),
	}
	m.Subscribe(func(e model.Event) { h.events = append(h.events, e) })
	return h
}

// Start runs the loop until in is exhausted or :quit is entered.
func (h *InputHandler) Start(in io.Reader) error {
	fmt.Fprintln(h.out, headerStyle.Render("compmodel CLI"))
	fmt.Fprintln(h.out, dimStyle.Render("type a prefix and press Enter, :help for commands (Ctrl+C to exit)"))
	renderView(h.out, h.model, h.maxRows)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			err := h.runCommand(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				log.Error(err)
			}
			continue
		}
		h.handleInput(line)
	}
}

// handleInput takes the identifier at the end of line as the new prefix.
func (h *InputHandler) handleInput(line string) {
	prefix := utils.TrailingIdentifier(strings.TrimRight(line, "\r\n"))
	if !utils.IsValidPrefix(prefix) {
		log.Warnf("Ignoring prefix %q: identifiers do not start with a digit", prefix)
		return
	}

	h.events = h.events[:0]
	start := time.Now()
	change := h.model.SetCurrentCompletion(prefix)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	h.prefix = prefix
	h.render(change)
}

func (h *InputHandler) render(change model.ChangeType) {
	renderChange(h.out, h.prefix, change, h.model.Stats()["visible"])
	if h.showEvents {
		renderEvents(h.out, h.events)
	}
	renderView(h.out, h.model, h.maxRows)
}

// runCommand applies one ':' command.
func (h *InputHandler) runCommand(line string) error {
	cmd, err := parseCommand(line)
	if err != nil {
		return err
	}

	switch cmd.name {
	case "quit", "q", "exit":
		return errQuit
	case "help", "h", "?":
		fmt.Fprintln(h.out, helpText)
		return nil
	case "stats":
		renderStats(h.out, h.model.Stats())
		return nil
	case "events":
		on, err := parseSwitch(cmd.args)
		if err != nil {
			return err
		}
		h.showEvents = on
		return nil
	}

	next := *h.cfg
	if err := applyCommand(&next, cmd); err != nil {
		return err
	}
	mc, err := next.Model()
	if err != nil {
		return err
	}
	h.events = h.events[:0]
	h.model.ApplyConfig(mc)
	h.cfg = &next
	h.render(model.Unchanged)
	return nil
}

// applyCommand edits c according to cmd. Names are checked later by Config.Model.
func applyCommand(c *config.Config, cmd command) error {
	toggle := func(dst *bool) error {
		on, err := parseSwitch(cmd.args)
		if err == nil {
			*dst = on
		}
		return err
	}
	// listOrSwitch reports whether a list was given rather than on/off.
	listOrSwitch := func(enabled *bool, list *[]string) (bool, error) {
		if len(cmd.args) == 1 {
			if on, err := parseSwitch(cmd.args); err == nil {
				*enabled = on
				return false, nil
			}
		}
		if len(cmd.args) == 0 {
			return false, fmt.Errorf("%w: :%s needs arguments", ErrBadArgument, cmd.name)
		}
		*enabled = true
		*list = cmd.args
		return true, nil
	}

	switch cmd.name {
	case "group":
		_, err := listOrSwitch(&c.Grouping.Enabled, &c.Grouping.Dimensions)
		return err
	case "sort":
		_, err := listOrSwitch(&c.Sorting.Enabled, &c.Sorting.Keys)
		return err
	case "filter":
		list, err := listOrSwitch(&c.Filtering.Enabled, &c.Filtering.Attributes)
		if list {
			c.Filtering.ByAttribute = true
		}
		return err
	case "reverse":
		if len(cmd.args) == 0 {
			c.Sorting.Reverse = !c.Sorting.Reverse
			return nil
		}
		return toggle(&c.Sorting.Reverse)
	case "depth":
		if len(cmd.args) != 1 {
			return fmt.Errorf("%w: :depth takes one number", ErrBadArgument)
		}
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %q is not a depth", ErrBadArgument, cmd.args[0])
		}
		c.Filtering.Enabled = c.Filtering.Enabled || n > 0
		c.Filtering.MaxInheritanceDepth = n
		return nil
	case "case":
		return toggle(&c.Matching.CaseSensitive)
	case "context":
		if err := toggle(&c.Filtering.ContextMatchesOnly); err != nil {
			return err
		}
		c.Filtering.Enabled = c.Filtering.Enabled || c.Filtering.ContextMatchesOnly
		return nil
	case "merge":
		return toggle(&c.Columns.Merging)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.name)
}
