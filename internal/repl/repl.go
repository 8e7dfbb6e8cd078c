package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/shlex"

	"github.com/steveyegge/taskdeck/internal/view"
)

// REPL represents the interactive shell
type REPL struct {
	view     *view.Controller
	rl       *readline.Instance
	ctx      context.Context
	out      io.Writer
	history  string
	commands map[string]CommandHandler
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	View *view.Controller
	// Out receives command output. Default: os.Stdout
	Out io.Writer
	// HistoryFile persists input history; empty keeps it in memory
	HistoryFile string
}

// errExit ends the loop without reporting an error
var errExit = errors.New("exit")

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg.View == nil {
		return nil, fmt.Errorf("view controller is required")
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	r := &REPL{
		view:     cfg.View,
		ctx:      context.Background(),
		out:      out,
		history:  cfg.HistoryFile,
		commands: make(map[string]CommandHandler),
	}

	// Register built-in commands
	r.registerCommands()

	return r, nil
}

// Run starts the REPL loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            r.prompt(),
		HistoryFile:       r.history,
		AutoComplete:      r.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	r.rl = rl

	// Print welcome message
	r.printWelcome()

	// Main loop
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				// Ctrl+C - just show prompt again
				continue
			} else if err == io.EOF {
				// Ctrl+D - exit
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == errExit {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
		}

		// Selection can change on use, rmcat or when a category is pruned
		rl.SetPrompt(r.prompt())
	}
}

// processInput processes a single line of input
func (r *REPL) processInput(line string) error {
	parts, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("cannot parse input: %w", err)
	}
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(r.out, "%s Unknown command %q. Use 'help' for available commands.\n", yellow("Note:"), command)
	return nil
}

func (r *REPL) prompt() string {
	cyan := color.New(color.FgCyan).SprintFunc()
	return cyan(fmt.Sprintf("taskdeck [%s]> ", r.view.Selected()))
}

// completer completes command names, categories and titles in the selected bucket
func (r *REPL) completer() *readline.PrefixCompleter {
	categories := readline.PcItemDynamic(func(string) []string {
		cats, err := r.view.Categories(r.ctx)
		if err != nil {
			return nil
		}
		names := make([]string, 0, len(cats))
		for _, c := range cats {
			names = append(names, quoteIfNeeded(c.Name))
		}
		return names
	})
	titles := func() readline.PrefixCompleterInterface {
		return readline.PcItemDynamic(func(string) []string {
			list, err := r.view.Tasks(r.ctx)
			if err != nil {
				return nil
			}
			names := make([]string, 0, len(list))
			for _, t := range list {
				names = append(names, quoteIfNeeded(t.Title))
			}
			return names
		})
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("ls"),
		readline.PcItem("use", categories),
		readline.PcItem("tasks"),
		readline.PcItem("add"),
		readline.PcItem("show", titles()),
		readline.PcItem("edit", titles()),
		readline.PcItem("move", titles()),
		readline.PcItem("sub",
			readline.PcItem("add", titles()),
			readline.PcItem("edit", titles()),
			readline.PcItem("rm", titles()),
		),
		readline.PcItem("rm", titles()),
		readline.PcItem("mkcat"),
		readline.PcItem("rmcat", categories),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// printWelcome prints the welcome message
func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n", cyan("taskdeck"))
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(r.out)
}
