package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/taskdeck/internal/repl"
	"github.com/steveyegge/taskdeck/internal/storage"
	"github.com/steveyegge/taskdeck/internal/view"
)

var shellCmd = &cobra.Command{
	Use:     "shell",
	Aliases: []string{"repl"},
	Short:   "Start the interactive shell",
	Long: `Start an interactive shell with a selected category.

The shell starts on "Upcoming". Select a category with 'use', list it with
'tasks', and edit tasks in place. Type 'help' in the shell for all commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		history := ""
		if cwd, err := os.Getwd(); err == nil {
			if info, err := os.Stat(filepath.Join(cwd, storage.DataDir)); err == nil && info.IsDir() {
				history = filepath.Join(cwd, storage.DataDir, "history")
			}
		}

		r, err := repl.New(&repl.Config{
			View:        view.New(repo, registry, bus),
			Out:         out,
			HistoryFile: history,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create shell: %v\n", err)
			os.Exit(1)
		}

		if err := r.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
