package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/taskdeck/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize a task store in the current directory",
	Long: `Initialize taskdeck by creating a .taskdeck/ directory with a SQLite database.

This creates:
  - .taskdeck/ directory
  - .taskdeck/<name>.db (SQLite database, default name "taskdeck")

Example:
  cd ~/notes
  taskdeck init                 # Creates .taskdeck/taskdeck.db
  taskdeck init personal        # Creates .taskdeck/personal.db`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}

		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get current directory: %v\n", err)
			os.Exit(1)
		}

		path, err := initProject(context.Background(), cwd, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Fprintf(out, "\n%s Initialized taskdeck\n\n", green("✓"))
		fmt.Fprintf(out, "  Database: %s\n\n", cyan(path))
		fmt.Fprintf(out, "%s Next steps:\n", gray("→"))
		fmt.Fprintf(out, "  %s\n", gray(`taskdeck task add "Pay rent" -c Home -d 2026-11-01`))
		fmt.Fprintf(out, "  %s\n\n", gray("taskdeck shell"))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// initProject creates the data directory and the database schema
func initProject(ctx context.Context, dir, name string) (string, error) {
	path, err := storage.InitProject(dir, name)
	if err != nil {
		return "", err
	}

	db, err := storage.NewStorage(ctx, &storage.Config{Backend: storage.BackendSQLite, Path: path})
	if err != nil {
		return "", fmt.Errorf("failed to initialize database: %w", err)
	}
	_ = db.Close() // Ignore close error during initialization
	return path, nil
}
