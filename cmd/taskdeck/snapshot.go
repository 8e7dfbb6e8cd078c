package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/taskdeck/internal/snapshot"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every category and task as YAML",
	Long: `Write every category (with its color) and every task as YAML.

Examples:
  taskdeck export > backup.yaml
  taskdeck export -o backup.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		exitOnError(exportSnapshot(context.Background(), output))
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load categories and tasks from a YAML export",
	Long: `Load categories and tasks from a YAML export. Tasks are filed through the
normal create path, so same-titled tasks are replaced. Use "-" for stdin.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(importSnapshot(context.Background(), args[0]))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}

func exportSnapshot(ctx context.Context, output string) error {
	snap, err := snapshot.Export(ctx, registry, repo)
	if err != nil {
		return err
	}
	if output == "" {
		return snapshot.Write(out, snap)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := snapshot.Write(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Exported %d tasks in %d categories to %s\n", green("✓"), len(snap.Tasks), len(snap.Categories), output)
	return nil
}

func importSnapshot(ctx context.Context, input string) error {
	var r io.Reader = os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", input, err)
		}
		defer f.Close()
		r = f
	}

	snap, err := snapshot.Read(r)
	if err != nil {
		return err
	}
	n, err := snapshot.Import(ctx, registry, repo, snap)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Imported %d tasks\n", green("✓"), n)
	return nil
}
