package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/taskdeck/internal/types"
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Edit the subtask checklist of a task",
	Long: `Edit the subtask checklist of a task. Subtasks are numbered from 1.

Examples:
  taskdeck subtask add Report "attach figures"
  taskdeck subtask edit Report 2 "send to team"
  taskdeck subtask rm Report 1`,
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <title> <text>",
	Short: "Append a subtask",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(changeSubtasks(context.Background(), args[0], func(t *types.Task) error {
			return t.AddSubtask(strings.Join(args[1:], " "))
		}))
	},
}

var subtaskEditCmd = &cobra.Command{
	Use:   "edit <title> <n> <text>",
	Short: "Replace subtask n",
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(changeSubtasks(context.Background(), args[0], func(t *types.Task) error {
			i, err := subtaskIndex(args[1])
			if err != nil {
				return err
			}
			return t.EditSubtask(i, strings.Join(args[2:], " "))
		}))
	},
}

var subtaskRemoveCmd = &cobra.Command{
	Use:     "rm <title> <n>",
	Aliases: []string{"remove"},
	Short:   "Remove subtask n",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(changeSubtasks(context.Background(), args[0], func(t *types.Task) error {
			i, err := subtaskIndex(args[1])
			if err != nil {
				return err
			}
			return t.RemoveSubtask(i)
		}))
	},
}

func init() {
	rootCmd.AddCommand(subtaskCmd)
	subtaskCmd.AddCommand(subtaskAddCmd, subtaskEditCmd, subtaskRemoveCmd)
}

// changeSubtasks applies change to the task titled title and saves it
func changeSubtasks(ctx context.Context, title string, change func(t *types.Task) error) error {
	task, err := lookupTask(ctx, title)
	if err != nil {
		return err
	}
	if err := change(&task); err != nil {
		return err
	}
	saved, err := saveTask(ctx, task, task.OriginalCategory)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %q has %d subtask(s)\n", green("✓"), saved.Title, len(saved.Subtasks))
	return nil
}

// subtaskIndex converts a 1-based subtask number to an index
func subtaskIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("subtask number must be an integer (got %q)", s)
	}
	return n - 1, nil
}
