package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/taskdeck/internal/types"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, edit and delete tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List the tasks in a category, All or Upcoming (default)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bucket := types.BucketUpcoming
		if len(args) == 1 {
			bucket = args[0]
		}
		exitOnError(listTasks(context.Background(), bucket))
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Long: `Create a task filed under a category. The category is created if needed.

Examples:
  taskdeck task add "Pay rent" -c Home -d 2026-11-01
  taskdeck task add Report -c Work -d 2026-10-25 --subtask draft --subtask send`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		categoryName, _ := cmd.Flags().GetString("category")
		date, _ := cmd.Flags().GetString("date")
		description, _ := cmd.Flags().GetString("description")
		subtasks, _ := cmd.Flags().GetStringArray("subtask")

		task := types.Task{Title: args[0], Date: date, Description: description, Subtasks: subtasks}
		exitOnError(addTask(context.Background(), categoryName, task))
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <title>",
	Short: "Change the date or description of a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var date, description *string
		if cmd.Flags().Changed("date") {
			v, _ := cmd.Flags().GetString("date")
			date = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			description = &v
		}
		exitOnError(editTask(context.Background(), args[0], date, description))
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <title> <category>",
	Short: "File a task under another category",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(moveTask(context.Background(), args[0], args[1]))
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <title>",
	Aliases: []string{"rm"},
	Short:   "Delete a task from every view",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(deleteTask(context.Background(), args[0]))
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <title>",
	Short: "Show a task with its subtasks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(showTask(context.Background(), args[0]))
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskEditCmd, taskMoveCmd, taskDeleteCmd, taskShowCmd)

	taskAddCmd.Flags().StringP("category", "c", "", "Category to file the task under (required)")
	taskAddCmd.Flags().StringP("date", "d", "", "Due date, YYYY-MM-DD (required)")
	taskAddCmd.Flags().String("description", "", "Free text description")
	taskAddCmd.Flags().StringArray("subtask", nil, "Subtask (repeatable)")
	_ = taskAddCmd.MarkFlagRequired("category")
	_ = taskAddCmd.MarkFlagRequired("date")

	taskEditCmd.Flags().StringP("date", "d", "", "New due date, YYYY-MM-DD")
	taskEditCmd.Flags().String("description", "", "New description")
}

func listTasks(ctx context.Context, bucket string) error {
	list, err := repo.List(ctx, bucket)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Fprintf(out, "%s\n", gray("No tasks in "+bucket))
		return nil
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	for _, t := range list {
		fmt.Fprintf(out, "%s  %s  %s", cyan(t.Date), t.Title, gray("["+t.OriginalCategory+"]"))
		if n := len(t.Subtasks); n > 0 {
			fmt.Fprintf(out, " %s", gray(fmt.Sprintf("(%d subtasks)", n)))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func addTask(ctx context.Context, categoryName string, task types.Task) error {
	created, err := repo.Create(ctx, categoryName, task)
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Created task %q in %s\n", green("✓"), created.Title, created.OriginalCategory)
	return nil
}

// lookupTask finds a filed task by title
func lookupTask(ctx context.Context, title string) (types.Task, error) {
	task, ok, err := repo.Get(ctx, title)
	if err != nil {
		return types.Task{}, err
	}
	if !ok {
		return types.Task{}, fmt.Errorf("task %q not found", title)
	}
	return task, nil
}

// saveTask writes task back, treating its current category as the edited view
func saveTask(ctx context.Context, task types.Task, from string) (types.Task, error) {
	return repo.Update(ctx, from, task)
}

func editTask(ctx context.Context, title string, date, description *string) error {
	task, err := lookupTask(ctx, title)
	if err != nil {
		return err
	}
	if date == nil && description == nil {
		return fmt.Errorf("nothing to change (use --date or --description)")
	}
	if date != nil {
		task.Date = *date
	}
	if description != nil {
		task.Description = *description
	}

	saved, err := saveTask(ctx, task, task.OriginalCategory)
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Updated task %q\n", green("✓"), saved.Title)
	return nil
}

func moveTask(ctx context.Context, title, categoryName string) error {
	task, err := lookupTask(ctx, title)
	if err != nil {
		return err
	}
	from := task.OriginalCategory
	task.OriginalCategory = categoryName

	saved, err := saveTask(ctx, task, from)
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Moved task %q from %s to %s\n", green("✓"), saved.Title, from, saved.OriginalCategory)
	return nil
}

func deleteTask(ctx context.Context, title string) error {
	task, err := lookupTask(ctx, title)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, task); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Deleted task %q\n", green("✓"), task.Title)
	return nil
}

func showTask(ctx context.Context, title string) error {
	task, err := lookupTask(ctx, title)
	if err != nil {
		return err
	}
	c, err := registry.Color(ctx, task.OriginalCategory)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Fprintf(out, "\n%s\n", bold(task.Title))
	fmt.Fprintf(out, "  Category: %s %s\n", task.OriginalCategory, gray(c))
	fmt.Fprintf(out, "  Date:     %s\n", task.Date)
	if task.Description != "" {
		fmt.Fprintf(out, "\n  %s\n", task.Description)
	}
	if len(task.Subtasks) > 0 {
		fmt.Fprintf(out, "\n  Subtasks:\n")
		for i, s := range task.Subtasks {
			fmt.Fprintf(out, "    %d. %s\n", i+1, s)
		}
	}
	fmt.Fprintln(out)
	return nil
}
