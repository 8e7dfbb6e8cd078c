package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories with their colors",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(listCategories(context.Background()))
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an empty category",
	Long: `Create an empty category and assign it a color.

An empty category is dropped again the next time categories are reconciled
(after any task edit or delete) unless a task is filed under it first.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(addCategory(context.Background(), args[0]))
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a category and every task filed under it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(deleteCategory(context.Background(), args[0]))
	},
}

var categoryReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Drop categories without tasks and color the rest",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(reconcileCategories(context.Background()))
	},
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryDeleteCmd, categoryReconcileCmd)
}

func listCategories(ctx context.Context) error {
	cats, err := registry.Categories(ctx)
	if err != nil {
		return err
	}
	gray := color.New(color.FgHiBlack).SprintFunc()
	for _, c := range cats {
		fmt.Fprintf(out, "%s  %s\n", gray(c.Color), c.Name)
	}
	return nil
}

func addCategory(ctx context.Context, name string) error {
	added, err := registry.Add(ctx, name)
	if err != nil {
		return err
	}
	if !added {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(out, "%s %q already exists or is reserved\n", yellow("⚠"), name)
		return nil
	}
	c, err := registry.Color(ctx, name)
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Created category %s (%s)\n", green("✓"), name, c)
	return nil
}

func deleteCategory(ctx context.Context, name string) error {
	deleted, err := registry.Delete(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(out, "%s %s cannot be deleted\n", yellow("⚠"), name)
		return nil
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Deleted category %s\n", green("✓"), name)
	return nil
}

func reconcileCategories(ctx context.Context) error {
	before, err := registry.List(ctx)
	if err != nil {
		return err
	}
	after, err := registry.Reconcile(ctx)
	if err != nil {
		return err
	}
	kept := make(map[string]bool, len(after))
	for _, name := range after {
		kept[name] = true
	}
	pruned := 0
	for _, name := range before {
		if !kept[name] {
			pruned++
		}
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %d categories (%d pruned)\n", green("✓"), len(after)-2, pruned)
	return nil
}
