package repl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/steveyegge/taskdeck/internal/types"
)

// registerCommands registers all built-in commands
func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["ls"] = r.cmdCategories
	r.commands["use"] = r.cmdUse
	r.commands["tasks"] = r.cmdTasks
	r.commands["add"] = r.cmdAdd
	r.commands["show"] = r.cmdShow
	r.commands["edit"] = r.cmdEdit
	r.commands["move"] = r.cmdMove
	r.commands["sub"] = r.cmdSub
	r.commands["rm"] = r.cmdRemove
	r.commands["mkcat"] = r.cmdMakeCategory
	r.commands["rmcat"] = r.cmdRemoveCategory
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

// cmdHelp shows help information
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"ls", "List categories"},
		{"use <category>", "Select a category"},
		{"tasks", "List tasks in the selected category"},
		{"add <title> <date> [@category] [description...]", "Create a task (dates are YYYY-MM-DD)"},
		{"show <title>", "Show a task with its subtasks"},
		{"edit <title> description|date <value>", "Change a task field"},
		{"move <title> <category>", "File a task under another category"},
		{"sub add <title> <text>", "Append a subtask"},
		{"sub edit <title> <n> <text>", "Replace subtask n"},
		{"sub rm <title> <n>", "Remove subtask n"},
		{"rm <title>", "Delete a task"},
		{"mkcat <name>", "Create a category"},
		{"rmcat <name>", "Delete a category and all its tasks"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the shell"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(r.out, "  %s  %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintln(r.out, "\nQuote titles that contain spaces: add \"Pay rent\" 2026-11-01")
	fmt.Fprintln(r.out)
	return nil
}

// cmdCategories lists categories with their color swatch
func (r *REPL) cmdCategories(args []string) error {
	cats, err := r.view.Categories(r.ctx)
	if err != nil {
		return err
	}
	selected := r.view.Selected()
	for _, c := range cats {
		marker := " "
		if c.Name == selected {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %s %s\n", marker, swatch(c.Color), c.Name)
	}
	return nil
}

// cmdUse selects a category
func (r *REPL) cmdUse(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: use <category>")
	}
	if err := r.view.Select(r.ctx, args[0]); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Selected %s\n", green("✓"), r.view.Selected())
	return nil
}

// cmdTasks lists the selected bucket
func (r *REPL) cmdTasks(args []string) error {
	list, err := r.view.Tasks(r.ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(r.out, "No tasks in %s\n", r.view.Selected())
		return nil
	}

	gray := color.New(color.FgHiBlack).SprintFunc()
	for _, t := range list {
		fmt.Fprintf(r.out, "%s  %s", t.Date, t.Title)
		if types.IsProtected(r.view.Selected()) {
			fmt.Fprintf(r.out, " %s", gray("["+t.OriginalCategory+"]"))
		}
		if n := len(t.Subtasks); n > 0 {
			fmt.Fprintf(r.out, " %s", gray(fmt.Sprintf("(%d subtasks)", n)))
		}
		fmt.Fprintln(r.out)
	}
	return nil
}

// cmdAdd creates a task in the selected category
func (r *REPL) cmdAdd(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: add <title> <date> [@category] [description...]")
	}

	task := types.Task{Title: args[0], Date: args[1]}
	var desc []string
	for _, a := range args[2:] {
		if strings.HasPrefix(a, "@") && task.OriginalCategory == "" {
			task.OriginalCategory = strings.TrimPrefix(a, "@")
			continue
		}
		desc = append(desc, a)
	}
	task.Description = strings.Join(desc, " ")

	if types.IsProtected(r.view.Selected()) && task.OriginalCategory == "" {
		return fmt.Errorf("%s is a view; name a category with @category or 'use' one first", r.view.Selected())
	}
	created, err := r.view.Create(r.ctx, task)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Added %q to %s\n", green("✓"), created.Title, created.OriginalCategory)
	return nil
}

// cmdShow prints one task
func (r *REPL) cmdShow(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show <title>")
	}
	t, err := r.find(args[0])
	if err != nil {
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "%s\n", bold(t.Title))
	fmt.Fprintf(r.out, "  Category: %s\n", t.OriginalCategory)
	fmt.Fprintf(r.out, "  Date:     %s\n", t.Date)
	if t.Description != "" {
		fmt.Fprintf(r.out, "  %s\n", t.Description)
	}
	for i, s := range t.Subtasks {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, s)
	}
	return nil
}

// cmdEdit changes a single field and saves the task
func (r *REPL) cmdEdit(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: edit <title> description|date <value>")
	}
	t, err := r.find(args[0])
	if err != nil {
		return err
	}

	value := strings.Join(args[2:], " ")
	switch args[1] {
	case "description", "desc":
		t.Description = value
	case "date":
		t.Date = value
	default:
		return fmt.Errorf("unknown field %q (use description or date; move changes the category)", args[1])
	}
	return r.save(t, "Updated")
}

// cmdMove refiles a task under another category
func (r *REPL) cmdMove(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: move <title> <category>")
	}
	t, err := r.find(args[0])
	if err != nil {
		return err
	}
	t.OriginalCategory = args[1]
	return r.save(t, "Moved")
}

// cmdSub edits the subtask checklist of a task
func (r *REPL) cmdSub(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: sub add|edit|rm <title> ...")
	}
	t, err := r.find(args[1])
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: sub add <title> <text>")
		}
		err = t.AddSubtask(strings.Join(args[2:], " "))
	case "edit":
		if len(args) < 4 {
			return fmt.Errorf("usage: sub edit <title> <n> <text>")
		}
		var i int
		if i, err = position(args[2]); err == nil {
			err = t.EditSubtask(i, strings.Join(args[3:], " "))
		}
	case "rm":
		if len(args) != 3 {
			return fmt.Errorf("usage: sub rm <title> <n>")
		}
		var i int
		if i, err = position(args[2]); err == nil {
			err = t.RemoveSubtask(i)
		}
	default:
		return fmt.Errorf("unknown sub command %q (use add, edit or rm)", args[0])
	}
	if err != nil {
		return err
	}
	return r.save(t, "Updated")
}

// cmdRemove deletes a task everywhere
func (r *REPL) cmdRemove(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <title>")
	}
	t, err := r.find(args[0])
	if err != nil {
		return err
	}
	if err := r.view.Delete(r.ctx, t); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Deleted %q\n", green("✓"), t.Title)
	return nil
}

// cmdMakeCategory creates an empty category
func (r *REPL) cmdMakeCategory(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mkcat <name>")
	}
	added, err := r.view.AddCategory(r.ctx, args[0])
	if err != nil {
		return err
	}
	if !added {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(r.out, "%s %q already exists or is reserved\n", yellow("Note:"), args[0])
		return nil
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Created category %s\n", green("✓"), args[0])
	return nil
}

// cmdRemoveCategory deletes a category and its tasks
func (r *REPL) cmdRemoveCategory(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rmcat <name>")
	}
	deleted, err := r.view.DeleteCategory(r.ctx, args[0])
	if err != nil {
		return err
	}
	if !deleted {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(r.out, "%s %s cannot be deleted\n", yellow("Note:"), args[0])
		return nil
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Deleted category %s\n", green("✓"), args[0])
	return nil
}

// cmdExit exits the REPL
func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s Goodbye!\n", green("✓"))
	return errExit
}

func (r *REPL) find(title string) (types.Task, error) {
	t, ok, err := r.view.Find(r.ctx, title)
	if err != nil {
		return types.Task{}, err
	}
	if !ok {
		return types.Task{}, fmt.Errorf("no task %q in %s", title, r.view.Selected())
	}
	return t, nil
}

func (r *REPL) save(t types.Task, verb string) error {
	saved, err := r.view.Save(r.ctx, t)
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s %s %q in %s\n", green("✓"), verb, saved.Title, saved.OriginalCategory)
	return nil
}

// position converts a 1-based subtask number to an index
func position(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("subtask number must be an integer (got %q)", s)
	}
	return n - 1, nil
}

// swatch renders a colored block for a #rrggbb color
func swatch(hex string) string {
	var rgb [3]int
	if len(hex) == 7 && hex[0] == '#' {
		for i := range rgb {
			v, err := strconv.ParseUint(hex[1+2*i:3+2*i], 16, 8)
			if err != nil {
				return "■"
			}
			rgb[i] = int(v)
		}
	}
	return color.RGB(rgb[0], rgb[1], rgb[2]).Sprint("■")
}
