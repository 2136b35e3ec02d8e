package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/dwizi/concierge/internal/config"
	"github.com/dwizi/concierge/internal/store"
	"github.com/dwizi/concierge/internal/validation"
)

func newTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the demo task list",
	}
	cmd.AddCommand(newTasksListCommand())
	cmd.AddCommand(newTasksAddCommand())
	cmd.AddCommand(newTasksDoneCommand())
	cmd.AddCommand(newTasksRemoveCommand())
	return cmd
}

func newTasksListCommand() *cobra.Command {
	var pending bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTaskStore(cmd.Context(), func(ctx context.Context, sqlStore *store.Store) error {
				tasks, err := sqlStore.ListTasks(ctx)
				if err != nil {
					return err
				}
				if pending {
					tasks = lo.Filter(tasks, func(task store.Task, _ int) bool { return !task.Completed })
				}
				if len(tasks) == 0 {
					cmd.Println("No tasks.")
					return nil
				}
				renderTasks(cmd.OutOrStdout(), tasks)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "only show tasks that are not completed")
	return cmd
}

func newTasksAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if result := validation.ValidateTaskTitle(title); !result.Valid {
				return errors.New(strings.Join(result.Errors, "; "))
			}
			return withTaskStore(cmd.Context(), func(ctx context.Context, sqlStore *store.Store) error {
				task, err := sqlStore.CreateTask(ctx, title)
				if err != nil {
					return err
				}
				cmd.Printf("Added task %s: %s\n", task.ID, task.Title)
				return nil
			})
		},
	}
}

func newTasksDoneCommand() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTaskStore(cmd.Context(), func(ctx context.Context, sqlStore *store.Store) error {
				task, err := sqlStore.UpdateTask(ctx, args[0], store.UpdateTaskInput{Completed: lo.ToPtr(!undo)})
				if err != nil {
					return err
				}
				cmd.Printf("Task %s is now %s\n", task.ID, taskStatus(task))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task as not completed")
	return cmd
}

func newTasksRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTaskStore(cmd.Context(), func(ctx context.Context, sqlStore *store.Store) error {
				if err := sqlStore.DeleteTask(ctx, args[0]); err != nil {
					return err
				}
				cmd.Printf("Deleted task %s\n", args[0])
				return nil
			})
		},
	}
}

func withTaskStore(ctx context.Context, run func(context.Context, *store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromEnv()
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer sqlStore.Close()
	if err := sqlStore.AutoMigrate(ctx); err != nil {
		return err
	}
	return run(ctx, sqlStore)
}

func renderTasks(out io.Writer, tasks []store.Task) {
	table := newTable(out, []string{"ID", "Status", "Title", "Created"})
	for _, task := range tasks {
		table.Append([]string{task.ID, taskStatus(task), task.Title, task.CreatedAt.Local().Format(time.DateTime)})
	}
	table.Render()
}

func taskStatus(task store.Task) string {
	if task.Completed {
		return "done"
	}
	return "pending"
}
