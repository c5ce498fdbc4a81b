package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/warren-vm/pkg/apperr"
	"github.com/cuemby/warren-vm/pkg/types"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the task registry",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		tasks, err := env.tasks.List()
		if err != nil {
			return err
		}
		return printJSON(tasks)
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		task, err := env.tasks.Load(args[0])
		if err != nil {
			return err
		}
		if task == nil {
			return apperr.New(apperr.NotFound, "task %s not found", args[0])
		}
		return printJSON(task)
	},
}

var taskUpsertCmd = &cobra.Command{
	Use:   "upsert <id> <title>",
	Short: "Create or update a task record",
	Long: `upsert creates a new task or updates an existing one's title and
working folder. Attempting to change a task's working folder once it has
been set fails with an invariant-violation error.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		workingFolder, _ := cmd.Flags().GetString("working-folder")

		existing, err := env.tasks.Load(args[0])
		if err != nil {
			return err
		}

		now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
		task := types.Task{
			ID:            args[0],
			Title:         args[1],
			Status:        "pending",
			CreatedAt:     now,
			UpdatedAt:     now,
			WorkingFolder: workingFolder,
		}
		if existing != nil {
			task = *existing
			task.Title = args[1]
			task.UpdatedAt = now
			if workingFolder != "" {
				task.WorkingFolder = workingFolder
			}
		}

		if err := env.tasks.Upsert(task); err != nil {
			return err
		}
		return printJSON(task)
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one task and its artifact subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		return env.tasks.Delete(args[0])
	},
}

var taskDeleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every task",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		return env.tasks.DeleteAll()
	},
}

var taskConversationCmd = &cobra.Command{
	Use:   "conversation <id>",
	Short: "Print a task's saved conversation blob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		blob, err := env.tasks.LoadConversation(args[0])
		if err != nil {
			return err
		}
		if blob == nil {
			return apperr.New(apperr.NotFound, "task %s has no saved conversation", args[0])
		}
		fmt.Println(*blob)
		return nil
	},
}

func init() {
	taskUpsertCmd.Flags().String("working-folder", "", "Absolute working folder to bind (immutable once set)")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskUpsertCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskDeleteAllCmd)
	taskCmd.AddCommand(taskConversationCmd)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
