package main

import (
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Read-only preview of a task's working folder",
}

var previewListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List files in a task's working folder (depth/count limited)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		listing, err := env.previewFacade().List(args[0])
		if err != nil {
			return err
		}
		return printJSON(listing)
	},
}

var previewReadCmd = &cobra.Command{
	Use:   "read <task-id> <relative-path>",
	Short: "Read up to 256 KiB of one file in a task's working folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		result, err := env.previewFacade().Read(args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	previewCmd.AddCommand(previewListCmd)
	previewCmd.AddCommand(previewReadCmd)
}
