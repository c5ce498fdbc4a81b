package main

import (
	"github.com/spf13/cobra"

	"github.com/cuemby/warren-vm/pkg/log"
)

var devLogCmd = &cobra.Command{
	Use:   "dev-log <source> <message>",
	Short: "Forward a message from a shell subsystem into the host log",
	Long: `dev-log is the CLI counterpart of the original app's dev_log command: a
thin forwarder the (out-of-scope) desktop shell uses to attribute a log
line to one of its own subsystems. The message is scrubbed for
key=value/key:value pairs whose key looks like a secret before it is
written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Forward(args[0], args[1])
		return nil
	},
}
