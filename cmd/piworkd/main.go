// Command piworkd is the ambient CLI entrypoint around the VM controller's
// public operations: a thin dispatcher standing in for the real desktop
// shell, kept here only so the library has a runnable binary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/warren-vm/pkg/log"
)

var rootCmd = &cobra.Command{
	Use:   "piworkd",
	Short: "piworkd - host-side controller for the Piwork coding-agent micro-VM",
	Long: `piworkd supervises a sandboxed micro-VM that runs an AI coding agent:
it spawns the hypervisor, waits for the guest to announce readiness, and
pumps newline-framed RPC messages between the caller and the guest. It also
owns the task registry, the per-profile credential store, and a read-only
preview facade into a task's working folder.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("app-data-dir", "", "Root directory for controller-owned state (default: $HOME/.local/share/piwork)")
	rootCmd.PersistentFlags().String("runtime-dir", "", "Directory containing manifest.json, kernel, and initrd (default: $PIWORK_RUNTIME_DIR or <app-data-dir>/runtime)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(vmCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(devLogCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
