package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/warren-vm/pkg/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the runtime directory has a usable manifest and hypervisor",
	Long: `status is a read-only diagnostic over the runtime directory: it reports
manifest presence, hypervisor resolvability, and (best-effort) hardware
acceleration availability. It never gates "vm start" and never spawns
anything itself. With --history, it instead lists recent VM session
transitions recorded by the supervisor.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("history", false, "List recent VM session transitions instead of the manifest diagnostic")
	statusCmd.Flags().Int("limit", 20, "Maximum number of history entries to list, most recent first")
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := newCliEnv(cmd)
	if err != nil {
		return err
	}

	if showHistory, _ := cmd.Flags().GetBool("history"); showHistory {
		return runStatusHistory(cmd, env)
	}

	result, err := manifest.Status(env.runtimeDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runStatusHistory(cmd *cobra.Command, env *cliEnv) error {
	limit, _ := cmd.Flags().GetInt("limit")

	sessionHistory, err := env.openHistory()
	if err != nil {
		return err
	}
	defer sessionHistory.Close()

	entries, err := sessionHistory.List(limit)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
