package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cuemby/warren-vm/pkg/authstore"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage per-profile provider credentials",
}

var authListCmd = &cobra.Command{
	Use:   "list <profile>",
	Short: "List a profile's credential providers (secrets are never printed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		path, err := env.authPath(args[0])
		if err != nil {
			return err
		}
		summary, err := authstore.Summary(path)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

var authSetAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key <profile> <provider> <key>",
	Short: "Set (or overwrite) a provider's API key in a profile",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		path, err := env.authPath(args[0])
		if err != nil {
			return err
		}
		return authstore.SetAPIKey(path, args[1], args[2])
	},
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete <profile> <provider>",
	Short: "Remove a provider's credential from a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		path, err := env.authPath(args[0])
		if err != nil {
			return err
		}
		return authstore.Delete(path, args[1])
	},
}

var authImportCmd = &cobra.Command{
	Use:   "import <profile>",
	Short: "Merge the well-known external credential file into a profile",
	Long: `import reads $HOME/.pi/agent/auth.json and merges it into the given
profile's auth.json. Entries from the imported file overwrite same-named
entries already present in the profile (source-wins; see DESIGN.md).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCliEnv(cmd)
		if err != nil {
			return err
		}
		targetPath, err := env.authPath(args[0])
		if err != nil {
			return err
		}
		home, err := homeDir()
		if err != nil {
			return err
		}
		sourcePath := filepath.Join(home, ".pi", "agent", "auth.json")
		return authstore.Import(targetPath, sourcePath)
	},
}

func init() {
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authSetAPIKeyCmd)
	authCmd.AddCommand(authDeleteCmd)
	authCmd.AddCommand(authImportCmd)
}
