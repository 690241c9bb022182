// AngelaMos | 2026
// main.go

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/projectboard/internal/config"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "boardctl",
		Short: "Operator tooling for projectboard",
		Long: `boardctl applies database migrations, manages the ES256 signing keys,
issues development tokens and inspects the role policy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before config")

	root.AddCommand(migrateCmd(opts))
	root.AddCommand(keysCmd())
	root.AddCommand(tokenCmd(opts))
	root.AddCommand(policyCmd())

	return root
}

// loadConfig reads the env file, if any, then the config file.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("env file: %w", err)
		}
	}
	return config.Load(o.configPath)
}
