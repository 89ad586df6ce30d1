// Package commands implements the mysqlwrapper CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Patrick-Hull/MySQLWrapper/pkg/mysqlwrapper"
)

// ErrOperationFailed is returned after a failure record has been printed.
var ErrOperationFailed = errors.New("operation failed")

type globalOptions struct {
	configPath string
	envFile    string
}

// NewRootCommand creates the mysqlwrapper command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "mysqlwrapper",
		Short: "Run parameterized CRUD statements against MySQL",
		Long: `mysqlwrapper builds parameterized INSERT, SELECT, UPDATE and DELETE
statements from column=value pairs and prints the result as JSON.
SELECT results can be cached in Redis, DynamoDB or memory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (.yaml, .yml or .json)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load environment variables from this file (default .env when present)")

	root.AddCommand(newSelectCommand(opts))
	root.AddCommand(newInsertCommand(opts))
	root.AddCommand(newUpdateCommand(opts))
	root.AddCommand(newDeleteCommand(opts))
	root.AddCommand(newServeCommand(opts))
	return root
}

// loadConfig reads the env file, the config file and the environment, in
// that order of increasing priority.
func (o *globalOptions) loadConfig() (*mysqlwrapper.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		// a broken default .env is not fatal
		_ = godotenv.Load()
	}

	cfg := mysqlwrapper.DefaultConfig()
	if o.configPath != "" {
		loaded, err := mysqlwrapper.LoadConfigFile(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *globalOptions) client(ctx context.Context) (*mysqlwrapper.Client, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return mysqlwrapper.NewClient(ctx, cfg)
}
