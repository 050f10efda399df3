package main

import (
	"encoding/json"
	"io"

	"github.com/chemsource/sourcing/v1/config"
	"github.com/chemsource/sourcing/v1/vectordb"
	"github.com/spf13/cobra"
)

type cli struct {
	configFile string
	envFile    string
	store      string

	cfg config.Config

	// seeded replaces the configured backend when set.
	seeded vectordb.Store
}

func newRootCommand() *cobra.Command {
	return (&cli{}).command()
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:          "sourcingctl",
		Short:        "Operate the sourcing marketplace store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "YAML config file, e.g. --config sourcing.yaml")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file read before the environment, ignored when missing")
	flags.StringVar(&c.store, "store", "", "vector store backend, qdrant or memory (overrides the config)")

	root.AddCommand(
		c.serveCommand(),
		c.migrateCommand(),
		c.productsCommand(),
		c.profilesCommand(),
	)
	return root
}

func (c *cli) loadConfig() error {
	cfg, err := config.Load(config.Options{File: c.configFile, EnvFile: c.envFile})
	if err != nil {
		return err
	}
	if c.store != "" {
		cfg.Store = c.store
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	c.cfg = cfg
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
