// File path: cmd/memberbot/root.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/november7/memberbot/internal/config"
)

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "memberbot",
		Short:         "Retrieval-augmented question answering over member messages",
		Long:          "memberbot fetches a member message corpus, builds a vector index over it, and answers natural-language questions grounded in the most relevant messages.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default config.yaml)")
	root.AddCommand(
		newFetchCmd(&cfgFile),
		newIndexCmd(&cfgFile),
		newServeCmd(&cfgFile),
		newAskCmd(&cfgFile),
	)
	return root
}

func loadConfig(cfgFile *string) (config.Config, error) {
	cfg, err := config.Load(*cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
