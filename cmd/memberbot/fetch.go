// File path: cmd/memberbot/fetch.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/fetcher"
)

func newFetchCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the member message snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := common.Logger()
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			if err := ensureParentDir(cfg.MessagesPath); err != nil {
				return err
			}
			count, err := fetcher.New(cfg.MessagesURL).FetchToFile(cmd.Context(), cfg.MessagesPath)
			if err != nil {
				logger.Error("memberbot: fetch failed", "error", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d messages to %s\n", count, cfg.MessagesPath)
			return nil
		},
	}
}
