// File path: cmd/memberbot/index.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/november7/memberbot/internal/catalog"
	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/corpus"
	"github.com/november7/memberbot/internal/llm"
	"github.com/november7/memberbot/internal/vectorindex"
)

func newIndexCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the vector index from the fetched messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := common.Logger()
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			messages, err := corpus.ReadFile(cfg.MessagesPath)
			if err != nil {
				return err
			}
			provider := llm.NewProvider(cfg.ProviderOptions())
			index, kept, err := vectorindex.Build(cmd.Context(), messages, provider)
			if err != nil {
				logger.Error("memberbot: index build failed", "error", err)
				return err
			}
			if err := ensureParentDir(cfg.CatalogPath); err != nil {
				return err
			}
			store, err := catalog.Open(cfg.CatalogPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(cmd.Context(), index, kept); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d of %d messages (dim %d) into %s\n",
				index.Len(), len(messages), index.Dim(), cfg.CatalogPath)
			return nil
		},
	}
}
