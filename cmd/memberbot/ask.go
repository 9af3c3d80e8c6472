// File path: cmd/memberbot/ask.go
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/november7/memberbot/internal/catalog"
	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/llm"
	"github.com/november7/memberbot/internal/qa"
	"github.com/november7/memberbot/internal/retriever"
)

func newAskCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := common.Logger()
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg.CatalogPath)
			if err != nil {
				return err
			}
			defer store.Close()

			provider := llm.NewProvider(cfg.ProviderOptions())
			retr := retriever.New(provider)
			index, messages, err := store.Load(cmd.Context())
			if err != nil {
				logger.Error("memberbot: catalog load failed", "error", err)
				return err
			}
			if index != nil {
				if err := retr.Install(index, messages); err != nil {
					return err
				}
			}

			service := qa.NewService(retr, provider, qa.Options{
				TopK:              cfg.Retrieval.TopK,
				GenerationTimeout: cfg.GenerationTimeout(),
			})
			question := strings.Join(args, " ")
			fmt.Fprintln(cmd.OutOrStdout(), service.Answer(cmd.Context(), question))
			return nil
		},
	}
}
