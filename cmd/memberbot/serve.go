// File path: cmd/memberbot/serve.go
package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/november7/memberbot/internal/api"
	"github.com/november7/memberbot/internal/catalog"
	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/llm"
	"github.com/november7/memberbot/internal/qa"
	"github.com/november7/memberbot/internal/retriever"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the question-answering API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := common.Logger()
			cfg, err := loadConfig(cfgFile)
			if err != nil {
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

			provider := llm.NewProvider(cfg.ProviderOptions())
			logger.Info("memberbot: llm provider ready", "provider", provider.Name())

			retr := retriever.New(provider)
			index, messages, err := store.Load(cmd.Context())
			if err != nil {
				// A corrupt catalog is fatal; a torn pair must never serve.
				logger.Error("memberbot: catalog load failed", "error", err)
				return err
			}
			if index == nil {
				logger.Warn("memberbot: embeddings not built; run 'memberbot index' first")
			} else if err := retr.Install(index, messages); err != nil {
				return err
			}

			service := qa.NewService(retr, provider, qa.Options{
				TopK:              cfg.Retrieval.TopK,
				GenerationTimeout: cfg.GenerationTimeout(),
			})
			server, err := api.NewServer(service, retr, provider, store, cfg.MessagesPath)
			if err != nil {
				return err
			}

			logger.Info("memberbot: server listening", "addr", cfg.Addr, "indexed", retr.Count())
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\n", cfg.Addr)
			if err := http.ListenAndServe(cfg.Addr, server); err != nil {
				logger.Error("memberbot: server stopped", "error", err)
				return err
			}
			return nil
		},
	}
}
