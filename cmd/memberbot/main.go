// File path: cmd/memberbot/main.go
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/november7/memberbot/internal/common"
)

func main() {
	logger := common.Logger()
	if err := godotenv.Load(); err != nil {
		logger.Debug("memberbot: .env file not loaded", "error", err)
	} else {
		logger.Info("memberbot: environment loaded from .env")
	}
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("memberbot: command failed", "error", err)
		os.Exit(1)
	}
}
