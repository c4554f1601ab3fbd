package main

import (
	"fmt"
	"os"

	"github.com/richard-senior/cardstats/internal/logger"
)

func main() {
	logger.SetShowDateTime(true)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("cardstats failed:", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
