package config_test

import (
	"fmt"

	"github.com/wonny/extremes/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Exchange: %s\n", cfg.Exchange.Name)
	fmt.Printf("Mode: %s\n", cfg.Analysis.Mode)
	fmt.Printf("Base period: %s ~ %s\n", cfg.Analysis.BaseStart, cfg.Analysis.BaseEnd)
	fmt.Printf("Ledger: %s\n", cfg.LedgerPath(cfg.Exchange.Name))
}
