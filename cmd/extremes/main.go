package main

import (
	"os"

	"github.com/wonny/extremes/cmd/extremes/commands"
)

// main is the entry point for the extremes CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/extremes [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
