package main

import (
	"os"

	"github.com/wonny/jini/cmd/jini/commands"
)

// main is the entry point for the jini CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/jini [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
