package main

import (
	"os"

	"github.com/codex-k8s/prcomment/internal/cli"
	"github.com/codex-k8s/prcomment/internal/logging"
)

// main is the entry point for the prcomment binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
