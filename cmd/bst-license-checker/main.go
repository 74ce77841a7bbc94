package main

import (
	"os"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/inbound/cli"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(domain.ExitCode(err))
	}
}
