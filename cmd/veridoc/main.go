package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/veridoc/internal/adapters/driven/config/file"
	"github.com/custodia-labs/veridoc/internal/adapters/driving/cli"
	"github.com/custodia-labs/veridoc/internal/app"
)

func main() {
	cfg, err := file.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	a, err := app.Build(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli.SetQAService(a.QA)

	err = cli.Execute()
	a.Close()
	if err != nil {
		os.Exit(1)
	}
}
