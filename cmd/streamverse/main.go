package main

import (
	"os"

	"streamverse-backend/pkg/cli"
	"streamverse-backend/pkg/config"
)

func main() {
	if err := cli.NewRootCommand(config.GetCached()).Execute(); err != nil {
		os.Exit(1)
	}
}
