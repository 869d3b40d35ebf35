package main

import (
	"os"

	"github.com/vfg2006/campaigniq-api/cmd/campaigniq/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
