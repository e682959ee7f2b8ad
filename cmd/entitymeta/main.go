package main

import (
	"os"

	"github.com/conduit-lang/entitymeta/internal/cli/commands"
	"github.com/conduit-lang/entitymeta/internal/demo/catalog"
)

func main() {
	if err := commands.Execute(catalog.NewRegistry()); err != nil {
		os.Exit(1)
	}
}
