package main

import (
	"os"

	"github.com/on-the-ground/effect_ive_engine/cmd/effectdemo/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
