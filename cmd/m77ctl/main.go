// Package main is the entry point for the m77ctl operations CLI.
package main

import (
	"os"

	"m77ag-backend/cmd/m77ctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
