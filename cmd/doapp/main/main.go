package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/doapp/cmd/doapp"
)

func main() {
	rootCmd := doapp.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}
