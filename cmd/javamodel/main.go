package main

import (
	"os"

	"github.com/spf13/afero"
)

func main() {
	rootCmd := newRootCmd(afero.NewOsFs())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
