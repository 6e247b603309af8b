package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/javamodel/inputreader"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the template methods every model carries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range inputreader.DefaultTemplateMethods(nil).Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
