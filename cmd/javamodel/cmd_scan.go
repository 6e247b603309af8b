package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/javamodel/inputreader"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		basePackage string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Print the model of every .java file below a package folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd, inputreader.PackageFolder{Root: args[0], BasePackage: basePackage}, format)
		},
	}

	cmd.Flags().StringVarP(&basePackage, "package", "p", "", "package of the folder itself")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")

	return cmd
}

func (a *app) runScan(cmd *cobra.Command, folder inputreader.PackageFolder, format string) error {
	w, err := newModelWriter(cmd.OutOrStdout(), format)
	if err != nil {
		return err
	}
	inputs, count, err := a.reader.GetInputObjects(folder, "")
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", folder.Root, err)
	}

	var (
		models int
		errs   []error
	)
	for in, err := range inputs {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m, err := a.reader.CreateModel(in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := w.Write(m.Root); err != nil {
			return err
		}
		models++
	}
	if err := w.Close(); err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "\n=== SCAN COMPLETE ===\n")
	fmt.Fprintf(out, "Files: %d\n", count)
	fmt.Fprintf(out, "Models: %d\n", models)
	fmt.Fprintf(out, "Errors: %d\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(out, "  - %v\n", e)
	}
	return nil
}
