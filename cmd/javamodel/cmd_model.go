package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/javamodel/classfile"
	"github.com/dhamidi/javamodel/inputreader"
)

func newModelCmd(a *app) *cobra.Command {
	var (
		typeName string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "model <File.java|Class.class|canonical.Name>",
		Short: "Print the model of one type",
		Long: `Print the model of one type.

A .java file is paired with its compiled class when the class path has it.
A .class file is read on its own. Anything else is looked up on the class
path by canonical name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.input(args[0], typeName)
			if err != nil {
				return err
			}
			m, err := a.reader.CreateModel(in)
			if err != nil {
				return fmt.Errorf("failed to create model for %s: %w", args[0], err)
			}
			w, err := newModelWriter(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			if err := w.Write(m.Root); err != nil {
				return err
			}
			return w.Close()
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "dotted path of the type inside a .java file (Outer.Inner)")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")

	return cmd
}

func (a *app) input(arg, typeName string) (inputreader.Input, error) {
	switch filepath.Ext(arg) {
	case ".java":
		src, err := a.reader.ParseSourceFile(arg, "")
		if err != nil {
			return nil, err
		}
		src.TypeName = typeName
		return a.reader.Pair(src)
	case ".class":
		f, err := a.fs.Open(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", arg, err)
		}
		defer f.Close()
		cf, err := classfile.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		return inputreader.ClassInput{Class: cf}, nil
	default:
		cf, err := a.reader.ClassPath().Load(arg)
		if err != nil {
			return nil, err
		}
		return inputreader.ClassInput{Class: cf}, nil
	}
}
