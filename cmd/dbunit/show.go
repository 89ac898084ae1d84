package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/dbunit/dataset"
)

func newShowCmd() *cobra.Command {
	var flags builderFlags
	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Render a fixture after exclusion, replacement and sorting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := flags.builder()
			if err != nil {
				return err
			}
			ds, err := b.CreateDataSet(args[0])
			if err != nil {
				return err
			}
			out, err := render(ds)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// render forces every table to be read so read errors surface here
// rather than as partial output.
func render(ds dataset.DataSet) (string, error) {
	for _, t := range dataset.All(ds) {
		for i := range t.RowCount() {
			if _, err := t.Row(i); err != nil {
				return "", err
			}
		}
	}
	return dataset.RenderDataSet(ds), nil
}
