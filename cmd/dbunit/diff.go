package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/dbunit/dataset"
)

func newDiffCmd() *cobra.Command {
	var flags builderFlags
	cmd := &cobra.Command{
		Use:   "diff EXPECTED ACTUAL",
		Short: "Compare two fixtures and list every mismatch",
		Long: `diff builds both fixtures with the same flags and compares them table by
table. It prints nothing and exits 0 when they match; otherwise it prints
one line per mismatch and exits 1.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := flags.builder()
			if err != nil {
				return err
			}
			expected, err := b.CreateDataSet(args[0])
			if err != nil {
				return err
			}
			actual, err := b.CreateDataSet(args[1])
			if err != nil {
				return err
			}
			return printMismatches(cmd, expected, actual)
		},
	}
	flags.register(cmd)
	return cmd
}

func printMismatches(cmd *cobra.Command, expected, actual dataset.DataSet) error {
	mismatches, err := dataset.CompareDataSets(expected, actual)
	if err != nil {
		return err
	}
	if len(mismatches) == 0 {
		return nil
	}
	for _, m := range mismatches {
		fmt.Fprintln(cmd.OutOrStdout(), m.String())
	}
	return fmt.Errorf("%d mismatch(es)", len(mismatches))
}
