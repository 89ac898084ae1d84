package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/dbunit/config"
	"github.com/kbukum/dbunit/session"
)

func newDumpCmd() *cobra.Command {
	var (
		flags      builderFlags
		configFile string
	)
	cmd := &cobra.Command{
		Use:   "dump [TABLE...]",
		Short: "Render tables of the configured database",
		Long: `dump connects to the database configured by dbunit.yml, .env and DBUNIT_* or
DB_* variables and renders the named tables, or every table but the
migration table. The database is never initialized or purged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := flags.builder()
			if err != nil {
				return err
			}
			var opts []config.LoaderOption
			if configFile != "" {
				opts = append(opts, config.WithConfigFile(configFile))
			}
			cfg, err := session.LoadConfig(opts...)
			if err != nil {
				return err
			}
			cfg.SkipInit = true

			sess, err := session.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			actual, err := sess.ActualDataSet(cmd.Context(), args...)
			if err != nil {
				return err
			}
			ds, err := b.CreateDataSet(actual)
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
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default: search for dbunit.yml)")
	return cmd
}
