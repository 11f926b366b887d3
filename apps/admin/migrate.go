package main

import (
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	appfs "github.com/trezcool/maktaba/fs"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate COMMAND [ARGS...]",
		Short:              "Run a goose migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, fix, create)",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cli.help(cmd, args)
			}
			return cli.migrate(args)
		},
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoSQLDatabase
	}
	return gooseRunFunc(args[0], cli.db.DB, appfs.MigrationsDir, args[1:]...)
}
