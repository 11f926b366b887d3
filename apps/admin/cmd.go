package main

import (
	"encoding/json"
	"errors"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/analytics"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

var (
	errHelp          = errors.New("help provided")
	errNoSQLDatabase = errors.New("migrations require the postgres database engine")
)

type commandLine struct {
	db         *sqlx.DB // migrations only
	catalogSvc *catalog.Service
	reviewSvc  *review.Service
	reporter   *analytics.Reporter
	out        io.Writer
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	review.InitValidators(validate, translator)
	return validate, translator
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Maktaba administration commands",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cli.help,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.AddCommand(
		cli.migrateCmd(),
		cli.addOwnerCmd(),
		cli.seedCmd(),
		cli.reevaluateCmd(),
		cli.reportCmd(),
	)
	return root
}

// help prints the usage of `cmd` and reports it with errHelp.
func (cli *commandLine) help(cmd *cobra.Command, _ []string) error {
	_ = cmd.Usage()
	return errHelp
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) < 2 {
		return cli.help(root, nil)
	}
	root.SetArgs(args[1:])
	return root.Execute()
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
