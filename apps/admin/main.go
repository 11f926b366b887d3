package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/analytics"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
	appfs "github.com/trezcool/maktaba/fs"
	emailsvc "github.com/trezcool/maktaba/services/email"
	logsvc "github.com/trezcool/maktaba/services/logger"
	"github.com/trezcool/maktaba/storage/database"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)

	zl, err := logsvc.NewZap(conf)
	errAndDie(err)
	defer func() { _ = zl.Sync() }()
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(!conf.Debug)

	cli, closeFn, err := newCommandLine(context.Background(), conf, logger, len(os.Args) > 1 && os.Args[1] == "migrate")
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Database.Engine, err), err)
	}

	err = cli.run(os.Args)
	closeFn()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}

// newCommandLine wires the CLI. Migrations only need a bare SQL connection; anything else gets the full store.
func newCommandLine(ctx context.Context, conf *core.Config, logger core.Logger, migrateOnly bool) (*commandLine, func(), error) {
	if migrateOnly {
		db, err := openSQL(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		return &commandLine{db: db, out: os.Stdout}, func() { _ = db.Close() }, nil
	}

	store, err := database.NewStore(ctx, conf)
	if err != nil {
		return nil, nil, err
	}

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, false, logger)

	validate, translator := newValidator()
	notifier := emailsvc.NewSuspensionNotifier(store.Catalog, emailsvc.NewService(conf, logger))
	reviewSvc := review.NewService(store.Reviews, store.Catalog, notifier, validate, translator, logger, conf)

	cli := &commandLine{
		catalogSvc: catalog.NewService(store.Catalog, validate, translator),
		reviewSvc:  reviewSvc,
		reporter:   analytics.NewReporter(store.Catalog, store.Reviews, conf),
		out:        os.Stdout,
	}
	closeFn := func() {
		reviewSvc.Close()
		if err := store.Close(); err != nil {
			logger.Error("closing store", err)
		}
	}
	return cli, closeFn, nil
}

func openSQL(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if conf.Database.Engine != core.EnginePostgres {
		return nil, errNoSQLDatabase
	}
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}
	return database.Open(ctx, conf)
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
