package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/maktaba/apps/api/echo"
	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/analytics"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
	emailsvc "github.com/trezcool/maktaba/services/email"
	logsvc "github.com/trezcool/maktaba/services/logger"
	"github.com/trezcool/maktaba/storage/database"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newZap(conf *core.Config) (*zap.Logger, error) {
	return logsvc.NewZap(conf)
}

func newLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("db"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) *database.Store {
	store, err := database.NewStore(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Database.Engine, err), err)
	}
	return store
}

func newCatalogRepository(store *database.Store) catalog.Repository { return store.Catalog }
func newReviewRepository(store *database.Store) review.Repository   { return store.Reviews }

func newNotifier(repo catalog.Repository, mailer core.EmailService) review.Notifier {
	return emailsvc.NewSuspensionNotifier(repo, mailer)
}

func newValidate(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	review.InitValidators(validate, translator)
	return validate
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	catalogSvc *catalog.Service,
	reviewSvc *review.Service,
	reporter *analytics.Reporter,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		CatalogSvc: catalogSvc,
		ReviewSvc:  reviewSvc,
		Reporter:   reporter,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZap))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newCatalogRepository))
	must(c.Provide(newReviewRepository))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newNotifier))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidate))
	must(c.Provide(catalog.NewService))
	must(c.Provide(review.NewService))
	must(c.Provide(analytics.NewReporter))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
