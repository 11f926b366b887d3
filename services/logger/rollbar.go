package logsvc

import (
	"context"
	"fmt"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/maktaba/core"
)

// NewZap builds the process logger: JSON in production, debug level when conf.Debug is set.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if conf.Debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build(zap.Fields(zap.String("app", conf.AppName), zap.String("env", conf.Env)))
}

// RollbarLogger reports to rollbar and writes every entry to zap.
type RollbarLogger struct {
	log *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(log *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
	return &RollbarLogger{log: log.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l *RollbarLogger) Sync() error {
	return l.log.Sync()
}

// expected fmt: msg | error, map[string]interface{}, core.Person
func (l *RollbarLogger) prepare(msg string, args []interface{}) (report []interface{}, fields []interface{}) {
	var person *core.Person
	report = append(make([]interface{}, 0, len(args)+1), msg)
	for i, arg := range args {
		switch v := arg.(type) {
		case core.Person:
			if person == nil { // only set one Person
				p := v
				person = &p
				fields = append(fields, zap.String("person", v.ID))
			}
			continue
		case error:
			fields = append(fields, zap.Error(v))
		case map[string]interface{}:
			for k, val := range v {
				fields = append(fields, zap.Any(k, val))
			}
		default:
			fields = append(fields, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
		report = append(report, arg)
	}
	if person != nil {
		// scoped to this item; the shared client's person is never touched
		report = append(report, rollbar.NewPersonContext(context.Background(), &rollbar.Person{
			Id:       person.ID,
			Username: person.Name,
			Email:    person.Email,
		}))
	}
	return report, fields
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Debug(report...)
	l.log.Debugw(msg, fields...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Info(report...)
	l.log.Infow(msg, fields...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Warning(report...)
	l.log.Warnw(msg, fields...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Error(report...)
	l.log.Errorw(msg, fields...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Critical(report...)
	rollbar.Wait()
	l.log.Fatalw(msg, fields...)
}
