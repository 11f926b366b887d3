// Package emailsvc implements core.EmailService on the console and on SendGrid.
package emailsvc

import "github.com/trezcool/maktaba/core"

// NewService picks SendGrid when an API key is configured, the console otherwise.
func NewService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.SendgridApiKey != "" && !conf.TestMode {
		return NewSendgridService(conf, logger)
	}
	return NewConsoleService(conf, logger)
}
