package dig_container

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/hocphi/apps/api/echo"
	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
	emailsvc "github.com/trezcool/hocphi/services/email"
	logsvc "github.com/trezcool/hocphi/services/logger"
	"github.com/trezcool/hocphi/storage/spreadsheet/gsheets"
	inmemsheets "github.com/trezcool/hocphi/storage/spreadsheet/inmem"
)

// SheetsLoggerParam resolves the logger dedicated to the spreadsheet layer.
type SheetsLoggerParam struct {
	dig.In
	Logger core.Logger `name:"sheetsLogger"`
}

func newNamedLogger(name string) func(conf *core.Config) (*logsvc.RollbarLogger, error) {
	return func(conf *core.Config) (*logsvc.RollbarLogger, error) {
		zl, err := logsvc.NewZapLogger(name, conf)
		if err != nil {
			return nil, errors.Wrapf(err, "building %s logger", name)
		}
		logger := logsvc.NewRollbarLogger(zl, conf)
		logger.Enable(!conf.Debug)
		return logger, nil
	}
}

func newLogger(conf *core.Config) (core.Logger, *logsvc.RollbarLogger, error) {
	logger, err := newNamedLogger("api")(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger, nil
}

func newSheetsLogger(conf *core.Config) (core.Logger, error) {
	return newNamedLogger("sheets")(conf)
}

func newGateway(conf *core.Config, loggerParam SheetsLoggerParam) student.Gateway {
	if conf.Sheets.InMem {
		loggerParam.Logger.Warn("using the in-memory spreadsheet: nothing will be persisted")
		return inmemsheets.Open()
	}
	gw, err := gsheets.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("opening spreadsheet: %v", err), err)
	}
	return gw
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newSheetsLogger, dig.Name("sheetsLogger")))
	must(c.Provide(newGateway))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(student.NewService))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
