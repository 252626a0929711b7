package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
	emailsvc "github.com/trezcool/hocphi/services/email"
	logsvc "github.com/trezcool/hocphi/services/logger"
	"github.com/trezcool/hocphi/storage/spreadsheet/gsheets"
	inmemsheets "github.com/trezcool/hocphi/storage/spreadsheet/inmem"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger("admin", conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug)
	defer func() { _ = logger.Sync() }()

	var gw student.Gateway
	if conf.Sheets.InMem {
		gw = inmemsheets.Open()
	} else if gw, err = gsheets.Open(context.Background(), conf); err != nil {
		logger.Fatal(fmt.Sprintf("opening spreadsheet: %v", err), err)
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewSyncConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSyncSendgridService(conf, logger)
	}

	// start CLI
	cli := commandLine{
		svc: student.NewService(gw, mailSvc, logger, conf),
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		_ = logger.Sync()
		os.Exit(1)
	}
}
