package main

import (
	"log"
	"os"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/reminder"
	emailsvc "github.com/hanslwng/taskmatrix/services/email"
	logsvc "github.com/hanslwng/taskmatrix/services/logger"
	"github.com/hanslwng/taskmatrix/storage/database"
	sqlxrepos "github.com/hanslwng/taskmatrix/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logsvc.NewRollbarLogger(logger, core.Conf))
	}

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: sqlxrepos.NewUserRepository(db),
		remSvc: reminder.NewService(
			sqlxrepos.NewReminderRepository(db),
			mailSvc,
			logsvc.NewRollbarLogger(logger, core.Conf),
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
