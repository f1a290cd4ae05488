package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/hanslwng/taskmatrix/apps/api/echo"
	"github.com/hanslwng/taskmatrix/apps/api/jobs"
	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/course"
	"github.com/hanslwng/taskmatrix/core/reminder"
	"github.com/hanslwng/taskmatrix/core/session"
	"github.com/hanslwng/taskmatrix/core/task"
	"github.com/hanslwng/taskmatrix/core/user"
	"github.com/hanslwng/taskmatrix/core/verification"
	emailsvc "github.com/hanslwng/taskmatrix/services/email"
	logsvc "github.com/hanslwng/taskmatrix/services/logger"
	"github.com/hanslwng/taskmatrix/storage/database"
	sqlxrepos "github.com/hanslwng/taskmatrix/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := setUpDB(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	sessSvc := session.NewService(sqlxrepos.NewSessionRepository(db))
	crsSvc := course.NewService(sqlxrepos.NewCourseRepository(db))
	tskSvc := task.NewService(sqlxrepos.NewTaskRepository(db))
	remSvc := reminder.NewService(sqlxrepos.NewReminderRepository(db), mailSvc, logger)
	verifSvc := verification.NewService(
		sqlxrepos.NewVerificationRepository(db),
		mailSvc,
		emailUpdater{usrSvc},
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Reminder Job

	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	if core.Conf.Reminder.JobEnabled {
		go jobs.NewReminderJob(remSvc, logger).Run(jobCtx)
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Addr:        core.Conf.Server.Addr,
		Logger:      logger,
		UserSvc:     usrSvc,
		SessionSvc:  sessSvc,
		CourseSvc:   crsSvc,
		TaskSvc:     tskSvc,
		ReminderSvc: remSvc,
		VerifSvc:    verifSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", core.Conf.Server.Addr))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdownSignals(osSignals, server.ShutdownSignal()):
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stopJobs()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

// shutdownSignals fans OS signals and server-requested shutdowns into one channel.
func shutdownSignals(chans ...<-chan os.Signal) <-chan os.Signal {
	out := make(chan os.Signal, 1)
	for _, ch := range chans {
		go func(ch <-chan os.Signal) {
			out <- <-ch
		}(ch)
	}
	return out
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, conf); err != nil {
		return nil, err
	}
	return db, nil
}

// emailUpdater narrows user.Service to the write-through needed on
// successful verification.
type emailUpdater struct {
	svc *user.Service
}

func (u emailUpdater) SetVerifiedEmail(ctx context.Context, userID, email string) error {
	_, err := u.svc.SetVerifiedEmail(ctx, userID, email)
	return err
}
