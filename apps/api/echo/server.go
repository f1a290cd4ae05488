package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/course"
	"github.com/hanslwng/taskmatrix/core/reminder"
	"github.com/hanslwng/taskmatrix/core/session"
	"github.com/hanslwng/taskmatrix/core/task"
	"github.com/hanslwng/taskmatrix/core/user"
	"github.com/hanslwng/taskmatrix/core/verification"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool
		Logger         core.Logger
		UserSvc        *user.Service
		SessionSvc     *session.Service
		CourseSvc      *course.Service
		TaskSvc        *task.Service
		ReminderSvc    *reminder.Service
		VerifSvc       *verification.Service
	}

	Server interface {
		http.Handler
		Start() error
		Shutdown(context.Context) error
		// ShutdownSignal receives a signal whenever an unrecoverable
		// error asks the server to stop.
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	sessmw := []echo.MiddlewareFunc{
		middleware.JWTWithConfig(appJWTConfig),
		sessionMiddleware(s.opts.SessionSvc),
	}

	registerUserAPI(v1, sessmw, s.opts.UserSvc, s.opts.SessionSvc)
	registerCourseAPI(v1, sessmw, s.opts.CourseSvc)
	registerTaskAPI(v1, sessmw, s.opts.TaskSvc)
	registerReminderAPI(v1, sessmw, s.opts.ReminderSvc, s.opts.TaskSvc)
	registerVerificationAPI(v1, sessmw, s.opts.VerifSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to TaskMatrix API!")
}
