package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/labtrack/backend/apps/api/echo"
	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
	"github.com/labtrack/backend/core/enrollment"
	"github.com/labtrack/backend/core/user"
	emailsvc "github.com/labtrack/backend/services/email"
	logsvc "github.com/labtrack/backend/services/logger"
	"github.com/labtrack/backend/storage/database"
	inmemdb "github.com/labtrack/backend/storage/database/inmem"
	sqlxrepos "github.com/labtrack/backend/storage/database/sqlx"
)

type repositories struct {
	user       user.Repository
	course     course.Repository
	enrollment enrollment.Repository
	discussion discussion.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	local := logsvc.NewZerolog(os.Stdout, conf)
	logger := logsvc.NewRollbarLogger(local.With().Str("component", "API").Logger(), conf)
	dbLogger := logsvc.NewRollbarLogger(local.With().Str("component", "DB").Logger(), conf)

	// set up DB
	repos, closeDB, err := setUpRepositories(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = closeDB(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	translator := core.NewTranslator()
	validate := core.NewValidate(translator)

	usrSvc := user.NewService(repos.user, mailSvc)
	courseSvc := course.NewService(repos.course, validate)
	enrollmentSvc := enrollment.NewService(repos.enrollment, courseSvc, usrSvc, mailSvc)
	discussionSvc := discussion.NewService(repos.discussion, enrollmentSvc, courseSvc, validate)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("database").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			AccessLogger:  local.With().Str("component", "HTTP").Logger(),
			UserSvc:       usrSvc,
			CourseSvc:     courseSvc,
			EnrollmentSvc: enrollmentSvc,
			DiscussionSvc: discussionSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpRepositories returns the repositories of the configured database engine and a func closing it.
func setUpRepositories(ctx context.Context, conf *core.Config) (repositories, func() error, error) {
	if conf.Database.InMemory() {
		db := inmemdb.Open()
		return repositories{
			user:       inmemdb.NewUserRepository(db),
			course:     inmemdb.NewCourseRepository(db),
			enrollment: inmemdb.NewEnrollmentRepository(db),
			discussion: inmemdb.NewDiscussionRepository(db),
		}, func() error { return nil }, nil
	}

	db, err := setUpDB(ctx, conf)
	if err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		user:       sqlxrepos.NewUserRepository(db),
		course:     sqlxrepos.NewCourseRepository(db),
		enrollment: sqlxrepos.NewEnrollmentRepository(db),
		discussion: sqlxrepos.NewDiscussionRepository(db),
	}, db.Close, nil
}

func setUpDB(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
