package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/user"
	emailsvc "github.com/labtrack/backend/services/email"
	logsvc "github.com/labtrack/backend/services/logger"
	"github.com/labtrack/backend/storage/database"
	sqlxrepos "github.com/labtrack/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewZerolog(os.Stdout, conf).With().Str("component", "ADMIN").Logger(), conf)

	// set up DB
	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// start CLI
	mailSvc := emailsvc.NewConsoleService(conf, logger)
	cli := commandLine{
		db:        db.DB,
		usrSvc:    user.NewService(sqlxrepos.NewUserRepository(db), mailSvc),
		courseSvc: course.NewService(sqlxrepos.NewCourseRepository(db), core.NewValidate(core.NewTranslator())),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %+v\n", err)
		}
		os.Exit(1)
	}
}
