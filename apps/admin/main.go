package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/teacher"
	"github.com/trezcool/recomendo/services/email"
	"github.com/trezcool/recomendo/services/logger"
	"github.com/trezcool/recomendo/storage/database"
	"github.com/trezcool/recomendo/storage/database/sqlboiler"
	"github.com/trezcool/recomendo/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
	db, err := database.Open(ctx, conf)
	cancel()
	errAndDie(err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	teacher.InitValidators(validate, translator)
	college.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db.DB,
		validate:   validate,
		teacherSvc: teacher.NewService(sqlxrepos.NewTeacherRepository(db), emailsvc.NewConsoleService(conf, logger), conf),
		collegeSvc: college.NewService(boiledrepos.NewCollegeRepository(db)),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
