package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/recomendo/apps/api/echo"
	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/recommendation"
	"github.com/trezcool/recomendo/core/student"
	"github.com/trezcool/recomendo/core/teacher"
	"github.com/trezcool/recomendo/services/email"
	"github.com/trezcool/recomendo/services/logger"
	"github.com/trezcool/recomendo/services/ratelimit"
	"github.com/trezcool/recomendo/storage/database"
	"github.com/trezcool/recomendo/storage/database/inmem"
	"github.com/trezcool/recomendo/storage/database/sqlboiler"
	"github.com/trezcool/recomendo/storage/database/sqlx"
)

const engineInMem = "inmem"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are provided together since they share one storage engine.
type Repositories struct {
	dig.Out
	Teacher        teacher.Repository
	College        college.Repository
	Student        student.Repository
	Recommendation recommendation.Repository
	// DB releases the storage engine.
	DB io.Closer `name:"dbCloser"`
}

type DBCloserParam struct {
	dig.In
	DB io.Closer `name:"dbCloser"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.Engine == engineInMem {
		db := inmemdb.Open()
		return Repositories{
			Teacher:        inmemdb.NewTeacherRepository(db),
			College:        inmemdb.NewCollegeRepository(db),
			Student:        inmemdb.NewStudentRepository(db),
			Recommendation: inmemdb.NewRecommendationRepository(db),
			DB:             nopCloser{},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	return Repositories{
		Teacher:        sqlxrepos.NewTeacherRepository(db),
		College:        boiledrepos.NewCollegeRepository(db),
		Student:        sqlxrepos.NewStudentRepository(db),
		Recommendation: sqlxrepos.NewRecommendationRepository(db),
		DB:             db,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newLimiter returns nil (no throttling) when Redis is not configured.
func newLimiter(conf *core.Config, logger core.Logger) *ratelimit.Limiter {
	if conf.Redis.Address == "" {
		return nil
	}
	limiter, err := ratelimit.NewLimiter(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up rate limiter: %v", err), err)
	}
	return limiter
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	college.InitValidators(validate, translator)
	teacher.InitValidators(validate, translator)
	recommendation.InitValidators(validate, translator)
	return validate
}

func newServerDeps(
	conf *core.Config,
	logger core.Logger,
	teacherSvc *teacher.Service,
	studentSvc *student.Service,
	collegeSvc *college.Service,
	recommendationSvc *recommendation.Service,
	validate *validator.Validate,
	translator ut.Translator,
	limiter *ratelimit.Limiter,
) echoapi.ServerDeps {
	return echoapi.ServerDeps{
		Conf:              conf,
		Logger:            logger,
		TeacherSvc:        teacherSvc,
		StudentSvc:        studentSvc,
		CollegeSvc:        collegeSvc,
		RecommendationSvc: recommendationSvc,
		Validate:          validate,
		Translator:        translator,
		Limiter:           limiter,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(newLimiter))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(teacher.NewService))
	must(c.Provide(college.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(recommendation.NewService))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
