// Package testutil wires the in-memory stack shared by the package tests.
package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/recommendation"
	"github.com/trezcool/recomendo/core/student"
	"github.com/trezcool/recomendo/core/teacher"
	appfs "github.com/trezcool/recomendo/fs"
	"github.com/trezcool/recomendo/services/email"
	"github.com/trezcool/recomendo/services/logger"
	"github.com/trezcool/recomendo/storage/database/inmem"
)

// Config returns a test configuration that does not depend on the environment.
func Config() *core.Config {
	return &core.Config{
		TestMode:                  true,
		AppName:                   "Recomendo",
		SecretKey:                 "test-secret-key",
		DefaultFromEmail:          "noreply@test.cd",
		FrontendBaseURL:           "http://localhost:3000",
		Env:                       "TEST",
		Build:                     "test",
		PasswordResetTimeoutDelta: time.Hour,
		Server: core.ServerConfig{
			Host:                      "localhost",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			DisableReqLogs:            true,
		},
		Database: core.DatabaseConfig{Engine: "inmem"},
	}
}

// Env is a fully wired application backed by the in-memory database.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	DB         *inmemdb.DB
	Validate   *validator.Validate
	Translator ut.Translator
	Mail       *emailsvc.ConsoleService

	TeacherRepo        teacher.Repository
	CollegeRepo        college.Repository
	StudentRepo        student.Repository
	RecommendationRepo recommendation.Repository

	TeacherSvc        *teacher.Service
	CollegeSvc        *college.Service
	StudentSvc        *student.Service
	RecommendationSvc *recommendation.Service
}

func NewEnv() *Env {
	conf := Config()
	lgr := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, lgr)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	college.InitValidators(validate, translator)
	teacher.InitValidators(validate, translator)
	recommendation.InitValidators(validate, translator)

	env := &Env{
		Conf:       conf,
		Logger:     lgr,
		DB:         inmemdb.Open(),
		Validate:   validate,
		Translator: translator,
		Mail:       emailsvc.NewConsoleServiceMock(conf, lgr),
	}
	env.TeacherRepo = inmemdb.NewTeacherRepository(env.DB)
	env.CollegeRepo = inmemdb.NewCollegeRepository(env.DB)
	env.StudentRepo = inmemdb.NewStudentRepository(env.DB)
	env.RecommendationRepo = inmemdb.NewRecommendationRepository(env.DB)

	env.TeacherSvc = teacher.NewService(env.TeacherRepo, env.Mail, conf)
	env.CollegeSvc = college.NewService(env.CollegeRepo)
	env.StudentSvc = student.NewService(env.StudentRepo, env.CollegeSvc)
	env.RecommendationSvc = recommendation.NewService(
		env.RecommendationRepo, env.StudentSvc, env.CollegeSvc, env.TeacherSvc, env.Mail, lgr,
	)
	return env
}

// Reset drops every row and every recorded email.
func (env *Env) Reset() {
	env.DB.Reset()
	env.Mail.Outbox.Clear()
}

// CreateTeacher stores a Teacher straight through the repository. pwd may be empty.
func CreateTeacher(t *testing.T, repo teacher.Repository, name, email, pwd string, createdAt ...time.Time) teacher.Teacher {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	tch := teacher.Teacher{
		Name:        name,
		Email:       email,
		Institution: "Test High School",
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	if pwd != "" {
		if err := tch.SetPassword(pwd); err != nil {
			t.Fatalf("CreateTeacher() failed: %v", err)
		}
	}
	tch, err := repo.CreateTeacher(context.Background(), tch)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}

// CreateStudent stores a Student of teacherID targeting colleges (found or created by name).
func CreateStudent(t *testing.T, svc *student.Service, teacherID string, ns student.NewStudent) student.Student {
	if ns.Email == "" {
		ns.Email = "student@test.cd"
	}
	if ns.Grade == "" {
		ns.Grade = "12"
	}
	if len(ns.Subjects) == 0 {
		ns.Subjects = []string{"Math"}
	}
	for i := range ns.TargetColleges {
		ns.TargetColleges[i].Clean()
	}
	s, err := svc.Create(context.Background(), teacherID, ns)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
