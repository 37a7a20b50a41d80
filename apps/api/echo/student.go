package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/student"
)

func (s *Server) registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	sg := g.Group("/students", jwt)
	sg.POST("", s.createStudent)
	sg.GET("", s.queryStudents)
	sg.GET("/:id", s.retrieveStudent)
}

func (s *Server) registerCollegeAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	g.GET("/colleges", s.queryColleges, jwt)
}

// Handlers

func (s *Server) createStudent(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(s.Validate); err != nil {
		return err
	}

	std, err := s.StudentSvc.Create(ctx.Request().Context(), teacherID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (s *Server) queryStudents(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	students, err := s.StudentSvc.Query(ctx.Request().Context(), teacherID)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (s *Server) retrieveStudent(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	std, err := s.StudentSvc.Get(ctx.Request().Context(), teacherID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (s *Server) queryColleges(ctx echo.Context) error {
	colleges, err := s.CollegeSvc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying colleges")
	}
	if colleges == nil {
		colleges = []college.College{}
	}
	return ctx.JSON(http.StatusOK, colleges)
}
