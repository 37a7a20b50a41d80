package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core/recommendation"
)

func (s *Server) registerRecommendationAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	rg := g.Group("/recommendations", jwt)
	rg.GET("", s.queryRecommendations)
	rg.POST("/start", s.startRecommendation)

	// detail endpoints; every lookup is scoped to the authenticated teacher
	dg := rg.Group("/:id")
	dg.PATCH("", s.reviewRecommendation)
	dg.GET("/progress", s.retrieveProgress)
	dg.PUT("/progress", s.updateProgress)
	dg.POST("/save-progress", s.saveProgress)
	dg.GET("/save-progress", s.resumeProgress)
	dg.GET("/questions", s.queryQuestions)
	dg.POST("/answers", s.saveAnswers)
	dg.POST("/generate", s.generateLetters)
	dg.PUT("/letters/:letterId", s.editLetter)
}

// Handlers

func (s *Server) startRecommendation(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	var data recommendation.StartRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartRequest")
	}
	if err = s.Validate.Struct(data); err != nil {
		return err
	}

	r, created, err := s.RecommendationSvc.Start(ctx.Request().Context(), teacherID, data)
	if err != nil {
		return errors.Wrap(err, "starting recommendation")
	}
	if created {
		return ctx.JSON(http.StatusCreated, StartResponse{Message: "Recommendation request created", Recommendation: r})
	}
	return ctx.JSON(http.StatusOK, StartResponse{Message: "Recommendation request already exists", Recommendation: r})
}

func (s *Server) queryRecommendations(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	requests, err := s.RecommendationSvc.Query(ctx.Request().Context(), teacherID, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying recommendations")
	}
	if requests == nil {
		requests = []recommendation.Request{}
	}
	return ctx.JSON(http.StatusOK, requests)
}

func (s *Server) retrieveProgress(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	r, err := s.RecommendationSvc.Get(ctx.Request().Context(), teacherID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting recommendation")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (s *Server) updateProgress(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	var data recommendation.UpdateProgress
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgress")
	}
	if err = s.Validate.Struct(data); err != nil {
		return err
	}

	r, err := s.RecommendationSvc.UpdateProgress(ctx.Request().Context(), teacherID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, ProgressResponse{
		Message:  "Progress updated",
		Progress: ProgressStatusData{Phase: r.Phase, Status: r.Status},
	})
}

func (s *Server) saveProgress(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	var data recommendation.SaveProgress
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveProgress")
	}
	if err = s.Validate.Struct(data); err != nil {
		return err
	}

	res, err := s.RecommendationSvc.SaveProgress(ctx.Request().Context(), teacherID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "saving progress")
	}
	return ctx.JSON(http.StatusOK, SaveProgressResponse{Message: "Progress saved", SaveProgressResult: res})
}

func (s *Server) resumeProgress(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	resume, r, err := s.RecommendationSvc.ResumeProgress(ctx.Request().Context(), teacherID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resuming progress")
	}
	progress := r.Progress
	r.Answers, r.Progress = nil, nil
	return ctx.JSON(http.StatusOK, ResumeResponse{
		Recommendation:       r,
		CurrentQuestionIndex: resume.CurrentIndex,
		Answers:              resume.Answers,
		Progress:             progress,
	})
}

func (s *Server) queryQuestions(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	questions, err := s.RecommendationSvc.Questions(ctx.Request().Context(), teacherID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resolving questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (s *Server) saveAnswers(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	var data recommendation.SaveAnswers
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveAnswers")
	}
	if err = s.Validate.Struct(data); err != nil {
		return err
	}

	answers, err := s.RecommendationSvc.SaveAnswers(ctx.Request().Context(), teacherID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "saving answers")
	}
	return ctx.JSON(http.StatusOK, AnswersResponse{Message: "Answers saved", Answers: answers})
}

func (s *Server) generateLetters(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	letters, err := s.RecommendationSvc.Generate(ctx.Request().Context(), teacherID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "generating letters")
	}
	return ctx.JSON(http.StatusOK, GenerateResponse{Message: "Letters generated successfully", Letters: letters})
}

func (s *Server) reviewRecommendation(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	var data recommendation.ReviewRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}
	if err = s.Validate.Struct(data); err != nil {
		return err
	}

	r, err := s.RecommendationSvc.Review(ctx.Request().Context(), teacherID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "reviewing recommendation")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (s *Server) editLetter(ctx echo.Context) error {
	teacherID, err := s.contextTeacherID(ctx)
	if err != nil {
		return err
	}

	var data recommendation.EditLetter
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditLetter")
	}
	if err = s.Validate.Struct(data); err != nil {
		return err
	}

	l, err := s.RecommendationSvc.EditLetter(ctx.Request().Context(), teacherID, ctx.Param("id"), ctx.Param("letterId"), data)
	if err != nil {
		return errors.Wrap(err, "editing letter")
	}
	return ctx.JSON(http.StatusOK, l)
}
