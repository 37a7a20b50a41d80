package recommendation_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/recommendation"
	"github.com/trezcool/recomendo/core/student"
	"github.com/trezcool/recomendo/core/teacher"
	"github.com/trezcool/recomendo/tests"
)

type fixture struct {
	env     *testutil.Env
	teacher teacher.Teacher
	other   teacher.Teacher
	student student.Student
	college college.College
	request recommendation.Request
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	env := testutil.NewEnv()

	f := fixture{env: env}
	f.teacher = testutil.CreateTeacher(t, env.TeacherRepo, "Grace Hopper", "grace@test.cd", "")
	f.other = testutil.CreateTeacher(t, env.TeacherRepo, "Ada Lovelace", "ada@test.cd", "")
	f.student = testutil.CreateStudent(t, env.StudentSvc, f.teacher.ID, student.NewStudent{
		Name:             "Alex Chen",
		GPA:              testutil.Float(3.9),
		Subjects:         []string{"Math", "Physics"},
		Extracurriculars: []string{"Robotics Club"},
		TargetColleges:   []college.NewCollege{{Name: "MIT", Type: college.TypeTechnical, Values: []string{"Innovation"}}},
	})
	f.college = f.student.TargetColleges[0]

	r, created, err := env.RecommendationSvc.Start(ctx, f.teacher.ID, recommendation.StartRequest{
		StudentID: f.student.ID, CollegeID: f.college.ID,
	})
	require.NoError(t, err)
	require.True(t, created)
	f.request = r
	return f
}

func TestService_Start(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.Equal(t, recommendation.StatusInProgress, f.request.Status)
	assert.Equal(t, recommendation.PhaseCommitment, f.request.Phase)
	require.NotNil(t, f.request.Student)
	assert.Equal(t, "Alex Chen", f.request.Student.Name)

	// starting twice returns the same request
	r, created, err := f.env.RecommendationSvc.Start(ctx, f.teacher.ID, recommendation.StartRequest{
		StudentID: f.student.ID, CollegeID: f.college.ID,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, f.request.ID, r.ID)

	// another teacher cannot use this student
	_, _, err = f.env.RecommendationSvc.Start(ctx, f.other.ID, recommendation.StartRequest{
		StudentID: f.student.ID, CollegeID: f.college.ID,
	})
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))

	_, _, err = f.env.RecommendationSvc.Start(ctx, f.teacher.ID, recommendation.StartRequest{
		StudentID: f.student.ID, CollegeID: "unknown",
	})
	assert.Equal(t, college.ErrNotFound, errors.Cause(err))
}

func TestService_ownership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := f.env.RecommendationSvc

	_, err := svc.Get(ctx, f.other.ID, f.request.ID)
	assert.Equal(t, recommendation.ErrNotFound, errors.Cause(err))
	_, err = svc.SaveProgress(ctx, f.other.ID, f.request.ID, recommendation.SaveProgress{})
	assert.Equal(t, recommendation.ErrNotFound, errors.Cause(err))
	_, _, err = svc.ResumeProgress(ctx, f.other.ID, f.request.ID)
	assert.Equal(t, recommendation.ErrNotFound, errors.Cause(err))
	_, err = svc.Generate(ctx, f.other.ID, f.request.ID)
	assert.Equal(t, recommendation.ErrNotFound, errors.Cause(err))

	requests, err := svc.Query(ctx, f.other.ID, core.DBOrdering{})
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestService_SaveAndResumeProgress(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := f.env.RecommendationSvc

	// nothing saved yet
	resume, _, err := svc.ResumeProgress(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, recommendation.Resume{Answers: []recommendation.Answer{}, CurrentIndex: 0}, resume)

	data := recommendation.SaveProgress{
		CurrentQuestionIndex: 2,
		Answers: []recommendation.Answer{
			{QuestionID: "academic-1", Response: "first draft"},
			{QuestionID: "academic-2", Response: "sets the bar"},
			{QuestionID: "academic-1", Response: "final answer"},
		},
	}
	res, err := svc.SaveProgress(ctx, f.teacher.ID, f.request.ID, data)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentQuestionIndex)
	assert.Equal(t, 2, res.AnswersCount)

	// idempotent
	res2, err := svc.SaveProgress(ctx, f.teacher.ID, f.request.ID, data)
	require.NoError(t, err)
	assert.Equal(t, res.AnswersCount, res2.AnswersCount)
	assert.Equal(t, res.Version+1, res2.Version)

	resume, r, err := svc.ResumeProgress(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, resume.CurrentIndex)
	assert.Equal(t, []recommendation.Answer{
		{QuestionID: "academic-1", Response: "final answer"},
		{QuestionID: "academic-2", Response: "sets the bar"},
	}, resume.Answers)
	assert.Equal(t, recommendation.PhaseCommitment, r.Phase, "phase is kept when not sent")

	// stale version
	stale := res.Version
	data.Version = &stale
	_, err = svc.SaveProgress(ctx, f.teacher.ID, f.request.ID, data)
	assert.Equal(t, recommendation.ErrStaleProgress, errors.Cause(err))

	current := res2.Version
	data.Version = &current
	data.Phase = recommendation.PhaseGeneration
	_, err = svc.SaveProgress(ctx, f.teacher.ID, f.request.ID, data)
	require.NoError(t, err)
	r, err = svc.Get(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, recommendation.PhaseGeneration, r.Phase)
}

func TestService_ResumeProgress_inconsistent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := f.env.RecommendationSvc

	_, err := svc.SaveProgress(ctx, f.teacher.ID, f.request.ID, recommendation.SaveProgress{
		CurrentQuestionIndex: 1,
		Answers:              []recommendation.Answer{{QuestionID: "academic-1", Response: "an answer"}},
	})
	require.NoError(t, err)

	f.env.DB.SetProgress(recommendation.Progress{
		RequestID: f.request.ID, CurrentIndex: 1, TotalAnswers: 5, SavedAt: time.Now().UTC(),
	})
	resume, _, err := svc.ResumeProgress(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, recommendation.Resume{Answers: []recommendation.Answer{}, CurrentIndex: 0}, resume)
}

func TestService_ResumeProgress_afterLastQuestion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := f.env.RecommendationSvc

	questions, err := svc.Questions(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)

	// Next on the last question saves currentQuestionIndex == len(questions)
	answers := []recommendation.Answer{{QuestionID: "academic-1", Response: "an answer long enough"}}
	_, err = svc.SaveProgress(ctx, f.teacher.ID, f.request.ID, recommendation.SaveProgress{
		CurrentQuestionIndex: len(questions),
		Answers:              answers,
		Phase:                recommendation.PhaseGeneration,
	})
	require.NoError(t, err)

	resume, r, err := svc.ResumeProgress(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, answers, resume.Answers)
	assert.Equal(t, len(questions)-1, resume.CurrentIndex)
	assert.Equal(t, recommendation.PhaseGeneration, r.Phase)

	letters, err := svc.Generate(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	assert.Len(t, letters, 3)
}

func TestService_Questions(t *testing.T) {
	f := setup(t)

	questions, err := f.env.RecommendationSvc.Questions(context.Background(), f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	require.Len(t, questions, 9)
	assert.Equal(t, "tech-1", questions[8].ID)
	assert.True(t, strings.HasPrefix(questions[8].Text, "MIT values innovation"))
}

func TestService_Generate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := f.env.RecommendationSvc

	_, err := svc.Generate(ctx, f.teacher.ID, f.request.ID)
	assert.Equal(t, recommendation.ErrNoAnswers, errors.Cause(err))

	_, err = svc.SaveAnswers(ctx, f.teacher.ID, f.request.ID, recommendation.SaveAnswers{
		Answers: []recommendation.Answer{
			{QuestionID: "academic-1", Response: "alex consistently produces work well beyond what the curriculum asks for"},
			{QuestionID: "leadership-1", Response: "founded the robotics club and mentors every new member personally"},
		},
	})
	require.NoError(t, err)

	letters, err := svc.Generate(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	require.Len(t, letters, 4)
	for _, l := range letters {
		assert.NotEmpty(t, l.ID)
		assert.Equal(t, recommendation.WordCount(l.Content), l.WordCount)
	}

	r, err := svc.Get(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, recommendation.StatusCompleted, r.Status)
	assert.Equal(t, recommendation.PhaseReview, r.Phase)
	assert.Len(t, r.Letters, 4)

	msgs := f.env.Mail.Outbox.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "grace@test.cd", msgs[0].To[0].Address)

	// generating again replaces the letters with the same content
	again, err := svc.Generate(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	require.Len(t, again, 4)
	for i := range again {
		assert.Equal(t, letters[i].Content, again[i].Content)
	}
	r, err = svc.Get(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	assert.Len(t, r.Letters, 4)
}

func TestService_ReviewAndEditLetter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := f.env.RecommendationSvc

	_, err := svc.SaveAnswers(ctx, f.teacher.ID, f.request.ID, recommendation.SaveAnswers{
		Answers: []recommendation.Answer{{QuestionID: "character-1", Response: "kind and honest"}},
	})
	require.NoError(t, err)
	letters, err := svc.Generate(ctx, f.teacher.ID, f.request.ID)
	require.NoError(t, err)
	require.Len(t, letters, 3)

	l, err := svc.EditLetter(ctx, f.teacher.ID, f.request.ID, letters[0].ID, recommendation.EditLetter{Content: "A short rewritten letter."})
	require.NoError(t, err)
	assert.Equal(t, 4, l.WordCount)

	_, err = svc.EditLetter(ctx, f.teacher.ID, f.request.ID, "unknown", recommendation.EditLetter{Content: "x"})
	assert.Equal(t, recommendation.ErrLetterNotFound, errors.Cause(err))

	final := "Final draft."
	r, err := svc.Review(ctx, f.teacher.ID, f.request.ID, recommendation.ReviewRequest{
		Status: recommendation.StatusReviewed, FinalDraft: &final,
	})
	require.NoError(t, err)
	assert.Equal(t, recommendation.StatusReviewed, r.Status)
	assert.Equal(t, final, r.FinalDraft)
}
