package recommendation

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/student"
	"github.com/trezcool/recomendo/core/teacher"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("recommendation request")
	ErrLetterNotFound = core.NewNotFoundError("letter")
	ErrNoAnswers      = core.NewBadRequestError("No answers found. Please complete the questionnaire first.")
	ErrStaleProgress  = core.NewConflictError("the questionnaire was saved elsewhere, reload it before saving again")

	// NowFunc is mockable in tests.
	NowFunc = func() time.Time { return time.Now().UTC() }
)

// ProgressUpdate is one atomic save-progress write.
type ProgressUpdate struct {
	RequestID    string
	Answers      []Answer
	CurrentIndex int
	Phase        Phase // unchanged when empty
	Status       Status
	SavedAt      time.Time
	// ExpectedVersion makes the write fail with ErrStaleProgress when the stored version differs.
	ExpectedVersion *int
}

type Repository interface {
	CreateRequest(ctx context.Context, r Request) (Request, error)
	// FindRequest returns the Request linking studentID, teacherID and collegeID.
	FindRequest(ctx context.Context, studentID, teacherID, collegeID string) (Request, error)
	// GetRequest returns the Request identified by id only if it belongs to teacherID. Relations are not loaded.
	GetRequest(ctx context.Context, teacherID, id string) (Request, error)
	QueryRequests(ctx context.Context, teacherID string, ordering core.DBOrdering) ([]Request, error)
	UpdateRequest(ctx context.Context, r Request) (Request, error)

	// QueryAnswers returns the answers of requestID in their saved order.
	QueryAnswers(ctx context.Context, requestID string) ([]Answer, error)
	// ReplaceAnswers deletes every answer of requestID and inserts answers, in one transaction.
	ReplaceAnswers(ctx context.Context, requestID string, answers []Answer) error
	// GetProgress returns (nil, nil) when requestID has no progress record.
	GetProgress(ctx context.Context, requestID string) (*Progress, error)
	// SaveProgress applies pu atomically and returns the new request version.
	SaveProgress(ctx context.Context, pu ProgressUpdate) (int, error)

	QueryLetters(ctx context.Context, requestID string) ([]Letter, error)
	GetLetter(ctx context.Context, requestID, letterID string) (Letter, error)
	// ReplaceLetters deletes the letters of r, inserts letters and updates r, in one transaction.
	ReplaceLetters(ctx context.Context, r Request, letters []Letter) ([]Letter, error)
	UpdateLetter(ctx context.Context, l Letter) (Letter, error)
}

type Service struct {
	repo       Repository
	studentSvc *student.Service
	collegeSvc *college.Service
	teacherSvc *teacher.Service
	mailSvc    core.EmailService
	logger     core.Logger
}

func NewService(
	repo Repository,
	studentSvc *student.Service,
	collegeSvc *college.Service,
	teacherSvc *teacher.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		studentSvc: studentSvc,
		collegeSvc: collegeSvc,
		teacherSvc: teacherSvc,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

// Start returns the Request linking the student and the college, creating it when missing.
// created is false when an existing Request is returned.
func (svc *Service) Start(ctx context.Context, teacherID string, data StartRequest) (r Request, created bool, err error) {
	s, err := svc.studentSvc.Get(ctx, teacherID, data.StudentID)
	if err != nil {
		return Request{}, false, err
	}
	c, err := svc.collegeSvc.Get(ctx, data.CollegeID)
	if err != nil {
		return Request{}, false, err
	}

	r, err = svc.repo.FindRequest(ctx, s.ID, teacherID, c.ID)
	if err == nil {
		return r, false, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Request{}, false, errors.Wrap(err, "finding request")
	}

	now := NowFunc()
	r, err = svc.repo.CreateRequest(ctx, Request{
		StudentID: s.ID,
		TeacherID: teacherID,
		CollegeID: c.ID,
		Status:    StatusInProgress,
		Phase:     PhaseCommitment,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Request{}, false, errors.Wrap(err, "creating request")
	}
	r.Student, r.College = &s, &c
	return r, true, nil
}

// Get returns the Request with its relations.
func (svc *Service) Get(ctx context.Context, teacherID, id string) (Request, error) {
	r, err := svc.repo.GetRequest(ctx, teacherID, id)
	if err != nil {
		return Request{}, err
	}
	return r, svc.loadRelations(ctx, &r)
}

func (svc *Service) loadRelations(ctx context.Context, r *Request) error {
	s, err := svc.studentSvc.Get(ctx, r.TeacherID, r.StudentID)
	if err != nil {
		return errors.Wrap(err, "loading student")
	}
	c, err := svc.collegeSvc.Get(ctx, r.CollegeID)
	if err != nil {
		return errors.Wrap(err, "loading college")
	}
	answers, err := svc.repo.QueryAnswers(ctx, r.ID)
	if err != nil {
		return errors.Wrap(err, "loading answers")
	}
	letters, err := svc.repo.QueryLetters(ctx, r.ID)
	if err != nil {
		return errors.Wrap(err, "loading letters")
	}
	progress, err := svc.repo.GetProgress(ctx, r.ID)
	if err != nil {
		return errors.Wrap(err, "loading progress")
	}

	r.Student, r.College = &s, &c
	r.Answers, r.Letters, r.Progress = answers, letters, progress
	return nil
}

// Query returns teacherID's requests without relations.
func (svc *Service) Query(ctx context.Context, teacherID string, ordering core.DBOrdering) ([]Request, error) {
	if ordering.Field == "" {
		ordering = core.DBOrdering{Field: "created_at"}
	}
	return svc.repo.QueryRequests(ctx, teacherID, ordering)
}

// UpdateProgress moves the Request to data.Phase; the status is kept when data.Status is empty.
func (svc *Service) UpdateProgress(ctx context.Context, teacherID, id string, data UpdateProgress) (Request, error) {
	r, err := svc.repo.GetRequest(ctx, teacherID, id)
	if err != nil {
		return Request{}, err
	}
	r.Phase = data.Phase
	if data.Status != "" {
		r.Status = data.Status
	}
	r.UpdatedAt = NowFunc()
	if r, err = svc.repo.UpdateRequest(ctx, r); err != nil {
		return Request{}, errors.Wrap(err, "updating request")
	}
	return r, svc.loadRelations(ctx, &r)
}

// SaveProgress replaces the answers and the progress record of a Request in one atomic write.
// Saving the same payload twice leaves the same answers, index and phase.
func (svc *Service) SaveProgress(ctx context.Context, teacherID, id string, data SaveProgress) (SaveProgressResult, error) {
	r, err := svc.repo.GetRequest(ctx, teacherID, id)
	if err != nil {
		return SaveProgressResult{}, err
	}
	data.Clean()

	status := r.Status
	if status == StatusPending || status == "" {
		status = StatusInProgress
	}
	version, err := svc.repo.SaveProgress(ctx, ProgressUpdate{
		RequestID:       r.ID,
		Answers:         data.Answers,
		CurrentIndex:    data.CurrentQuestionIndex,
		Phase:           data.Phase,
		Status:          status,
		SavedAt:         NowFunc(),
		ExpectedVersion: data.Version,
	})
	if err != nil {
		if errors.Cause(err) == ErrStaleProgress {
			return SaveProgressResult{}, err
		}
		return SaveProgressResult{}, errors.Wrap(err, "saving progress")
	}
	return SaveProgressResult{
		CurrentQuestionIndex: data.CurrentQuestionIndex,
		AnswersCount:         len(data.Answers),
		Version:              version,
	}, nil
}

// ResumeProgress returns the stored answers and question index.
// A missing or inconsistent progress record restarts the questionnaire instead of failing.
func (svc *Service) ResumeProgress(ctx context.Context, teacherID, id string) (Resume, Request, error) {
	r, err := svc.Get(ctx, teacherID, id)
	if err != nil {
		return Resume{}, Request{}, err
	}
	questions := ResolveQuestionSet(r.Student.Name, r.College.Name, r.College.Type)
	return resumeFrom(r.Progress, r.Answers, len(questions)), r, nil
}

// Questions returns the question set of a Request.
func (svc *Service) Questions(ctx context.Context, teacherID, id string) ([]Question, error) {
	r, err := svc.repo.GetRequest(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	s, err := svc.studentSvc.Get(ctx, teacherID, r.StudentID)
	if err != nil {
		return nil, errors.Wrap(err, "loading student")
	}
	c, err := svc.collegeSvc.Get(ctx, r.CollegeID)
	if err != nil {
		return nil, errors.Wrap(err, "loading college")
	}
	return ResolveQuestionSet(s.Name, c.Name, c.Type), nil
}

// SaveAnswers replaces the answers of a Request, leaving its progress record alone.
func (svc *Service) SaveAnswers(ctx context.Context, teacherID, id string, data SaveAnswers) ([]Answer, error) {
	r, err := svc.repo.GetRequest(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	sp := SaveProgress{Answers: data.Answers}
	sp.Clean()
	if err = svc.repo.ReplaceAnswers(ctx, r.ID, sp.Answers); err != nil {
		return nil, errors.Wrap(err, "replacing answers")
	}
	return sp.Answers, nil
}

// Generate composes the letters of a Request from its saved answers and replaces the previous ones.
func (svc *Service) Generate(ctx context.Context, teacherID, id string) ([]Letter, error) {
	r, err := svc.Get(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if len(r.Answers) == 0 {
		return nil, ErrNoAnswers
	}

	drafts := Compose(CompositionInput{Student: *r.Student, College: *r.College, Answers: r.Answers})
	now := NowFunc()
	letters := make([]Letter, 0, len(drafts))
	for _, d := range drafts {
		letters = append(letters, Letter{
			RequestID: r.ID,
			Content:   d.Content,
			Tone:      d.Tone,
			Focus:     d.Focus,
			WordCount: d.WordCount,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	req := r
	req.Student, req.College, req.Answers, req.Letters, req.Progress = nil, nil, nil, nil, nil
	req.Status = StatusCompleted
	req.Phase = PhaseReview
	req.UpdatedAt = now
	if letters, err = svc.repo.ReplaceLetters(ctx, req, letters); err != nil {
		return nil, errors.Wrap(err, "replacing letters")
	}

	svc.sendLettersReadyMail(ctx, r, len(letters))
	return letters, nil
}

func (svc *Service) sendLettersReadyMail(ctx context.Context, r Request, count int) {
	t, err := svc.teacherSvc.GetByID(ctx, r.TeacherID)
	if err != nil {
		svc.logger.Error("sending letters ready mail", errors.Wrap(err, "finding teacher"))
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: t.Name, Address: t.Email}},
		Subject:      "Your recommendation letters are ready",
		TemplateName: "letters_ready",
		TemplateData: map[string]interface{}{
			"TeacherName": t.Name,
			"Count":       count,
			"StudentName": r.Student.Name,
			"CollegeName": r.College.Name,
			"RequestID":   r.ID,
		},
	})
}

// Review updates the status and the final draft of a Request.
func (svc *Service) Review(ctx context.Context, teacherID, id string, data ReviewRequest) (Request, error) {
	r, err := svc.repo.GetRequest(ctx, teacherID, id)
	if err != nil {
		return Request{}, err
	}
	if data.Status != "" {
		r.Status = data.Status
	}
	if data.FinalDraft != nil {
		r.FinalDraft = *data.FinalDraft
	}
	r.UpdatedAt = NowFunc()
	if r, err = svc.repo.UpdateRequest(ctx, r); err != nil {
		return Request{}, errors.Wrap(err, "updating request")
	}
	return r, nil
}

// EditLetter replaces the whole content of a generated letter.
func (svc *Service) EditLetter(ctx context.Context, teacherID, requestID, letterID string, data EditLetter) (Letter, error) {
	r, err := svc.repo.GetRequest(ctx, teacherID, requestID)
	if err != nil {
		return Letter{}, err
	}
	l, err := svc.repo.GetLetter(ctx, r.ID, letterID)
	if err != nil {
		return Letter{}, err
	}
	l.Content = data.Content
	l.WordCount = WordCount(data.Content)
	l.UpdatedAt = NowFunc()
	l, err = svc.repo.UpdateLetter(ctx, l)
	return l, errors.Wrap(err, "updating letter")
}
