package recommendation

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/student"
)

type Phase string

const (
	PhaseCommitment    Phase = "commitment"
	PhaseQuestionnaire Phase = "questionnaire"
	PhaseGeneration    Phase = "generation"
	PhaseReview        Phase = "review"
)

var Phases = []Phase{PhaseCommitment, PhaseQuestionnaire, PhaseGeneration, PhaseReview}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusReviewed   Status = "reviewed"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusReviewed}

var (
	// custom validation tags
	phaseTag  = "phase"
	statusTag = "status"
)

type (
	// Request links one student, one teacher and one target college.
	Request struct {
		ID         string    `json:"id"`
		StudentID  string    `json:"studentId"`
		TeacherID  string    `json:"teacherId"`
		CollegeID  string    `json:"collegeId"`
		Status     Status    `json:"status"`
		Phase      Phase     `json:"phase"`
		FinalDraft string    `json:"finalDraft,omitempty"`
		Version    int       `json:"version"`
		CreatedAt  time.Time `json:"createdAt"` // UTC
		UpdatedAt  time.Time `json:"updatedAt"` // UTC

		// relations; only loaded by detail queries
		Student  *student.Student `json:"student,omitempty"`
		College  *college.College `json:"college,omitempty"`
		Answers  []Answer         `json:"answers,omitempty"`
		Letters  []Letter         `json:"letters,omitempty"`
		Progress *Progress        `json:"progress,omitempty"`
	}

	Answer struct {
		QuestionID string `json:"questionId" validate:"required,notblank"`
		Response   string `json:"response"`
		Notes      string `json:"notes,omitempty"`
	}

	Letter struct {
		ID        string     `json:"id"`
		RequestID string     `json:"-"`
		Content   string     `json:"content"`
		Tone      Tone       `json:"tone"`
		Focus     []Category `json:"focus"`
		WordCount int        `json:"wordCount"`
		CreatedAt time.Time  `json:"createdAt"` // UTC
		UpdatedAt time.Time  `json:"-"`         // UTC
	}

	// Progress is the persisted questionnaire cursor of a Request.
	Progress struct {
		RequestID    string    `json:"-"`
		CurrentIndex int       `json:"currentQuestionIndex"`
		TotalAnswers int       `json:"totalAnswers"`
		SavedAt      time.Time `json:"savedAt"` // UTC
	}
)

// StartRequest contains information needed to start (or find) a Request.
type StartRequest struct {
	StudentID string `json:"studentId" validate:"required,notblank"`
	CollegeID string `json:"collegeId" validate:"required,notblank"`
}

type UpdateProgress struct {
	Phase  Phase  `json:"phase" validate:"required,phase"`
	Status Status `json:"status" validate:"omitempty,status"`
}

type SaveProgress struct {
	CurrentQuestionIndex int      `json:"currentQuestionIndex" validate:"min=0"`
	Answers              []Answer `json:"answers" validate:"dive"`
	Phase                Phase    `json:"phase" validate:"omitempty,phase"`
	// Version enables optimistic concurrency when set.
	Version *int `json:"version"`
}

// Clean drops duplicate answers; the last answer for a question wins and keeps its first position.
func (sp *SaveProgress) Clean() {
	if len(sp.Answers) == 0 {
		sp.Answers = []Answer{}
		return
	}
	pos := make(map[string]int, len(sp.Answers))
	answers := make([]Answer, 0, len(sp.Answers))
	for _, a := range sp.Answers {
		a.QuestionID = core.CleanString(a.QuestionID)
		if i, ok := pos[a.QuestionID]; ok {
			answers[i] = a
			continue
		}
		pos[a.QuestionID] = len(answers)
		answers = append(answers, a)
	}
	sp.Answers = answers
}

type SaveProgressResult struct {
	CurrentQuestionIndex int `json:"currentQuestionIndex"`
	AnswersCount         int `json:"answersCount"`
	Version              int `json:"version"`
}

// Resume is what a questionnaire needs to continue where it stopped.
type Resume struct {
	Answers      []Answer `json:"answers"`
	CurrentIndex int      `json:"currentQuestionIndex"`
}

// SaveAnswers replaces the answers without touching the progress record.
type SaveAnswers struct {
	Answers []Answer `json:"answers" validate:"required,dive"`
}

type ReviewRequest struct {
	Status     Status  `json:"status" validate:"omitempty,status"`
	FinalDraft *string `json:"finalDraft"`
}

type EditLetter struct {
	Content string `json:"content" validate:"required,notblank"`
}

// InitValidators registers the phase and status enums.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	phases := make([]string, 0, len(Phases))
	for _, p := range Phases {
		phases = append(phases, string(p))
	}
	core.RegisterEnumValidation(validate, translator, phaseTag, phases)

	statuses := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		statuses = append(statuses, string(s))
	}
	core.RegisterEnumValidation(validate, translator, statusTag, statuses)
}
