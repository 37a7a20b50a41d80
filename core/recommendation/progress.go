package recommendation

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core"
)

const (
	// MinAnswerLength is the number of characters a response must exceed before moving on.
	MinAnswerLength = 10

	DefaultAutoSaveDelay = 3 * time.Second
)

var ErrCannotProceed = errors.New("the current response is too short to proceed")

// CanProceed reports whether response passes the advancement gate.
func CanProceed(response string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(response)) > MinAnswerLength
}

// resumeFrom turns a stored progress record into a Resume.
// A missing or inconsistent record restarts the questionnaire. An index past the last question
// (saved by Next on the last question) resumes on the last question with the stored answers.
func resumeFrom(p *Progress, answers []Answer, questionCount int) Resume {
	start := Resume{Answers: []Answer{}, CurrentIndex: 0}
	switch {
	case p == nil,
		p.SavedAt.IsZero(),
		p.CurrentIndex < 0,
		p.TotalAnswers != len(answers):
		return start
	}
	if answers == nil {
		answers = []Answer{}
	}
	index := p.CurrentIndex
	if index >= questionCount {
		index = questionCount - 1
	}
	if index < 0 {
		index = 0
	}
	return Resume{Answers: answers, CurrentIndex: index}
}

// Saver persists a questionnaire snapshot.
type Saver interface {
	SaveProgress(ctx context.Context, sp SaveProgress) error
}

// SaverFunc adapts a function into a Saver.
type SaverFunc func(ctx context.Context, sp SaveProgress) error

func (f SaverFunc) SaveProgress(ctx context.Context, sp SaveProgress) error { return f(ctx, sp) }

var ErrNoQuestions = errors.New("a questionnaire needs at least one question")

// Questionnaire walks a teacher through a non-empty question set.
// Navigation never depends on the outcome of a save: failures are only logged.
type Questionnaire struct {
	// AutoSaveDelay is the debounce interval between the last edit and the automatic save.
	AutoSaveDelay time.Duration

	mu        sync.Mutex
	questions []Question
	answers   map[string]Answer
	extra     []Answer // resumed answers to questions outside the set
	index     int
	done      bool
	timer     *time.Timer
	saver     Saver
	logger    core.Logger
}

// NewQuestionnaire returns ErrNoQuestions when questions is empty.
func NewQuestionnaire(questions []Question, resume Resume, saver Saver, logger core.Logger) (*Questionnaire, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	q := &Questionnaire{
		AutoSaveDelay: DefaultAutoSaveDelay,
		questions:     questions,
		answers:       make(map[string]Answer, len(questions)),
		saver:         saver,
		logger:        logger,
	}

	known := make(map[string]bool, len(questions))
	for _, qn := range questions {
		known[qn.ID] = true
	}
	for _, a := range resume.Answers {
		if known[a.QuestionID] {
			q.answers[a.QuestionID] = a
		} else {
			q.extra = append(q.extra, a)
		}
	}
	if resume.CurrentIndex > 0 && resume.CurrentIndex < len(questions) {
		q.index = resume.CurrentIndex
	}
	return q, nil
}

func (q *Questionnaire) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

func (q *Questionnaire) Current() Question {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.questions[q.index]
}

// Done reports whether Next was called on the last question.
func (q *Questionnaire) Done() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.done
}

func (q *Questionnaire) Answer(questionID string) (Answer, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	a, ok := q.answers[questionID]
	return a, ok
}

// SetResponse records the response to the current question and schedules an automatic save.
func (q *Questionnaire) SetResponse(response string) {
	q.edit(func(a *Answer) { a.Response = response })
}

// SetNotes records notes on the current question and schedules an automatic save.
func (q *Questionnaire) SetNotes(notes string) {
	q.edit(func(a *Answer) { a.Notes = notes })
}

func (q *Questionnaire) edit(fn func(a *Answer)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := q.questions[q.index].ID
	a := q.answers[id]
	a.QuestionID = id
	fn(&a)
	q.answers[id] = a
	q.scheduleAutoSave()
}

// CanProceed reports whether the current response allows moving to the next question.
func (q *Questionnaire) CanProceed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return CanProceed(q.answers[q.questions[q.index].ID].Response)
}

// Next moves to the following question and saves.
// On the last question it completes the questionnaire and moves the request to the generation phase.
func (q *Questionnaire) Next(ctx context.Context) error {
	q.mu.Lock()
	if !CanProceed(q.answers[q.questions[q.index].ID].Response) {
		q.mu.Unlock()
		return ErrCannotProceed
	}
	var phase Phase
	if q.index < len(q.questions)-1 {
		q.index++
	} else {
		q.done = true
		phase = PhaseGeneration
	}
	sp := q.snapshot(phase)
	q.mu.Unlock()

	q.save(ctx, sp, "saving progress on next")
	return nil
}

// Previous moves back one question and saves. It is a no-op on the first question.
func (q *Questionnaire) Previous(ctx context.Context) {
	q.mu.Lock()
	if q.index == 0 {
		q.mu.Unlock()
		return
	}
	q.index--
	q.done = false
	sp := q.snapshot("")
	q.mu.Unlock()

	q.save(ctx, sp, "saving progress on previous")
}

// Snapshot returns the payload a save would send right now.
func (q *Questionnaire) Snapshot() SaveProgress {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot("")
}

// Close cancels a pending automatic save.
func (q *Questionnaire) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// snapshot must be called with q.mu held.
func (q *Questionnaire) snapshot(phase Phase) SaveProgress {
	answers := make([]Answer, 0, len(q.answers)+len(q.extra))
	for _, qn := range q.questions {
		if a, ok := q.answers[qn.ID]; ok {
			answers = append(answers, a)
		}
	}
	answers = append(answers, q.extra...)
	return SaveProgress{CurrentQuestionIndex: q.index, Answers: answers, Phase: phase}
}

// scheduleAutoSave must be called with q.mu held.
func (q *Questionnaire) scheduleAutoSave() {
	if q.timer != nil {
		q.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(q.AutoSaveDelay, func() {
		q.mu.Lock()
		if q.timer != t {
			// stopped or replaced while waiting for the lock
			q.mu.Unlock()
			return
		}
		sp := q.snapshot("")
		q.timer = nil
		q.mu.Unlock()

		q.save(context.Background(), sp, "auto-saving progress")
	})
	q.timer = t
}

func (q *Questionnaire) save(ctx context.Context, sp SaveProgress, msg string) {
	if err := q.saver.SaveProgress(ctx, sp); err != nil && q.logger != nil {
		q.logger.Error(msg, errors.Wrap(err, "recommendation.Questionnaire"))
	}
}
