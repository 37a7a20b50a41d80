package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/recommendation"
)

type recommendationRepository struct {
	db *DB
}

var _ recommendation.Repository = (*recommendationRepository)(nil) // interface compliance check

func NewRecommendationRepository(db *DB) *recommendationRepository {
	return &recommendationRepository{db: db}
}

func cloneAnswers(answers []recommendation.Answer) []recommendation.Answer {
	return append([]recommendation.Answer{}, answers...)
}

func cloneLetter(l recommendation.Letter) recommendation.Letter {
	l.Focus = append([]recommendation.Category{}, l.Focus...)
	return l
}

func (repo *recommendationRepository) CreateRequest(_ context.Context, r recommendation.Request) (recommendation.Request, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.requests {
		if existing.StudentID == r.StudentID && existing.TeacherID == r.TeacherID && existing.CollegeID == r.CollegeID {
			return *existing, nil
		}
	}
	r.ID = uuid.New().String()
	repo.db.requests[r.ID] = &r
	return r, nil
}

func (repo *recommendationRepository) FindRequest(_ context.Context, studentID, teacherID, collegeID string) (recommendation.Request, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, r := range repo.db.requests {
		if r.StudentID == studentID && r.TeacherID == teacherID && r.CollegeID == collegeID {
			return *r, nil
		}
	}
	return recommendation.Request{}, recommendation.ErrNotFound
}

func (repo *recommendationRepository) GetRequest(_ context.Context, teacherID, id string) (recommendation.Request, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if r, ok := repo.db.requests[id]; ok && r.TeacherID == teacherID {
		return *r, nil
	}
	return recommendation.Request{}, recommendation.ErrNotFound
}

func (repo *recommendationRepository) QueryRequests(_ context.Context, teacherID string, ordering core.DBOrdering) ([]recommendation.Request, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	requests := make([]recommendation.Request, 0)
	for _, r := range repo.db.requests {
		if r.TeacherID == teacherID {
			requests = append(requests, *r)
		}
	}

	less := func(a, b recommendation.Request) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch ordering.Field {
	case "updated_at":
		less = func(a, b recommendation.Request) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "status":
		less = func(a, b recommendation.Request) bool { return a.Status < b.Status }
	case "phase":
		less = func(a, b recommendation.Request) bool { return a.Phase < b.Phase }
	}
	sort.SliceStable(requests, func(i, j int) bool {
		a, b := requests[i], requests[j]
		if !ordering.Ascending {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID
	})
	return requests, nil
}

func (repo *recommendationRepository) UpdateRequest(_ context.Context, r recommendation.Request) (recommendation.Request, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return repo.updateRequest(r)
}

// updateRequest must be called with the write lock held.
func (repo *recommendationRepository) updateRequest(r recommendation.Request) (recommendation.Request, error) {
	orig, ok := repo.db.requests[r.ID]
	if !ok {
		return recommendation.Request{}, recommendation.ErrNotFound
	}
	orig.Status = r.Status
	orig.Phase = r.Phase
	orig.FinalDraft = r.FinalDraft
	orig.UpdatedAt = r.UpdatedAt
	return *orig, nil
}

func (repo *recommendationRepository) QueryAnswers(_ context.Context, requestID string) ([]recommendation.Answer, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return cloneAnswers(repo.db.answers[requestID]), nil
}

func (repo *recommendationRepository) ReplaceAnswers(_ context.Context, requestID string, answers []recommendation.Answer) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.requests[requestID]; !ok {
		return recommendation.ErrNotFound
	}
	repo.db.answers[requestID] = cloneAnswers(answers)
	if p, ok := repo.db.progress[requestID]; ok {
		p.TotalAnswers = len(answers)
	}
	return nil
}

func (repo *recommendationRepository) GetProgress(_ context.Context, requestID string) (*recommendation.Progress, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	p, ok := repo.db.progress[requestID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (repo *recommendationRepository) SaveProgress(_ context.Context, pu recommendation.ProgressUpdate) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	r, ok := repo.db.requests[pu.RequestID]
	if !ok {
		return 0, recommendation.ErrNotFound
	}
	if pu.ExpectedVersion != nil && *pu.ExpectedVersion != r.Version {
		return 0, recommendation.ErrStaleProgress
	}

	repo.db.answers[r.ID] = cloneAnswers(pu.Answers)
	if pu.Phase != "" {
		r.Phase = pu.Phase
	}
	r.Status = pu.Status
	r.Version++
	r.UpdatedAt = pu.SavedAt
	repo.db.progress[r.ID] = &recommendation.Progress{
		RequestID:    r.ID,
		CurrentIndex: pu.CurrentIndex,
		TotalAnswers: len(pu.Answers),
		SavedAt:      pu.SavedAt,
	}
	return r.Version, nil
}

func (repo *recommendationRepository) QueryLetters(_ context.Context, requestID string) ([]recommendation.Letter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	letters := make([]recommendation.Letter, 0, len(repo.db.letters[requestID]))
	for _, l := range repo.db.letters[requestID] {
		letters = append(letters, cloneLetter(l))
	}
	return letters, nil
}

func (repo *recommendationRepository) GetLetter(_ context.Context, requestID, letterID string) (recommendation.Letter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, l := range repo.db.letters[requestID] {
		if l.ID == letterID {
			return cloneLetter(l), nil
		}
	}
	return recommendation.Letter{}, recommendation.ErrLetterNotFound
}

func (repo *recommendationRepository) ReplaceLetters(_ context.Context, r recommendation.Request, letters []recommendation.Letter) ([]recommendation.Letter, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, err := repo.updateRequest(r); err != nil {
		return nil, err
	}
	stored := make([]recommendation.Letter, 0, len(letters))
	for _, l := range letters {
		l.ID = uuid.New().String()
		l.RequestID = r.ID
		stored = append(stored, cloneLetter(l))
	}
	repo.db.letters[r.ID] = stored

	out := make([]recommendation.Letter, 0, len(stored))
	for _, l := range stored {
		out = append(out, cloneLetter(l))
	}
	return out, nil
}

func (repo *recommendationRepository) UpdateLetter(_ context.Context, l recommendation.Letter) (recommendation.Letter, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, existing := range repo.db.letters[l.RequestID] {
		if existing.ID == l.ID {
			existing.Content = l.Content
			existing.WordCount = l.WordCount
			existing.UpdatedAt = l.UpdatedAt
			repo.db.letters[l.RequestID][i] = existing
			return cloneLetter(existing), nil
		}
	}
	return recommendation.Letter{}, recommendation.ErrLetterNotFound
}
