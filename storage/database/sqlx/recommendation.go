package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/recommendation"
)

type (
	requestRow struct {
		ID         string      `db:"id"`
		StudentID  string      `db:"student_id"`
		TeacherID  string      `db:"teacher_id"`
		CollegeID  string      `db:"college_id"`
		Status     string      `db:"status"`
		Phase      string      `db:"phase"`
		FinalDraft null.String `db:"final_draft"`
		Version    int         `db:"version"`
		CreatedAt  time.Time   `db:"created_at"`
		UpdatedAt  time.Time   `db:"updated_at"`
	}

	answerRow struct {
		RequestID  string      `db:"request_id"`
		QuestionID string      `db:"question_id"`
		Response   string      `db:"response"`
		Notes      null.String `db:"notes"`
		Position   int         `db:"position"`
	}

	letterRow struct {
		ID        string         `db:"id"`
		RequestID string         `db:"request_id"`
		Content   string         `db:"content"`
		Tone      string         `db:"tone"`
		Focus     pq.StringArray `db:"focus"`
		WordCount int            `db:"word_count"`
		Position  int            `db:"position"`
		CreatedAt time.Time      `db:"created_at"`
		UpdatedAt time.Time      `db:"updated_at"`
	}

	progressRow struct {
		RequestID    string    `db:"request_id"`
		CurrentIndex int       `db:"current_index"`
		TotalAnswers int       `db:"total_answers"`
		SavedAt      time.Time `db:"saved_at"`
	}
)

func newRequestRow(r recommendation.Request) requestRow {
	return requestRow{
		ID:         r.ID,
		StudentID:  r.StudentID,
		TeacherID:  r.TeacherID,
		CollegeID:  r.CollegeID,
		Status:     string(r.Status),
		Phase:      string(r.Phase),
		FinalDraft: null.NewString(r.FinalDraft, r.FinalDraft != ""),
		Version:    r.Version,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

func (row requestRow) request() recommendation.Request {
	return recommendation.Request{
		ID:         row.ID,
		StudentID:  row.StudentID,
		TeacherID:  row.TeacherID,
		CollegeID:  row.CollegeID,
		Status:     recommendation.Status(row.Status),
		Phase:      recommendation.Phase(row.Phase),
		FinalDraft: row.FinalDraft.String,
		Version:    row.Version,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func newLetterRow(l recommendation.Letter, position int) letterRow {
	focus := make(pq.StringArray, 0, len(l.Focus))
	for _, f := range l.Focus {
		focus = append(focus, string(f))
	}
	return letterRow{
		ID:        l.ID,
		RequestID: l.RequestID,
		Content:   l.Content,
		Tone:      string(l.Tone),
		Focus:     focus,
		WordCount: l.WordCount,
		Position:  position,
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
	}
}

func (row letterRow) letter() recommendation.Letter {
	focus := make([]recommendation.Category, 0, len(row.Focus))
	for _, f := range row.Focus {
		focus = append(focus, recommendation.Category(f))
	}
	return recommendation.Letter{
		ID:        row.ID,
		RequestID: row.RequestID,
		Content:   row.Content,
		Tone:      recommendation.Tone(row.Tone),
		Focus:     focus,
		WordCount: row.WordCount,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

const (
	requestColumns = `id, student_id, teacher_id, college_id, status, phase, final_draft, version, created_at, updated_at`
	letterColumns  = `id, request_id, content, tone, focus, word_count, position, created_at, updated_at`
)

// requestOrderings whitelists the columns requests can be ordered by.
var requestOrderings = map[string]bool{"created_at": true, "updated_at": true, "status": true, "phase": true}

type recommendationRepository struct {
	db core.DB
}

var _ recommendation.Repository = (*recommendationRepository)(nil) // interface compliance check

func NewRecommendationRepository(db core.DB) *recommendationRepository {
	return &recommendationRepository{db: db}
}

func (repo *recommendationRepository) CreateRequest(ctx context.Context, r recommendation.Request) (recommendation.Request, error) {
	r.ID = uuid.New().String()
	row := newRequestRow(r)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO recommendation_request (`+requestColumns+`)
		VALUES (:id, :student_id, :teacher_id, :college_id, :status, :phase, :final_draft, :version, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// started concurrently, keep the first one
			return repo.FindRequest(ctx, r.StudentID, r.TeacherID, r.CollegeID)
		}
		return recommendation.Request{}, errors.Wrap(err, "inserting recommendation request")
	}
	return row.request(), nil
}

func (repo *recommendationRepository) FindRequest(ctx context.Context, studentID, teacherID, collegeID string) (recommendation.Request, error) {
	var row requestRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT `+requestColumns+` FROM recommendation_request
		WHERE student_id = $1 AND teacher_id = $2 AND college_id = $3`,
		studentID, teacherID, collegeID,
	)
	if err != nil {
		return recommendation.Request{}, trapNoRows(err, recommendation.ErrNotFound, "selecting recommendation request")
	}
	return row.request(), nil
}

func (repo *recommendationRepository) GetRequest(ctx context.Context, teacherID, id string) (recommendation.Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return recommendation.Request{}, recommendation.ErrNotFound
	}
	var row requestRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+requestColumns+` FROM recommendation_request WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return recommendation.Request{}, trapNoRows(err, recommendation.ErrNotFound, "selecting recommendation request")
	}
	return row.request(), nil
}

func (repo *recommendationRepository) QueryRequests(ctx context.Context, teacherID string, ordering core.DBOrdering) ([]recommendation.Request, error) {
	if !requestOrderings[ordering.Field] {
		ordering = core.DBOrdering{Field: "created_at"}
	}
	var rows []requestRow
	err := repo.db.SelectContext(ctx, &rows, fmt.Sprintf(
		`SELECT %s FROM recommendation_request WHERE teacher_id = $1 ORDER BY %s, id`, requestColumns, ordering),
		teacherID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting recommendation requests")
	}
	requests := make([]recommendation.Request, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.request())
	}
	return requests, nil
}

func (repo *recommendationRepository) updateRequest(ctx context.Context, exec core.DBExecutor, r recommendation.Request) (recommendation.Request, error) {
	var row requestRow
	err := exec.GetContext(ctx, &row, `
		UPDATE recommendation_request
		SET status = $2, phase = $3, final_draft = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+requestColumns,
		r.ID, string(r.Status), string(r.Phase), null.NewString(r.FinalDraft, r.FinalDraft != ""), r.UpdatedAt.UTC(),
	)
	if err != nil {
		return recommendation.Request{}, trapNoRows(err, recommendation.ErrNotFound, "updating recommendation request")
	}
	return row.request(), nil
}

func (repo *recommendationRepository) UpdateRequest(ctx context.Context, r recommendation.Request) (recommendation.Request, error) {
	return repo.updateRequest(ctx, repo.db, r)
}

func (repo *recommendationRepository) QueryAnswers(ctx context.Context, requestID string) ([]recommendation.Answer, error) {
	var rows []answerRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT request_id, question_id, response, notes, position FROM answer
		WHERE request_id = $1 ORDER BY position`, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting answers")
	}
	answers := make([]recommendation.Answer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, recommendation.Answer{
			QuestionID: row.QuestionID,
			Response:   row.Response,
			Notes:      row.Notes.String,
		})
	}
	return answers, nil
}

// replaceAnswers is the delete-all/insert-all step shared by the answer writes.
func replaceAnswers(ctx context.Context, tx core.DBExecutor, requestID string, answers []recommendation.Answer) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM answer WHERE request_id = $1`, requestID); err != nil {
		return errors.Wrap(err, "deleting answers")
	}
	for i, a := range answers {
		row := answerRow{
			RequestID:  requestID,
			QuestionID: a.QuestionID,
			Response:   a.Response,
			Notes:      null.NewString(a.Notes, a.Notes != ""),
			Position:   i,
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO answer (request_id, question_id, response, notes, position)
			VALUES (:request_id, :question_id, :response, :notes, :position)`,
			row,
		); err != nil {
			return errors.Wrap(err, "inserting answer")
		}
	}
	return nil
}

func (repo *recommendationRepository) ReplaceAnswers(ctx context.Context, requestID string, answers []recommendation.Answer) error {
	return withTx(ctx, repo.db, func(tx core.DBTransactor) error {
		if err := replaceAnswers(ctx, tx, requestID, answers); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE recommendation_progress SET total_answers = $2 WHERE request_id = $1`, requestID, len(answers))
		return errors.Wrap(err, "updating progress answer count")
	})
}

func (repo *recommendationRepository) GetProgress(ctx context.Context, requestID string) (*recommendation.Progress, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT request_id, current_index, total_answers, saved_at FROM recommendation_progress
		WHERE request_id = $1`, requestID)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "selecting progress")
	}
	return &recommendation.Progress{
		RequestID:    row.RequestID,
		CurrentIndex: row.CurrentIndex,
		TotalAnswers: row.TotalAnswers,
		SavedAt:      row.SavedAt.UTC(),
	}, nil
}

func (repo *recommendationRepository) SaveProgress(ctx context.Context, pu recommendation.ProgressUpdate) (int, error) {
	var version int
	err := withTx(ctx, repo.db, func(tx core.DBTransactor) error {
		// lock the request row so concurrent saves are serialized
		if err := tx.GetContext(ctx, &version,
			`SELECT version FROM recommendation_request WHERE id = $1 FOR UPDATE`, pu.RequestID,
		); err != nil {
			return trapNoRows(err, recommendation.ErrNotFound, "locking recommendation request")
		}
		if pu.ExpectedVersion != nil && *pu.ExpectedVersion != version {
			return recommendation.ErrStaleProgress
		}

		if err := replaceAnswers(ctx, tx, pu.RequestID, pu.Answers); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &version, `
			UPDATE recommendation_request
			SET status = $2, phase = COALESCE(NULLIF($3, ''), phase), version = version + 1, updated_at = $4
			WHERE id = $1
			RETURNING version`,
			pu.RequestID, string(pu.Status), string(pu.Phase), pu.SavedAt.UTC(),
		); err != nil {
			return errors.Wrap(err, "updating recommendation request")
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO recommendation_progress (request_id, current_index, total_answers, saved_at)
			VALUES (:request_id, :current_index, :total_answers, :saved_at)
			ON CONFLICT (request_id) DO UPDATE
			SET current_index = EXCLUDED.current_index, total_answers = EXCLUDED.total_answers, saved_at = EXCLUDED.saved_at`,
			progressRow{
				RequestID:    pu.RequestID,
				CurrentIndex: pu.CurrentIndex,
				TotalAnswers: len(pu.Answers),
				SavedAt:      pu.SavedAt.UTC(),
			},
		)
		return errors.Wrap(err, "upserting progress")
	})
	return version, err
}

func (repo *recommendationRepository) QueryLetters(ctx context.Context, requestID string) ([]recommendation.Letter, error) {
	var rows []letterRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+letterColumns+` FROM generated_letter WHERE request_id = $1 ORDER BY position`, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting letters")
	}
	letters := make([]recommendation.Letter, 0, len(rows))
	for _, row := range rows {
		letters = append(letters, row.letter())
	}
	return letters, nil
}

func (repo *recommendationRepository) GetLetter(ctx context.Context, requestID, letterID string) (recommendation.Letter, error) {
	if _, err := uuid.Parse(letterID); err != nil {
		return recommendation.Letter{}, recommendation.ErrLetterNotFound
	}
	var row letterRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+letterColumns+` FROM generated_letter WHERE id = $1 AND request_id = $2`, letterID, requestID)
	if err != nil {
		return recommendation.Letter{}, trapNoRows(err, recommendation.ErrLetterNotFound, "selecting letter")
	}
	return row.letter(), nil
}

func (repo *recommendationRepository) ReplaceLetters(ctx context.Context, r recommendation.Request, letters []recommendation.Letter) ([]recommendation.Letter, error) {
	stored := make([]recommendation.Letter, 0, len(letters))
	err := withTx(ctx, repo.db, func(tx core.DBTransactor) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM generated_letter WHERE request_id = $1`, r.ID); err != nil {
			return errors.Wrap(err, "deleting letters")
		}
		for i, l := range letters {
			l.ID = uuid.New().String()
			l.RequestID = r.ID
			row := newLetterRow(l, i)
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO generated_letter (`+letterColumns+`)
				VALUES (:id, :request_id, :content, :tone, :focus, :word_count, :position, :created_at, :updated_at)`,
				row,
			); err != nil {
				return errors.Wrap(err, "inserting letter")
			}
			stored = append(stored, row.letter())
		}
		_, err := repo.updateRequest(ctx, tx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (repo *recommendationRepository) UpdateLetter(ctx context.Context, l recommendation.Letter) (recommendation.Letter, error) {
	var row letterRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE generated_letter SET content = $3, word_count = $4, updated_at = $5
		WHERE id = $1 AND request_id = $2
		RETURNING `+letterColumns,
		l.ID, l.RequestID, l.Content, l.WordCount, l.UpdatedAt.UTC(),
	)
	if err != nil {
		return recommendation.Letter{}, trapNoRows(err, recommendation.ErrLetterNotFound, "updating letter")
	}
	return row.letter(), nil
}
