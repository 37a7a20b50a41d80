package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/teacher"
)

type teacherRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	Institution  string      `db:"institution"`
	Subject      null.String `db:"subject"`
	Experience   null.Int    `db:"experience"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func newTeacherRow(t teacher.Teacher) teacherRow {
	return teacherRow{
		ID:           t.ID,
		Name:         t.Name,
		Email:        t.Email,
		Institution:  t.Institution,
		Subject:      null.NewString(t.Subject, t.Subject != ""),
		Experience:   null.IntFromPtr(t.Experience),
		PasswordHash: t.PasswordHash,
		CreatedAt:    t.CreatedAt.UTC(),
		UpdatedAt:    t.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(t.LastLogin.UTC(), !t.LastLogin.IsZero()),
	}
}

func (row teacherRow) teacher() teacher.Teacher {
	return teacher.Teacher{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Institution:  row.Institution,
		Subject:      row.Subject.String,
		Experience:   row.Experience.Ptr(),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

const teacherColumns = `id, name, email, institution, subject, experience, password_hash, created_at, updated_at, last_login`

type teacherRepository struct {
	exec core.DBExecutor
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(exec core.DBExecutor) *teacherRepository {
	return &teacherRepository{exec: exec}
}

func (repo *teacherRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	q, args := `SELECT EXISTS (SELECT 1 FROM teacher WHERE email = ?)`, []interface{}{email}
	if len(excludedIDs) > 0 {
		var err error
		q, args, err = sqlx.In(`SELECT EXISTS (SELECT 1 FROM teacher WHERE email = ? AND id NOT IN (?))`, email, excludedIDs)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var exists bool
	if err := repo.exec.GetContext(ctx, &exists, repo.exec.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return teacher.ErrEmailExists
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	t.ID = uuid.New().String()
	row := newTeacherRow(t)
	_, err := repo.exec.NamedExecContext(ctx, `
		INSERT INTO teacher (`+teacherColumns+`)
		VALUES (:id, :name, :email, :institution, :subject, :experience, :password_hash, :created_at, :updated_at, :last_login)`,
		row,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return row.teacher(), nil
}

func (repo *teacherRepository) get(ctx context.Context, where string, arg interface{}) (teacher.Teacher, error) {
	var row teacherRow
	err := repo.exec.GetContext(ctx, &row, `SELECT `+teacherColumns+` FROM teacher WHERE `+where, arg)
	if err != nil {
		return teacher.Teacher{}, trapNoRows(err, teacher.ErrNotFound, "selecting teacher")
	}
	return row.teacher(), nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id string) (teacher.Teacher, error) {
	if _, err := uuid.Parse(id); err != nil {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.get(ctx, `id = $1`, id)
}

func (repo *teacherRepository) GetTeacherByEmail(ctx context.Context, email string) (teacher.Teacher, error) {
	return repo.get(ctx, `email = $1`, email)
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	row := newTeacherRow(t)
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE teacher
		SET name = :name, email = :email, institution = :institution, subject = :subject, experience = :experience,
			password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`,
		row,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacherByID(ctx, t.ID)
}
