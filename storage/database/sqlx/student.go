package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/student"
)

type studentRow struct {
	ID               string         `db:"id"`
	TeacherID        string         `db:"teacher_id"`
	Name             string         `db:"name"`
	Email            string         `db:"email"`
	Grade            string         `db:"grade"`
	GPA              null.Float64   `db:"gpa"`
	Subjects         pq.StringArray `db:"subjects"`
	Extracurriculars pq.StringArray `db:"extracurriculars"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type targetCollegeRow struct {
	StudentID string `db:"student_id"`
	collegeRow
}

func (row studentRow) student(colleges []college.College) student.Student {
	if colleges == nil {
		colleges = []college.College{}
	}
	return student.Student{
		ID:               row.ID,
		TeacherID:        row.TeacherID,
		Name:             row.Name,
		Email:            row.Email,
		Grade:            row.Grade,
		GPA:              row.GPA.Ptr(),
		Subjects:         nonNil(row.Subjects),
		Extracurriculars: nonNil(row.Extracurriculars),
		TargetColleges:   colleges,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

const studentColumns = `id, teacher_id, name, email, grade, gpa, subjects, extracurriculars, created_at, updated_at`

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = uuid.New().String()
	row := studentRow{
		ID:               s.ID,
		TeacherID:        s.TeacherID,
		Name:             s.Name,
		Email:            s.Email,
		Grade:            s.Grade,
		GPA:              null.Float64FromPtr(s.GPA),
		Subjects:         nonNil(s.Subjects),
		Extracurriculars: nonNil(s.Extracurriculars),
		CreatedAt:        s.CreatedAt.UTC(),
		UpdatedAt:        s.UpdatedAt.UTC(),
	}

	err := withTx(ctx, repo.db, func(tx core.DBTransactor) error {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO student (`+studentColumns+`)
			VALUES (:id, :teacher_id, :name, :email, :grade, :gpa, :subjects, :extracurriculars, :created_at, :updated_at)`,
			row,
		); err != nil {
			return errors.Wrap(err, "inserting student")
		}
		for i, c := range s.TargetColleges {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO student_target_college (student_id, college_id, position) VALUES ($1, $2, $3)`,
				s.ID, c.ID, i,
			); err != nil {
				return errors.Wrap(err, "linking target college")
			}
		}
		return nil
	})
	if err != nil {
		return student.Student{}, err
	}
	return row.student(s.TargetColleges), nil
}

// targetColleges returns the target colleges of every student in ids.
func (repo *studentRepository) targetColleges(ctx context.Context, ids []string) (map[string][]college.College, error) {
	out := make(map[string][]college.College, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
		SELECT stc.student_id, c.id, c.name, c.type, c."values", c.characteristics, c.created_at
		FROM student_target_college stc
		JOIN college c ON c.id = stc.college_id
		WHERE stc.student_id IN (?)
		ORDER BY stc.student_id, stc.position`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building target colleges query")
	}

	var rows []targetCollegeRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting target colleges")
	}
	for _, row := range rows {
		out[row.StudentID] = append(out[row.StudentID], row.college())
	}
	return out, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, teacherID, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}

	var row studentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+studentColumns+` FROM student WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return student.Student{}, trapNoRows(err, student.ErrNotFound, "selecting student")
	}
	colleges, err := repo.targetColleges(ctx, []string{row.ID})
	if err != nil {
		return student.Student{}, err
	}
	return row.student(colleges[row.ID]), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, teacherID string) ([]student.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+studentColumns+` FROM student WHERE teacher_id = $1 ORDER BY created_at DESC, id`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	colleges, err := repo.targetColleges(ctx, ids)
	if err != nil {
		return nil, err
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student(colleges[row.ID]))
	}
	return students, nil
}
