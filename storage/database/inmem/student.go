package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// load must be called with the lock held.
func (repo *studentRepository) load(row *studentRow) student.Student {
	s := row.student
	s.Subjects = cloneStrings(s.Subjects)
	s.Extracurriculars = cloneStrings(s.Extracurriculars)
	s.TargetColleges = make([]college.College, 0, len(row.collegeIDs))
	for _, id := range row.collegeIDs {
		if c, ok := repo.db.colleges[id]; ok {
			s.TargetColleges = append(s.TargetColleges, cloneCollege(c))
		}
	}
	return s
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ids := make([]string, 0, len(s.TargetColleges))
	for _, c := range s.TargetColleges {
		if _, ok := repo.db.colleges[c.ID]; !ok {
			return student.Student{}, college.ErrNotFound
		}
		ids = append(ids, c.ID)
	}
	s.ID = uuid.New().String()
	s.TargetColleges = nil
	s.Subjects = cloneStrings(s.Subjects)
	s.Extracurriculars = cloneStrings(s.Extracurriculars)

	row := &studentRow{student: s, collegeIDs: ids}
	repo.db.students[s.ID] = row
	return repo.load(row), nil
}

func (repo *studentRepository) GetStudent(_ context.Context, teacherID, id string) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if row, ok := repo.db.students[id]; ok && row.student.TeacherID == teacherID {
		return repo.load(row), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, teacherID string) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]student.Student, 0)
	for _, row := range repo.db.students {
		if row.student.TeacherID == teacherID {
			students = append(students, repo.load(row))
		}
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].ID < students[j].ID
		}
		return students[i].CreatedAt.After(students[j].CreatedAt)
	})
	return students, nil
}
