package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("student")
)

type Repository interface {
	// CreateStudent stores s and links it to the colleges in s.TargetColleges (which must exist).
	CreateStudent(ctx context.Context, s Student) (Student, error)
	// GetStudent returns the Student identified by id only if it belongs to teacherID.
	GetStudent(ctx context.Context, teacherID, id string) (Student, error)
	// QueryStudents returns teacherID's students, newest first.
	QueryStudents(ctx context.Context, teacherID string) ([]Student, error)
}

type Service struct {
	repo       Repository
	collegeSvc *college.Service
}

func NewService(repo Repository, collegeSvc *college.Service) *Service {
	return &Service{repo: repo, collegeSvc: collegeSvc}
}

// Create stores a new Student owned by teacherID; target colleges are found or created by name.
func (svc *Service) Create(ctx context.Context, teacherID string, ns NewStudent) (Student, error) {
	colleges := make([]college.College, 0, len(ns.TargetColleges))
	seen := make(map[string]bool, len(ns.TargetColleges))
	for _, nc := range ns.TargetColleges {
		c, err := svc.collegeSvc.FindOrCreate(ctx, nc)
		if err != nil {
			return Student{}, errors.Wrap(err, "finding or creating target college")
		}
		if !seen[c.ID] {
			seen[c.ID] = true
			colleges = append(colleges, c)
		}
	}

	now := time.Now().UTC()
	s, err := svc.repo.CreateStudent(ctx, Student{
		TeacherID:        teacherID,
		Name:             ns.Name,
		Email:            ns.Email,
		Grade:            ns.Grade,
		GPA:              ns.GPA,
		Subjects:         ns.Subjects,
		Extracurriculars: ns.Extracurriculars,
		TargetColleges:   colleges,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	return s, errors.Wrap(err, "creating student")
}

func (svc *Service) Get(ctx context.Context, teacherID, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, teacherID, id)
}

func (svc *Service) Query(ctx context.Context, teacherID string) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, teacherID)
}
