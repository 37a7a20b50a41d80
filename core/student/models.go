package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
)

type Student struct {
	ID               string            `json:"id"`
	TeacherID        string            `json:"teacherId"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Grade            string            `json:"grade"`
	GPA              *float64          `json:"gpa"`
	Subjects         []string          `json:"subjects"`
	Extracurriculars []string          `json:"extracurriculars"`
	TargetColleges   []college.College `json:"targetColleges"`
	CreatedAt        time.Time         `json:"createdAt"` // UTC
	UpdatedAt        time.Time         `json:"-"`         // UTC
}

// HasTargetCollege reports whether collegeID is one of the student's target colleges.
func (s Student) HasTargetCollege(collegeID string) bool {
	for _, c := range s.TargetColleges {
		if c.ID == collegeID {
			return true
		}
	}
	return false
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name             string               `json:"name" validate:"required,min=2"`
	Email            string               `json:"email" validate:"required,email"`
	Grade            string               `json:"grade" validate:"required,notblank"`
	GPA              *float64             `json:"gpa" validate:"omitempty,min=0,max=5"`
	Subjects         []string             `json:"subjects" validate:"required,min=1,dive,notblank"`
	Extracurriculars []string             `json:"extracurriculars" validate:"dive,notblank"`
	TargetColleges   []college.NewCollege `json:"targetColleges" validate:"required,min=1,dive"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Grade = core.CleanString(ns.Grade)
	if err := validate.Struct(ns); err != nil {
		return err
	}
	ns.Subjects = core.CleanStrings(ns.Subjects)
	ns.Extracurriculars = core.CleanStrings(ns.Extracurriculars)
	for i := range ns.TargetColleges {
		ns.TargetColleges[i].Clean()
	}
	return nil
}
