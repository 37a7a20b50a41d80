package student

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/college"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	college.InitValidators(validate, translator)
	return validate
}

func TestNewStudent_Validate(t *testing.T) {
	validate := newValidator()

	ns := NewStudent{
		Name:             "  Alex Chen ",
		Email:            " Alex@Test.CD ",
		Grade:            " 12 ",
		Subjects:         []string{" Math ", "Physics"},
		Extracurriculars: []string{"Chess "},
		TargetColleges:   []college.NewCollege{{Name: " MIT ", Values: []string{" Innovation"}}},
	}
	require.NoError(t, ns.Validate(validate))
	assert.Equal(t, "Alex Chen", ns.Name)
	assert.Equal(t, "alex@test.cd", ns.Email)
	assert.Equal(t, "12", ns.Grade)
	assert.Equal(t, []string{"Math", "Physics"}, ns.Subjects)
	assert.Equal(t, []string{"Chess"}, ns.Extracurriculars)
	assert.Equal(t, college.NewCollege{Name: "MIT", Type: college.TypeOther, Values: []string{"Innovation"}, Characteristics: []string{}}, ns.TargetColleges[0])
}

func TestNewStudent_Validate_errors(t *testing.T) {
	validate := newValidator()
	valid := func() NewStudent {
		return NewStudent{
			Name: "Alex Chen", Email: "alex@test.cd", Grade: "12", Subjects: []string{"Math"},
			TargetColleges: []college.NewCollege{{Name: "MIT"}},
		}
	}
	gpa := 5.5

	tests := []struct {
		name      string
		mutate    func(ns *NewStudent)
		wantField string
		wantTag   string
	}{
		{name: "blank name", mutate: func(ns *NewStudent) { ns.Name = "   " }, wantField: "Name", wantTag: "required"},
		{name: "bad email", mutate: func(ns *NewStudent) { ns.Email = "alex" }, wantField: "Email", wantTag: "email"},
		{name: "gpa out of range", mutate: func(ns *NewStudent) { ns.GPA = &gpa }, wantField: "GPA", wantTag: "max"},
		{name: "no subjects", mutate: func(ns *NewStudent) { ns.Subjects = []string{} }, wantField: "Subjects", wantTag: "min"},
		{name: "blank subject", mutate: func(ns *NewStudent) { ns.Subjects = []string{" "} }, wantField: "Subjects[0]", wantTag: "notblank"},
		{name: "no colleges", mutate: func(ns *NewStudent) { ns.TargetColleges = nil }, wantField: "TargetColleges", wantTag: "required"},
		{
			name: "bad college type", mutate: func(ns *NewStudent) { ns.TargetColleges[0].Type = "circus" },
			wantField: "Type", wantTag: "collegetype",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := valid()
			tt.mutate(&ns)
			err := ns.Validate(validate)
			verrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "want validator.ValidationErrors, got %v", err)
			require.Len(t, verrs, 1)
			assert.True(t, strings.HasSuffix(verrs[0].StructNamespace(), "."+tt.wantField), verrs[0].StructNamespace())
			assert.Equal(t, tt.wantTag, verrs[0].Tag())
		})
	}
}

func TestStudent_HasTargetCollege(t *testing.T) {
	s := Student{TargetColleges: []college.College{{ID: "c1"}, {ID: "c2"}}}
	assert.True(t, s.HasTargetCollege("c2"))
	assert.False(t, s.HasTargetCollege("c3"))
}
