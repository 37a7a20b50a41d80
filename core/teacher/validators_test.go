package teacher

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/recomendo/core"
)

func Test_checkPassword(t *testing.T) {
	tests := []struct {
		name  string
		pwd   string
		attrs []string
		want  string
	}{
		{name: "too short", pwd: "abc", want: pwdMinLenTag},
		{name: "whitespace", pwd: "abc def", want: pwdNoSpaceTag},
		{name: "similar to name", pwd: "gracehopper", attrs: []string{"Grace Hopper", "grace@test.cd"}, want: pwdAttrSimTag},
		{name: "similar to email", pwd: "Grace@Test.cd", attrs: []string{"Someone", "grace@test.cd"}, want: pwdAttrSimTag},
		{name: "blank attrs are skipped", pwd: "Zx9!qwRt", attrs: []string{"", ""}},
		{name: "valid", pwd: "Zx9!qwRt", attrs: []string{"Grace Hopper", "grace@test.cd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkPassword(tt.pwd, tt.attrs...))
		})
	}
}

func Test_validatePassword(t *testing.T) {
	tchr := Teacher{Name: "Grace Hopper", Email: "grace@test.cd"}

	assert.NoError(t, validatePassword("Zx9!qwRt", tchr))

	err := validatePassword("abc", tchr)
	verr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, []core.FieldError{{Field: "password", Error: pwdMinLenText}}, verr.Fields)
}

func TestNewTeacher_structValidation(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	nt := NewTeacher{Name: "Grace Hopper", Email: "grace@test.cd", Institution: "Navy High", Password: "grace hopper"}
	err := validate.Struct(nt)
	require.Error(t, err)
	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, pwdNoSpaceTag, verrs[0].Tag())

	nt.Password = "Zx9!qwRt"
	assert.NoError(t, validate.Struct(nt))

	assert.NoError(t, validate.Struct(ResetPassword{UID: "uid", Token: "token", Password: "Zx9!qwRt", PasswordConfirm: "Zx9!qwRt"}))
}
