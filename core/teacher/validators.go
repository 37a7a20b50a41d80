package teacher

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/recomendo/core"
)

var (
	// password policy
	pwdMinLen     = 6
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to your name or email"

	pwdPolicyTexts = map[string]string{
		pwdMinLenTag:  pwdMinLenText,
		pwdNoSpaceTag: pwdNoSpaceText,
		pwdAttrSimTag: pwdAttrSimText,
	}
)

// InitValidators registers the password policy on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(teacherStructValidation, NewTeacher{}, ResetPassword{})
	for tag, text := range pwdPolicyTexts {
		core.RegisterCustomTranslation(validate, translator, tag, text)
	}
}

// teacherStructValidation does struct level validation on NewTeacher and ResetPassword structs.
func teacherStructValidation(sl validator.StructLevel) {
	var pwd string
	var attrs []string

	switch v := sl.Current().Interface().(type) {
	case NewTeacher:
		pwd = v.Password
		attrs = []string{v.Name, v.Email}
	case ResetPassword:
		pwd = v.Password
	default:
		return
	}
	if pwd == "" {
		return // reported by `required`
	}
	if tag := checkPassword(pwd, attrs...); tag != "" {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
}

// checkPassword applies the password policy and returns the tag of the first broken rule:
// - minLen: 6
// - no whitespace
// - no similarity with the teacher's attributes
func checkPassword(pwd string, attrs ...string) string {
	if len([]rune(pwd)) < pwdMinLen {
		return pwdMinLenTag
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(attr, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return pwdAttrSimTag
		}
	}
	return ""
}

// validatePassword checks pwd against t's attributes and returns a core.ValidationError when it breaks the policy.
func validatePassword(pwd string, t Teacher) error {
	if tag := checkPassword(pwd, t.Name, t.Email); tag != "" {
		text := pwdPolicyTexts[tag]
		return core.NewValidationError(errors.New(text), core.FieldError{Field: "password", Error: text})
	}
	return nil
}
