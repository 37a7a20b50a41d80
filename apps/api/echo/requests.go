package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/recommendation"
	"github.com/trezcool/recomendo/core/teacher"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Teacher teacher.Teacher `json:"teacher"`
}

type RegisterResponse struct {
	Message string          `json:"message"`
	Teacher teacher.Teacher `json:"teacher"`
	Token   string          `json:"token"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type StartResponse struct {
	Message        string                 `json:"message"`
	Recommendation recommendation.Request `json:"recommendation"`
}

type ProgressResponse struct {
	Message  string             `json:"message"`
	Progress ProgressStatusData `json:"progress"`
}

type ProgressStatusData struct {
	Phase  recommendation.Phase  `json:"phase"`
	Status recommendation.Status `json:"status"`
}

type SaveProgressResponse struct {
	Message string `json:"message"`
	recommendation.SaveProgressResult
}

// ResumeResponse carries the request, the resumed questionnaire position and the raw progress record.
type ResumeResponse struct {
	Recommendation       recommendation.Request   `json:"recommendation"`
	CurrentQuestionIndex int                      `json:"currentQuestionIndex"`
	Answers              []recommendation.Answer  `json:"answers"`
	Progress             *recommendation.Progress `json:"progress"`
}

type AnswersResponse struct {
	Message string                  `json:"message"`
	Answers []recommendation.Answer `json:"answers"`
}

type GenerateResponse struct {
	Message string                  `json:"message"`
	Letters []recommendation.Letter `json:"letters"`
}
