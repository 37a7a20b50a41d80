package teacher

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("teacher")
	ErrEmailExists        = errors.New("a teacher with this email already exists")
	ErrInvalidCredentials = core.NewUnauthorizedError("invalid email or password")
	ErrInvalidResetLink   = core.NewValidationError(errors.New("invalid or expired password reset link"))
)

type Repository interface {
	// CheckEmailUniqueness returns ErrEmailExists when another Teacher (not in excludedIDs) uses email.
	CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
	CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
	GetTeacherByID(ctx context.Context, id string) (Teacher, error)
	GetTeacherByEmail(ctx context.Context, email string) (Teacher, error)
	UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
}

type Service struct {
	repo     Repository
	mailSvc  core.EmailService
	tokenGen tokenGenerator
}

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		tokenGen: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.PasswordResetTimeoutDelta,
		},
	}
}

func (svc *Service) CheckUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

// Register creates a Teacher account from already validated data.
func (svc *Service) Register(ctx context.Context, nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	t := Teacher{
		Name:        nt.Name,
		Email:       nt.Email,
		Institution: nt.Institution,
		Subject:     nt.Subject,
		Experience:  nt.Experience,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Teacher{}, errors.Wrap(err, "hashing password")
	}
	t, err := svc.repo.CreateTeacher(ctx, t)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return Teacher{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return t, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate checks the credentials and records the login.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Teacher, error) {
	t, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Teacher{}, ErrInvalidCredentials
		}
		return Teacher{}, errors.Wrap(err, "finding teacher by email")
	}
	if err = t.CheckPassword(pwd); err != nil {
		return Teacher{}, ErrInvalidCredentials
	}

	t.LastLogin = time.Now().UTC()
	t, err = svc.repo.UpdateTeacher(ctx, t)
	return t, errors.Wrap(err, "setting lastLogin")
}

// SetPassword replaces the password of the Teacher identified by email.
func (svc *Service) SetPassword(ctx context.Context, email, pwd string) error {
	t, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = validatePassword(pwd, t); err != nil {
		return err
	}
	if err = t.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	t.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateTeacher(ctx, t)
	return errors.Wrap(err, "updating teacher")
}

// RequestPasswordReset emails a password reset link to the Teacher identified by email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	t, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(t)
	return nil
}

func (svc *Service) sendPasswordResetMail(t Teacher) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: t.Name, Address: t.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":  t.Name,
			"UID":   encodeUID(t),
			"Token": svc.tokenGen.makeToken(t),
		},
	})
}

// ResetPassword sets a new password when data carries a valid reset token.
func (svc *Service) ResetPassword(ctx context.Context, data ResetPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return ErrInvalidResetLink
	}
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrInvalidResetLink
		}
		return errors.Wrap(err, "finding teacher by ID")
	}
	if err = svc.tokenGen.verifyToken(t, data.Token); err != nil {
		return ErrInvalidResetLink
	}
	if err = validatePassword(data.Password, t); err != nil {
		return err
	}
	if err = t.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	t.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateTeacher(ctx, t)
	return errors.Wrap(err, "updating teacher")
}
