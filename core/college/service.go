package college

import (
	"context"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("college")
	ErrNameExists  = errors.New("a college with this name already exists")
	collegeTypeTag = "collegetype"
)

type Repository interface {
	CreateCollege(ctx context.Context, c College) (College, error)
	GetCollegeByID(ctx context.Context, id string) (College, error)
	// GetCollegeByName does a case-insensitive match on College.Name.
	GetCollegeByName(ctx context.Context, name string) (College, error)
	QueryColleges(ctx context.Context) ([]College, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// InitValidators registers the college validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	allowed := make([]string, 0, len(Types))
	for _, t := range Types {
		allowed = append(allowed, string(t))
	}
	core.RegisterEnumValidation(validate, translator, collegeTypeTag, allowed)
}

func (svc *Service) Get(ctx context.Context, id string) (College, error) {
	return svc.repo.GetCollegeByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]College, error) {
	return svc.repo.QueryColleges(ctx)
}

// FindOrCreate returns the College named nc.Name, creating it from nc when missing.
// An existing College is returned as stored, nc's other fields are ignored.
func (svc *Service) FindOrCreate(ctx context.Context, nc NewCollege) (College, error) {
	nc.Clean()
	c, err := svc.repo.GetCollegeByName(ctx, nc.Name)
	if err == nil {
		return c, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return College{}, errors.Wrap(err, "finding college by name")
	}

	c, err = svc.repo.CreateCollege(ctx, College{
		Name:            nc.Name,
		Type:            nc.Type,
		Values:          nc.Values,
		Characteristics: nc.Characteristics,
		CreatedAt:       time.Now().UTC(),
	})
	if errors.Cause(err) == ErrNameExists {
		// lost a creation race, the other writer's row wins
		return svc.repo.GetCollegeByName(ctx, nc.Name)
	}
	return c, errors.Wrap(err, "creating college")
}

// Seed creates the Catalog colleges that do not exist yet and returns how many were created.
func (svc *Service) Seed(ctx context.Context) (int, error) {
	var created int
	for _, c := range Catalog {
		if _, err := svc.repo.GetCollegeByName(ctx, c.Name); err == nil {
			continue
		} else if errors.Cause(err) != ErrNotFound {
			return created, errors.Wrap(err, "finding college by name")
		}
		if _, err := svc.FindOrCreate(ctx, NewCollege{
			Name:            c.Name,
			Type:            c.Type,
			Values:          c.Values,
			Characteristics: c.Characteristics,
		}); err != nil {
			return created, errors.Wrapf(err, "seeding %s", c.Name)
		}
		created++
	}
	return created, nil
}

// NameKey is the normalized form used for case-insensitive name lookups.
func NameKey(name string) string {
	return strings.ToLower(core.CleanString(name))
}
