// Package boiledrepos implements repositories with the sqlboiler query builder.
package boiledrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/types"

	"github.com/trezcool/recomendo/core/college"
)

type collegeRow struct {
	ID              string            `boil:"id"`
	Name            string            `boil:"name"`
	Type            string            `boil:"type"`
	Values          types.StringArray `boil:"values"`
	Characteristics types.StringArray `boil:"characteristics"`
	CreatedAt       time.Time         `boil:"created_at"`
}

func (row collegeRow) unboil() college.College {
	c := college.College{
		ID:              row.ID,
		Name:            row.Name,
		Type:            college.Type(row.Type),
		Values:          []string(row.Values),
		Characteristics: []string(row.Characteristics),
		CreatedAt:       row.CreatedAt.UTC(),
	}
	if c.Values == nil {
		c.Values = []string{}
	}
	if c.Characteristics == nil {
		c.Characteristics = []string{}
	}
	return c
}

const collegeSelect = `SELECT id, name, type, "values", characteristics, created_at FROM college`

type collegeRepository struct {
	exec boil.ContextExecutor
}

var _ college.Repository = (*collegeRepository)(nil) // interface compliance check

func NewCollegeRepository(exec boil.ContextExecutor) *collegeRepository {
	return &collegeRepository{exec: exec}
}

// trapNoRowsErr maps psql "no rows" err to college.ErrNotFound
func (repo collegeRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return college.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo collegeRepository) CreateCollege(ctx context.Context, c college.College) (college.College, error) {
	row := collegeRow{
		ID:              uuid.New().String(),
		Name:            c.Name,
		Type:            string(c.Type),
		Values:          types.StringArray(c.Values),
		Characteristics: types.StringArray(c.Characteristics),
		CreatedAt:       c.CreatedAt.UTC(),
	}
	if row.Values == nil {
		row.Values = types.StringArray{}
	}
	if row.Characteristics == nil {
		row.Characteristics = types.StringArray{}
	}

	_, err := queries.Raw(
		`INSERT INTO college (id, name, type, "values", characteristics, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		row.ID, row.Name, row.Type, row.Values, row.Characteristics, row.CreatedAt,
	).ExecContext(ctx, repo.exec)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return college.College{}, college.ErrNameExists
		}
		return college.College{}, errors.Wrap(err, "inserting college")
	}
	return row.unboil(), nil
}

func (repo collegeRepository) GetCollegeByID(ctx context.Context, id string) (college.College, error) {
	if _, err := uuid.Parse(id); err != nil {
		return college.College{}, college.ErrNotFound
	}
	var row collegeRow
	if err := queries.Raw(collegeSelect+` WHERE id = $1`, id).Bind(ctx, repo.exec, &row); err != nil {
		return college.College{}, repo.trapNoRowsErr(err, "finding college by ID")
	}
	return row.unboil(), nil
}

func (repo collegeRepository) GetCollegeByName(ctx context.Context, name string) (college.College, error) {
	var row collegeRow
	err := queries.Raw(collegeSelect+` WHERE LOWER(name) = $1`, college.NameKey(name)).Bind(ctx, repo.exec, &row)
	if err != nil {
		return college.College{}, repo.trapNoRowsErr(err, "finding college by name")
	}
	return row.unboil(), nil
}

func (repo collegeRepository) QueryColleges(ctx context.Context) ([]college.College, error) {
	var rows []collegeRow
	if err := queries.Raw(collegeSelect+` ORDER BY name`).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying colleges")
	}
	colleges := make([]college.College, 0, len(rows))
	for _, row := range rows {
		colleges = append(colleges, row.unboil())
	}
	return colleges, nil
}
