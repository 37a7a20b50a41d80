package sqlxrepos

import (
	"time"

	"github.com/lib/pq"

	"github.com/trezcool/recomendo/core/college"
)

// collegeRow scans the college columns joined by other queries. The college repository itself lives in boiledrepos.
type collegeRow struct {
	ID              string         `db:"id"`
	Name            string         `db:"name"`
	Type            string         `db:"type"`
	Values          pq.StringArray `db:"values"`
	Characteristics pq.StringArray `db:"characteristics"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (row collegeRow) college() college.College {
	return college.College{
		ID:              row.ID,
		Name:            row.Name,
		Type:            college.Type(row.Type),
		Values:          nonNil(row.Values),
		Characteristics: nonNil(row.Characteristics),
		CreatedAt:       row.CreatedAt.UTC(),
	}
}
