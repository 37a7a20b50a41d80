package college

import (
	"time"

	"github.com/trezcool/recomendo/core"
)

// Type is the institution type used to pick bonus questions and alignment prose.
type Type string

const (
	TypeLiberalArts Type = "liberal-arts"
	TypeResearch    Type = "research"
	TypeTechnical   Type = "technical"
	TypeBusiness    Type = "business"
	TypeOther       Type = "other"
)

var Types = []Type{TypeLiberalArts, TypeResearch, TypeTechnical, TypeBusiness, TypeOther}

func (t Type) Valid() bool {
	for _, typ := range Types {
		if t == typ {
			return true
		}
	}
	return false
}

type College struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            Type      `json:"type"`
	Values          []string  `json:"values"`
	Characteristics []string  `json:"characteristics"`
	CreatedAt       time.Time `json:"-"`
}

// NewCollege contains information needed to find or create a College.
type NewCollege struct {
	Name            string   `json:"name" validate:"required,notblank"`
	Type            Type     `json:"type" validate:"omitempty,collegetype"`
	Values          []string `json:"values"`
	Characteristics []string `json:"characteristics"`
}

func (nc *NewCollege) Clean() {
	nc.Name = core.CleanString(nc.Name)
	if nc.Type == "" {
		nc.Type = TypeOther
	}
	nc.Values = core.CleanStrings(nc.Values)
	nc.Characteristics = core.CleanStrings(nc.Characteristics)
}
