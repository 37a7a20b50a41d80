package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/recomendo/core"
)

const orderingParam = "ordering"

// bindOrdering reads "?ordering=field" or "?ordering=-field" (descending).
// Only the first field of a comma separated list is used.
func bindOrdering(ctx echo.Context) core.DBOrdering {
	val := strings.TrimSpace(ctx.QueryParam(orderingParam))
	if val == "" {
		return core.DBOrdering{}
	}
	field := strings.TrimSpace(strings.SplitN(val, ",", 2)[0])
	descending := strings.HasPrefix(field, "-")
	if descending {
		field = field[1:] // drop "-"
	}
	return core.DBOrdering{Field: field, Ascending: !descending}
}
