package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"rga/api/contexts"
	"rga/api/models/dtos/errors"

	"github.com/labstack/echo"
)

/*
	Echo middleware to calibrate the optional `skip` and `limit` HTTP query parameters
*/
func CalibratePagination(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.RgaContext)

		for _, param := range []struct {
			name  string
			value *int
		}{
			{"skip", &gc.Query.Skip},
			{"limit", &gc.Query.Limit},
		} {
			qp := c.QueryParam(param.name)
			if len(qp) == 0 {
				continue
			}
			// try to convert to an integer
			v, conversionErr := strconv.Atoi(qp)
			if conversionErr != nil || v < 0 {
				return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest(
					fmt.Sprintf("'%s' must be a non-negative integer, got '%s'", param.name, qp)))
			}
			*param.value = v
		}

		return next(gc)
	}
}
