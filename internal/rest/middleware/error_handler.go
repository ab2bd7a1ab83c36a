package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/courselane/courselane/internal/errors"
)

// ErrorHandler converts errors attached via c.Error into the standard
// wire shape. Handlers attach domain errors and return; the status code
// comes from the error's sentinel mark.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		c.JSON(ierr.HTTPStatus(err), ierr.NewErrorResponse(err))
	}
}
