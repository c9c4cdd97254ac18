package controller

import (
	"strconv"

	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive integer path parameter, writing a 400 when it
// is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// fail logs err at a level matching its kind and writes the error response.
func fail(c *gin.Context, log *logger.Logger, msg string, err error, fields map[string]interface{}) {
	switch apperrors.KindOf(err) {
	case apperrors.KindInternal, apperrors.KindConfiguration:
		log.Error(msg, err, fields)
	default:
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["error"] = err.Error()
		log.Warn(msg, fields)
	}
	apperrors.Respond(c, err)
}
