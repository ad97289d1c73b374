package api

import (
	"errors"
	"log"

	"autoservice/config"
	"autoservice/service"

	"github.com/gin-gonic/gin"
)

// respondError 按错误类别返回 404 / 409 / 400，其余视为存储错误返回 500
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		InternalError(c, config.SafeErrorMessage(err, fallback))
	}
}
