package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Boxcall/internal/auth"
	"github.com/dkeye/Boxcall/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(msg string) *apiError {
	return &apiError{status: http.StatusBadRequest, message: msg}
}

// fail writes the error body and aborts the chain.
func fail(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"
	var ae *apiError
	switch {
	case errors.As(err, &ae):
		status, msg = ae.status, ae.message
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Wrong credentials"
	case errors.Is(err, auth.ErrInvalidToken):
		status, msg = http.StatusBadRequest, "Invalid token"
	case errors.Is(err, store.ErrAlreadyExists):
		status, msg = http.StatusConflict, "User already exists"
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, "Not found"
	case errors.Is(err, store.ErrForbidden):
		status, msg = http.StatusForbidden, "Forbidden"
	default:
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
