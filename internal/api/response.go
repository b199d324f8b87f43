// ABOUTME: JSON error envelope and the mapping from domain errors to HTTP status codes.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/study/internal/importer"
	"github.com/harperreed/study/internal/storage"
	"github.com/harperreed/study/internal/tracker"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: code},
	})
}

// fail maps err onto a status code.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalid), errors.Is(err, importer.ErrMissingColumn):
		respondError(c, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, storage.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, storage.ErrConflict):
		respondError(c, http.StatusConflict, "conflict", err)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal", err)
	}
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "bad_request", err)
}

// pathID parses the :id route parameter, answering 400 itself when it is malformed.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, errors.New("invalid id"))
		return 0, false
	}
	return id, true
}

// queryInt64 parses an optional integer query parameter.
func queryInt64(c *gin.Context, key string) (*int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, errors.New("invalid "+key))
		return nil, false
	}
	return &v, true
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
