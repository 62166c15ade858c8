// Package handler implements the HTTP handlers of the recipe API and the
// admin pages.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/recipebox/internal/accounts"
)

var errInvalidID = errors.New("invalid id")

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errInvalidID
	}
	id, err := safecast.Convert[uint](n)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// currentUserID returns the id stored by the auth middleware.
func currentUserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func internalError(c *gin.Context, msg string, err error) {
	log.Error(msg, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// writeAccountError maps an accounts error to a response. It reports false if
// err was nil.
func writeAccountError(c *gin.Context, msg string, err error) bool {
	if err == nil {
		return false
	}
	var verr *accounts.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, accounts.ErrInvalidCredentials):
		badRequest(c, err.Error())
	default:
		internalError(c, msg, err)
	}
	return true
}
