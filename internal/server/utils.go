package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/lundberg/patchview/internal/session"
)

// Messages shown to the user when a diff cannot be loaded.
const (
	msgEmptyInput  = "Add a diff before loading."
	msgNoFiles     = "No file patches found. Paste a GitLab unified diff."
	msgUnparseable = "Unable to parse diff. Ensure it is a unified diff from GitLab."
)

var (
	errNoRepo     = errors.New("no git repository available")
	errBadRequest = errors.New("bad request")
)

func sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgEmptyInput})
	case errors.Is(err, session.ErrNoFiles):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFiles})
	case errors.Is(err, session.ErrUnparseable):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgUnparseable})
	case errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrUnknownFile), errors.Is(err, errNoRepo):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func get(f func(c *gin.Context) (any, error)) func(c *gin.Context) {
	return func(c *gin.Context) {
		result, err := f(c)
		if err != nil {
			sendError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getP[P any](f func(*P) (any, error)) func(c *gin.Context) {
	return func(c *gin.Context) {
		var params P

		err := c.ShouldBindQuery(&params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := f(&params)
		if err != nil {
			sendError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func putP[P any](f func(*P) (any, error)) func(c *gin.Context) {
	return func(c *gin.Context) {
		var params P

		err := c.ShouldBindJSON(&params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := f(&params)
		if err != nil {
			sendError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
