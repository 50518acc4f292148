package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/lundberg/patchview/internal/highlight"
)

func (s *Server) initSettings(r *gin.Engine) {
	r.POST("/api/settings/font/:dir", get(s.fontStep))
	r.POST("/api/settings/wrap", get(s.wrapToggle))
	r.GET("/api/highlight.css", s.highlightCSS)
}

func (s *Server) fontStep(c *gin.Context) (any, error) {
	var (
		scale float64
		err   error
	)
	switch dir := c.Param("dir"); dir {
	case "increase":
		scale, err = s.session.IncreaseFont()
	case "decrease":
		scale, err = s.session.DecreaseFont()
	default:
		return nil, errors.Wrapf(errBadRequest, "unknown direction %q", dir)
	}
	if err != nil {
		return nil, err
	}
	return gin.H{"fontScale": scale}, nil
}

func (s *Server) wrapToggle(_ *gin.Context) (any, error) {
	wrap, err := s.session.ToggleWordWrap()
	if err != nil {
		return nil, err
	}
	return gin.H{"wordWrap": wrap}, nil
}

func (s *Server) highlightCSS(c *gin.Context) {
	css, err := highlight.Stylesheet(s.opts.Style)
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}
