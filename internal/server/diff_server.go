package server

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pkg/errors"
)

// maxDiffSize bounds pasted or uploaded diff text.
const maxDiffSize = 64 << 20

func (s *Server) initDiff(r *gin.Engine) {
	r.GET("/api/state", get(s.stateGet))
	r.POST("/api/diff", get(s.diffLoad))
	r.DELETE("/api/diff", get(s.diffReset))
}

func (s *Server) stateGet(_ *gin.Context) (any, error) {
	return s.session.Status(), nil
}

func (s *Server) diffLoad(c *gin.Context) (any, error) {
	text, err := readDiffText(c)
	if err != nil {
		return nil, err
	}

	result, err := s.session.Load(text)
	if err != nil {
		return nil, err
	}

	s.console.Printf("Loaded diff with %d files", len(result.Files))
	return s.loaded(), nil
}

func (s *Server) diffReset(_ *gin.Context) (any, error) {
	if err := s.session.Reset(); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

// loaded is the response to a successful load: the new status and file list.
func (s *Server) loaded() gin.H {
	return gin.H{
		"status": s.session.Status(),
		"files":  toFiles(s.session.Files()),
	}
}

// readDiffText accepts either {"text": "..."} or the diff as the raw request body.
func readDiffText(c *gin.Context) (string, error) {
	if c.ContentType() == binding.MIMEJSON {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			return "", errors.Wrap(errBadRequest, err.Error())
		}
		return body.Text, nil
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDiffSize+1))
	if err != nil {
		return "", errors.Wrap(err, "reading request body")
	}
	if len(data) > maxDiffSize {
		return "", errors.Wrap(errBadRequest, "diff too large")
	}
	return string(data), nil
}
