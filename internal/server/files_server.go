package server

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/lundberg/patchview/internal/diff"
)

type FilesParams struct {
	Filter string `form:"filter"`
}

type SelectionParams struct {
	ID string `json:"id" binding:"required"`
}

type ScrollParams struct {
	ID     string   `json:"id" binding:"required"`
	Offset *float64 `json:"offset" binding:"required"`
}

type TreeScrollParams struct {
	Offset *float64 `json:"offset" binding:"required"`
}

func (s *Server) initFiles(r *gin.Engine) {
	// File ids contain slashes; clients escape them as %2F.
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.GET("/api/files", getP[FilesParams](s.filesList))
	r.GET("/api/files/:id", get(s.fileGet))
	r.GET("/api/tree", get(s.treeGet))
	r.PUT("/api/selection", putP[SelectionParams](s.selectionPut))
	r.PUT("/api/scroll", putP[ScrollParams](s.scrollPut))
	r.PUT("/api/tree-scroll", putP[TreeScrollParams](s.treeScrollPut))
}

func (s *Server) filesList(params *FilesParams) (any, error) {
	files, err := diff.Filter(s.session.Files(), params.Filter)
	if err != nil {
		return nil, errors.Wrap(errBadRequest, err.Error())
	}
	return toFiles(files), nil
}

func (s *Server) fileGet(c *gin.Context) (any, error) {
	return s.session.View(c.Param("id"))
}

func (s *Server) treeGet(_ *gin.Context) (any, error) {
	return toTree(s.session.Tree()), nil
}

func (s *Server) selectionPut(params *SelectionParams) (any, error) {
	if err := s.session.Select(params.ID); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

func (s *Server) scrollPut(params *ScrollParams) (any, error) {
	if err := s.session.SetScroll(params.ID, *params.Offset); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

func (s *Server) treeScrollPut(params *TreeScrollParams) (any, error) {
	if err := s.session.SetTreeScroll(*params.Offset); err != nil {
		return nil, errors.Wrap(errBadRequest, err.Error())
	}
	return gin.H{"ok": true}, nil
}
