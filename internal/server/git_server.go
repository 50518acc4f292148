package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/lundberg/patchview/internal/git"
)

type GitDiffParams struct {
	Base      string `json:"base"`
	Target    string `json:"target"`
	MergeBase *bool  `json:"mergeBase"`
}

func (s *Server) initGit(r *gin.Engine) {
	r.GET("/api/commits", get(s.commitsList))
	r.POST("/api/git-diff", get(s.gitDiffLoad))
}

func (s *Server) commitsList(c *gin.Context) (any, error) {
	if s.repo == nil {
		return []git.Commit{}, nil
	}

	commits, err := s.repo.GetCommits(c.Request.Context(), s.opts.Commits)
	if err != nil {
		return nil, err
	}
	if commits == nil {
		commits = []git.Commit{}
	}
	return commits, nil
}

func (s *Server) gitDiffLoad(c *gin.Context) (any, error) {
	if s.repo == nil {
		return nil, errNoRepo
	}

	params := GitDiffParams{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			return nil, errors.Wrap(errBadRequest, err.Error())
		}
	}
	if params.Base == "" {
		params.Base = s.opts.Base
	}
	if params.Target == "" {
		params.Target = s.opts.Target
	}
	mergeBase := s.opts.MergeBase
	if params.MergeBase != nil {
		mergeBase = *params.MergeBase
	}

	text, err := s.repo.GetBranchDiff(c.Request.Context(), params.Base, params.Target, mergeBase)
	if err != nil {
		return nil, errors.Wrap(errBadRequest, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(errBadRequest, "no changes between the given refs")
	}

	result, err := s.session.Load(text)
	if err != nil {
		return nil, err
	}

	s.console.Printf("Loaded git diff with %d files", len(result.Files))
	return s.loaded(), nil
}
