// Package server exposes the session over a JSON API and serves the web UI.
package server

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lundberg/patchview/internal/console"
	"github.com/lundberg/patchview/internal/git"
	"github.com/lundberg/patchview/internal/highlight"
	"github.com/lundberg/patchview/internal/session"
)

const defaultCommits = 50

// Options tune the server. The zero value is usable.
type Options struct {
	// Commits is how many commits /api/commits lists.
	Commits int
	// Style is the chroma style served as /api/highlight.css.
	Style string
	// Base, Target and MergeBase are the defaults of /api/git-diff.
	Base      string
	Target    string
	MergeBase bool
}

// Server is the HTTP front of a session.
type Server struct {
	opts    Options
	session *session.Session
	repo    *git.Repo
	assets  fs.FS
	console console.Console
	engine  *gin.Engine
}

// New returns a server for sess. repo may be nil, in which case the git endpoints report that
// no repository is available.
func New(sess *session.Session, repo *git.Repo, assets fs.FS, c console.Console, opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Commits <= 0 {
		opts.Commits = defaultCommits
	}
	if opts.Style == "" {
		opts.Style = highlight.DefaultStyle
	}
	if c == nil {
		c = console.Discard()
	}

	s := &Server{
		opts:    *opts,
		session: sess,
		repo:    repo,
		assets:  assets,
		console: c,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the http.Handler serving API and UI.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logRequests(s.console))

	s.initDiff(r)
	s.initFiles(r)
	s.initSettings(r)
	s.initGit(r)

	files := http.FileServerFS(s.assets)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

func logRequests(out console.Console) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		out.Printf("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
