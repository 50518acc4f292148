package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/lundberg/patchview/internal/browser"
	"github.com/lundberg/patchview/internal/cli"
	"github.com/lundberg/patchview/internal/console"
	"github.com/lundberg/patchview/internal/git"
	"github.com/lundberg/patchview/internal/server"
	"github.com/lundberg/patchview/internal/session"
	"github.com/lundberg/patchview/internal/state"
	"github.com/lundberg/patchview/web"
)

const shutdownTimeout = 5 * time.Second

func runServe(cfg *cli.Config, stdin io.Reader, stdout io.Writer) error {
	out := console.New(stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.StatePath, out)
	if err != nil {
		return err
	}
	defer store.Close()

	sess := session.New(state.New(store), parseOptions(cfg))
	if err := sess.Restore(); err != nil {
		return err
	}

	repo, err := git.Open(ctx, ".")
	if err != nil {
		repo = nil
	}

	if err := loadInitialDiff(ctx, cfg, sess, repo, stdin, out); err != nil {
		return err
	}

	// Listen first to learn the actual port when cfg.Port is 0.
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	actualPort := ln.Addr().(*net.TCPAddr).Port
	url := "http://" + net.JoinHostPort(cfg.Host, strconv.Itoa(actualPort))

	out.Printf("Listening on %s", url)
	if cfg.Host != "localhost" && cfg.Host != "127.0.0.1" {
		out.Printf("WARNING: patchview is not designed for public access. It serves diff contents without authentication.")
	}
	out.Printf("Press Ctrl+C to stop")

	if !cfg.NoOpen {
		if err := browser.Open(url); err != nil {
			out.Printf("warning: could not open browser: %v", err)
		}
	}

	srv := server.New(sess, repo, web.Assets, out, &server.Options{
		Style:     cfg.Style,
		Base:      cfg.Base,
		Target:    cfg.Target,
		MergeBase: cfg.MergeBase,
	})
	httpServer := &http.Server{Handler: srv.Handler()}

	go func() {
		<-ctx.Done()
		out.Printf("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStore(path string, out console.Console) (state.Store, error) {
	var d gorm.Dialector
	if path == cli.InMemoryState {
		d = state.WithSqliteInMemory()
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating state directory")
		}
		d = state.WithSqlite(path)
	}
	return state.NewGormStore(d, out)
}

// loadInitialDiff loads the diff named on the command line, if any, replacing the restored one.
func loadInitialDiff(ctx context.Context, cfg *cli.Config, sess *session.Session, repo *git.Repo, stdin io.Reader, out console.Console) error {
	var (
		text   string
		source string
		err    error
	)
	switch {
	case cfg.Git:
		if repo == nil {
			return git.ErrNotARepo
		}
		text, err = repo.GetBranchDiff(ctx, cfg.Base, cfg.Target, cfg.MergeBase)
		source = "git"
	case cfg.Input != "":
		text, err = readInput(cfg.Input, stdin)
		source = cfg.Input
		if source == "-" {
			source = "stdin"
		}
	default:
		if sess.Loaded() {
			out.Printf("Restored diff with %d files", len(sess.Files()))
		}
		return nil
	}
	if err != nil {
		return err
	}

	out.PushPrefix("[%s] ", source)
	defer out.PopPrefix()

	result, err := sess.Load(text)
	if err != nil {
		return errors.Wrapf(err, "loading diff from %s", source)
	}
	out.Printf("Loaded %d files", len(result.Files))
	return nil
}
