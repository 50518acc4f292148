// Package git reads diff text and history from a local repository through the git binary.
package git

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNoMainBranch = errors.New("neither 'main' nor 'master' branch found")
	ErrNotARepo     = errors.New("not a git repository")
)

// Commit is one entry of the log.
type Commit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// Repo is a working copy at Dir.
type Repo struct {
	Dir string
}

// NewRepo returns the repository at dir.
func NewRepo(dir string) *Repo {
	return &Repo{Dir: dir}
}

// Open returns the repository containing dir, or ErrNotARepo.
func Open(ctx context.Context, dir string) (*Repo, error) {
	r := NewRepo(dir)
	top, err := r.git(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, errors.Wrapf(ErrNotARepo, "%s", dir)
	}
	return NewRepo(top), nil
}

// git runs a git command in the repo directory and returns trimmed output.
func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(err, "git %s\n%s", strings.Join(args, " "), out)
	}
	return strings.TrimSpace(string(out)), nil
}

// GetMainBranch returns "main" or "master", whichever exists as a local branch.
func (r *Repo) GetMainBranch(ctx context.Context) (string, error) {
	for _, branch := range []string{"main", "master"} {
		if _, err := r.git(ctx, "rev-parse", "--verify", "refs/heads/"+branch); err == nil {
			return branch, nil
		}
	}
	return "", ErrNoMainBranch
}

// GetMergeBase returns the merge-base commit of two refs.
func (r *Repo) GetMergeBase(ctx context.Context, ref1, ref2 string) (string, error) {
	if err := validateRefs(ref1, ref2); err != nil {
		return "", err
	}
	return r.git(ctx, "merge-base", ref1, ref2)
}

// GetDiff returns the unified diff between two refs. An empty target diffs base against the
// working tree (staged and unstaged changes).
func (r *Repo) GetDiff(ctx context.Context, base, target string) (string, error) {
	if err := validateRefs(base, target); err != nil {
		return "", err
	}
	args := []string{"diff", "--no-ext-diff", "--no-color", base}
	if target != "" {
		args = append(args, target)
	}
	return r.git(ctx, args...)
}

// GetBranchDiff diffs target against where it forked from base: the merge-base of the two
// when mergeBase is set, else base itself. An empty base means the main branch.
func (r *Repo) GetBranchDiff(ctx context.Context, base, target string, mergeBase bool) (string, error) {
	if base == "" {
		b, err := r.GetMainBranch(ctx)
		if err != nil {
			return "", err
		}
		base = b
	}
	if mergeBase {
		head := target
		if head == "" {
			head = "HEAD"
		}
		mb, err := r.GetMergeBase(ctx, base, head)
		if err != nil {
			return "", err
		}
		base = mb
	}
	return r.GetDiff(ctx, base, target)
}

// GetCommits returns the most recent n commits of the current branch, newest first.
func (r *Repo) GetCommits(ctx context.Context, n int) ([]Commit, error) {
	const sep = "---COMMIT_SEP---"
	format := strings.Join([]string{"%H", "%s", "%an", "%ai"}, sep)
	out, err := r.git(ctx, "log", "--format="+format, "-n", strconv.Itoa(n))
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, sep, 4)
		if len(parts) != 4 {
			continue
		}
		commits = append(commits, Commit{
			Hash:    parts[0],
			Message: parts[1],
			Author:  parts[2],
			Date:    parts[3],
		})
	}
	return commits, nil
}

// validateRefs rejects refs git would read as options.
func validateRefs(refs ...string) error {
	for _, ref := range refs {
		if strings.HasPrefix(ref, "-") {
			return errors.Errorf("invalid ref %q: must not start with '-'", ref)
		}
	}
	return nil
}
