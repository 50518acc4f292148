// Package session holds the diff currently shown by the viewer and the user's place in it,
// keeping both in the persisted state so a restart resumes where the user left off.
package session

import (
	"math"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/lundberg/patchview/internal/diff"
	"github.com/lundberg/patchview/internal/highlight"
	"github.com/lundberg/patchview/internal/patch"
	"github.com/lundberg/patchview/internal/state"
	"github.com/lundberg/patchview/internal/tree"
)

var (
	ErrEmptyInput  = errors.New("empty input")
	ErrUnparseable = errors.New("unparseable diff")
	ErrNoFiles     = errors.New("no file patches")
	ErrUnknownFile = errors.New("unknown file")
)

// Status is what the UI needs to lay itself out.
type Status struct {
	Loaded            bool               `json:"loaded"`
	FileCount         int                `json:"fileCount"`
	SelectedFileID    string             `json:"selectedFileId"`
	Expanded          []string           `json:"expanded"`
	ScrollPositions   map[string]float64 `json:"scrollPositions"`
	FileTreeScrollTop float64            `json:"fileTreeScrollTop"`
	Theme             string             `json:"theme"`
	FontScale         float64            `json:"fontScale"`
	WordWrap          bool               `json:"wordWrap"`
}

// FileView is one file prepared for display. Tokens is nil when highlighting failed or the
// file is binary. Edits[h] lists the intra-line edits of hunk h.
type FileView struct {
	File      diff.File            `json:"file"`
	Hunks     []diff.ViewHunk      `json:"hunks"`
	Language  string               `json:"language"`
	Tokens    *highlight.Tokens    `json:"tokens"`
	Edits     [][]diff.ChangeEdits `json:"edits"`
	ScrollTop float64              `json:"scrollTop"`
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	state  *state.State
	opts   patch.Options
	result *diff.Result
	snap   state.Snapshot
}

// New returns an empty session persisting to st. Call Restore to pick up a previous run.
func New(st *state.State, opts patch.Options) *Session {
	return &Session{
		state: st,
		opts:  opts,
		snap: state.Snapshot{
			ScrollPositions: map[string]float64{},
			Theme:           state.DefaultTheme,
			FontScale:       state.DefaultFontScale,
		},
	}
}

// Restore reads the persisted state and re-parses the stored diff. A stored diff that no
// longer parses, or has no files, leaves the session empty. The stored selection is kept
// only if that file still exists. Only store failures are returned.
func (s *Session) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.state.Load()
	if err != nil {
		return err
	}
	s.snap = snap
	s.result = nil

	if strings.TrimSpace(snap.RawText) == "" {
		return nil
	}
	result, err := diff.ParseTextWith(s.opts, snap.RawText)
	if err != nil || result.Empty() {
		return nil
	}
	s.result = result

	if _, ok := result.File(snap.SelectedFileID); !ok {
		s.snap.SelectedFileID = result.Files[0].ID
		return s.state.SetSelectedFileID(s.snap.SelectedFileID)
	}
	return nil
}

// Load parses text and makes it the current diff, selecting its first file and clearing
// scroll offsets. On error the current diff is left unchanged.
func (s *Session) Load(text string) (*diff.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	result, err := diff.ParseTextWith(s.opts, text)
	if err != nil {
		return nil, errors.Wrapf(ErrUnparseable, "%v", err)
	}
	if result.Empty() {
		return nil, ErrNoFiles
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	selected := result.Files[0].ID
	if err := s.state.SaveDiff(text, selected); err != nil {
		return nil, err
	}
	s.result = result
	s.snap.RawText = text
	s.snap.SelectedFileID = selected
	s.snap.ScrollPositions = map[string]float64{}
	s.snap.FileTreeScrollTop = 0
	return result, nil
}

// Reset forgets the current diff. Theme, font scale and word wrap are kept.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.ClearDiff(); err != nil {
		return err
	}
	s.result = nil
	s.snap.RawText = ""
	s.snap.SelectedFileID = ""
	s.snap.ScrollPositions = map[string]float64{}
	s.snap.FileTreeScrollTop = 0
	return nil
}

// Loaded reports whether a diff is shown.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

// RawText is the text of the current diff.
func (s *Session) RawText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.RawText
}

// Files returns the current diff's files in input order, or nil when nothing is loaded.
func (s *Session) Files() []diff.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	return s.result.Files
}

// Tree returns the file tree of the current diff.
func (s *Session) Tree() *tree.Node {
	return tree.Build(s.Files())
}

// Status reports the session for the UI.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Loaded:            s.result != nil,
		SelectedFileID:    s.snap.SelectedFileID,
		ScrollPositions:   lo.Assign(s.snap.ScrollPositions),
		FileTreeScrollTop: s.snap.FileTreeScrollTop,
		Theme:             s.snap.Theme,
		FontScale:         s.snap.FontScale,
		WordWrap:          s.snap.WordWrap,
		Expanded:          []string{},
	}
	if s.result != nil {
		st.FileCount = len(s.result.Files)
		if f, ok := s.result.File(s.snap.SelectedFileID); ok {
			st.Expanded = append(st.Expanded, tree.Ancestors(tree.DisplayPath(f))...)
		}
	}
	return st
}

// Select makes id the selected file.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.result.File(id); !ok {
		return errors.Wrapf(ErrUnknownFile, "%q", id)
	}
	if err := s.state.SetSelectedFileID(id); err != nil {
		return err
	}
	s.snap.SelectedFileID = id
	return nil
}

// SetScroll records how far the diff of file id is scrolled.
func (s *Session) SetScroll(id string, offset float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.result.File(id); !ok {
		return errors.Wrapf(ErrUnknownFile, "%q", id)
	}
	positions, err := s.state.SetScroll(id, offset)
	if err != nil {
		return err
	}
	s.snap.ScrollPositions = positions
	return nil
}

// SetTreeScroll records how far the file tree is scrolled.
func (s *Session) SetTreeScroll(offset float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.SetFileTreeScrollTop(offset); err != nil {
		return err
	}
	s.snap.FileTreeScrollTop = offset
	return nil
}

// IncreaseFont grows the diff font by one step and returns the new scale.
func (s *Session) IncreaseFont() (float64, error) {
	return s.stepFont(state.FontScaleStep)
}

// DecreaseFont shrinks the diff font by one step and returns the new scale.
func (s *Session) DecreaseFont() (float64, error) {
	return s.stepFont(-state.FontScaleStep)
}

func (s *Session) stepFont(delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := math.Round((s.snap.FontScale+delta)*100) / 100
	scale, err := s.state.SetFontScale(next)
	if err != nil {
		return s.snap.FontScale, err
	}
	s.snap.FontScale = scale
	return scale, nil
}

// ToggleWordWrap flips word wrap and returns the new value.
func (s *Session) ToggleWordWrap() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wrap := !s.snap.WordWrap
	if err := s.state.SetWordWrap(wrap); err != nil {
		return s.snap.WordWrap, err
	}
	s.snap.WordWrap = wrap
	return wrap, nil
}

// View prepares file id for display: its view hunks, syntax tokens and intra-line edits.
func (s *Session) View(id string) (*FileView, error) {
	s.mu.Lock()
	f, ok := s.result.File(id)
	var hunks []diff.ViewHunk
	if ok {
		hunks = s.result.ViewHunksByID[id]
	}
	scrollTop := s.snap.ScrollPositions[id]
	s.mu.Unlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownFile, "%q", id)
	}
	if hunks == nil {
		hunks = []diff.ViewHunk{}
	}

	view := &FileView{
		File:      f,
		Hunks:     hunks,
		Language:  highlight.LanguageForPath(f.DisplayPath()),
		ScrollTop: scrollTop,
		Edits: lo.Map(hunks, func(h diff.ViewHunk, _ int) []diff.ChangeEdits {
			return diff.Edits(h)
		}),
	}
	if !f.IsBinary {
		view.Tokens = highlight.TokenizeWithFallback(hunks, view.Language)
	}
	return view, nil
}
