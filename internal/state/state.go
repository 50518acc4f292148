// Package state persists the viewer's state (loaded diff, selection, scroll offsets and
// display settings) under fixed keys of a key-value Store, so it survives restarts.
//
// Stored values are validated when read. A value that does not decode to the expected shape
// is ignored and its default is used instead.
package state

import (
	"encoding/json"
	"math"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// Keys under which state is stored.
const (
	KeyRawText           = "diff-viewer:raw-text"
	KeySelectedFileID    = "diff-viewer:selected-file"
	KeyScrollPositions   = "diff-viewer:scroll-positions"
	KeyFileTreeScrollTop = "diff-viewer:file-tree-scroll"
	KeyTheme             = "diff-viewer:theme"
	KeyFontScale         = "diff-viewer:diff-font-scale"
	KeyWordWrap          = "diff-viewer:diff-word-wrap"
)

const (
	DefaultTheme     = "dark"
	DefaultFontScale = 1.0
	MinFontScale     = 0.7
	MaxFontScale     = 1.4
	FontScaleStep    = 0.1
	DefaultWordWrap  = false
)

// Snapshot is the decoded state at one point in time.
type Snapshot struct {
	RawText           string             `json:"-"`
	SelectedFileID    string             `json:"selectedFileId"`
	ScrollPositions   map[string]float64 `json:"scrollPositions"`
	FileTreeScrollTop float64            `json:"fileTreeScrollTop"`
	Theme             string             `json:"theme"`
	FontScale         float64            `json:"fontScale"`
	WordWrap          bool               `json:"wordWrap"`
}

// State reads and writes viewer state. It is safe for concurrent use; read-modify-write
// updates (scroll positions) are serialized.
type State struct {
	mu    sync.Mutex
	store Store
}

// New returns a State backed by store.
func New(store Store) *State {
	return &State{store: store}
}

// Load reads every key. Missing or invalid values take their defaults; a missing theme is
// written back as DefaultTheme. Only store failures are returned as errors.
func (s *State) Load() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := map[string]string{}
	for _, key := range []string{KeyRawText, KeySelectedFileID, KeyScrollPositions, KeyFileTreeScrollTop, KeyTheme, KeyFontScale, KeyWordWrap} {
		v, ok, err := s.store.Get(key)
		if err != nil {
			return Snapshot{}, err
		}
		if ok {
			values[key] = v
		}
	}

	theme, ok := values[KeyTheme]
	if !ok || theme == "" {
		theme = DefaultTheme
		if err := s.store.Set(KeyTheme, theme); err != nil {
			return Snapshot{}, err
		}
	}

	return Snapshot{
		RawText:           values[KeyRawText],
		SelectedFileID:    values[KeySelectedFileID],
		ScrollPositions:   DecodeScrollPositions(values[KeyScrollPositions]),
		FileTreeScrollTop: DecodeOffset(values[KeyFileTreeScrollTop]),
		Theme:             theme,
		FontScale:         DecodeFontScale(values[KeyFontScale]),
		WordWrap:          DecodeWordWrap(values[KeyWordWrap]),
	}, nil
}

// SaveDiff stores newly loaded diff text with its initial selection and clears scroll offsets.
func (s *State) SaveDiff(rawText, selectedFileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kv := range [][2]string{
		{KeyScrollPositions, "{}"},
		{KeyFileTreeScrollTop, "0"},
		{KeyRawText, rawText},
		{KeySelectedFileID, selectedFileID},
	} {
		if err := s.store.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// ClearDiff forgets the loaded diff, selection and scroll offsets. Display settings stay.
func (s *State) ClearDiff() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(KeyRawText, KeySelectedFileID, KeyScrollPositions, KeyFileTreeScrollTop)
}

// SetSelectedFileID stores the selected file.
func (s *State) SetSelectedFileID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Set(KeySelectedFileID, id)
}

// SetScroll stores the scroll offset of one file, keeping the others.
func (s *State) SetScroll(fileID string, offset float64) (map[string]float64, error) {
	if !finite(offset) {
		return nil, errors.Errorf("invalid scroll offset %v", offset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, _, err := s.store.Get(KeyScrollPositions)
	if err != nil {
		return nil, err
	}
	positions := DecodeScrollPositions(raw)
	positions[fileID] = offset

	encoded, err := json.Marshal(positions)
	if err != nil {
		return nil, errors.Wrap(err, "encoding scroll positions")
	}
	if err := s.store.Set(KeyScrollPositions, string(encoded)); err != nil {
		return nil, err
	}
	return positions, nil
}

// SetFileTreeScrollTop stores the file tree's scroll offset.
func (s *State) SetFileTreeScrollTop(offset float64) error {
	if !finite(offset) {
		return errors.Errorf("invalid scroll offset %v", offset)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Set(KeyFileTreeScrollTop, formatFloat(offset))
}

// SetFontScale stores the font scale clamped to [MinFontScale, MaxFontScale] and returns the
// stored value.
func (s *State) SetFontScale(scale float64) (float64, error) {
	if !finite(scale) {
		return 0, errors.Errorf("invalid font scale %v", scale)
	}
	scale = ClampFontScale(scale)

	s.mu.Lock()
	defer s.mu.Unlock()
	return scale, s.store.Set(KeyFontScale, formatFloat(scale))
}

// SetWordWrap stores the word wrap flag.
func (s *State) SetWordWrap(wrap bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Set(KeyWordWrap, strconv.FormatBool(wrap))
}

// DecodeScrollPositions decodes a JSON object of finite numbers, or returns an empty map.
func DecodeScrollPositions(raw string) map[string]float64 {
	positions := map[string]float64{}
	if raw == "" {
		return positions
	}
	var decoded map[string]float64
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil || decoded == nil {
		return positions
	}
	for _, v := range decoded {
		if !finite(v) {
			return positions
		}
	}
	return decoded
}

// DecodeOffset decodes a finite number, or returns 0.
func DecodeOffset(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return 0
	}
	return v
}

// DecodeFontScale decodes a finite number clamped to the allowed range, or returns
// DefaultFontScale.
func DecodeFontScale(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return DefaultFontScale
	}
	return ClampFontScale(v)
}

// DecodeWordWrap is true only for "true".
func DecodeWordWrap(raw string) bool {
	if raw == "" {
		return DefaultWordWrap
	}
	return raw == "true"
}

// ClampFontScale limits scale to [MinFontScale, MaxFontScale].
func ClampFontScale(scale float64) float64 {
	return math.Min(math.Max(scale, MinFontScale), MaxFontScale)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
