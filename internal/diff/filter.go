package diff

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Filter keeps the files whose display path matches the doublestar pattern ("**/*.go",
// "internal/{diff,patch}/**"). An empty pattern keeps every file.
func Filter(files []File, pattern string) ([]File, error) {
	if pattern == "" {
		return files, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid file pattern %q", pattern)
	}

	return lo.Filter(files, func(f File, _ int) bool {
		ok, _ := doublestar.Match(pattern, f.DisplayPath())
		return ok
	}), nil
}
