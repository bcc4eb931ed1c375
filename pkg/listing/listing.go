// Copyright 2025 Querulantenkind
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package listing selects the files a rename batch operates on: a flat
// directory listing or a glob match, ordered by a configurable sort. It never
// recurses into subdirectories; its output is just the ordered source list
// the planner consumes.
package listing

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBadPattern  = errors.Base("invalid glob pattern")
	ErrNotADir     = errors.Base("not a directory")
	ErrUnknownSort = errors.Base("unknown sort order")
)

// 🔀 SortOrder fixes the input order of the batch, which numbering and other
// index-dependent transforms observe
type SortOrder int

const (
	SortName SortOrder = iota
	SortModified
	SortSize
)

func (s SortOrder) String() string {
	switch s {
	case SortModified:
		return "modified"
	case SortSize:
		return "size"
	default:
		return "name"
	}
}

// ParseSortOrder resolves a user-supplied sort order name
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(s) {
	case "name", "n", "":
		return SortName, nil
	case "modified", "mtime", "m", "date":
		return SortModified, nil
	case "size", "s":
		return SortSize, nil
	default:
		return 0, errors.Errorf("%w: %q", ErrUnknownSort, s)
	}
}

// 📄 Entry is one selected file
type Entry struct {
	Path    string // full path, dir-joined
	Name    string // filename component
	Size    int64
	ModTime time.Time
}

// 🔧 Options controls selection
type Options struct {
	// Dir is the directory to list. Defaults to ".".
	Dir string
	// Pattern is an optional glob (doublestar syntax) matched against
	// filenames within Dir. Empty means every file.
	Pattern string
	// Sort fixes the output order.
	Sort SortOrder
	// IncludeHidden keeps dot-files, which are skipped by default.
	IncludeHidden bool
}

// 🎯 List returns the files in opts.Dir matching opts.Pattern, sorted by
// opts.Sort. Directories are always excluded; the engine renames files only.
func List(ctx context.Context, opts Options) ([]Entry, error) {
	logger := zerolog.Ctx(ctx)

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: %s", ErrNotADir, dir)
	}

	names, err := matchNames(dir, opts)
	if err != nil {
		return nil, err
	}

	entries, err := statAll(ctx, dir, names)
	if err != nil {
		return nil, err
	}

	sortEntries(entries, opts.Sort)

	logger.Debug().
		Str("dir", dir).
		Str("pattern", opts.Pattern).
		Int("files", len(entries)).
		Msg("listed files")

	return entries, nil
}

// Paths returns just the path column of entries, in order
func Paths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

// matchNames returns the filenames in dir selected by opts, unsorted
func matchNames(dir string, opts Options) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", dir, err)
	}

	if opts.Pattern != "" && !doublestar.ValidatePattern(opts.Pattern) {
		return nil, errors.Errorf("%w: %s", ErrBadPattern, opts.Pattern)
	}

	var names []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if opts.Pattern != "" {
			matched, err := doublestar.Match(opts.Pattern, name)
			if err != nil {
				return nil, errors.Errorf("%w: %s", ErrBadPattern, opts.Pattern)
			}
			if !matched {
				continue
			}
		}
		names = append(names, name)
	}
	return names, nil
}

// statAll gathers file metadata concurrently. Output index matches input
// index, so ordering stays deterministic regardless of completion order.
func statAll(ctx context.Context, dir string, names []string) ([]Entry, error) {
	entries := make([]Entry, len(names))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			info, err := os.Lstat(filepath.Join(dir, name))
			if err != nil {
				return errors.Errorf("stat %s: %w", name, err)
			}
			entries[i] = Entry{
				Path:    filepath.Join(dir, name),
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// sortEntries orders entries in place; name is always the tiebreaker so the
// order is total and stable across runs
func sortEntries(entries []Entry, order SortOrder) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch order {
		case SortModified:
			if !a.ModTime.Equal(b.ModTime) {
				return a.ModTime.Before(b.ModTime)
			}
		case SortSize:
			if a.Size != b.Size {
				return a.Size < b.Size
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}
