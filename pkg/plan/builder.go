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

package plan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Querulantenkind/rnm/pkg/transform"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Build-time errors. Any of these means no plan was produced and the
// filesystem was not touched.
var (
	ErrNoSources       = errors.Base("no source files given")
	ErrDuplicateSource = errors.Base("duplicate source path")
	ErrSourceNotFound  = errors.Base("source file does not exist")
	ErrSourceIsDir     = errors.Base("source path is a directory")
	ErrInvalidTarget   = errors.Base("transform produced an invalid filename")
)

// 🏗️ Build applies tr to every source in input order and returns a Plan with
// one direct rename op per changed file plus all detected conflicts. Sources
// must be unique, existing regular files; violations are build-time errors
// and no plan is returned. Build never mutates the filesystem.
func Build(ctx context.Context, sources []string, tr *transform.Transform) (*Plan, error) {
	logger := zerolog.Ctx(ctx)

	if len(sources) == 0 {
		return nil, errors.Errorf("%w", ErrNoSources)
	}

	// Validate sources and compute targets in input order.
	seen := make(map[string]bool, len(sources))
	ops := make([]RenameOp, 0, len(sources))

	for i, src := range sources {
		src = filepath.Clean(src)
		if seen[src] {
			return nil, errors.Errorf("%w: %s", ErrDuplicateSource, src)
		}
		seen[src] = true

		info, err := os.Lstat(src)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Errorf("%w: %s", ErrSourceNotFound, src)
			}
			return nil, errors.Errorf("checking source %s: %w", src, err)
		}
		if info.IsDir() {
			return nil, errors.Errorf("%w: %s", ErrSourceIsDir, src)
		}

		name := filepath.Base(src)
		newName, err := tr.Apply(name, transform.FileContext{Index: i, ModTime: info.ModTime()})
		if err != nil {
			return nil, errors.Errorf("transforming %s: %w", name, err)
		}

		if newName == "" {
			return nil, errors.Errorf("%w: %s maps to an empty name", ErrInvalidTarget, name)
		}
		if strings.ContainsAny(newName, `/\`) {
			return nil, errors.Errorf("%w: %s maps to %q", ErrInvalidTarget, name, newName)
		}

		target := filepath.Join(filepath.Dir(src), newName)
		if target == src {
			// Identity rename, nothing to do for this file.
			continue
		}

		ops = append(ops, RenameOp{Source: src, Target: target, Stage: StageDirect})
	}

	p := &Plan{Ops: ops}
	p.Conflicts = detectConflicts(ops)

	logger.Debug().
		Int("sources", len(sources)).
		Int("ops", len(p.Ops)).
		Int("conflicts", len(p.Conflicts)).
		Msg("built rename plan")

	return p, nil
}

// detectConflicts finds duplicate targets, external collisions and rename
// cycles among ops. Ops are inspected in order so conflict output is
// deterministic for a given input.
func detectConflicts(ops []RenameOp) []Conflict {
	var conflicts []Conflict

	// targetOf maps each vacated source to the path it moves to. A target
	// equal to some source is a chain or cycle, not an external collision.
	targetOf := make(map[string]string, len(ops))
	for _, op := range ops {
		targetOf[op.Source] = op.Target
	}

	// Duplicate targets: ambiguous ownership, always unresolvable.
	claimed := make(map[string]int, len(ops))
	dupSet := make(map[string]bool)
	for _, op := range ops {
		claimed[op.Target]++
		if claimed[op.Target] > 1 {
			dupSet[op.Target] = true
		}
	}
	if len(dupSet) > 0 {
		targets := make([]string, 0, len(dupSet))
		for t := range dupSet {
			targets = append(targets, t)
		}
		sort.Strings(targets)
		conflicts = append(conflicts, Conflict{Kind: ConflictDuplicateTarget, Targets: targets})
	}

	// External collisions: the target exists on disk and nothing in this
	// plan vacates it.
	for _, op := range ops {
		if _, isVacated := targetOf[op.Target]; isVacated {
			continue
		}
		if tinfo, err := os.Lstat(op.Target); err == nil {
			// On case-insensitive filesystems a case-only rename stats its
			// own source; that is not a collision. A distinct file that
			// merely compares case-equal still is one, so the check is
			// file identity, not name folding.
			if sinfo, serr := os.Lstat(op.Source); serr == nil && os.SameFile(sinfo, tinfo) {
				continue
			}
			conflicts = append(conflicts, Conflict{Kind: ConflictExternalCollision, Target: op.Target})
		}
	}

	// Cycles: follow source→target links while the target is itself a
	// source. Returning to the current walk's path closes a cycle.
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(ops))

	for _, op := range ops {
		if state[op.Source] != unvisited {
			continue
		}

		var path []string
		cur := op.Source
		for {
			state[cur] = onPath
			path = append(path, cur)

			next := targetOf[cur]
			if _, isSource := targetOf[next]; !isSource {
				// Chain ends at a path nothing in the plan vacates.
				break
			}
			if state[next] == onPath {
				// Closed a cycle; members are the path from next onward.
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				conflicts = append(conflicts, Conflict{
					Kind:  ConflictCycle,
					Paths: append([]string(nil), path[start:]...),
				})
				break
			}
			if state[next] == done {
				break
			}
			cur = next
		}

		for _, p := range path {
			state[p] = done
		}
	}

	return conflicts
}
