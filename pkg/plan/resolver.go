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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsafeOrder means the resolver produced an op sequence that would claim
// a still-occupied path. It indicates a resolver bug, not a caller error.
var ErrUnsafeOrder = errors.Base("resolved plan violates the occupancy invariant")

// 🧩 Resolve consumes p's cycle conflicts and orders its ops into a safe
// execution sequence: every cycle is rewritten into a temporary-name stage
// followed by a final stage, and chains are ordered so a target path is
// always vacated before it is claimed. Ties between independent ops preserve
// input order. Duplicate-target and external-collision conflicts cannot be
// fixed by ordering and are carried over; such plans stay non-executable.
//
// The input plan is not modified; the returned plan is ready for the
// executor when its Conflicts list is empty.
func Resolve(ctx context.Context, p *Plan) (*Plan, error) {
	logger := zerolog.Ctx(ctx)

	resolved := &Plan{Resolved: true}
	var cycles []Conflict
	for _, c := range p.Conflicts {
		if c.Kind == ConflictCycle {
			cycles = append(cycles, c)
		} else {
			resolved.Conflicts = append(resolved.Conflicts, c)
		}
	}

	// With ambiguous target ownership there is no meaningful order; return
	// the plan as-is, blocked by its conflicts.
	for _, c := range resolved.Conflicts {
		if c.Kind == ConflictDuplicateTarget {
			blocked := &Plan{Ops: append([]RenameOp(nil), p.Ops...), Conflicts: append([]Conflict(nil), p.Conflicts...)}
			return blocked, nil
		}
	}

	targetOf := make(map[string]string, len(p.Ops))
	for _, op := range p.Ops {
		targetOf[op.Source] = op.Target
	}

	// Paths already spoken for, so temporary names never collide in-plan.
	taken := make(map[string]bool, len(p.Ops)*2)
	for _, op := range p.Ops {
		taken[op.Source] = true
		taken[op.Target] = true
	}

	// Rewrite every cycle into rename-to-temporary ops followed by
	// rename-to-final ops. No step ever overwrites a file a later step
	// still needs.
	inCycle := make(map[string]bool)
	var temporaries, finals []RenameOp
	for _, c := range cycles {
		for _, member := range c.Paths {
			inCycle[member] = true
			tmp := tempName(member, taken)
			taken[tmp] = true
			temporaries = append(temporaries, RenameOp{Source: member, Target: tmp, Stage: StageTemporary})
			finals = append(finals, RenameOp{Source: tmp, Target: targetOf[member], Stage: StageFinal})
		}
	}

	// Order the non-cycle ops: an op may run only after the op that
	// currently occupies its target has vacated it. Kahn's algorithm with a
	// stable scan keeps independent ops in input order.
	pending := make([]RenameOp, 0, len(p.Ops))
	for _, op := range p.Ops {
		if !inCycle[op.Source] {
			pending = append(pending, op)
		}
	}

	var chains []RenameOp
	for len(pending) > 0 {
		pendingSources := make(map[string]bool, len(pending))
		for _, op := range pending {
			pendingSources[op.Source] = true
		}

		next := pending[:0]
		emitted := false
		for _, op := range pending {
			if pendingSources[op.Target] {
				// Target still occupied by a pending op's source.
				next = append(next, op)
				continue
			}
			chains = append(chains, op)
			emitted = true
		}
		if !emitted {
			// Every pending op waits on another: a cycle the builder
			// should have caught.
			return nil, errors.Errorf("%w: unbroken cycle among %d ops", ErrUnsafeOrder, len(pending))
		}
		pending = next
	}

	// Temporaries free every cycle path up front; chains and finals then
	// only claim vacated paths.
	resolved.Ops = make([]RenameOp, 0, len(temporaries)+len(chains)+len(finals))
	resolved.Ops = append(resolved.Ops, temporaries...)
	resolved.Ops = append(resolved.Ops, chains...)
	resolved.Ops = append(resolved.Ops, finals...)

	if len(resolved.Conflicts) == 0 {
		if err := verifyOrder(resolved.Ops); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Int("ops", len(resolved.Ops)).
		Int("cycles", len(cycles)).
		Int("unresolved_conflicts", len(resolved.Conflicts)).
		Msg("resolved rename plan")

	return resolved, nil
}

// verifyOrder simulates the op sequence over the set of occupied paths and
// fails if any op would claim a path that has not been vacated. This is the
// tracked (not assumed) form of the plan safety invariant.
func verifyOrder(ops []RenameOp) error {
	occupied := make(map[string]bool, len(ops))
	for _, op := range ops {
		if op.Stage != StageFinal {
			occupied[op.Source] = true
		}
	}

	claimed := make(map[string]bool, len(ops))
	for _, op := range ops {
		if occupied[op.Target] {
			return errors.Errorf("%w: %s claimed while occupied", ErrUnsafeOrder, op.Target)
		}
		if claimed[op.Target] {
			return errors.Errorf("%w: %s claimed twice", ErrUnsafeOrder, op.Target)
		}
		delete(occupied, op.Source)
		occupied[op.Target] = true
		claimed[op.Target] = true
	}
	return nil
}

// tempName derives a deterministic temporary path for source: a dot-file in
// the same directory tagged with a hash of the source path. If the candidate
// is occupied on disk or claimed in the plan, a counter is appended until a
// free name is found.
func tempName(source string, taken map[string]bool) string {
	sum := sha256.Sum256([]byte(source))
	tag := hex.EncodeToString(sum[:4])

	dir := filepath.Dir(source)
	base := filepath.Base(source)

	candidate := filepath.Join(dir, fmt.Sprintf(".%s.rnm-%s", base, tag))
	for n := 1; ; n++ {
		if !taken[candidate] {
			if _, err := os.Lstat(candidate); os.IsNotExist(err) {
				return candidate
			}
		}
		candidate = filepath.Join(dir, fmt.Sprintf(".%s.rnm-%s-%d", base, tag, n))
	}
}
