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
	"fmt"
	"strings"
)

// 🎬 Stage is a RenameOp's position in a multi-step execution sequence.
// Direct ops rename straight to their final name; Temporary and Final pairs
// are introduced by the resolver to break cycles safely.
type Stage int

const (
	StageDirect Stage = iota
	StageTemporary
	StageFinal
)

func (s Stage) String() string {
	switch s {
	case StageTemporary:
		return "temporary"
	case StageFinal:
		return "final"
	default:
		return "direct"
	}
}

// 📦 RenameOp is one filesystem rename. Sequence position within Plan.Ops is
// execution order, not input order.
type RenameOp struct {
	Source string
	Target string
	Stage  Stage
}

func (op RenameOp) String() string {
	return fmt.Sprintf("%s -> %s (%s)", op.Source, op.Target, op.Stage)
}

// ⚠️ ConflictKind classifies why a plan cannot be executed directly
type ConflictKind int

const (
	// ConflictDuplicateTarget: two or more sources map to the same target.
	// Always unresolvable: it is ambiguous which source should own the name.
	ConflictDuplicateTarget ConflictKind = iota
	// ConflictExternalCollision: a target path exists on disk and is not
	// being vacated by any operation in this plan.
	ConflictExternalCollision
	// ConflictCycle: following source→target→source links returns to an
	// already-visited path. Resolvable via temporary-name staging.
	ConflictCycle
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictDuplicateTarget:
		return "duplicate-target"
	case ConflictExternalCollision:
		return "external-collision"
	case ConflictCycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// ⚠️ Conflict is a condition that makes direct execution unsafe or ambiguous
type Conflict struct {
	Kind ConflictKind

	// Targets holds the contested target paths for ConflictDuplicateTarget.
	Targets []string
	// Target is the occupied path for ConflictExternalCollision.
	Target string
	// Paths holds the cycle members in chain order for ConflictCycle.
	Paths []string
}

// Describe returns a one-line human-readable description of the conflict
func (c Conflict) Describe() string {
	switch c.Kind {
	case ConflictDuplicateTarget:
		return fmt.Sprintf("multiple files would be renamed to: %s", strings.Join(c.Targets, ", "))
	case ConflictExternalCollision:
		return fmt.Sprintf("target already exists and is not part of this rename: %s", c.Target)
	case ConflictCycle:
		return fmt.Sprintf("rename cycle: %s", strings.Join(c.Paths, " -> "))
	default:
		return "unknown conflict"
	}
}

// 📋 Plan is the full set of proposed rename operations plus any detected
// conflicts, produced without touching the filesystem.
type Plan struct {
	Ops       []RenameOp
	Conflicts []Conflict

	// Resolved is set by the resolver once ops are ordered and cycles are
	// staged. The executor refuses plans that have not been resolved.
	Resolved bool
}

// Executable reports whether the plan is safe to hand to the executor
func (p *Plan) Executable() bool {
	return p.Resolved && len(p.Conflicts) == 0
}

// Changes returns the number of files that would be renamed. Temporary and
// final stages of a cycle count as one change per participant.
func (p *Plan) Changes() int {
	n := 0
	for _, op := range p.Ops {
		if op.Stage != StageFinal {
			n++
		}
	}
	return n
}
