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

package executor

import (
	"context"
	"os"
	"syscall"

	"github.com/Querulantenkind/rnm/pkg/plan"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrUnresolvedPlan: the plan was never passed through the resolver or
	// still carries conflicts. Execution is refused before any rename.
	ErrUnresolvedPlan = errors.Base("plan has unresolved conflicts")
	// ErrTargetExists: a target was unexpectedly occupied at execution time
	// (the filesystem changed between plan and execute).
	ErrTargetExists = errors.Base("target already exists")
	// ErrCrossDevice: the rename would cross filesystems. Copy+delete has
	// different atomicity guarantees and is never done implicitly.
	ErrCrossDevice = errors.Base("rename would cross filesystems")
)

// 💾 FS is the filesystem surface the executor needs
type FS interface {
	Rename(oldpath, newpath string) error
	Lstat(name string) (os.FileInfo, error)
}

// osFS is the production FS backed by the os package
type osFS struct{}

func (osFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (osFS) Lstat(name string) (os.FileInfo, error) { return os.Lstat(name) }

// NewOSFS returns the os-backed filesystem implementation
func NewOSFS() FS {
	return osFS{}
}

// 💥 Failure records the op that stopped execution and its cause
type Failure struct {
	Op    plan.RenameOp
	Cause error
}

// 📊 Result is the single terminal report of an execution attempt
type Result struct {
	// Applied lists the ops that succeeded, in execution order, including
	// any that were later rolled back.
	Applied []plan.RenameOp
	// Failed is nil when every op succeeded.
	Failed *Failure
	// RolledBack lists only the applied ops that were successfully
	// reversed, in rollback (reverse) order. Applied ops missing from this
	// list are the files left in an inconsistent state.
	RolledBack []plan.RenameOp
}

// OK reports whether every op was applied
func (r *Result) OK() bool {
	return r.Failed == nil
}

// 🔧 Options configures the executor
type Options struct {
	// FS overrides the filesystem implementation, for tests. Defaults to
	// the os-backed one.
	FS FS
}

// 🎮 Executor applies resolved plans
type Executor struct {
	fs FS
}

// 🏭 New creates an executor
func New(opts Options) *Executor {
	fs := opts.FS
	if fs == nil {
		fs = NewOSFS()
	}
	return &Executor{fs: fs}
}

// 🎯 Execute applies p's ops strictly in order, stopping at the first
// failure and rolling back already-applied ops in reverse order. The error
// return is non-nil only when execution is refused up front; failures during
// execution are reported through the Result, which is always the single
// terminal account of what happened. Context cancellation is honored between
// ops, never mid-rename, and triggers the same stop-and-rollback path.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if !p.Executable() {
		return nil, errors.Errorf("%w: %d conflicts", ErrUnresolvedPlan, len(p.Conflicts))
	}

	result := &Result{}

	for _, op := range p.Ops {
		if err := ctx.Err(); err != nil {
			result.Failed = &Failure{Op: op, Cause: err}
			break
		}

		if err := e.renameOne(op); err != nil {
			logger.Error().
				Str("source", op.Source).
				Str("target", op.Target).
				Err(err).
				Msg("rename failed, stopping execution")
			result.Failed = &Failure{Op: op, Cause: err}
			break
		}

		logger.Debug().
			Str("source", op.Source).
			Str("target", op.Target).
			Str("stage", op.Stage.String()).
			Msg("renamed")
		result.Applied = append(result.Applied, op)
	}

	if result.Failed != nil {
		e.rollback(logger, result)
	}

	return result, nil
}

// renameOne performs a single atomic rename with the pre-flight target check
func (e *Executor) renameOne(op plan.RenameOp) error {
	// os.Rename silently replaces an existing target; an occupied target
	// here means the filesystem changed after planning. The one exemption is
	// a target that IS the source, which happens for case-only renames on
	// case-insensitive filesystems. os.SameFile cannot alias a distinct
	// file, so a real A.TXT next to a.txt still stops execution.
	if tinfo, err := e.fs.Lstat(op.Target); err == nil {
		sinfo, serr := e.fs.Lstat(op.Source)
		if serr != nil || !os.SameFile(sinfo, tinfo) {
			return errors.Errorf("%w: %s", ErrTargetExists, op.Target)
		}
	}

	if err := e.fs.Rename(op.Source, op.Target); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return errors.Errorf("%w: %s -> %s", ErrCrossDevice, op.Source, op.Target)
		}
		return errors.Errorf("renaming %s to %s: %w", op.Source, op.Target, err)
	}
	return nil
}

// rollback reverses applied ops in strict reverse order. Failures are
// recorded in the log but never escalate; the ops missing from
// result.RolledBack are the caller's signal of inconsistent state.
func (e *Executor) rollback(logger *zerolog.Logger, result *Result) {
	for i := len(result.Applied) - 1; i >= 0; i-- {
		op := result.Applied[i]
		if err := e.fs.Rename(op.Target, op.Source); err != nil {
			logger.Warn().
				Str("source", op.Source).
				Str("target", op.Target).
				Err(err).
				Msg("rollback failed, file left at target path")
			continue
		}
		result.RolledBack = append(result.RolledBack, op)
	}
}
