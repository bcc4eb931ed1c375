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

// Package render turns plans and execution results into human-readable
// console output. It is the only package that prints; the engine packages
// stay silent apart from structured logs.
package render

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/Querulantenkind/rnm/pkg/executor"
	"github.com/Querulantenkind/rnm/pkg/plan"
)

// 🎨 Display configuration
const (
	entryIndent  = 2  // spaces to indent rename entries
	minNameWidth = 12 // minimum width for the source column
)

// 🎯 Renderer writes console output for plans and results
type Renderer struct {
	out io.Writer
}

// 🏭 New creates a renderer writing to out
func New(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// 📋 Preview prints every pending rename as an aligned old → new column
// pair. Staging ops from cycle resolution are collapsed: a temporary hop is
// an implementation detail, so the preview shows source → final target.
func (r *Renderer) Preview(p *plan.Plan) {
	finals := finalTargets(p)
	width := minNameWidth
	shown := 0
	for _, op := range p.Ops {
		if op.Stage == plan.StageFinal {
			continue
		}
		if n := len(filepath.Base(op.Source)); n > width {
			width = n
		}
	}

	for _, op := range p.Ops {
		if op.Stage == plan.StageFinal {
			continue
		}
		target := op.Target
		if op.Stage == plan.StageTemporary {
			target = finals[op.Target]
		}
		fmt.Fprintf(r.out, "%*s%-*s %s %s\n",
			entryIndent, "",
			width, filepath.Base(op.Source),
			color.New(color.Faint).Sprint("→"),
			color.New(color.FgCyan).Sprint(filepath.Base(target)))
		shown++
	}

	if shown == 0 {
		fmt.Fprintln(r.out, color.New(color.Faint).Sprint("nothing to rename"))
		return
	}
	fmt.Fprintf(r.out, "\n%d file(s) to rename\n", shown)
}

// ⚠️ Conflicts prints every detected conflict
func (r *Renderer) Conflicts(p *plan.Plan) {
	for _, c := range p.Conflicts {
		fmt.Fprintf(r.out, "❌ %s\n", color.New(color.FgRed).Sprint(c.Describe()))
	}
}

// ✅ Result prints the outcome of an execution
func (r *Renderer) Result(res *executor.Result) {
	if res.OK() {
		applied := countDirectAndTemporary(res.Applied)
		fmt.Fprintf(r.out, "✅ %s\n",
			color.New(color.FgGreen).Sprintf("renamed %d file(s)", applied))
		return
	}

	fmt.Fprintf(r.out, "❌ %s\n",
		color.New(color.FgRed).Sprintf("rename failed: %s: %v",
			res.Failed.Op, res.Failed.Cause))

	if len(res.Applied) == 0 {
		return
	}
	if len(res.RolledBack) == len(res.Applied) {
		fmt.Fprintf(r.out, "↩️  %s\n",
			color.New(color.FgYellow).Sprintf("rolled back %d completed rename(s)", len(res.RolledBack)))
		return
	}
	fmt.Fprintf(r.out, "⚠️  %s\n",
		color.New(color.FgYellow).Sprintf("rollback incomplete: %d of %d rename(s) restored",
			len(res.RolledBack), len(res.Applied)))
}

// finalTargets maps each temporary name to the final target it will become
func finalTargets(p *plan.Plan) map[string]string {
	m := map[string]string{}
	for _, op := range p.Ops {
		if op.Stage == plan.StageFinal {
			m[op.Source] = op.Target
		}
	}
	return m
}

func countDirectAndTemporary(ops []plan.RenameOp) int {
	n := 0
	for _, op := range ops {
		if op.Stage != plan.StageFinal {
			n++
		}
	}
	return n
}
