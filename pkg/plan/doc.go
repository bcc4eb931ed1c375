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

// Package plan turns an ordered list of source paths and a compiled transform
// into an executable sequence of rename operations.
//
// Build applies the transform to every source and records the proposed
// (source, target) pairs together with every condition that would make direct
// execution unsafe or ambiguous: two sources claiming the same target, a
// target already occupied by a file outside the batch, and rename cycles
// (a→b with b→a, or longer permutations).
//
// Resolve consumes the cycle conflicts by rewriting each cycle into a
// temporary-name stage followed by a final stage, and orders the remaining
// operations so that every target path is vacated before it is claimed. Ties
// between independent operations preserve input order, so resolved plans are
// deterministic. Duplicate-target and external-collision conflicts cannot be
// resolved by ordering and survive into the resolved plan; callers must
// refuse to execute any plan whose Conflicts list is non-empty.
//
// Neither Build nor Resolve mutates the filesystem. A plan reflects the
// filesystem state at build time and must be rebuilt whenever the inputs or
// the directory contents change.
package plan
