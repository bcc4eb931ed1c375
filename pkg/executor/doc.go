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

// Package executor applies a resolved rename plan to the filesystem.
//
// Ops run strictly in plan order, each as a single atomic rename call. A
// rename that would cross filesystems fails with ErrCrossDevice instead of
// silently degrading to copy+delete, and a target that is unexpectedly
// occupied fails with ErrTargetExists rather than overwriting. The first
// failure stops execution: no further ops are attempted, and every
// already-applied op is reversed in strict reverse order on a best-effort
// basis. The Result reports exactly which ops were applied, which op failed
// and why, and which applied ops were successfully rolled back, so callers
// can tell precisely which files are left in an inconsistent state.
//
// The filesystem is reached through a small FS interface so failure paths
// are testable without privilege tricks; production code uses the os-backed
// implementation.
package executor
