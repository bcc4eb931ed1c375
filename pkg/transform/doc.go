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

// Package transform maps a single filename to a new filename under one of a
// fixed set of rename rules (search/replace, regex, numbering, prefix/suffix
// add or remove, case conversion, date insertion).
//
// The rule set is a closed tagged variant: a Spec names its Kind and carries
// the parameters for that kind, and Compile validates the whole Spec up front
// (an invalid regex is a compile error, never a per-file error). The compiled
// Transform is pure: Apply never touches the filesystem and is deterministic
// for a given filename and FileContext, so the same inputs always produce the
// same output.
//
// Apply operates on the filename component only. Rules that do not apply to a
// given name (a regex that does not match, a prefix that is not present) leave
// the name unchanged rather than failing; callers compare input and output to
// tell a no-op from a rename.
//
// Example:
//
//	tr, err := transform.Compile(transform.Spec{
//		Kind:    transform.KindNumbering,
//		Pattern: "photo_###",
//		Start:   1,
//	})
//	if err != nil {
//		// invalid spec
//	}
//	name, _ := tr.Apply("IMG_1337.jpg", transform.FileContext{Index: 0})
//	// name == "photo_001.jpg"
package transform
