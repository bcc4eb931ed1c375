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

package transform

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// splitExt splits a filename at its extension, defined as the substring from
// the last '.' onward when present. "archive.tar.gz" splits into
// ("archive.tar", ".gz"); "README" splits into ("README", "").
func splitExt(name string) (stem, ext string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i:]
	}
	return name, ""
}

// applyNumbering replaces every '#'-run in pattern with num, zero-padded to
// the run length, and appends the original extension. A number wider than the
// padding is emitted in full; the number itself is never truncated.
func applyNumbering(name, pattern string, num int) string {
	_, ext := splitExt(name)

	var b strings.Builder
	run := 0
	for _, c := range pattern {
		if c == '#' {
			run++
			continue
		}
		if run > 0 {
			b.WriteString(fmt.Sprintf("%0*d", run, num))
			run = 0
		}
		b.WriteRune(c)
	}
	if run > 0 {
		b.WriteString(fmt.Sprintf("%0*d", run, num))
	}

	return b.String() + ext
}

func applyPrefix(name, prefix string, mode AffixMode) string {
	if mode == AffixRemove {
		// Absent prefix is a no-op, not an error.
		return strings.TrimPrefix(name, prefix)
	}
	return prefix + name
}

// applySuffix adds or removes text before the extension: "report.pdf" with
// suffix "_v2" becomes "report_v2.pdf".
func applySuffix(name, suffix string, mode AffixMode) string {
	stem, ext := splitExt(name)
	if mode == AffixRemove {
		return strings.TrimSuffix(stem, suffix) + ext
	}
	return stem + suffix + ext
}

// applyCase converts filename case. Upper and Lower transform the whole
// filename including the extension; Title leaves the extension untouched,
// since word-casing an extension is meaningless.
func applyCase(name string, mode CaseMode) string {
	switch mode {
	case CaseLower:
		return strings.ToLower(name)
	case CaseTitle:
		stem, ext := splitExt(name)
		return titleCase(stem) + ext
	default:
		return strings.ToUpper(name)
	}
}

// titleCase capitalizes the first letter of each word, where words are
// delimited by whitespace, '_' or '-'.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	capitalize := true
	for _, c := range s {
		switch {
		case unicode.IsSpace(c) || c == '_' || c == '-':
			b.WriteRune(c)
			capitalize = true
		case capitalize:
			b.WriteRune(unicode.ToUpper(c))
			capitalize = false
		default:
			b.WriteRune(unicode.ToLower(c))
		}
	}
	return b.String()
}

// applyDate inserts the file's modification date as YYYYMMDD. A zero mod
// time formats as "00000000" so the output is still deterministic.
func applyDate(name string, pos DatePosition, modTime time.Time) string {
	date := "00000000"
	if !modTime.IsZero() {
		date = modTime.Format("20060102")
	}

	stem, ext := splitExt(name)
	switch pos {
	case DateSuffix:
		return stem + "_" + date + ext
	case DateReplace:
		return date + ext
	default:
		return date + "_" + stem + ext
	}
}
