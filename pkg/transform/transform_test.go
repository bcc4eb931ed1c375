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

package transform_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/Querulantenkind/rnm/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 TestCompileErrors tests fail-fast spec validation
func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		spec transform.Spec
	}{
		{
			name: "invalid_regex",
			spec: transform.Spec{Kind: transform.KindRegex, Search: "IMG_(\\d+", Replace: "x"},
		},
		{
			name: "empty_search",
			spec: transform.Spec{Kind: transform.KindSearchReplace},
		},
		{
			name: "empty_regex",
			spec: transform.Spec{Kind: transform.KindRegex},
		},
		{
			name: "empty_numbering_pattern",
			spec: transform.Spec{Kind: transform.KindNumbering, Start: 1},
		},
		{
			name: "numbering_pattern_without_placeholder",
			spec: transform.Spec{Kind: transform.KindNumbering, Pattern: "photo", Start: 1},
		},
		{
			name: "empty_prefix_text",
			spec: transform.Spec{Kind: transform.KindPrefix},
		},
		{
			name: "unknown_kind",
			spec: transform.Spec{Kind: transform.Kind(99)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transform.Compile(tt.spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, transform.ErrInvalidSpec)
		})
	}
}

// 🧪 TestCompileInvalidRegexSentinel tests that a bad pattern is reported as
// ErrInvalidPattern at construction time, not per file
func TestCompileInvalidRegexSentinel(t *testing.T) {
	_, err := transform.Compile(transform.Spec{Kind: transform.KindRegex, Search: "("})
	require.Error(t, err)
	assert.ErrorIs(t, err, transform.ErrInvalidPattern)
}

// 🧪 TestApply tests the per-mode filename mapping
func TestApply(t *testing.T) {
	modTime := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		spec     transform.Spec
		input    string
		fc       transform.FileContext
		expected string
	}{
		{
			name:     "search_replace_all_occurrences",
			spec:     transform.Spec{Kind: transform.KindSearchReplace, Search: "img", Replace: "photo"},
			input:    "img_img.jpg",
			expected: "photo_photo.jpg",
		},
		{
			name:     "search_replace_no_match",
			spec:     transform.Spec{Kind: transform.KindSearchReplace, Search: "zzz", Replace: "photo"},
			input:    "img.jpg",
			expected: "img.jpg",
		},
		{
			name:     "regex_capture_groups",
			spec:     transform.Spec{Kind: transform.KindRegex, Search: `IMG_(\d+)`, Replace: "photo_$1"},
			input:    "IMG_007.jpg",
			expected: "photo_007.jpg",
		},
		{
			name:     "regex_no_match_is_noop",
			spec:     transform.Spec{Kind: transform.KindRegex, Search: `IMG_(\d+)`, Replace: "photo_$1"},
			input:    "DOC_1.pdf",
			expected: "DOC_1.pdf",
		},
		{
			name:     "numbering_keeps_extension",
			spec:     transform.Spec{Kind: transform.KindNumbering, Pattern: "file_###", Start: 1},
			input:    "whatever.txt",
			fc:       transform.FileContext{Index: 2},
			expected: "file_003.txt",
		},
		{
			name:     "numbering_custom_step",
			spec:     transform.Spec{Kind: transform.KindNumbering, Pattern: "track_##", Start: 10, Step: 10},
			input:    "song.mp3",
			fc:       transform.FileContext{Index: 3},
			expected: "track_40.mp3",
		},
		{
			name:     "prefix_add",
			spec:     transform.Spec{Kind: transform.KindPrefix, Text: "x_", Affix: transform.AffixAdd},
			input:    "file.txt",
			expected: "x_file.txt",
		},
		{
			name:     "prefix_remove",
			spec:     transform.Spec{Kind: transform.KindPrefix, Text: "x_", Affix: transform.AffixRemove},
			input:    "x_file.txt",
			expected: "file.txt",
		},
		{
			name:     "prefix_remove_absent_is_noop",
			spec:     transform.Spec{Kind: transform.KindPrefix, Text: "x_", Affix: transform.AffixRemove},
			input:    "file.txt",
			expected: "file.txt",
		},
		{
			name:     "suffix_add_before_extension",
			spec:     transform.Spec{Kind: transform.KindSuffix, Text: "_v2", Affix: transform.AffixAdd},
			input:    "report.pdf",
			expected: "report_v2.pdf",
		},
		{
			name:     "suffix_remove_before_extension",
			spec:     transform.Spec{Kind: transform.KindSuffix, Text: "_v2", Affix: transform.AffixRemove},
			input:    "report_v2.pdf",
			expected: "report.pdf",
		},
		{
			name:     "suffix_remove_absent_is_noop",
			spec:     transform.Spec{Kind: transform.KindSuffix, Text: "_v2", Affix: transform.AffixRemove},
			input:    "report.pdf",
			expected: "report.pdf",
		},
		{
			name:     "suffix_add_without_extension",
			spec:     transform.Spec{Kind: transform.KindSuffix, Text: "_old", Affix: transform.AffixAdd},
			input:    "Makefile",
			expected: "Makefile_old",
		},
		{
			name:     "date_prefix",
			spec:     transform.Spec{Kind: transform.KindDate, DatePos: transform.DatePrefix},
			input:    "notes.md",
			fc:       transform.FileContext{ModTime: modTime},
			expected: "20240315_notes.md",
		},
		{
			name:     "date_suffix",
			spec:     transform.Spec{Kind: transform.KindDate, DatePos: transform.DateSuffix},
			input:    "notes.md",
			fc:       transform.FileContext{ModTime: modTime},
			expected: "notes_20240315.md",
		},
		{
			name:     "date_replace",
			spec:     transform.Spec{Kind: transform.KindDate, DatePos: transform.DateReplace},
			input:    "notes.md",
			fc:       transform.FileContext{ModTime: modTime},
			expected: "20240315.md",
		},
		{
			name:     "date_zero_modtime_fallback",
			spec:     transform.Spec{Kind: transform.KindDate, DatePos: transform.DatePrefix},
			input:    "notes.md",
			expected: "00000000_notes.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := transform.Compile(tt.spec)
			require.NoError(t, err)

			got, err := tr.Apply(tt.input, tt.fc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// 🧪 TestCaseExtensionPolicy tests the fixed extension-casing rule: Upper and
// Lower transform the whole filename including the extension, Title leaves
// the extension untouched
func TestCaseExtensionPolicy(t *testing.T) {
	tests := []struct {
		name     string
		mode     transform.CaseMode
		input    string
		expected string
	}{
		{name: "upper_transforms_extension", mode: transform.CaseUpper, input: "report.pdf", expected: "REPORT.PDF"},
		{name: "lower_transforms_extension", mode: transform.CaseLower, input: "REPORT.PDF", expected: "report.pdf"},
		{name: "title_leaves_extension_untouched", mode: transform.CaseTitle, input: "my_report draft.PDF", expected: "My_Report Draft.PDF"},
		{name: "title_hyphenated_words", mode: transform.CaseTitle, input: "year-end-summary.txt", expected: "Year-End-Summary.txt"},
		{name: "upper_without_extension", mode: transform.CaseUpper, input: "readme", expected: "README"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := transform.Compile(transform.Spec{Kind: transform.KindCase, Case: tt.mode})
			require.NoError(t, err)

			got, err := tr.Apply(tt.input, transform.FileContext{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// 🧪 TestNumberingPadding tests the zero-padding width and the no-truncation
// rule for numbers wider than the placeholder run
func TestNumberingPadding(t *testing.T) {
	tr, err := transform.Compile(transform.Spec{Kind: transform.KindNumbering, Pattern: "file_###", Start: 1})
	require.NoError(t, err)

	for i, want := range []string{"file_001", "file_002", "file_003"} {
		got, err := tr.Apply("in.dat", transform.FileContext{Index: i})
		require.NoError(t, err)
		assert.Equal(t, want+".dat", got)
	}

	// The 1001st file overflows the three-digit padding and is emitted in full.
	got, err := tr.Apply("in.dat", transform.FileContext{Index: 1000})
	require.NoError(t, err)
	assert.Equal(t, "file_1001.dat", got)
}

// 🧪 TestApplyIsDeterministic tests that applying the same transform twice
// with the same inputs yields the same output
func TestApplyIsDeterministic(t *testing.T) {
	specs := []transform.Spec{
		{Kind: transform.KindSearchReplace, Search: "a", Replace: "b"},
		{Kind: transform.KindRegex, Search: `(\d+)`, Replace: "n$1"},
		{Kind: transform.KindNumbering, Pattern: "f_##", Start: 7},
		{Kind: transform.KindPrefix, Text: "p_", Affix: transform.AffixAdd},
		{Kind: transform.KindCase, Case: transform.CaseTitle},
		{Kind: transform.KindDate, DatePos: transform.DateSuffix},
	}

	fc := transform.FileContext{Index: 3, ModTime: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)}
	for _, spec := range specs {
		t.Run(spec.Kind.String(), func(t *testing.T) {
			tr, err := transform.Compile(spec)
			require.NoError(t, err)

			first, err := tr.Apply("a1_b2.txt", fc)
			require.NoError(t, err)
			second, err := tr.Apply("a1_b2.txt", fc)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

// 🧪 TestPrefixRoundTrip tests that adding then removing a prefix returns the
// original filename
func TestPrefixRoundTrip(t *testing.T) {
	add, err := transform.Compile(transform.Spec{Kind: transform.KindPrefix, Text: "x_", Affix: transform.AffixAdd})
	require.NoError(t, err)
	remove, err := transform.Compile(transform.Spec{Kind: transform.KindPrefix, Text: "x_", Affix: transform.AffixRemove})
	require.NoError(t, err)

	for _, name := range []string{"file.txt", "a.b.c", "no-extension", "ümlaut.txt"} {
		added, err := add.Apply(name, transform.FileContext{})
		require.NoError(t, err)
		back, err := remove.Apply(added, transform.FileContext{})
		require.NoError(t, err)
		assert.Equal(t, name, back)
	}
}

// 🧪 TestParseMode tests mode name resolution and its inverse
func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		kind     transform.Kind
		caseMode transform.CaseMode
	}{
		{input: "search", kind: transform.KindSearchReplace},
		{input: "SEARCH", kind: transform.KindSearchReplace},
		{input: "regex", kind: transform.KindRegex},
		{input: "num", kind: transform.KindNumbering},
		{input: "prefix", kind: transform.KindPrefix},
		{input: "suf", kind: transform.KindSuffix},
		{input: "upper", kind: transform.KindCase, caseMode: transform.CaseUpper},
		{input: "lowercase", kind: transform.KindCase, caseMode: transform.CaseLower},
		{input: "title", kind: transform.KindCase, caseMode: transform.CaseTitle},
		{input: "date", kind: transform.KindDate},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, caseMode, err := transform.ParseMode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			if kind == transform.KindCase {
				assert.Equal(t, tt.caseMode, caseMode)
			}
		})
	}

	_, _, err := transform.ParseMode("bogus")
	require.Error(t, err)
}

// 🧪 TestModeNameRoundTrip tests that ModeName output parses back to the same
// kind and case mode
func TestModeNameRoundTrip(t *testing.T) {
	specs := []transform.Spec{
		{Kind: transform.KindSearchReplace},
		{Kind: transform.KindRegex},
		{Kind: transform.KindNumbering},
		{Kind: transform.KindPrefix},
		{Kind: transform.KindSuffix},
		{Kind: transform.KindCase, Case: transform.CaseUpper},
		{Kind: transform.KindCase, Case: transform.CaseLower},
		{Kind: transform.KindCase, Case: transform.CaseTitle},
		{Kind: transform.KindDate},
	}

	for i, spec := range specs {
		t.Run(fmt.Sprintf("%d_%s", i, transform.ModeName(spec)), func(t *testing.T) {
			kind, caseMode, err := transform.ParseMode(transform.ModeName(spec))
			require.NoError(t, err)
			assert.Equal(t, spec.Kind, kind)
			if spec.Kind == transform.KindCase {
				assert.Equal(t, spec.Case, caseMode)
			}
		})
	}
}
