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
	"regexp"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind identifies which rename rule a Spec describes
type Kind int

const (
	KindSearchReplace Kind = iota
	KindRegex
	KindNumbering
	KindPrefix
	KindSuffix
	KindCase
	KindDate
)

// String returns the canonical name of the kind
func (k Kind) String() string {
	switch k {
	case KindSearchReplace:
		return "search-replace"
	case KindRegex:
		return "regex"
	case KindNumbering:
		return "numbering"
	case KindPrefix:
		return "prefix"
	case KindSuffix:
		return "suffix"
	case KindCase:
		return "case"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// 🔧 AffixMode says whether a prefix/suffix is added or removed
type AffixMode int

const (
	AffixAdd AffixMode = iota
	AffixRemove
)

func (m AffixMode) String() string {
	if m == AffixRemove {
		return "remove"
	}
	return "add"
}

// 🔠 CaseMode selects the case conversion rule
type CaseMode int

const (
	CaseUpper CaseMode = iota
	CaseLower
	CaseTitle
)

func (m CaseMode) String() string {
	switch m {
	case CaseLower:
		return "lower"
	case CaseTitle:
		return "title"
	default:
		return "upper"
	}
}

// 📅 DatePosition says where the date string is inserted
type DatePosition int

const (
	DatePrefix DatePosition = iota
	DateSuffix
	DateReplace
)

func (p DatePosition) String() string {
	switch p {
	case DateSuffix:
		return "suffix"
	case DateReplace:
		return "replace"
	default:
		return "prefix"
	}
}

// Sentinel errors for spec validation
var (
	ErrInvalidPattern = errors.Base("invalid regex pattern")
	ErrInvalidSpec    = errors.Base("invalid transform spec")
)

// 📦 Spec describes one rename rule. Only the fields for the named Kind are
// consulted; the rest are ignored.
type Spec struct {
	Kind Kind

	// KindSearchReplace and KindRegex
	Search  string
	Replace string

	// KindNumbering: Pattern contains a run of '#' whose length fixes the
	// zero-padding width. Each file receives Start + Index*Step.
	Pattern string
	Start   int
	Step    int

	// KindPrefix and KindSuffix
	Text  string
	Affix AffixMode

	// KindCase
	Case CaseMode

	// KindDate
	DatePos DatePosition
}

// 🎯 Transform is a compiled, validated Spec ready to apply to filenames
type Transform struct {
	spec Spec
	re   *regexp.Regexp // compiled pattern for KindRegex
}

// 📄 FileContext carries the per-file inputs a rule may depend on beyond the
// filename itself: the zero-based position in the caller-supplied order and
// the file's modification time (used by KindDate).
type FileContext struct {
	Index   int
	ModTime time.Time
}

// 🏭 Compile validates spec and returns a Transform. Validation is fail-fast:
// a syntactically invalid regex or a missing required parameter is rejected
// here, never per file.
func Compile(spec Spec) (*Transform, error) {
	t := &Transform{spec: spec}

	switch spec.Kind {
	case KindSearchReplace:
		if spec.Search == "" {
			return nil, errors.Errorf("%w: search text is required", ErrInvalidSpec)
		}
	case KindRegex:
		if spec.Search == "" {
			return nil, errors.Errorf("%w: regex pattern is required", ErrInvalidSpec)
		}
		re, err := regexp.Compile(spec.Search)
		if err != nil {
			return nil, errors.Errorf("%w: %w", ErrInvalidPattern, err)
		}
		t.re = re
	case KindNumbering:
		if spec.Pattern == "" {
			return nil, errors.Errorf("%w: numbering pattern is required", ErrInvalidSpec)
		}
		if !strings.ContainsRune(spec.Pattern, '#') {
			// Without a placeholder every file maps to the same name.
			return nil, errors.Errorf("%w: numbering pattern %q has no '#' placeholder", ErrInvalidSpec, spec.Pattern)
		}
		if spec.Step == 0 {
			t.spec.Step = 1
		}
	case KindPrefix, KindSuffix:
		if spec.Text == "" {
			return nil, errors.Errorf("%w: %s text is required", ErrInvalidSpec, spec.Kind)
		}
	case KindCase, KindDate:
		// No parameters beyond the enums, which are total.
	default:
		return nil, errors.Errorf("%w: unknown kind %d", ErrInvalidSpec, spec.Kind)
	}

	return t, nil
}

// Spec returns the validated spec the transform was compiled from.
func (t *Transform) Spec() Spec {
	return t.spec
}

// 🎯 Apply maps one filename to its renamed form. It is pure: no filesystem
// access, no hidden state, deterministic for a given (name, fc) pair.
func (t *Transform) Apply(name string, fc FileContext) (string, error) {
	switch t.spec.Kind {
	case KindSearchReplace:
		return strings.ReplaceAll(name, t.spec.Search, t.spec.Replace), nil
	case KindRegex:
		// A non-matching pattern is a no-op, not an error.
		return t.re.ReplaceAllString(name, t.spec.Replace), nil
	case KindNumbering:
		return applyNumbering(name, t.spec.Pattern, t.spec.Start+fc.Index*t.spec.Step), nil
	case KindPrefix:
		return applyPrefix(name, t.spec.Text, t.spec.Affix), nil
	case KindSuffix:
		return applySuffix(name, t.spec.Text, t.spec.Affix), nil
	case KindCase:
		return applyCase(name, t.spec.Case), nil
	case KindDate:
		return applyDate(name, t.spec.DatePos, fc.ModTime), nil
	default:
		return "", errors.Errorf("%w: unknown kind %d", ErrInvalidSpec, t.spec.Kind)
	}
}

// 🗺️ ParseMode resolves a user-supplied mode name, accepting the short
// aliases the CLI has always taken. Case-conversion names ("upper", "lower",
// "title") map to KindCase with the matching CaseMode.
func ParseMode(s string) (Kind, CaseMode, error) {
	switch strings.ToLower(s) {
	case "search", "searchreplace", "search-replace", "s":
		return KindSearchReplace, CaseUpper, nil
	case "regex", "r":
		return KindRegex, CaseUpper, nil
	case "numbering", "number", "num", "n":
		return KindNumbering, CaseUpper, nil
	case "prefix", "pre":
		return KindPrefix, CaseUpper, nil
	case "suffix", "suf":
		return KindSuffix, CaseUpper, nil
	case "upper", "uppercase", "u":
		return KindCase, CaseUpper, nil
	case "lower", "lowercase", "l":
		return KindCase, CaseLower, nil
	case "title", "titlecase", "t":
		return KindCase, CaseTitle, nil
	case "date", "dateinsert", "date-insert", "d":
		return KindDate, CaseUpper, nil
	default:
		return 0, 0, errors.Errorf("%w: unknown mode %q", ErrInvalidSpec, s)
	}
}

// ModeName is the inverse of ParseMode for a validated spec: the canonical
// mode string presets are stored under. Case kinds serialize as their
// specific conversion so the round-trip is lossless.
func ModeName(spec Spec) string {
	if spec.Kind == KindCase {
		switch spec.Case {
		case CaseLower:
			return "lower"
		case CaseTitle:
			return "title"
		default:
			return "upper"
		}
	}
	return spec.Kind.String()
}

// ParseCaseMode resolves a user-supplied case mode name.
func ParseCaseMode(s string) (CaseMode, error) {
	switch strings.ToLower(s) {
	case "upper", "uppercase", "u":
		return CaseUpper, nil
	case "lower", "lowercase", "l":
		return CaseLower, nil
	case "title", "titlecase", "t":
		return CaseTitle, nil
	default:
		return 0, errors.Errorf("%w: unknown case mode %q", ErrInvalidSpec, s)
	}
}

// ParseAffixMode resolves a user-supplied affix mode name.
func ParseAffixMode(s string) (AffixMode, error) {
	switch strings.ToLower(s) {
	case "add", "a", "":
		return AffixAdd, nil
	case "remove", "rm", "r":
		return AffixRemove, nil
	default:
		return 0, errors.Errorf("%w: unknown affix mode %q", ErrInvalidSpec, s)
	}
}

// ParseDatePosition resolves a user-supplied date position name.
func ParseDatePosition(s string) (DatePosition, error) {
	switch strings.ToLower(s) {
	case "prefix", "pre", "p", "":
		return DatePrefix, nil
	case "suffix", "suf", "s":
		return DateSuffix, nil
	case "replace", "rep", "r":
		return DateReplace, nil
	default:
		return 0, errors.Errorf("%w: unknown date position %q", ErrInvalidSpec, s)
	}
}
