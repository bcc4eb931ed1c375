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

// Package preset stores named rename configurations on disk so a recurring
// batch (photo imports, episode numbering) can be replayed without retyping
// flags. The on-disk format is chosen by file extension; YAML, TOML and HCL
// parsers register themselves at init time.
package preset

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/Querulantenkind/rnm/pkg/transform"
)

var (
	ErrNoParser      = errors.Base("no parser for file")
	ErrUnknownPreset = errors.Base("unknown preset")
	ErrInvalidPreset = errors.Base("invalid preset")
)

// 🔌 Parser is the interface for preset file parsers
type Parser interface {
	// 📝 Parse parses a preset file from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 📝 Format renders a preset file to bytes
	Format(ctx context.Context, cfg *Config) ([]byte, error)

	// 🔍 CanParse checks if this parser handles the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is the list of registered parsers
var parsers []Parser

// Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🏷️ Preset is one saved rename configuration. Fields are plain strings so
// the same shape round-trips through every supported format.
type Preset struct {
	Mode         string `json:"mode" yaml:"mode" toml:"mode"`
	Search       string `json:"search,omitempty" yaml:"search,omitempty" toml:"search,omitempty"`
	Replace      string `json:"replace,omitempty" yaml:"replace,omitempty" toml:"replace,omitempty"`
	Pattern      string `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Start        int    `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	Step         int    `json:"step,omitempty" yaml:"step,omitempty" toml:"step,omitempty"`
	Text         string `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Remove       bool   `json:"remove,omitempty" yaml:"remove,omitempty" toml:"remove,omitempty"`
	DatePosition string `json:"date_position,omitempty" yaml:"date_position,omitempty" toml:"date_position,omitempty"`
	Sort         string `json:"sort,omitempty" yaml:"sort,omitempty" toml:"sort,omitempty"`
	Glob         string `json:"glob,omitempty" yaml:"glob,omitempty" toml:"glob,omitempty"`
}

// 📚 Config is the complete preset file
type Config struct {
	DefaultMode string            `json:"default_mode,omitempty" yaml:"default_mode,omitempty" toml:"default_mode,omitempty"`
	DefaultSort string            `json:"default_sort,omitempty" yaml:"default_sort,omitempty" toml:"default_sort,omitempty"`
	Presets     map[string]Preset `json:"presets" yaml:"presets" toml:"presets"`
}

// ToSpec converts the preset to a transform spec
func (p Preset) ToSpec() (transform.Spec, error) {
	kind, caseMode, err := transform.ParseMode(p.Mode)
	if err != nil {
		return transform.Spec{}, errors.Errorf("%w: %w", ErrInvalidPreset, err)
	}

	spec := transform.Spec{
		Kind:    kind,
		Case:    caseMode,
		Search:  p.Search,
		Replace: p.Replace,
		Pattern: p.Pattern,
		Start:   p.Start,
		Step:    p.Step,
		Text:    p.Text,
	}
	if p.Remove {
		spec.Affix = transform.AffixRemove
	}
	if p.DatePosition != "" {
		pos, err := transform.ParseDatePosition(p.DatePosition)
		if err != nil {
			return transform.Spec{}, errors.Errorf("%w: %w", ErrInvalidPreset, err)
		}
		spec.DatePos = pos
	}
	return spec, nil
}

// FromSpec converts a transform spec to a storable preset
func FromSpec(spec transform.Spec) Preset {
	p := Preset{
		Mode:    transform.ModeName(spec),
		Search:  spec.Search,
		Replace: spec.Replace,
		Pattern: spec.Pattern,
		Start:   spec.Start,
		Step:    spec.Step,
		Text:    spec.Text,
		Remove:  spec.Affix == transform.AffixRemove,
	}
	if spec.Kind == transform.KindDate {
		p.DatePosition = spec.DatePos.String()
	}
	return p
}

// 🔍 Validate checks the defaults and every preset for a parseable mode
func (cfg *Config) Validate() error {
	if cfg.DefaultMode != "" {
		if _, _, err := transform.ParseMode(cfg.DefaultMode); err != nil {
			return errors.Errorf("default_mode: %w", err)
		}
	}
	for name, p := range cfg.Presets {
		if _, err := p.ToSpec(); err != nil {
			return errors.Errorf("preset %q: %w", name, err)
		}
	}
	return nil
}

// Names returns the preset names in sorted order
func (cfg *Config) Names() []string {
	names := make([]string, 0, len(cfg.Presets))
	for name := range cfg.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named preset
func (cfg *Config) Get(name string) (Preset, error) {
	p, ok := cfg.Presets[name]
	if !ok {
		return Preset{}, errors.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return p, nil
}

// Set stores a preset under name, replacing any existing one
func (cfg *Config) Set(name string, p Preset) {
	if cfg.Presets == nil {
		cfg.Presets = map[string]Preset{}
	}
	cfg.Presets[name] = p
}

// Delete removes the named preset
func (cfg *Config) Delete(name string) error {
	if _, ok := cfg.Presets[name]; !ok {
		return errors.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	delete(cfg.Presets, name)
	return nil
}

// 📂 DefaultPath returns the XDG config location for the preset file
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("rnm", "config.yaml"))
	if err != nil {
		return "", errors.Errorf("resolving config path: %w", err)
	}
	return path, nil
}

// 🎯 Load loads a preset file. A missing file is not an error: it yields an
// empty config, so first use needs no setup step.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading presets")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Presets: map[string]Preset{}}, nil
		}
		return nil, errors.Errorf("reading preset file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: %s", ErrNoParser, path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing presets: %w", err)
	}
	if cfg.Presets == nil {
		cfg.Presets = map[string]Preset{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating presets: %w", err)
	}

	return cfg, nil
}

// 💾 Save writes the preset file, creating parent directories as needed
func Save(ctx context.Context, path string, cfg *Config) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Int("presets", len(cfg.Presets)).Msg("saving presets")

	p := GetParser(path)
	if p == nil {
		return errors.Errorf("%w: %s", ErrNoParser, path)
	}

	data, err := p.Format(ctx, cfg)
	if err != nil {
		return errors.Errorf("formatting presets: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Errorf("writing preset file: %w", err)
	}
	return nil
}
