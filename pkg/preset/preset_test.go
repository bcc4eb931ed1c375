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

package preset_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Querulantenkind/rnm/pkg/preset"
	"github.com/Querulantenkind/rnm/pkg/transform"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func sampleConfig() *preset.Config {
	return &preset.Config{
		DefaultSort: "name",
		Presets: map[string]preset.Preset{
			"photos": {
				Mode:    "numbering",
				Pattern: "vacation_###",
				Start:   1,
				Step:    1,
				Sort:    "mtime",
				Glob:    "*.jpg",
			},
			"despace": {
				Mode:    "search",
				Search:  " ",
				Replace: "_",
			},
			"datestamp": {
				Mode:         "date",
				DatePosition: "suffix",
			},
			"strip": {
				Mode:   "prefix",
				Text:   "draft-",
				Remove: true,
			},
		},
	}
}

func TestLoadMissingFileYieldsEmptyConfig(t *testing.T) {
	ctx := testContext(t)

	cfg, err := preset.Load(ctx, filepath.Join(t.TempDir(), "presets.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Presets)
	assert.Empty(t, cfg.Names())
}

func TestLoadEmptyFileYieldsEmptyConfig(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := preset.Load(ctx, path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Presets)
	assert.Empty(t, cfg.DefaultSort)
}

func TestLoadUnknownExtension(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "presets.ini")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := preset.Load(ctx, path)
	require.ErrorIs(t, err, preset.ErrNoParser)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{"yaml", "toml", "hcl"} {
		t.Run(ext, func(t *testing.T) {
			ctx := testContext(t)
			path := filepath.Join(t.TempDir(), "presets."+ext)
			want := sampleConfig()

			require.NoError(t, preset.Save(ctx, path, want))

			got, err := preset.Load(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, want.DefaultSort, got.DefaultSort)
			assert.Equal(t, want.Presets, got.Presets)
		})
	}
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "nested", "deeper", "presets.yaml")

	require.NoError(t, preset.Save(ctx, path, sampleConfig()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := "presets:\n  broken:\n    mode: frobnicate\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := preset.Load(ctx, path)
	require.ErrorIs(t, err, preset.ErrInvalidPreset)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := "presets:\n  p:\n    mode: lower\n    bogus_field: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := preset.Load(ctx, path)
	require.Error(t, err)
}

func TestToSpecFromSpecRoundTrip(t *testing.T) {
	specs := []transform.Spec{
		{Kind: transform.KindSearchReplace, Search: "a", Replace: "b"},
		{Kind: transform.KindRegex, Search: `(\d+)`, Replace: "$1$1"},
		{Kind: transform.KindNumbering, Pattern: "img_####", Start: 10, Step: 5},
		{Kind: transform.KindPrefix, Text: "x-", Affix: transform.AffixRemove},
		{Kind: transform.KindSuffix, Text: "-final"},
		{Kind: transform.KindCase, Case: transform.CaseTitle},
		{Kind: transform.KindDate, DatePos: transform.DateReplace},
	}
	for _, spec := range specs {
		t.Run(transform.ModeName(spec), func(t *testing.T) {
			got, err := preset.FromSpec(spec).ToSpec()
			require.NoError(t, err)
			assert.Equal(t, spec, got)
		})
	}
}

func TestToSpecInvalidDatePosition(t *testing.T) {
	p := preset.Preset{Mode: "date", DatePosition: "sideways"}
	_, err := p.ToSpec()
	require.ErrorIs(t, err, preset.ErrInvalidPreset)
}

func TestConfigGetSetDelete(t *testing.T) {
	cfg := &preset.Config{}

	_, err := cfg.Get("missing")
	require.ErrorIs(t, err, preset.ErrUnknownPreset)

	cfg.Set("one", preset.Preset{Mode: "lower"})
	cfg.Set("two", preset.Preset{Mode: "upper"})
	assert.Equal(t, []string{"one", "two"}, cfg.Names())

	got, err := cfg.Get("one")
	require.NoError(t, err)
	assert.Equal(t, "lower", got.Mode)

	require.NoError(t, cfg.Delete("one"))
	require.ErrorIs(t, cfg.Delete("one"), preset.ErrUnknownPreset)
	assert.Equal(t, []string{"two"}, cfg.Names())
}
