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

package preset

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser handles the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// hclPreset mirrors Preset as a labeled HCL block
type hclPreset struct {
	Name         string `hcl:"name,label"`
	Mode         string `hcl:"mode"`
	Search       string `hcl:"search,optional"`
	Replace      string `hcl:"replace,optional"`
	Pattern      string `hcl:"pattern,optional"`
	Start        int    `hcl:"start,optional"`
	Step         int    `hcl:"step,optional"`
	Text         string `hcl:"text,optional"`
	Remove       bool   `hcl:"remove,optional"`
	DatePosition string `hcl:"date_position,optional"`
	Sort         string `hcl:"sort,optional"`
	Glob         string `hcl:"glob,optional"`
}

type hclConfig struct {
	DefaultMode string      `hcl:"default_mode,optional"`
	DefaultSort string      `hcl:"default_sort,optional"`
	Presets     []hclPreset `hcl:"preset,block"`
}

// 📝 Parse parses a preset file from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "presets.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		DefaultMode: hclCfg.DefaultMode,
		DefaultSort: hclCfg.DefaultSort,
		Presets:     map[string]Preset{},
	}
	for _, hp := range hclCfg.Presets {
		cfg.Presets[hp.Name] = Preset{
			Mode:         hp.Mode,
			Search:       hp.Search,
			Replace:      hp.Replace,
			Pattern:      hp.Pattern,
			Start:        hp.Start,
			Step:         hp.Step,
			Text:         hp.Text,
			Remove:       hp.Remove,
			DatePosition: hp.DatePosition,
			Sort:         hp.Sort,
			Glob:         hp.Glob,
		}
	}
	return cfg, nil
}

// 📝 Format renders a preset file to HCL. Presets are written in name order
// so repeated saves produce identical bytes.
func (p *HCLParser) Format(ctx context.Context, cfg *Config) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	setString(body, "default_mode", cfg.DefaultMode)
	setString(body, "default_sort", cfg.DefaultSort)
	if cfg.DefaultMode != "" || cfg.DefaultSort != "" {
		body.AppendNewline()
	}

	for _, name := range cfg.Names() {
		pr := cfg.Presets[name]
		block := body.AppendNewBlock("preset", []string{name})
		pb := block.Body()

		pb.SetAttributeValue("mode", cty.StringVal(pr.Mode))
		setString(pb, "search", pr.Search)
		setString(pb, "replace", pr.Replace)
		setString(pb, "pattern", pr.Pattern)
		setInt(pb, "start", pr.Start)
		setInt(pb, "step", pr.Step)
		setString(pb, "text", pr.Text)
		if pr.Remove {
			pb.SetAttributeValue("remove", cty.BoolVal(true))
		}
		setString(pb, "date_position", pr.DatePosition)
		setString(pb, "sort", pr.Sort)
		setString(pb, "glob", pr.Glob)

		body.AppendNewline()
	}

	return f.Bytes(), nil
}

func setString(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

func setInt(body *hclwrite.Body, name string, value int) {
	if value != 0 {
		body.SetAttributeValue(name, cty.NumberIntVal(int64(value)))
	}
}
