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

package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Querulantenkind/rnm/pkg/preset"
	"github.com/Querulantenkind/rnm/pkg/transform"
)

// newPresetsCmd creates the presets command group
func newPresetsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage saved rename presets",
	}

	cmd.AddCommand(
		newPresetsListCmd(flags),
		newPresetsShowCmd(flags),
		newPresetsSaveCmd(flags),
		newPresetsDeleteCmd(flags),
	)

	return cmd
}

func newPresetsListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadPresets(cmd.Context(), flags)
			if err != nil {
				return err
			}
			names := cfg.Names()
			if len(names) == 0 {
				pterm.Info.Println("no presets saved")
				return nil
			}
			rows := pterm.TableData{{"Name", "Mode", "Glob", "Sort"}}
			for _, name := range names {
				pr := cfg.Presets[name]
				rows = append(rows, []string{name, pr.Mode, pr.Glob, pr.Sort})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

func newPresetsShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one preset in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadPresets(cmd.Context(), flags)
			if err != nil {
				return err
			}
			pr, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			spec, err := pr.ToSpec()
			if err != nil {
				return err
			}

			rows := pterm.TableData{{"mode", transform.ModeName(spec)}}
			addRow := func(key, value string) {
				if value != "" {
					rows = append(rows, []string{key, value})
				}
			}
			addRow("search", pr.Search)
			addRow("replace", pr.Replace)
			addRow("pattern", pr.Pattern)
			if pr.Pattern != "" {
				rows = append(rows, []string{"start", strconv.Itoa(pr.Start)})
				rows = append(rows, []string{"step", strconv.Itoa(pr.Step)})
			}
			addRow("text", pr.Text)
			if pr.Remove {
				rows = append(rows, []string{"remove", "true"})
			}
			addRow("date_position", pr.DatePosition)
			addRow("sort", pr.Sort)
			addRow("glob", pr.Glob)

			return pterm.DefaultTable.WithData(rows).Render()
		},
	}
}

func newPresetsSaveCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the given transform flags as a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, path, err := loadPresets(ctx, flags)
			if err != nil {
				return err
			}
			spec, err := specFromFlags(flags, "")
			if err != nil {
				return err
			}
			// Reject specs the engine would refuse later, e.g. broken regexes.
			if _, err := transform.Compile(spec); err != nil {
				return err
			}

			pr := preset.FromSpec(spec)
			pr.Sort = flags.sortOrder
			pr.Glob = flags.glob
			cfg.Set(args[0], pr)

			if err := preset.Save(ctx, path, cfg); err != nil {
				return err
			}
			pterm.Success.Printf("saved preset %q to %s\n", args[0], path)
			return nil
		},
	}
	addRenameFlags(cmd, flags)
	return cmd
}

func newPresetsDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, path, err := loadPresets(ctx, flags)
			if err != nil {
				return err
			}
			if err := cfg.Delete(args[0]); err != nil {
				return err
			}
			if err := preset.Save(ctx, path, cfg); err != nil {
				return err
			}
			pterm.Success.Printf("deleted preset %q\n", args[0])
			return nil
		},
	}
}
