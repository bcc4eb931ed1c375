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
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/Querulantenkind/rnm/pkg/executor"
	"github.com/Querulantenkind/rnm/pkg/listing"
	"github.com/Querulantenkind/rnm/pkg/plan"
	"github.com/Querulantenkind/rnm/pkg/preset"
	"github.com/Querulantenkind/rnm/pkg/render"
	"github.com/Querulantenkind/rnm/pkg/transform"
)

// rootFlags holds every flag of the rename command
type rootFlags struct {
	dir          string
	glob         string
	mode         string
	search       string
	replace      string
	pattern      string
	start        int
	step         int
	prefix       string
	suffix       string
	removePrefix string
	removeSuffix string
	caseMode     string
	date         bool
	datePosition string
	presetName   string
	savePreset   string
	sortOrder    string
	hidden       bool
	dryRun       bool
	yes          bool
	debug        bool
	presetsFile  string
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "rnm [files...]",
		Short: "Rename files in bulk",
		Long: `rnm renames batches of files with search/replace, regular expressions,
sequential numbering, prefixes, suffixes, case conversion and date stamping.
It plans the whole batch up front, refuses ambiguous renames, stages swap
cycles through temporary names, and rolls completed renames back if one fails.`,
		Args: cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(flags.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, args, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRenameFlags(cmd, flags)
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.presetsFile, "presets-file", "", "preset file path (defaults to the XDG config location)")

	cmd.AddCommand(newPresetsCmd(flags))

	return cmd
}

// addRenameFlags adds the transform and selection flags
func addRenameFlags(cmd *cobra.Command, flags *rootFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.dir, "dir", "d", ".", "directory to rename files in")
	f.StringVarP(&flags.glob, "glob", "g", "", "glob pattern selecting files within the directory")
	f.StringVarP(&flags.mode, "mode", "m", "", "transform mode (search, regex, numbering, prefix, suffix, upper, lower, title, date)")
	f.StringVarP(&flags.search, "search", "s", "", "text or regex to search for")
	f.StringVarP(&flags.replace, "replace", "r", "", "replacement text")
	f.StringVar(&flags.pattern, "pattern", "", "numbering pattern, e.g. photo_###")
	f.IntVar(&flags.start, "start", 1, "first number for numbering mode")
	f.IntVar(&flags.step, "step", 1, "increment between numbers")
	f.StringVar(&flags.prefix, "prefix", "", "prefix to add")
	f.StringVar(&flags.suffix, "suffix", "", "suffix to add (before the extension)")
	f.StringVar(&flags.removePrefix, "remove-prefix", "", "prefix to strip")
	f.StringVar(&flags.removeSuffix, "remove-suffix", "", "suffix to strip")
	f.StringVar(&flags.caseMode, "case", "", "case conversion (upper, lower, title)")
	f.BoolVar(&flags.date, "date", false, "stamp filenames with the file's modification date")
	f.StringVar(&flags.datePosition, "date-position", "prefix", "where the date goes (prefix, suffix, replace)")
	f.StringVarP(&flags.presetName, "preset", "p", "", "apply a saved preset")
	f.StringVar(&flags.savePreset, "save-preset", "", "save this invocation under the given preset name")
	f.StringVar(&flags.sortOrder, "sort", "", "input order (name, modified, size)")
	f.BoolVar(&flags.hidden, "hidden", false, "include dot-files")
	f.BoolVarP(&flags.dryRun, "dry-run", "n", false, "show the plan without renaming anything")
	f.BoolVarP(&flags.yes, "yes", "y", false, "skip the confirmation prompt")
}

// setupLogging configures zerolog based on flags
func setupLogging(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}

// runRename is the whole pipeline: select files, compile the transform,
// build and resolve the plan, preview, confirm, execute.
func runRename(cmd *cobra.Command, args []string, flags *rootFlags) error {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if flags.debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}
	ctx := log.WithContext(cmd.Context())

	cfg, cfgPath, err := loadPresets(ctx, flags)
	if err != nil {
		return err
	}

	spec, sortName, globPattern, err := resolveSpec(cfg, flags)
	if err != nil {
		return err
	}

	tr, err := transform.Compile(spec)
	if err != nil {
		return err
	}

	sortOrder, err := listing.ParseSortOrder(sortName)
	if err != nil {
		return err
	}

	sources := args
	if len(sources) == 0 {
		entries, err := listing.List(ctx, listing.Options{
			Dir:           flags.dir,
			Pattern:       globPattern,
			Sort:          sortOrder,
			IncludeHidden: flags.hidden,
		})
		if err != nil {
			return err
		}
		sources = listing.Paths(entries)
	}

	p, err := plan.Build(ctx, sources, tr)
	if err != nil {
		return err
	}

	p, err = plan.Resolve(ctx, p)
	if err != nil {
		return err
	}

	r := render.New(os.Stdout)
	if len(p.Conflicts) > 0 {
		r.Conflicts(p)
		return errors.New("plan has conflicts, nothing was renamed")
	}

	r.Preview(p)

	if flags.savePreset != "" {
		if err := savePresetFromRun(ctx, cfg, cfgPath, flags, spec, sortName, globPattern); err != nil {
			return err
		}
	}

	if p.Changes() == 0 || flags.dryRun {
		return nil
	}

	if !flags.yes {
		confirmed, err := pterm.DefaultInteractiveConfirm.
			WithDefaultText("Apply these renames?").
			Show()
		if err != nil {
			return errors.Errorf("reading confirmation: %w", err)
		}
		if !confirmed {
			pterm.Info.Println("aborted, nothing was renamed")
			return nil
		}
	}

	exec := executor.New(executor.Options{})
	result, err := exec.Execute(ctx, p)
	if err != nil {
		return err
	}

	r.Result(result)
	if !result.OK() {
		return errors.Errorf("renaming %s: %w", result.Failed.Op.Source, result.Failed.Cause)
	}
	return nil
}

// loadPresets loads the preset file named by flags, or the default location
func loadPresets(ctx context.Context, flags *rootFlags) (*preset.Config, string, error) {
	path := flags.presetsFile
	if path == "" {
		var err error
		path, err = preset.DefaultPath()
		if err != nil {
			return nil, "", err
		}
	}
	cfg, err := preset.Load(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// resolveSpec combines a preset (if named) with the command-line flags into
// one transform spec plus the sort order and glob to select files with.
// Flags set explicitly on the command line take precedence over the preset.
func resolveSpec(cfg *preset.Config, flags *rootFlags) (transform.Spec, string, string, error) {
	sortName := flags.sortOrder
	globPattern := flags.glob

	if flags.presetName != "" {
		pr, err := cfg.Get(flags.presetName)
		if err != nil {
			return transform.Spec{}, "", "", err
		}
		spec, err := pr.ToSpec()
		if err != nil {
			return transform.Spec{}, "", "", err
		}
		if sortName == "" {
			sortName = pr.Sort
		}
		if globPattern == "" {
			globPattern = pr.Glob
		}
		return spec, sortName, globPattern, nil
	}

	if sortName == "" {
		sortName = cfg.DefaultSort
	}

	spec, err := specFromFlags(flags, cfg.DefaultMode)
	if err != nil {
		return transform.Spec{}, "", "", err
	}
	return spec, sortName, globPattern, nil
}

// specFromFlags builds a transform spec from the command line. When --mode
// is omitted the mode is inferred from which transform flag was given,
// falling back to the configured default mode.
func specFromFlags(flags *rootFlags, defaultMode string) (transform.Spec, error) {
	mode := flags.mode
	if mode == "" {
		switch {
		case flags.search != "":
			mode = "search"
		case flags.pattern != "":
			mode = "numbering"
		case flags.prefix != "" || flags.removePrefix != "":
			mode = "prefix"
		case flags.suffix != "" || flags.removeSuffix != "":
			mode = "suffix"
		case flags.caseMode != "":
			mode = flags.caseMode
		case flags.date:
			mode = "date"
		default:
			mode = defaultMode
		}
	}
	if mode == "" {
		return transform.Spec{}, errors.New("no transform given: pass --mode or one of --search, --pattern, --prefix, --suffix, --case, --date")
	}

	kind, caseMode, err := transform.ParseMode(mode)
	if err != nil {
		return transform.Spec{}, err
	}

	spec := transform.Spec{Kind: kind, Case: caseMode}
	switch kind {
	case transform.KindSearchReplace, transform.KindRegex:
		spec.Search = flags.search
		spec.Replace = flags.replace
	case transform.KindNumbering:
		spec.Pattern = flags.pattern
		spec.Start = flags.start
		spec.Step = flags.step
	case transform.KindPrefix:
		if flags.removePrefix != "" {
			spec.Text = flags.removePrefix
			spec.Affix = transform.AffixRemove
		} else {
			spec.Text = flags.prefix
		}
	case transform.KindSuffix:
		if flags.removeSuffix != "" {
			spec.Text = flags.removeSuffix
			spec.Affix = transform.AffixRemove
		} else {
			spec.Text = flags.suffix
		}
	case transform.KindDate:
		pos, err := transform.ParseDatePosition(flags.datePosition)
		if err != nil {
			return transform.Spec{}, err
		}
		spec.DatePos = pos
	}
	return spec, nil
}

// savePresetFromRun stores the current invocation as a named preset
func savePresetFromRun(ctx context.Context, cfg *preset.Config, cfgPath string, flags *rootFlags, spec transform.Spec, sortName, globPattern string) error {
	pr := preset.FromSpec(spec)
	pr.Sort = sortName
	pr.Glob = globPattern
	cfg.Set(flags.savePreset, pr)

	if err := preset.Save(ctx, cfgPath, cfg); err != nil {
		return err
	}
	pterm.Success.Printf("saved preset %q to %s\n", flags.savePreset, cfgPath)
	return nil
}
