package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"locsync/internal/config"
	"locsync/internal/interpolation"
	"locsync/internal/merge"
	"locsync/internal/report"
	"locsync/internal/textutil"
	"locsync/internal/tsv"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned after validation problems have been logged.
var errValidationFailed = errors.New("validation failed")

func mergeCmd() *cobra.Command {
	var validate, yes, dryRun bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge upstream tables into the translation",
		Long: `Merges every upstream table into the translated table of the same name.
Existing translations are kept, new keys are seeded with the upstream text and
rows removed upstream are archived in the obsolete directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(validate, yes, dryRun)
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", true, "Validate source and target tables before merging")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Proceed without asking when validation finds problems")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing files")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check table headers, keys and placeholders",
		Long: `Validates every table in dir (default: the translation directory).
Headers and duplicate keys are errors, blank keys and placeholders that differ
from the upstream text are warnings. Exits with status 1 on errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(dir)
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print translation coverage per table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport()
		},
	}
}

func fillPatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fill-patch [files...]",
		Short: "Fill untranslated rows from the patch locale",
		Long: `Copies translations from the patch directory into the translation where the
translated text is still English or empty. Without arguments every table of the
patch directory is processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFillPatch(args)
		},
	}
}

func splitMasterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split-master [files...]",
		Short: "Distribute the master localisation table into per-file tables",
		Long: `Splits the single master table into tables shaped like the English ones.
Without arguments every English table is processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplitMaster(args)
		},
	}
}

// runMerge handles the `merge` command.
func runMerge(validate, yes, dryRun bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Require(config.SettingSourceDir); err != nil {
		return err
	}
	policy, err := merge.ParseEmptyKeyPolicy(cfg.EmptyKeyPolicy)
	if err != nil {
		return fmt.Errorf("%w: %v (set EMPTY_KEY_POLICY)", config.ErrMissingConfiguration, err)
	}

	if validate {
		problems := 0
		for _, dir := range []string{cfg.SourceDir, cfg.TranslationDir} {
			if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
				continue
			}
			checks, err := checkTables(dir, cfg.TablePattern, true)
			if err != nil {
				return err
			}
			for _, c := range checks {
				problems += c.logProblems()
			}
		}
		if problems > 0 {
			log.Warn().Int("errors", problems).Msg("Validation found problems")
			if !yes && !confirm("Proceed anyway?") {
				return fmt.Errorf("merge aborted: %w", errValidationFailed)
			}
		}
	}

	dirs := merge.Dirs{Source: cfg.SourceDir, Target: cfg.TranslationDir, Obsolete: cfg.ObsoleteDir}
	sum, err := merge.MergeDir(ctx, dirs, merge.DirOptions{
		Options: merge.Options{EmptyKeys: policy},
		Pattern: cfg.TablePattern,
		DryRun:  dryRun,
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("files", sum.Done).
		Int("skipped", sum.Skipped).
		Int("added", sum.Added).
		Int("removed", sum.Removed).
		Int("modified", sum.Modified).
		Bool("dry_run", dryRun).
		Msg("Merge complete")

	return nil
}

// tableCheck is the validation outcome of one table file.
type tableCheck struct {
	name       string
	table      *tsv.Table
	validation *tsv.Validation
	// placeholders lists interpolation mismatches against the upstream text.
	placeholders []string
}

// logProblems writes the check's problems to the log and returns the error
// count.
func (c tableCheck) logProblems() int {
	for _, v := range c.validation.Errors {
		log.Error().Str("file", c.name).Str("problem", v.String()).Msg("Invalid table")
	}
	for _, v := range c.validation.Warnings {
		log.Warn().Str("file", c.name).Str("problem", v.String()).Msg("Suspicious table")
	}
	for _, p := range c.placeholders {
		log.Warn().Str("file", c.name).Str("problem", p).Msg("Placeholder mismatch")
	}
	return len(c.validation.Errors)
}

// checkTables validates every table of dir. Strict checks treat blank keys
// as errors. Tables that fail to parse are reported through the violations
// of their parse error.
func checkTables(dir, pattern string, strict bool) ([]tableCheck, error) {
	names, err := tableNames(dir, pattern)
	if err != nil {
		return nil, err
	}

	checks := make([]tableCheck, 0, len(names))
	for _, name := range names {
		c := tableCheck{name: name}
		c.table, c.validation = checkTable(filepath.Join(dir, name), strict)
		checks = append(checks, c)
	}
	return checks, nil
}

func checkTable(path string, strict bool) (*tsv.Table, *tsv.Validation) {
	if !strict {
		t, err := tsv.LoadFile(path)
		if err != nil {
			return nil, violationsOf(err)
		}
		return t, tsv.Validate(t, tsv.ValidateOptions{})
	}

	f, err := os.Open(path) // #nosec G304 -- path comes from the table directory listing
	if err != nil {
		return nil, violationsOf(err)
	}
	defer f.Close()

	t, err := tsv.LoadStrict(f)
	if err != nil {
		return nil, violationsOf(err)
	}
	return t, &tsv.Validation{}
}

func violationsOf(err error) *tsv.Validation {
	var me *tsv.MalformedTableError
	if errors.As(err, &me) {
		return &tsv.Validation{Errors: me.Violations}
	}
	return &tsv.Validation{Errors: []tsv.Violation{{Kind: tsv.ErrMalformedTable, Msg: err.Error()}}}
}

// placeholderMismatches compares the interpolation variables of every
// translated row with its upstream text.
func placeholderMismatches(source, target *tsv.Table) []string {
	srcText := source.TextMap()

	var out []string
	for _, r := range target.Keyed() {
		orig, ok := srcText[r.Key]
		if !ok || orig == r.Text {
			continue
		}
		missing, extra := interpolation.Diff(orig, r.Text)
		if len(missing) == 0 && len(extra) == 0 {
			continue
		}
		msg := fmt.Sprintf("key %q (%s):", r.Key, textutil.Truncate(r.Text, 40))
		if len(missing) > 0 {
			msg += " missing " + strings.Join(missing, " ")
		}
		if len(extra) > 0 {
			msg += " unexpected " + strings.Join(extra, " ")
		}
		out = append(out, msg)
	}
	return out
}

// runValidate handles the `validate` command.
func runValidate(dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		if err := cfg.Require(config.SettingTranslationDir); err != nil {
			return err
		}
		dir = cfg.TranslationDir
	}

	checks, err := checkTables(dir, cfg.TablePattern, false)
	if err != nil {
		return err
	}

	errs := 0
	for _, c := range checks {
		if c.table != nil {
			if source, err := tsv.LoadFile(filepath.Join(cfg.SourceDir, c.name)); err == nil {
				c.placeholders = placeholderMismatches(source, c.table)
			}
		}
		errs += c.logProblems()
	}

	if errs > 0 {
		log.Error().Int("files", len(checks)).Int("errors", errs).Msg("Validation failed")
		return errValidationFailed
	}
	log.Info().Int("files", len(checks)).Str("dir", dir).Msg("All tables are valid")
	return nil
}

// runReport handles the `report` command.
func runReport() error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Require(config.SettingSourceDir, config.SettingTranslationDir); err != nil {
		return err
	}

	rep, err := report.Dir(ctx, cfg.SourceDir, cfg.TranslationDir, cfg.TablePattern, report.Options{
		MetadataRows: cfg.MetadataRows,
		Placeholders: cfg.Placeholders,
	})
	if err != nil {
		return err
	}

	colorize := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return report.NewPrinter(colorize).Print(os.Stdout, rep)
}

// runFillPatch handles the `fill-patch` command.
func runFillPatch(names []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Require(config.SettingSourceDir, config.SettingTranslationDir, config.SettingPatchDir); err != nil {
		return err
	}
	if len(names) == 0 {
		if names, err = tableNames(cfg.PatchDir, cfg.TablePattern); err != nil {
			return err
		}
	}

	sum, err := merge.FillDir(ctx, merge.FillDirs{
		English: cfg.SourceDir,
		Main:    cfg.TranslationDir,
		Patch:   cfg.PatchDir,
	}, names)
	if err != nil {
		return err
	}

	log.Info().Int("files", sum.Done).Int("skipped", sum.Skipped).Int("filled", sum.Modified).Msg("Patch fill complete")
	return nil
}

// runSplitMaster handles the `split-master` command.
func runSplitMaster(names []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Require(config.SettingSourceDir); err != nil {
		return err
	}
	if len(names) == 0 {
		if names, err = tableNames(cfg.SourceDir, cfg.TablePattern); err != nil {
			return err
		}
	}

	sum, err := merge.SplitDir(ctx, merge.SplitDirs{
		Master:  cfg.MasterFile,
		English: cfg.SourceDir,
		Output:  cfg.MasterDir,
	}, names)
	if err != nil {
		return err
	}

	log.Info().Int("files", sum.Done).Int("skipped", sum.Skipped).Int("updated", sum.Modified).Msg("Master split complete")
	return nil
}
