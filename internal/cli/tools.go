package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"locsync/internal/config"
	"locsync/internal/dedup"
	"locsync/internal/mirror"
	"locsync/internal/po"
	"locsync/internal/textstat"
	"locsync/internal/tsv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

func dedupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Translate repeated strings once",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "extract <table>",
		Short: "Write a dedup file listing every distinct text with its keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedupExtract(args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "apply <dedup-file> <table>",
		Short: "Copy the translate column of a dedup file back into the table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedupApply(args[0], args[1])
		},
	})

	return cmd
}

func unescapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unescape [paths...]",
		Short: "Remove CSV-style quote escaping from the text column",
		Long: `Repairs tables once written with CSV quoting: wrapping quotes are removed
and doubled quotes collapse to one. Paths may be files or directories; the
default is the translation directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnescape(args)
		},
	}
}

func exportPOCmd() *cobra.Command {
	var src, trg, srcDir, trgDir, outDir string

	cmd := &cobra.Command{
		Use:   "export-po",
		Short: "Export table pairs as PO files for translation-memory tools",
		Long: `Single file: --src and --trg write the PO file next to the translated table.
Directories: --srcdir and --trgdir write one PO file per table into --outdir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case src != "" && trg != "":
				return runExportPOFile(src, trg)
			case srcDir != "" && trgDir != "":
				return runExportPODir(srcDir, trgDir, outDir)
			default:
				return cmd.Help()
			}
		},
	}

	cmd.Flags().StringVar(&src, "src", "", "Upstream table")
	cmd.Flags().StringVar(&trg, "trg", "", "Translated table")
	cmd.Flags().StringVar(&srcDir, "srcdir", "", "Directory of upstream tables")
	cmd.Flags().StringVar(&trgDir, "trgdir", "", "Directory of translated tables")
	cmd.Flags().StringVar(&outDir, "outdir", "", "Output directory (default PO_DIR)")
	cmd.MarkFlagsRequiredTogether("src", "trg")
	cmd.MarkFlagsRequiredTogether("srcdir", "trgdir")
	cmd.MarkFlagsMutuallyExclusive("src", "srcdir")

	return cmd
}

func charcountCmd() *cobra.Command {
	var noSpaces bool

	cmd := &cobra.Command{
		Use:   "charcount <files...>",
		Short: "Count characters in text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(args, "characters", func(s string) int { return textstat.Chars(s, noSpaces) })
		},
	}

	cmd.Flags().BoolVar(&noSpaces, "no-spaces", false, "Do not count spaces, tabs and line breaks")

	return cmd
}

func wordcountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wordcount <files...>",
		Short: "Count words in text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(args, "words", textstat.Words)
		},
	}
}

func mirrorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mirror",
		Short: "Copy the translation tree into the mod directory (DST)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror()
		},
	}
}

// runDedupExtract handles `dedup extract`.
func runDedupExtract(table string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, n, err := dedup.ExtractFile(table, cfg.DedupDir)
	if err != nil {
		return err
	}
	log.Info().Str("file", out).Int("texts", n).Msg("Created dedup file")
	return nil
}

// runDedupApply handles `dedup apply`.
func runDedupApply(dedupFile, table string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	n, err := dedup.ApplyFile(dedupFile, table)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Info().Str("file", table).Msg("No filled translations to apply")
		return nil
	}
	log.Info().Str("file", table).Int("rows", n).Msg("Applied dedup translations")
	return nil
}

// runUnescape handles the `unescape` command.
func runUnescape(paths []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = []string{cfg.TranslationDir}
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Skipping path")
			continue
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		names, err := tableNames(p, cfg.TablePattern)
		if err != nil {
			return err
		}
		for _, n := range names {
			files = append(files, filepath.Join(p, n))
		}
	}
	if len(files) == 0 {
		log.Warn().Msg("No tables found")
		return nil
	}

	total := 0
	for _, f := range files {
		t, err := tsv.LoadFile(f)
		if err != nil {
			log.Error().Err(err).Str("file", f).Msg("Skipping table")
			continue
		}
		fixed, n := tsv.UnescapeTable(t)
		if n == 0 {
			log.Debug().Str("file", f).Msg("Nothing to unescape")
			continue
		}
		if err := tsv.WriteFile(f, fixed); err != nil {
			log.Error().Err(err).Str("file", f).Msg("Write failed")
			continue
		}
		total += n
		log.Info().Str("file", f).Int("rows", n).Msg("Unescaped quotes")
	}

	log.Info().Int("files", len(files)).Int("rows", total).Msg("Unescape complete")
	return nil
}

func poHeader(cfg *config.Config) po.Header {
	return po.Header{Language: cfg.POLanguage, Created: time.Now()}
}

// runExportPOFile handles `export-po --src --trg`.
func runExportPOFile(src, trg string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := filepath.Join(filepath.Dir(trg), po.OutputName(trg))
	if err := po.ExportFile(src, trg, out, poHeader(cfg)); err != nil {
		return err
	}
	log.Info().Str("out", out).Msg("Exported PO")
	return nil
}

// runExportPODir handles `export-po --srcdir --trgdir`.
func runExportPODir(srcDir, trgDir, outDir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.PODir
	}

	results, err := po.ExportDir(ctx, srcDir, trgDir, outDir, cfg.TablePattern, poHeader(cfg))
	if err != nil {
		return err
	}

	written, failed := 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Out != "":
			written++
		}
	}
	log.Info().Int("written", written).Int("skipped", len(results)-written-failed).Int("failed", failed).Str("dir", outDir).Msg("PO export complete")
	if failed > 0 {
		return fmt.Errorf("%d tables failed to export", failed)
	}
	return nil
}

// runCount handles `charcount` and `wordcount`.
func runCount(paths []string, unit string, count func(string) int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tag, err := language.Parse(cfg.POLanguage)
	if err != nil {
		tag = language.English
	}
	f := textstat.NewFormatter(tag)

	results, total, err := textstat.CountFiles(paths, count)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Missing {
			continue
		}
		fmt.Printf("%s: %s %s\n", r.Name, f.Count(r.Count), unit)
	}
	if len(paths) > 1 {
		fmt.Println("---------------")
		fmt.Printf("Total: %s\n", f.Count(total))
	}
	return nil
}

// runMirror handles the `mirror` command.
func runMirror() error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Require(config.SettingDestination, config.SettingTranslationRoot); err != nil {
		return err
	}

	sum, err := mirror.Mirror(ctx, cfg.TranslationRoot, cfg.Destination)
	if err != nil {
		return err
	}

	log.Info().
		Str("src", cfg.TranslationRoot).
		Str("dst", cfg.Destination).
		Int("removed", len(sum.Removed)).
		Int("copied", sum.Copied).
		Msg("Mirror complete")
	return nil
}
