package cli

import (
	"errors"
	"fmt"

	"locsync/internal/config"
	"locsync/internal/luatable"
	"locsync/internal/tsv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func patchLuaCmd() *cobra.Command {
	var file, table, prefix string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "patch-lua",
		Short: "Substitute translated table text into a Lua table literal",
		Long: `Looks up every row of the named Lua table in the translated tables, using
<prefix>_<key> as the table key when a prefix is given, and replaces the quoted
text. Translations equal to the upstream English or baseline text are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatchLua(file, table, prefix, dryRun)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Lua file to patch (default LUA_FILE)")
	cmd.Flags().StringVar(&table, "table", "", "Lua table name, e.g. REGIONS_NAMES_LOCALISATION")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Table key prefix without the trailing underscore")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Count replacements without writing")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func syncLuaCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync-lua",
		Short: "Carry Lua translations over to updated upstream scripts",
		Long: `For every upstream *.lua file with a translated counterpart whose code
changed, applies the translated strings to the new upstream version and writes
it back with the translated file's line endings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncLua(dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing files")

	return cmd
}

// runPatchLua handles the `patch-lua` command.
func runPatchLua(file, table, prefix string, dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Require(config.SettingTranslationDir, config.SettingSourceDir); err != nil {
		return err
	}
	if file == "" {
		file = cfg.LuaFile
	}

	translations, err := tsv.LoadDirTexts(cfg.TranslationDir, cfg.TablePattern)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	english, err := tsv.LoadDirTexts(cfg.SourceDir, cfg.TablePattern)
	if err != nil {
		return fmt.Errorf("load upstream texts: %w", err)
	}
	baselines := []map[string]string{english}

	if err := cfg.Require(config.SettingBaselineDir); err == nil {
		secondary, err := tsv.LoadDirTexts(cfg.BaselineDir, cfg.TablePattern)
		if err != nil {
			return fmt.Errorf("load baseline texts: %w", err)
		}
		baselines = append(baselines, secondary)
	} else {
		log.Debug().Err(err).Msg("No secondary baseline")
	}

	p := &luatable.Patcher{
		Mode:         luatable.KeyPrefixed,
		Prefix:       prefix,
		Tables:       []string{table},
		Translations: translations,
		Baselines:    baselines,
	}

	n, err := luatable.PatchFile(file, p, dryRun)
	if errors.Is(err, luatable.ErrTableNotFound) {
		log.Warn().Str("file", file).Str("table", table).Msg("No top-level table with this name, nested tables are not patched")
		return nil
	}
	if err != nil {
		return err
	}
	if n == 0 {
		log.Info().Str("file", file).Str("table", table).Msg("No translated rows found")
		return nil
	}

	log.Info().Str("file", file).Str("table", table).Int("replaced", n).Bool("dry_run", dryRun).Msg("Patched Lua table")
	return nil
}

// runSyncLua handles the `sync-lua` command.
func runSyncLua(dryRun bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Require(config.SettingUpstreamRoot, config.SettingTranslationRoot); err != nil {
		return err
	}

	sum, err := luatable.SyncDir(ctx, cfg.UpstreamRoot, cfg.TranslationRoot, dryRun)
	if err != nil {
		return err
	}

	if sum.Changed == 0 && sum.Failed == 0 {
		log.Info().Msg("No changes: every Lua file matches upstream apart from its strings")
		return nil
	}

	log.Info().
		Int("files", sum.Changed).
		Int("replaced", sum.Replaced).
		Int("failed", sum.Failed).
		Bool("dry_run", dryRun).
		Msg("Lua sync complete")

	if sum.Failed > 0 {
		return errors.New("some Lua files could not be synced")
	}
	return nil
}
