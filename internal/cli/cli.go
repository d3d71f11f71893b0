package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"locsync/internal/config"
	"locsync/internal/filewalker"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// rootFlags are the persistent flags shared by every command.
var rootFlags struct {
	logLevel  string
	logFormat string
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(consoleWriter())

	rootCmd := &cobra.Command{
		Use:           "locsync",
		Short:         "Keep game localisation tables in sync with upstream",
		Long:          "Merges upstream key/text/tooltip tables into the translation, patches translated text into Lua table literals and reports translation coverage.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logFormat, "log-format", "", "Log format: console or json (overrides LOG_FORMAT)")

	rootCmd.AddCommand(mergeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(fillPatchCmd())
	rootCmd.AddCommand(splitMasterCmd())
	rootCmd.AddCommand(patchLuaCmd())
	rootCmd.AddCommand(syncLuaCmd())
	rootCmd.AddCommand(dedupCmd())
	rootCmd.AddCommand(unescapeCmd())
	rootCmd.AddCommand(exportPOCmd())
	rootCmd.AddCommand(charcountCmd())
	rootCmd.AddCommand(wordcountCmd())
	rootCmd.AddCommand(mirrorCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			log.Error().Err(err).Msg("Command failed")
		}
		os.Exit(1)
	}
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// setupLogging applies the configured level and output format to the
// global logger.
func setupLogging(level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	switch strings.ToLower(format) {
	case "", "console":
		log.Logger = zerolog.New(consoleWriter()).With().Timestamp().Logger()
	case "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q: expected console or json", format)
	}
	return nil
}

// loadConfig loads the configuration and sets up logging from it, letting
// command-line flags win.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		cfg.LogFormat = rootFlags.logFormat
	}
	if err := setupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, stopping after the current file...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// confirm asks a yes/no question on the terminal. Without a terminal on
// stdin the answer is no.
func confirm(question string) bool {
	fd := os.Stdin.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		log.Warn().Msg("Standard input is not a terminal, answering no (use --yes to proceed)")
		return false
	}

	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// tableNames lists the table file names directly inside dir.
func tableNames(dir, pattern string) ([]string, error) {
	w, err := filewalker.NewWalker(pattern)
	if err != nil {
		return nil, err
	}
	entries, err := w.List(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Rel)
	}
	return names, nil
}
