package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/brunobiangulo/pdfoutline"
	"github.com/brunobiangulo/pdfoutline/internal/version"
)

var (
	configPath string
	logFormat  string
	verbose    bool

	// cfg is loaded before any subcommand runs.
	cfg pdfoutline.Config
)

var rootCmd = &cobra.Command{
	Use:   "pdfoutline",
	Short: "Extract titles and heading outlines from PDF documents",
	Long: `pdfoutline converts PDFs into JSON outlines: a title plus a flat list of
headings with level and page number. Bookmarked documents use their own
outline; everything else is inferred from font sizes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr())

		// .env is optional.
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("config: reading .env failed", "error", err)
		}

		loaded, err := pdfoutline.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := loaded.ApplyEnv(); err != nil {
			return err
		}
		cfg = loaded
		slog.Debug("config: loaded",
			"path", configPath,
			"max_workers", cfg.MaxWorkers,
			"heading_font_ratio", cfg.HeadingFontRatio,
			"cache_size", cfg.CacheSize,
			"backend", cfg.Backend,
			"store", cfg.StorePath)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pdfoutline %s\n", version.String())
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("pdfoutline %s\n", version.String()))

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (JSON)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

func setupLogging(w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if logFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
