package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stackvity/converty/internal/cli"
	"github.com/stackvity/converty/internal/cli/config"
	"github.com/stackvity/converty/pkg/converter"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	cfgFile     string
	profileName string
	verbose     bool
}

// newRootCmd builds the command tree. The root command runs a conversion batch.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "converty (-i <file>... | --input-dir <dir>) -o <outputDir>",
		Short: "Converts PDF files to slide decks and slide decks to PDF.",
		Long: `converty converts batches of PDF files into PPTX decks (one slide per page)
and PPTX decks into PDF files.

It features:
  - Single files, several files or a whole folder per batch.
  - Optional zip packaging of the results.
  - A history of past batches (see "converty history").
  - Saved preferences (see "converty prefs").
  - An interactive Terminal UI in English or Turkish.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error { // minimal comment
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			opts, logger, err := config.LoadAndValidate(g.cfgFile, g.profileName, version, g.verbose, cmd.Flags())
			if err != nil {
				return err
			}
			deps := cli.DefaultDeps(opts)
			deps.Out = cmd.OutOrStdout()
			return cli.RunWith(ctx, opts, logger, deps)
		},
	}
	rootCmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")

	// Persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.cfgFile, "config", "", "Configuration file path (default is search standard locations like ., $HOME/.config/converty/)")
	pf.StringVar(&g.profileName, "profile", "", "Name of configuration profile to use")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose (debug) logging output (disables TUI)")
	pf.String("lang", converter.DefaultLanguage, `Interface language ("en" or "tr")`)
	pf.String("theme", string(converter.DefaultTheme), `Terminal theme ("light" or "dark")`)
	pf.String("history-file", "", "History ledger path (default is the user config directory)")
	pf.String("prefs-file", "", "Preferences file path (default is the user config directory)")

	// --- Selection ---
	f := rootCmd.Flags()
	f.StringArrayP("input", "i", nil, "Input file (repeatable). Files with the wrong extension are skipped.")
	f.String("input-dir", "", "Convert every matching file directly inside this folder")
	f.StringP("output", "o", "", "Output folder for converted files")

	// --- Conversion ---
	f.StringP("direction", "d", string(converter.DefaultDirection), `Conversion direction ("pdf_to_pptx" or "pptx_to_pdf")`)
	f.String("engine", string(converter.DefaultEngine), `PPTX to PDF engine ("powerpoint_com" or "libreoffice")`)
	f.String("mode", "", `Selection mode recorded in history ("single", "multiple", "folder"); derived from the selection when omitted`)
	f.BoolP("zip", "z", converter.DefaultZip, "Bundle the results into one zip archive and remove the loose files")
	f.Int("concurrency", converter.DefaultConcurrency, "Parallel conversions (LibreOffice engine only)")
	f.Float64("dpi", converter.DefaultDPI, "Page rendering resolution for PDF to PPTX")
	f.String("slide-size", converter.DefaultSlideSize, `Slide size for PDF to PPTX ("16:9" or "4:3")`)
	f.String("soffice", converter.DefaultSofficePath, "LibreOffice binary name or path")

	// --- Output & Presentation ---
	f.String("metrics-file", "", "Write Prometheus metrics of the run to this file")
	f.Bool("no-tui", false, "Disable interactive Terminal UI even if in a TTY")
	f.Bool("save-prefs", false, "Remember direction, engine, mode, zip, language and theme for the next run")

	rootCmd.AddCommand(newHistoryCmd(g), newPrefsCmd(g))
	return rootCmd
}

// Execute runs the command tree.
func Execute(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
