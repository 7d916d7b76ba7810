package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stackvity/converty/internal/cli/config"
	"github.com/stackvity/converty/internal/cli/i18n"
	"github.com/stackvity/converty/internal/cli/ui"
	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/history"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Shows or clears the record of past batches.",
		Args:  cobra.NoArgs,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Prints every recorded batch, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, ledger, err := openLedger(cmd, g)
			if err != nil {
				return err
			}
			loc := i18n.New(opts.Language)
			records, err := ledger.ReadAll()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, loc.T(i18n.KeyHistoryEmpty))
				return nil
			}
			fmt.Fprintln(out, loc.T(i18n.KeyHistoryTitle))
			fmt.Fprintln(out, ui.RenderHistory(records, loc, ui.NewStyles(ui.PaletteFor(opts.Theme))))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Deletes every recorded batch.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, ledger, err := openLedger(cmd, g)
			if err != nil {
				return err
			}
			if err := ledger.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.New(opts.Language).T(i18n.KeyHistoryCleared))
			return nil
		},
	}

	historyCmd.AddCommand(listCmd, clearCmd)
	return historyCmd
}

// openLedger loads configuration and opens the ledger it points at.
func openLedger(cmd *cobra.Command, g *globalFlags) (converter.Options, *history.CSVLedger, error) {
	opts, logger, err := config.LoadAndValidate(g.cfgFile, g.profileName, version, g.verbose, cmd.Flags())
	if err != nil {
		return opts, nil, err
	}
	path := opts.HistoryFile
	if path == "" {
		if path, err = history.DefaultPath(); err != nil {
			return opts, nil, fmt.Errorf("%w: %w", history.ErrHistoryLoad, err)
		}
	}
	logger.Debug("Using history ledger", slog.String("path", path))
	return opts, history.NewCSVLedger(path, opts.Logger), nil
}
