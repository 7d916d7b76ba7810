package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stackvity/converty/internal/cli/config"
	"github.com/stackvity/converty/internal/cli/i18n"
	"github.com/stackvity/converty/internal/cli/prefs"
	"github.com/stackvity/converty/pkg/converter"
)

func newPrefsCmd(g *globalFlags) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Shows or resets the saved preferences.",
		Args:  cobra.NoArgs,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Prints the saved preferences as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := config.LoadAndValidate(g.cfgFile, g.profileName, version, g.verbose, cmd.Flags())
			if err != nil {
				return err
			}
			store := prefs.NewJSONStore(opts.PrefsFile, opts.Logger)
			p, err := store.Load()
			if err != nil {
				return err
			}
			n := p.Normalize()
			data, err := yaml.Marshal(n)
			if err != nil {
				return fmt.Errorf("encoding preferences: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", store.Path())
			if _, err := out.Write(data); err != nil {
				return err
			}
			writeLabels(out, i18n.New(n.Language), n)
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Deletes the saved preferences so defaults apply again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := config.LoadAndValidate(g.cfgFile, g.profileName, version, g.verbose, cmd.Flags())
			if err != nil {
				return err
			}
			if err := prefs.NewJSONStore(opts.PrefsFile, opts.Logger).Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.New(opts.Language).T(i18n.KeyPrefsReset))
			return nil
		},
	}

	prefsCmd.AddCommand(showCmd, resetCmd)
	return prefsCmd
}

// writeLabels prints the saved choices as the menus name them, in the saved
// language.
func writeLabels(w io.Writer, loc *i18n.Localizer, p prefs.Preferences) {
	fmt.Fprintf(w, "# [%s] %s | %s | %s\n",
		loc.Language(),
		loc.Direction(converter.Direction(p.ConversionType)),
		loc.Engine(converter.EngineID(p.PDFEngine)),
		loc.Theme(converter.Theme(p.Theme)),
	)
}
