package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/spearfished/internal/catalog"
)

// NewSpeciesCommand creates the species command.
func NewSpeciesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "species [name]",
		Short: "Browse the species catalog",
		Long: `List the species catalog, or show the entry matching a name.

Names match case-insensitively, exactly first and then by containment, so
"snapper" finds "Red Snapper".

Example:
  spearfished species
  spearfished species hogfish --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runSpecies(cmd, rootOpts, query)
		},
	}
	return cmd
}

func runSpecies(cmd *cobra.Command, opts *RootOptions, query string) error {
	formatter := opts.formatter(cmd)

	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(a)

	ctx := commandContext(cmd)

	if query == "" {
		list, err := a.Species.All(ctx)
		if err != nil {
			return formatter.Fail("failed to load species", err)
		}
		return formatter.Success(list, func(w io.Writer) error {
			return renderSpeciesList(w, list)
		})
	}

	sp, ok, err := a.Species.Lookup(ctx, query)
	if err != nil {
		return formatter.Fail("failed to load species", err)
	}
	if !ok {
		msg := fmt.Sprintf("no species matches %q", query)
		_ = formatter.Error("NOT_FOUND", msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(sp, func(w io.Writer) error {
		return renderSpecies(w, sp)
	})
}

func renderSpeciesList(w io.Writer, list []catalog.Species) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCIENTIFIC NAME\tHABITAT\tPOPULATION\tFISHING RATE")
	for _, sp := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			sp.Name, dash(sp.ScientificName), dash(sp.Habitat), dash(sp.Population), dash(sp.FishingRate))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d species\n", len(list))
	return nil
}

func renderSpecies(w io.Writer, sp catalog.Species) error {
	fishStyle.Fprintln(w, sp.Name)
	if sp.ScientificName != "" {
		dimStyle.Fprintf(w, "  %s\n", sp.ScientificName)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range [][2]string{
		{"Habitat", sp.Habitat},
		{"Location", sp.Location},
		{"Population", sp.Population},
		{"Fishing rate", sp.FishingRate},
		{"Illustration", sp.Illustration},
	} {
		if row[1] != "" {
			fmt.Fprintf(tw, "  %s:\t%s\n", row[0], row[1])
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(sp.Gallery) > 0 {
		fmt.Fprintf(w, "  Gallery:\n    %s\n", strings.Join(sp.Gallery, "\n    "))
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
