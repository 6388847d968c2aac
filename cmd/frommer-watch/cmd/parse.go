package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/frommer-watch/internal/match"
	"github.com/donaldgifford/frommer-watch/internal/sites"
)

func parseCommand(o *rootOptions) *cobra.Command {
	var siteID string

	cmd := &cobra.Command{
		Use:   "parse --site ID FILE",
		Short: "Run a site parser against a saved results page",
		Long: "Parse a saved search results page (or - for stdin) with the parser\n" +
			"for --site and print every candidate listing and whether it matches\n" +
			"the keyword pattern. Useful when a marketplace changes its markup.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve()
			if err != nil {
				return err
			}

			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			site, ok := findSite(reg, siteID)
			if !ok {
				return fmt.Errorf("%w: %q is not configured", sites.ErrUnknownSite, siteID)
			}

			page, err := readPage(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			res := sites.SafeParse(site.Parser, page)
			if res.Err != nil {
				return fmt.Errorf("parsing %s page: %w", site.ID, res.Err)
			}

			m, err := match.New(cfg.Keywords)
			if err != nil {
				return err
			}

			views := make([]parsedView, 0, len(res.Listings))
			for _, l := range res.Listings {
				views = append(views, parsedView{Listing: l, Match: m.Matches(l.Title)})
			}

			if o.jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), views)
			}
			return printParsedTable(cmd.OutOrStdout(), views)
		},
	}

	cmd.Flags().StringVar(&siteID, "site", "", "site id (ebay, gunbroker, numrich)")
	cobra.CheckErr(cmd.MarkFlagRequired("site"))

	return cmd
}

func findSite(reg []sites.Site, id string) (sites.Site, bool) {
	for _, s := range reg {
		if s.ID == id {
			return s, true
		}
	}
	return sites.Site{}, false
}

func readPage(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path from CLI argument
	}
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	return string(data), nil
}
