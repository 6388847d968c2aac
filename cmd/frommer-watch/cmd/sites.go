package cmd

import (
	"net/url"

	"github.com/spf13/cobra"
)

func sitesCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List configured marketplaces and their search URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.resolve()
			if err != nil {
				return err
			}

			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			query := url.QueryEscape(cfg.Keywords[0])
			views := make([]siteView, 0, len(reg))
			for _, s := range reg {
				views = append(views, siteView{
					ID:        s.ID,
					Label:     s.Label,
					Template:  s.URLTemplate,
					SearchURL: s.SearchURL(query),
				})
			}

			if o.jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), views)
			}
			return printSitesTable(cmd.OutOrStdout(), views)
		},
	}
}
