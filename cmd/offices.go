package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/office"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

var (
	officesFormat string
	officesMatch  string
)

var officesCmd = &cobra.Command{
	Use:   "offices",
	Short: "List office locations and their listing labels",
	Long:  "Fetches the office-location table the matcher runs against, for checking which listing labels a job location will hit.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		client, err := initAirtable()
		if err != nil {
			return err
		}

		records, err := client.SelectAll(ctx, cfg.Airtable.OfficeTable, airtable.SelectOptions{
			PageSize: 100,
			Fields:   []string{cfg.Airtable.ListingLocationField},
		})
		if err != nil {
			return eris.Wrap(err, "offices: fetch")
		}

		offices := make([]model.Office, 0, len(records))
		for _, rec := range records {
			offices = append(offices, model.Office{
				ID:               rec.ID,
				ListingLocations: rec.StringSlice(cfg.Airtable.ListingLocationField),
			})
		}

		if officesMatch != "" {
			cache := office.NewCache(offices, cfg.Airtable.NoOfficeRecordID)
			ids := cache.Match(officesMatch)
			fmt.Printf("%q matches: %s\n", officesMatch, strings.Join(ids, ", "))
			return nil
		}

		switch officesFormat {
		case "yaml":
			out, err := yaml.Marshal(offices)
			if err != nil {
				return eris.Wrap(err, "offices: marshal yaml")
			}
			fmt.Print(string(out))
		case "table":
			formatOfficesTable(offices)
		default:
			return eris.Errorf("unknown format: %s", officesFormat)
		}
		return nil
	},
}

func formatOfficesTable(offices []model.Office) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tLISTING LOCATIONS")
	_, _ = fmt.Fprintln(w, "--\t-----------------")
	for _, o := range offices {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", o.ID, strings.Join(o.ListingLocations, "; "))
	}
	_ = w.Flush()
}

func init() {
	officesCmd.Flags().StringVar(&officesFormat, "format", "table", "output format: table or yaml")
	officesCmd.Flags().StringVar(&officesMatch, "match", "", "show which offices the given job location matches")
	rootCmd.AddCommand(officesCmd)
}
