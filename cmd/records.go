package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fcva-data/taxbook-cli/internal/model"
	"github.com/fcva-data/taxbook-cli/internal/store"
)

var (
	recordsYear     int
	recordsDistrict string
	recordsClass    int
	recordsLimit    int
	recordsOffset   int
	recordsJSON     bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Query stored assessment records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		filter := store.RecordFilter{
			Year:     recordsYear,
			District: recordsDistrict,
			Limit:    recordsLimit,
			Offset:   recordsOffset,
		}
		if recordsClass >= 0 {
			class := recordsClass
			filter.Class = &class
		}

		records, err := st.ListRecords(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "records list")
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No records found.")
			return nil
		}

		if recordsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		formatRecordsTable(os.Stdout, records)
		return nil
	},
}

func init() {
	recordsCmd.Flags().IntVar(&recordsYear, "year", 0, "filter by tax year")
	recordsCmd.Flags().StringVar(&recordsDistrict, "district", "", "filter by magisterial district")
	recordsCmd.Flags().IntVar(&recordsClass, "class", -1, "filter by property class code (0 matches unclassified parcels)")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 50, "max records to display")
	recordsCmd.Flags().IntVar(&recordsOffset, "offset", 0, "records to skip")
	recordsCmd.Flags().BoolVar(&recordsJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(recordsCmd)
}

// formatRecordsTable writes a tabular record listing to w.
func formatRecordsTable(out io.Writer, records []model.PropertyRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "YEAR\tPARCEL\tOWNER\tDISTRICT\tCLASS\tTOTAL_VALUE\tTAX")
	_, _ = fmt.Fprintln(w, "----\t------\t-----\t--------\t-----\t-----------\t---")

	for _, r := range records {
		owner := r.OwnerName
		if len(owner) > 30 {
			owner = owner[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%.2f\n",
			r.Year,
			r.ParcelCode,
			owner,
			r.District,
			r.PropertyClass,
			r.TotalValue,
			r.TaxAmount,
		)
	}
	_ = w.Flush()
}
