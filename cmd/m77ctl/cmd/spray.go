package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"m77ag-backend/spray"
	"m77ag-backend/utils"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	programFile  string
	acresFlag    string
	outputFormat string
)

// programFileContents is the JSON accepted by --file.
type programFileContents struct {
	Program spray.Program        `json:"program"`
	Tiers   []spray.DiscountTier `json:"tiers"`
}

var sprayCmd = &cobra.Command{
	Use:   "spray",
	Short: "Spray program cost tools",
}

var sprayQuoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a spray program from a JSON file",
	Long: `Price a spray program over an acreage without touching the database.

The file holds {"program": {...}, "tiers": [...]}, the same shape the
POST /api/spray/quote endpoint accepts.`,
	RunE: runSprayQuote,
}

func init() {
	sprayQuoteCmd.Flags().StringVarP(&programFile, "file", "f", "", "program JSON file")
	sprayQuoteCmd.Flags().StringVar(&acresFlag, "acres", "", "acres to treat")
	sprayQuoteCmd.Flags().StringVarP(&outputFormat, "format", "o", "table", "output format (table, json)")
	_ = sprayQuoteCmd.MarkFlagRequired("file")
	_ = sprayQuoteCmd.MarkFlagRequired("acres")
	sprayCmd.AddCommand(sprayQuoteCmd)
}

func runSprayQuote(cmd *cobra.Command, args []string) error {
	acres, err := decimal.NewFromString(acresFlag)
	if err != nil {
		return fmt.Errorf("invalid --acres %q: %w", acresFlag, err)
	}

	data, err := os.ReadFile(programFile)
	if err != nil {
		return fmt.Errorf("failed to read program file: %w", err)
	}
	var contents programFileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return fmt.Errorf("failed to parse program file: %w", err)
	}

	quote, err := spray.QuoteProgram(contents.Program, acres, contents.Tiers)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(cmd, quote.Rounded())
	}
	return printQuoteTable(cmd, quote)
}

func printQuoteTable(cmd *cobra.Command, q *spray.Quote) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Program:\t%s\n", q.Program)
	fmt.Fprintf(w, "Acres:\t%s\n\n", q.Acres.String())

	fmt.Fprintln(w, "PASS\tPER ACRE")
	for _, p := range q.Passes {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, utils.FormatMoney(p.PerAcre))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Per acre:\t%s\n", utils.FormatMoney(q.PerAcrePrice))
	fmt.Fprintf(w, "Base total:\t%s\n", utils.FormatMoney(q.BaseTotal))
	if q.Tier != nil {
		fmt.Fprintf(w, "Discount (%s%% at %s+ acres):\t-%s\n",
			q.Tier.PercentOff.String(), q.Tier.MinAcres.String(), utils.FormatMoney(q.DiscountAmount))
	}
	fmt.Fprintf(w, "Final total:\t%s\n", utils.FormatMoney(q.FinalTotal))

	if len(q.Purchases) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "PRODUCT\tNEEDED\tCONTAINER\tCOUNT\tLEFTOVER")
		for _, p := range q.Purchases {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%d\t%s %s\n",
				p.Product,
				p.Plan.TotalNeeded.Round(2).String(), p.Plan.Container.Unit,
				p.Plan.Container.Label,
				p.Plan.Containers,
				p.Plan.Leftover.Round(2).String(), p.Plan.Container.Unit,
			)
		}
	}
	return w.Flush()
}
