package cmd

import (
	"fmt"
	"time"

	"m77ag-backend/utils"

	"github.com/spf13/cobra"
)

var (
	genMonth int
	genYear  int
	asOfFlag string
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage rent invoices",
}

var invoicesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate invoices for every active lease",
	Long: `Generate the rent invoice for a period on every active lease.

Leases already billed for the period are skipped, so the command is safe to
re-run. Defaults to the current month.`,
	RunE: runGenerateInvoices,
}

var lateFeesCmd = &cobra.Command{
	Use:   "late-fees",
	Short: "Manage late fees",
}

var lateFeesApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply late fees to open invoices past their grace period",
	RunE:  runApplyLateFees,
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Manage rent reminders",
}

var remindersSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Text tenants with upcoming or overdue rent",
	RunE:  runSendReminders,
}

func init() {
	now := time.Now()
	invoicesGenerateCmd.Flags().IntVar(&genMonth, "month", int(now.Month()), "billing month (1-12)")
	invoicesGenerateCmd.Flags().IntVar(&genYear, "year", now.Year(), "billing year")
	invoicesCmd.AddCommand(invoicesGenerateCmd)

	lateFeesApplyCmd.Flags().StringVar(&asOfFlag, "as-of", "", "evaluation date YYYY-MM-DD (default now)")
	lateFeesCmd.AddCommand(lateFeesApplyCmd)

	remindersSendCmd.Flags().StringVar(&asOfFlag, "as-of", "", "evaluation date YYYY-MM-DD (default now)")
	remindersCmd.AddCommand(remindersSendCmd)
}

func parseAsOf() (time.Time, error) {
	if asOfFlag == "" {
		return time.Now(), nil
	}
	t, err := utils.ParseDate(asOfFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: %w", asOfFlag, err)
	}
	return t, nil
}

func runGenerateInvoices(cmd *cobra.Command, args []string) error {
	if genMonth < 1 || genMonth > 12 {
		return fmt.Errorf("invalid --month %d", genMonth)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Billing.AutoGenerateForAllActiveLeases(cmd.Context(), genMonth, genYear)
	if err != nil {
		return err
	}
	if err := printJSON(cmd, result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d lease(s) failed", len(result.Failed))
	}
	return nil
}

func runApplyLateFees(cmd *cobra.Command, args []string) error {
	asOf, err := parseAsOf()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Billing.ApplyLateFeesBatch(cmd.Context(), asOf)
	if err != nil {
		return err
	}
	if err := printJSON(cmd, result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d invoice(s) failed", len(result.Failed))
	}
	return nil
}

func runSendReminders(cmd *cobra.Command, args []string) error {
	asOf, err := parseAsOf()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Reminders.SendRentReminders(cmd.Context(), asOf)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
