// Package report renders coding results for human review or downstream
// tooling: a console summary, a JSON dump and a CSV export of the
// effective selections.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"bank-statement-coder/internal/coder"
	"bank-statement-coder/internal/models"
	"bank-statement-coder/pkg/errors"
	"bank-statement-coder/pkg/logger"
)

// Format selects the output rendering.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
)

// ParseFormat converts a string into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatConsole, "":
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", errors.Newf(errors.CategoryConfig, errors.CodeInvalidConfig,
			"unknown output format %q", s)
	}
}

// Reporter writes coding results in a fixed format.
type Reporter struct {
	w      io.Writer
	format Format
	log    logger.Logger
}

// New returns a reporter writing to w.
func New(w io.Writer, format Format) *Reporter {
	return &Reporter{
		w:      w,
		format: format,
		log:    logger.WithComponent(logger.ComponentReport),
	}
}

// Write renders one pairing's results.
func (r *Reporter) Write(results *coder.Results) error {
	switch r.format {
	case FormatJSON:
		return r.writeJSON(results)
	case FormatCSV:
		return r.writeCSV(results)
	default:
		return r.writeConsole(results)
	}
}

func (r *Reporter) writeJSON(results *coder.Results) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func (r *Reporter) writeCSV(results *coder.Results) error {
	w := csv.NewWriter(r.w)
	if err := w.Write([]string{
		"list", "date", "description", "amount",
		"account_number", "account_name", "entry_description", "overridden",
	}); err != nil {
		return err
	}

	write := func(kind coder.ListKind, codings []coder.Coding) error {
		for _, c := range codings {
			selection := c.Effective()
			if err := w.Write([]string{
				string(kind),
				c.Transaction.Date,
				c.Transaction.Description.Best(),
				c.Transaction.Amount.StringFixed(2),
				selection.AccountNumber,
				selection.AccountName,
				selection.EntryDescription,
				fmt.Sprintf("%t", c.Override.Enabled),
			}); err != nil {
				return err
			}
		}
		return nil
	}

	if err := write(coder.Deposits, results.Deposits); err != nil {
		return err
	}
	if err := write(coder.Withdrawals, results.Withdrawals); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (r *Reporter) writeConsole(results *coder.Results) error {
	statement := results.Statement

	fmt.Fprintf(r.w, "Statement: %s / %s\n", statement.Issuer, statement.Company.Name)
	fmt.Fprintf(r.w, "Account:   %s\n", statement.Account.Number)
	fmt.Fprintf(r.w, "Period:    %s - %s\n", statement.Period.Start, statement.Period.End)
	fmt.Fprintf(r.w, "Coded:     %d transactions, %d matched, %d suspense\n\n",
		results.Stats.Transactions, results.Stats.Matched, results.Stats.Suspense)

	r.writeDiagnostics(results)

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LIST\tDATE\tDESCRIPTION\tAMOUNT\tACCOUNT\tENTRY")
	writeRows := func(kind coder.ListKind, codings []coder.Coding) {
		for _, c := range codings {
			selection := c.Effective()
			marker := ""
			if c.Override.Enabled {
				marker = " *"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s%s\t%s\n",
				kind,
				c.Transaction.Date,
				c.Transaction.Description.Best(),
				c.Transaction.Amount.StringFixed(2),
				selection.AccountNumber,
				selection.AccountName,
				marker,
				selection.EntryDescription,
			)
		}
	}
	writeRows(coder.Deposits, results.Deposits)
	writeRows(coder.Withdrawals, results.Withdrawals)
	return tw.Flush()
}

// writeDiagnostics prints the self-check results: statement totals
// against computed sums and the ledger's distribution count and
// per-account discrepancies. These are review aids, not failures.
func (r *Reporter) writeDiagnostics(results *coder.Results) {
	statement := results.Statement

	if !models.IsAmountUnknown(statement.Summary.Totals.Deposits) && !statement.DepositsMatchTotal() {
		fmt.Fprintf(r.w, "WARNING: deposits computed %s vs printed %s\n",
			statement.ComputedDepositTotal().StringFixed(2),
			statement.Summary.Totals.Deposits.StringFixed(2))
	}
	if !models.IsAmountUnknown(statement.Summary.Totals.Withdrawals) && !statement.WithdrawalsMatchTotal() {
		fmt.Fprintf(r.w, "WARNING: withdrawals computed %s vs printed %s\n",
			statement.ComputedWithdrawalTotal().StringFixed(2),
			statement.Summary.Totals.Withdrawals.StringFixed(2))
	}

	if results.Ledger != nil {
		reconciliation := results.Ledger.Reconcile()
		if !reconciliation.CountMatches() {
			fmt.Fprintf(r.w, "WARNING: ledger lists %d distributions, parsed %d entries\n",
				reconciliation.ExpectedEntries, reconciliation.ActualEntries)
		}
		for _, a := range reconciliation.Accounts {
			fmt.Fprintf(r.w, "WARNING: account %s %s entry sum %s vs total %s\n",
				a.Number, a.Name, a.EntrySum.StringFixed(2), a.AmountTotal.StringFixed(2))
		}
	}
	fmt.Fprintln(r.w)
}
