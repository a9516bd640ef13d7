package glformats

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/pkg/errors"
	"bank-statement-coder/pkg/logger"
)

// Sheets the accounting package exports alongside the data.
const spreadsheetTipsSheet = "QuickBooks Export Tips"

// spreadsheetColumns maps recognized header cells to row positions.
type spreadsheetColumns struct {
	date    int
	name    int
	amount  int
	balance int
}

func newSpreadsheetColumns() spreadsheetColumns {
	return spreadsheetColumns{date: -1, name: -1, amount: -1, balance: -1}
}

func (c spreadsheetColumns) complete() bool {
	return c.name >= 0 && c.amount >= 0
}

// ParseSpreadsheet parses a spreadsheet general-ledger export. Rows are
// grouped into accounts by the export's own markers: a row whose name
// cell starts with "Total" closes the current account and the next
// named amountless row opens the following one.
func ParseSpreadsheet(r io.Reader) (*models.Ledger, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, "opening spreadsheet", err)
	}
	defer f.Close()

	ledger := &models.Ledger{Format: FormatSpreadsheet, DistributionCount: -1}
	ledger.Company.Name = models.Unknown

	for _, sheet := range f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(sheet), spreadsheetTipsSheet) {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileCorrupted, "reading sheet "+sheet, err)
		}
		parseSheet(ledger, sheet, rows)
	}

	models.SortAccounts(ledger.Accounts)
	return ledger, nil
}

func parseSheet(ledger *models.Ledger, sheet string, rows [][]string) {
	columns := newSpreadsheetColumns()
	var current *models.Account

	commit := func() {
		if current != nil && validAccount(current) {
			ledger.Accounts = append(ledger.Accounts, *current)
		}
		current = nil
	}

	for _, row := range rows {
		if !columns.complete() {
			columns = headerColumns(row)
			continue
		}

		name := cell(row, columns.name)
		switch {
		case name == "":
			continue
		case strings.HasPrefix(name, "Total"):
			if current != nil {
				current.AmountTotal = models.ParseAmount(cell(row, columns.amount))
				if columns.balance >= 0 {
					current.EndingBalance = models.ParseAmount(cell(row, columns.balance))
				}
			}
			commit()
		case current == nil:
			current = openSpreadsheetAccount(name, row, columns)
		case cell(row, columns.amount) == "":
			// A named amountless row inside an open account is the
			// next account's header arriving before the Total row.
			logger.WithComponent(logger.ComponentGLFormats).WithFields(logger.Fields{
				"sheet":   sheet,
				"account": current.Number,
			}).Debug("account closed without a total row")
			commit()
			current = openSpreadsheetAccount(name, row, columns)
		default:
			current.Entries = append(current.Entries, models.Entry{
				Date:        parseAcsDate(cell(row, columns.date)),
				Description: name,
				Amount:      models.ParseAmount(cell(row, columns.amount)),
			})
		}
	}
	commit()
}

// headerColumns recognizes the export's header row by its cell labels.
func headerColumns(row []string) spreadsheetColumns {
	columns := newSpreadsheetColumns()
	for i, value := range row {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "date":
			columns.date = i
		case "name", "account", "memo/description", "description":
			columns.name = i
		case "amount":
			columns.amount = i
		case "balance":
			columns.balance = i
		}
	}
	return columns
}

// openSpreadsheetAccount starts an account from its header row, whose
// name cell prints "number · name" or just the name.
func openSpreadsheetAccount(name string, row []string, columns spreadsheetColumns) *models.Account {
	account := &models.Account{
		Number:           models.Unknown,
		Name:             name,
		BeginningBalance: models.AmountUnknown,
		EndingBalance:    models.AmountUnknown,
		AmountTotal:      models.AmountUnknown,
	}
	if number, rest, ok := splitAccountNumber(name); ok {
		account.Number = number
		account.Name = rest
	}
	if columns.balance >= 0 {
		if balance := models.ParseAmount(cell(row, columns.balance)); !models.IsAmountUnknown(balance) {
			account.BeginningBalance = balance
		}
	}
	return account
}

// splitAccountNumber separates a leading numeric account code from the
// account name.
func splitAccountNumber(name string) (string, string, bool) {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return "", "", false
	}
	number := fields[0]
	for _, r := range number {
		if (r < '0' || r > '9') && r != '.' {
			return "", "", false
		}
	}
	rest := strings.TrimSpace(strings.TrimPrefix(strings.Join(fields[1:], " "), "·"))
	return number, strings.TrimSpace(rest), true
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
