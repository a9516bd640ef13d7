package models

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Entry is one general-ledger line under an account. Amount is
// optional; AmountUnknown when the export did not print one.
type Entry struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Account is one chart-of-accounts entry with its booked entries.
type Account struct {
	Number           string          `json:"number"`
	Name             string          `json:"name"`
	BeginningBalance decimal.Decimal `json:"beginningBalance"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
	AmountTotal      decimal.Decimal `json:"amountTotal"`
	Entries          []Entry         `json:"entries"`
}

// EntrySum totals the account's entry amounts, skipping entries whose
// amount was not printed, rounded to two places.
func (a *Account) EntrySum() decimal.Decimal {
	total := decimal.Zero
	for _, e := range a.Entries {
		if IsAmountUnknown(e.Amount) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total.Round(2)
}

// Reconciles reports whether the entry sum agrees with the printed
// control total. Accounts without a printed total trivially reconcile.
func (a *Account) Reconciles() bool {
	if IsAmountUnknown(a.AmountTotal) {
		return true
	}
	return a.EntrySum().Equal(a.AmountTotal)
}

// Ledger is one parsed general-ledger export.
type Ledger struct {
	Format  string  `json:"format,omitempty"`
	Company Company `json:"company"`
	Period  Period  `json:"period"`
	// Accounts sorted by account number.
	Accounts []Account `json:"accounts"`
	// DistributionCount is the export's printed expected total entry
	// count, used for the global reconciliation check; -1 when absent.
	DistributionCount int         `json:"distributionCount"`
	File              *StoredFile `json:"file,omitempty"`
}

// Identified reports whether a known ledger format claimed this
// document.
func (l *Ledger) Identified() bool {
	return l.Format != ""
}

// FindAccountByNumber returns the account with the given number, or
// nil.
func (l *Ledger) FindAccountByNumber(number string) *Account {
	for i := range l.Accounts {
		if l.Accounts[i].Number == number {
			return &l.Accounts[i]
		}
	}
	return nil
}

// FindAccountByName returns the first account with the given name, or
// nil.
func (l *Ledger) FindAccountByName(name string) *Account {
	for i := range l.Accounts {
		if l.Accounts[i].Name == name {
			return &l.Accounts[i]
		}
	}
	return nil
}

// TotalEntries counts entries across all accounts.
func (l *Ledger) TotalEntries() int {
	total := 0
	for i := range l.Accounts {
		total += len(l.Accounts[i].Entries)
	}
	return total
}

// AccountDiscrepancy describes one account whose entry sum disagrees
// with its printed control total.
type AccountDiscrepancy struct {
	Number      string          `json:"number"`
	Name        string          `json:"name"`
	EntrySum    decimal.Decimal `json:"entrySum"`
	AmountTotal decimal.Decimal `json:"amountTotal"`
}

// LedgerReconciliation is the result of the ledger's global
// self-check. It is diagnostic output: a ledger that fails
// reconciliation is still usable for coding.
type LedgerReconciliation struct {
	ExpectedEntries int                  `json:"expectedEntries"`
	ActualEntries   int                  `json:"actualEntries"`
	Accounts        []AccountDiscrepancy `json:"accounts,omitempty"`
}

// CountMatches reports whether the actual entry count agrees with the
// printed distribution count. Always true when no count was printed.
// Known limitation: exports that pack several entries into one printed
// line under-count, which shows up here as a logged discrepancy.
func (r *LedgerReconciliation) CountMatches() bool {
	return r.ExpectedEntries < 0 || r.ExpectedEntries == r.ActualEntries
}

// Reconcile runs the ledger's global self-check: actual entry count
// against the printed distribution count, plus a per-account breakdown
// of entry-sum vs printed-total mismatches to aid debugging.
func (l *Ledger) Reconcile() *LedgerReconciliation {
	result := &LedgerReconciliation{
		ExpectedEntries: l.DistributionCount,
		ActualEntries:   l.TotalEntries(),
	}
	for i := range l.Accounts {
		a := &l.Accounts[i]
		if !a.Reconciles() {
			result.Accounts = append(result.Accounts, AccountDiscrepancy{
				Number:      a.Number,
				Name:        a.Name,
				EntrySum:    a.EntrySum(),
				AmountTotal: a.AmountTotal,
			})
		}
	}
	return result
}

// SortAccounts orders accounts numerically by account number where
// possible, lexically otherwise.
func SortAccounts(accounts []Account) {
	sort.SliceStable(accounts, func(i, j int) bool {
		a, aErr := strconv.ParseFloat(accounts[i].Number, 64)
		b, bErr := strconv.ParseFloat(accounts[j].Number, 64)
		if aErr == nil && bErr == nil {
			return a < b
		}
		return accounts[i].Number < accounts[j].Number
	})
}
