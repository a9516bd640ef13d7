// Package models owns the parsed, validated representation of bank
// statements and general ledgers, including their self-reconciliation
// arithmetic.
//
// Instances are built once by the layout extractors and are immutable
// afterwards, except for the stored-file reference attached for UI
// linking. Reconciliation is a pure function of the parsed data:
// mismatches between printed totals and computed sums are surfaced as
// structured values for logging, never as errors.
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company identifies the account holder printed on a document.
type Company struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// BankAccount identifies the statement's account.
type BankAccount struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
}

// Period is the statement or ledger coverage window, both ends in the
// canonical calendar format.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Balance holds the statement's opening and closing balances.
type Balance struct {
	Begin decimal.Decimal `json:"begin"`
	End   decimal.Decimal `json:"end"`
}

// Totals holds the statement's printed section totals. Withdrawals,
// fees and checks are negative internally even when the statement
// prints them unsigned.
type Totals struct {
	Deposits    decimal.Decimal `json:"deposits"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	Fees        decimal.Decimal `json:"fees"`
	Checks      decimal.Decimal `json:"checks"`
}

// Summary is the statement-summary section.
type Summary struct {
	Balance Balance `json:"balance"`
	Totals  Totals  `json:"totals"`
}

// NewSummary returns a summary with every field set to the not-found
// sentinel.
func NewSummary() Summary {
	return Summary{
		Balance: Balance{Begin: AmountUnknown, End: AmountUnknown},
		Totals: Totals{
			Deposits:    AmountUnknown,
			Withdrawals: AmountUnknown,
			Fees:        AmountUnknown,
			Checks:      AmountUnknown,
		},
	}
}

// Description carries a transaction's original text and an optional
// normalized form produced by the issuer's shortener. The shortened
// form is used preferentially for matching and display.
type Description struct {
	Original  string `json:"original"`
	Shortened string `json:"shortened,omitempty"`
}

// Best returns the shortened description when one exists, otherwise
// the original.
func (d Description) Best() string {
	if d.Shortened != "" {
		return d.Shortened
	}
	return d.Original
}

// Transaction is one statement line item. Amounts carry two decimal
// places; withdrawals and fees are negative.
type Transaction struct {
	Date        string          `json:"date"`
	Description Description     `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// StoredFile references the uploaded document a parsed result came
// from; used only for UI linking.
type StoredFile struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Hash string    `json:"hash,omitempty"`
}

// Statement is one parsed bank statement.
type Statement struct {
	Issuer      string        `json:"issuer,omitempty"`
	Company     Company       `json:"company"`
	Account     BankAccount   `json:"account"`
	Period      Period        `json:"period"`
	Summary     Summary       `json:"summary"`
	Deposits    []Transaction `json:"deposits"`
	Withdrawals []Transaction `json:"withdrawals"`
	File        *StoredFile   `json:"file,omitempty"`
}

// Identified reports whether an issuer claimed this statement. When
// false no other field is trustworthy.
func (s *Statement) Identified() bool {
	return s.Issuer != ""
}

// ComputedDepositTotal sums the extracted deposits, rounded to two
// places.
func (s *Statement) ComputedDepositTotal() decimal.Decimal {
	return sumTransactions(s.Deposits)
}

// ComputedWithdrawalTotal sums the extracted withdrawals, rounded to
// two places.
func (s *Statement) ComputedWithdrawalTotal() decimal.Decimal {
	return sumTransactions(s.Withdrawals)
}

// DepositsMatchTotal compares the computed deposit sum against the
// printed summary total. The invariant is soft: callers log a
// violation, they do not reject the statement.
func (s *Statement) DepositsMatchTotal() bool {
	if IsAmountUnknown(s.Summary.Totals.Deposits) {
		return false
	}
	return s.ComputedDepositTotal().Equal(s.Summary.Totals.Deposits)
}

// WithdrawalsMatchTotal compares the computed withdrawal sum against
// the printed summary total.
func (s *Statement) WithdrawalsMatchTotal() bool {
	if IsAmountUnknown(s.Summary.Totals.Withdrawals) {
		return false
	}
	return s.ComputedWithdrawalTotal().Equal(s.Summary.Totals.Withdrawals)
}

func sumTransactions(transactions []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
	}
	return total.Round(2)
}
