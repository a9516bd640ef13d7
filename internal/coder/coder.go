// Package coder turns a matched statement-ledger pairing into editable
// codings: every transaction gets a machine selection plus a reviewer
// override that can be toggled and propagated to look-alike
// transactions.
package coder

import (
	"regexp"
	"strings"
	"sync"

	"bank-statement-coder/internal/matcher"
	"bank-statement-coder/internal/models"
	"bank-statement-coder/pkg/errors"
	"bank-statement-coder/pkg/logger"
)

// ListKind names one of the two transaction lists of a statement.
type ListKind string

const (
	Deposits    ListKind = "deposits"
	Withdrawals ListKind = "withdrawals"
)

// Selection is a concrete account-and-entry choice for a transaction.
// Indexes point into the ledger's account list and that account's
// entry list; -1 marks a choice outside the ledger (suspense default).
type Selection struct {
	AccountNumber    string `json:"accountNumber"`
	AccountName      string `json:"accountName"`
	AccountIndex     int    `json:"accountIndex"`
	EntryDescription string `json:"entryDescription"`
	EntryIndex       int    `json:"entryIndex"`
}

// Override is the reviewer's editable copy of the machine selection.
// Disabled overrides are kept so toggling them back restores the edit.
type Override struct {
	Selection
	Enabled      bool `json:"enabled"`
	EntryEnabled bool `json:"entryEnabled"`
}

// Coding is one transaction with its ranked candidates, the machine
// selection and the reviewer override.
type Coding struct {
	Transaction models.Transaction      `json:"transaction"`
	Matches     []*matcher.AccountMatch `json:"matches"`
	Selection   Selection               `json:"selection"`
	Override    Override                `json:"override"`
}

// Effective returns the selection in force: the override when enabled,
// the machine selection otherwise.
func (c *Coding) Effective() Selection {
	if c.Override.Enabled {
		return c.Override.Selection
	}
	return c.Selection
}

// Results is a point-in-time snapshot of a coder's state.
type Results struct {
	Statement   *models.Statement `json:"statement"`
	Ledger      *models.Ledger    `json:"ledger"`
	Deposits    []Coding          `json:"deposits"`
	Withdrawals []Coding          `json:"withdrawals"`
	Stats       matcher.Stats     `json:"stats"`
}

// Coder holds the mutable coding state for one statement-ledger
// pairing. All mutation goes through the mutex so propagation sees a
// consistent snapshot.
type Coder struct {
	mu          sync.Mutex
	statement   *models.Statement
	ledger      *models.Ledger
	deposits    []Coding
	withdrawals []Coding
	stats       matcher.Stats
	log         logger.Logger
}

// New matches the statement against the ledger and seeds a coding per
// transaction: selection and override both start at the top candidate's
// top entry, the override disabled.
func New(statement *models.Statement, ledger *models.Ledger, engine *matcher.Engine) *Coder {
	results := engine.Code(statement, ledger)
	return &Coder{
		statement:   statement,
		ledger:      ledger,
		deposits:    seedCodings(results.Deposits),
		withdrawals: seedCodings(results.Withdrawals),
		stats:       results.Stats,
		log:         logger.WithComponent(logger.ComponentCoder),
	}
}

func seedCodings(matches []matcher.TransactionMatches) []Coding {
	codings := make([]Coding, 0, len(matches))
	for _, tm := range matches {
		coding := Coding{Transaction: tm.Transaction, Matches: tm.Matches}
		if len(tm.Matches) > 0 {
			top := tm.Matches[0]
			coding.Selection = Selection{
				AccountNumber: top.AccountNumber,
				AccountName:   top.AccountName,
				AccountIndex:  top.AccountIndex,
				EntryIndex:    -1,
			}
			if len(top.Entries) > 0 {
				coding.Selection.EntryDescription = top.Entries[0].Description
				coding.Selection.EntryIndex = top.Entries[0].Index
			}
		}
		coding.Override = Override{Selection: coding.Selection}
		codings = append(codings, coding)
	}
	return codings
}

// Results returns a snapshot of the current codings. The slices are
// copies; later mutation does not bleed into a snapshot already handed
// out.
func (c *Coder) Results() *Results {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Results{
		Statement:   c.statement,
		Ledger:      c.ledger,
		Deposits:    append([]Coding(nil), c.deposits...),
		Withdrawals: append([]Coding(nil), c.withdrawals...),
		Stats:       c.stats,
	}
}

func (c *Coder) list(kind ListKind) ([]Coding, error) {
	switch kind {
	case Deposits:
		return c.deposits, nil
	case Withdrawals:
		return c.withdrawals, nil
	default:
		return nil, errors.Newf(errors.CategoryCoding, errors.CodeUnexpected,
			"unknown list kind %q", kind)
	}
}

func (c *Coder) coding(kind ListKind, index int) (*Coding, error) {
	list, err := c.list(kind)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(list) {
		return nil, errors.Newf(errors.CategoryCoding, errors.CodeIndexOutOfRange,
			"%s index %d out of range (%d codings)", kind, index, len(list))
	}
	return &list[index], nil
}

// SetOverrideAccount points a transaction's override at another
// account. The account is resolved against the ledger when present so
// the override carries real indexes; an off-ledger number is kept
// verbatim. Setting the account resets the override's entry choice.
func (c *Coder) SetOverrideAccount(kind ListKind, index int, accountNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	coding, err := c.coding(kind, index)
	if err != nil {
		return err
	}

	coding.Override.AccountNumber = accountNumber
	coding.Override.AccountName = ""
	coding.Override.AccountIndex = -1
	coding.Override.EntryDescription = ""
	coding.Override.EntryIndex = -1
	coding.Override.Enabled = true

	for ai := range c.ledger.Accounts {
		if c.ledger.Accounts[ai].Number == accountNumber {
			coding.Override.AccountName = c.ledger.Accounts[ai].Name
			coding.Override.AccountIndex = ai
			break
		}
	}
	return nil
}

// SetOverrideEntry sets the override's entry description and enables
// the entry part of the override.
func (c *Coder) SetOverrideEntry(kind ListKind, index int, description string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	coding, err := c.coding(kind, index)
	if err != nil {
		return err
	}

	coding.Override.EntryDescription = description
	coding.Override.EntryIndex = -1
	coding.Override.EntryEnabled = true

	if coding.Override.AccountIndex >= 0 && coding.Override.AccountIndex < len(c.ledger.Accounts) {
		account := &c.ledger.Accounts[coding.Override.AccountIndex]
		for ei := range account.Entries {
			if strings.EqualFold(account.Entries[ei].Description, description) {
				coding.Override.EntryIndex = ei
				break
			}
		}
	}
	return nil
}

// SetOverrideEnabled toggles the whole override without discarding its
// edits.
func (c *Coder) SetOverrideEnabled(kind ListKind, index int, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	coding, err := c.coding(kind, index)
	if err != nil {
		return err
	}
	coding.Override.Enabled = enabled
	return nil
}

// SetOverrideEntryEnabled toggles just the entry part of the override.
func (c *Coder) SetOverrideEntryEnabled(kind ListKind, index int, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	coding, err := c.coding(kind, index)
	if err != nil {
		return err
	}
	coding.Override.EntryEnabled = enabled
	return nil
}

var digitsRe = regexp.MustCompile(`\d`)

// propagationKey strips the digits from a description's original text.
// Card numbers, dates and trace IDs vary between otherwise identical
// recurring-payee transactions; everything else must match verbatim,
// and the shortened form plays no part.
func propagationKey(d models.Description) string {
	return digitsRe.ReplaceAllString(d.Original, "")
}

// Propagate copies one transaction's override to every other
// transaction in the same list whose digit-stripped original
// description matches the source's. Returns how many codings were
// updated.
func (c *Coder) Propagate(kind ListKind, index int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	source, err := c.coding(kind, index)
	if err != nil {
		return 0, err
	}
	list, err := c.list(kind)
	if err != nil {
		return 0, err
	}
	key := propagationKey(source.Transaction.Description)

	updated := 0
	for i := range list {
		target := &list[i]
		if target == source {
			continue
		}
		if propagationKey(target.Transaction.Description) != key {
			continue
		}
		target.Override = source.Override
		updated++
	}

	c.log.WithFields(logger.Fields{
		"list":    string(kind),
		"index":   index,
		"updated": updated,
	}).Debug("override propagated")
	return updated, nil
}
