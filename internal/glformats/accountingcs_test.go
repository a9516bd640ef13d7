package glformats

import (
	"testing"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
)

func docFromLines(texts ...string) ocr.Document {
	lines := make([]*ocr.Line, 0, len(texts))
	for i, t := range texts {
		y := 0.05 + float64(i)*0.02
		lines = append(lines, &ocr.Line{Fragments: []*ocr.TextFragment{{
			Text: t,
			BoundingPoly: ocr.BoundingPoly{NormalizedVertices: ocr.Corners{
				TopLeft:     ocr.Coordinates{X: 0.1, Y: y},
				TopRight:    ocr.Coordinates{X: 0.9, Y: y},
				BottomLeft:  ocr.Coordinates{X: 0.1, Y: y + 0.005},
				BottomRight: ocr.Coordinates{X: 0.9, Y: y + 0.005},
			}},
		}}})
	}
	return ocr.Document{lines}
}

func TestParseAccountingCS(t *testing.T) {
	doc := docFromLines(
		"ACME SUPPLY LLC General Ledger",
		"July 1, 2023 - July 31, 2023",
		"105 Cash in Bank 1,000.00",
		"01/05/23 1234 PR STAPLES PURCHASE 250.00 1,250.00",
		"01/10/23 JV FLA DEPT REVENUE 100.00- 1,150.00",
		"01/15/23 RU TRANSFER TO 75.00 1,225.00",
		"OPERATING",
		"Totals for 105 225.00",
		"3130 SUSPENSE",
		"01/12/23 MD MISC 50.00 50.00",
		"Totals for 3130 50.00",
		"0.00 Net Profit",
		"Totals for 0.00 275.00",
		"4 distributions",
	)

	ledger := ParseAccountingCS(doc)
	if ledger.Format != FormatAccountingCS {
		t.Fatalf("format = %q", ledger.Format)
	}
	if ledger.Company.Name != "ACME SUPPLY LLC" {
		t.Errorf("company = %q", ledger.Company.Name)
	}
	if ledger.Period.Start != "07/01/2023" || ledger.Period.End != "07/31/2023" {
		t.Errorf("period = %+v", ledger.Period)
	}
	if ledger.DistributionCount != 4 {
		t.Errorf("distribution count = %d", ledger.DistributionCount)
	}

	// The net-profit artifact row must not survive as an account.
	if len(ledger.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(ledger.Accounts))
	}

	cash := ledger.FindAccountByNumber("105")
	if cash == nil {
		t.Fatal("account 105 missing")
	}
	if cash.Name != "Cash in Bank" {
		t.Errorf("name = %q", cash.Name)
	}
	if got := cash.BeginningBalance.String(); got != "1000" {
		t.Errorf("beginning balance = %s", got)
	}
	if len(cash.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(cash.Entries))
	}
	if e := cash.Entries[0]; e.Date != "01/05/2023" || e.Description != "STAPLES PURCHASE" {
		t.Errorf("first entry = %+v", e)
	}
	if !cash.Entries[1].Amount.Equal(models.ParseNegativeAmount("100.00")) {
		t.Errorf("trailing-minus amount = %s", cash.Entries[1].Amount)
	}
	if got := cash.Entries[2].Description; got != "TRANSFER TO OPERATING" {
		t.Errorf("rejoined description = %q", got)
	}
	if !cash.Reconciles() {
		t.Errorf("entry sum %s vs total %s", cash.EntrySum(), cash.AmountTotal)
	}

	suspense := ledger.FindAccountByNumber("3130")
	if suspense == nil || suspense.Name != "SUSPENSE" {
		t.Fatalf("suspense account = %+v", suspense)
	}
	if !suspense.Reconciles() {
		t.Errorf("suspense should reconcile")
	}

	reconciliation := ledger.Reconcile()
	if !reconciliation.CountMatches() {
		t.Errorf("count: expected %d actual %d",
			reconciliation.ExpectedEntries, reconciliation.ActualEntries)
	}
}

func TestParseAccountingCSHoldsMismatchedTotals(t *testing.T) {
	doc := docFromLines(
		"ACME General Ledger",
		"200 Supplies",
		"01/05/23 PR OFFICE DEPOT 40.00 40.00",
		"Totals for 300 10.00",
		"Totals for 200 40.00",
	)

	ledger := ParseAccountingCS(doc)
	supplies := ledger.FindAccountByNumber("200")
	if supplies == nil {
		t.Fatal("account 200 missing")
	}
	if len(supplies.Entries) != 1 {
		t.Fatalf("entries = %d, want 1 held for the matching totals line", len(supplies.Entries))
	}
	if other := ledger.FindAccountByNumber("300"); other != nil && len(other.Entries) != 0 {
		t.Errorf("mismatched totals must not claim the buffer")
	}
}

func TestParseAccountingCSHeldBufferDoesNotLeak(t *testing.T) {
	doc := docFromLines(
		"ACME General Ledger",
		"4010 Office Supplies",
		"01/05/23 PR OFFICE DEPOT 40.00 40.00",
		"Totals for 300 10.00",
		"6020 Utilities",
		"01/08/23 PR CITY POWER 60.00 60.00",
		"Totals for 6020 60.00",
		"Totals for 4010 40.00",
	)

	ledger := ParseAccountingCS(doc)

	utilities := ledger.FindAccountByNumber("6020")
	if utilities == nil {
		t.Fatal("account 6020 missing")
	}
	if len(utilities.Entries) != 1 || utilities.Entries[0].Description != "CITY POWER" {
		t.Fatalf("utilities entries = %+v, want only its own", utilities.Entries)
	}

	supplies := ledger.FindAccountByNumber("4010")
	if supplies == nil {
		t.Fatal("account 4010 missing")
	}
	if len(supplies.Entries) != 1 || supplies.Entries[0].Description != "OFFICE DEPOT" {
		t.Fatalf("supplies entries = %+v, want the held entry claimed", supplies.Entries)
	}
}

func TestParseAccountingCSNewHeaderParksBuffer(t *testing.T) {
	doc := docFromLines(
		"ACME General Ledger",
		"200 Supplies",
		"01/05/23 PR OFFICE DEPOT 40.00 40.00",
		"310 Rent",
		"01/06/23 PR LANDLORD 500.00 500.00",
		"Totals for 310 500.00",
		"Totals for 200 40.00",
	)

	ledger := ParseAccountingCS(doc)

	rent := ledger.FindAccountByNumber("310")
	if rent == nil {
		t.Fatal("account 310 missing")
	}
	if len(rent.Entries) != 1 || rent.Entries[0].Description != "LANDLORD" {
		t.Fatalf("rent entries = %+v, want only its own", rent.Entries)
	}

	supplies := ledger.FindAccountByNumber("200")
	if supplies == nil {
		t.Fatal("account 200 missing")
	}
	if len(supplies.Entries) != 1 || supplies.Entries[0].Description != "OFFICE DEPOT" {
		t.Fatalf("supplies entries = %+v, want the parked entry claimed", supplies.Entries)
	}
}

func TestParseAccountingCSUnidentified(t *testing.T) {
	ledger := ParseAccountingCS(docFromLines("some other report", "nothing here"))
	if ledger.Identified() {
		t.Fatalf("format = %q, want empty", ledger.Format)
	}
}

func TestParseAccountingCSMergesDuplicateAccounts(t *testing.T) {
	doc := docFromLines(
		"ACME General Ledger",
		"105 Cash in Bank",
		"01/05/23 PR DEPOSIT 10.00 10.00",
		"Totals for 105 10.00",
		"105 Cash in Bank",
		"02/05/23 PR DEPOSIT 20.00 30.00",
		"Totals for 105 30.00",
	)

	ledger := ParseAccountingCS(doc)
	if len(ledger.Accounts) != 1 {
		t.Fatalf("accounts = %d, want merged 1", len(ledger.Accounts))
	}
	if got := len(ledger.Accounts[0].Entries); got != 2 {
		t.Errorf("entries = %d, want 2", got)
	}
}
