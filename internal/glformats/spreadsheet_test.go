package glformats

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func spreadsheetFixture(t *testing.T) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"Date", "Name", "Amount", "Balance"},
		{"", "105 · Cash in Bank", "", "1,000.00"},
		{"01/05/2023", "STAPLES", "250.00", "1,250.00"},
		{"01/10/2023", "FLA DEPT REVENUE", "-100.00", "1,150.00"},
		{"", "Total 105 · Cash in Bank", "150.00", "1,150.00"},
		{"", "3130 · SUSPENSE", "", ""},
		{"01/12/2023", "MISC", "50.00", "50.00"},
		{"", "Total 3130 · SUSPENSE", "50.00", "50.00"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	// The accounting package ships a tips sheet that must be skipped.
	if _, err := f.NewSheet(spreadsheetTipsSheet); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(spreadsheetTipsSheet, "A1", "Tips for exporting"); err != nil {
		t.Fatal(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParseSpreadsheet(t *testing.T) {
	ledger, err := ParseSpreadsheet(spreadsheetFixture(t))
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Format != FormatSpreadsheet {
		t.Fatalf("format = %q", ledger.Format)
	}
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
	if got := cash.AmountTotal.String(); got != "150" {
		t.Errorf("amount total = %s", got)
	}
	if len(cash.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(cash.Entries))
	}
	if e := cash.Entries[0]; e.Date != "01/05/2023" || e.Description != "STAPLES" {
		t.Errorf("first entry = %+v", e)
	}
	if !cash.Reconciles() {
		t.Errorf("entry sum %s vs total %s", cash.EntrySum(), cash.AmountTotal)
	}

	suspense := ledger.FindAccountByNumber("3130")
	if suspense == nil || suspense.Name != "SUSPENSE" {
		t.Fatalf("suspense account = %+v", suspense)
	}
	if len(suspense.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(suspense.Entries))
	}
}

func TestParseSpreadsheetRejectsGarbage(t *testing.T) {
	if _, err := ParseSpreadsheet(bytes.NewReader([]byte("not a spreadsheet"))); err == nil {
		t.Fatal("expected error for non-spreadsheet input")
	}
}
