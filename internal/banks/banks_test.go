package banks

import (
	"testing"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
)

// fragAt builds a fragment as a small box whose corners all sit near
// the given normalized position, so rectangle checks behave.
func fragAt(text string, x, y float64) *ocr.TextFragment {
	corners := ocr.Corners{
		TopLeft:     ocr.Coordinates{X: x, Y: y},
		TopRight:    ocr.Coordinates{X: x + 0.01, Y: y},
		BottomLeft:  ocr.Coordinates{X: x, Y: y + 0.005},
		BottomRight: ocr.Coordinates{X: x + 0.01, Y: y + 0.005},
	}
	return &ocr.TextFragment{
		Text:         text,
		BoundingPoly: ocr.BoundingPoly{NormalizedVertices: corners},
	}
}

func lineAt(x, y float64, texts ...string) *ocr.Line {
	line := &ocr.Line{}
	for i, t := range texts {
		line.Fragments = append(line.Fragments, fragAt(t, x+float64(i)*0.02, y))
	}
	return line
}

func textLines(texts ...string) []*ocr.Line {
	lines := make([]*ocr.Line, 0, len(texts))
	for i, t := range texts {
		lines = append(lines, lineAt(0.1, 0.05+float64(i)*0.02, t))
	}
	return lines
}

func TestRegistryDetect(t *testing.T) {
	registry := NewRegistry()

	doc := ocr.Document{textLines("some header", "call 1.888.BUSINESS for help")}
	e, ok := registry.Detect(doc)
	if !ok || e.Name() != "Bank of America" {
		t.Fatalf("Detect = %v, %v, want Bank of America", e, ok)
	}

	if _, ok := registry.Detect(ocr.Document{textLines("no anchors here")}); ok {
		t.Fatal("expected no match for anchorless document")
	}

	// Priority order breaks ties: a page carrying two anchors goes to
	// the higher-priority issuer.
	both := ocr.Document{textLines("Chase.com", "Regions Bank")}
	e, ok = registry.Detect(both)
	if !ok || e.Name() != "Chase" {
		t.Fatalf("Detect = %v, want Chase by priority", e)
	}
}

func TestBankOfAmericaStatement(t *testing.T) {
	doc := ocr.Document{textLines(
		"ACME SUPPLY LLC ! Account number: 1234 5678 9012",
		"1.888.BUSINESS",
		"for July 1, 2023 to July 31, 2023",
		"Beginning balance on July 1, 2023 $1,000.00",
		"Deposits and other credits 2,500.00",
		"Withdrawals and other debits -1,200.00",
		"Checks -300.00",
		"Service fees -25.00",
		"Ending balance on July 31, 2023 $1,975.00",
		"Deposits and other credits",
		"Date Description Amount",
		"07/03 Counter Credit 1,500.00",
		"07/10 STAPLES DES:PURCHASE ID:12345 INDN:ACME 1,000.00",
		"Total deposits and other credits $2,500.00",
		"Withdrawals and other debits",
		"07/05 FLA DEPT REVENUE DES:C01 ID:99999 1,200.00",
		"Total withdrawals and other debits $1,200.00",
	)}

	statement := ParseStatement(doc, NewRegistry())
	if !statement.Identified() || statement.Issuer != "Bank of America" {
		t.Fatalf("issuer = %q, want Bank of America", statement.Issuer)
	}
	if statement.Company.Name != "ACME SUPPLY LLC" {
		t.Errorf("company = %q", statement.Company.Name)
	}
	if statement.Account.Number != "1234 5678 9012" {
		t.Errorf("account = %q", statement.Account.Number)
	}
	if statement.Period.Start != "07/01/2023" || statement.Period.End != "07/31/2023" {
		t.Errorf("period = %+v", statement.Period)
	}

	if got := statement.Summary.Balance.Begin.String(); got != "1000" {
		t.Errorf("beginning balance = %s", got)
	}
	if got := statement.Summary.Totals.Deposits.String(); got != "2500" {
		t.Errorf("deposit total = %s", got)
	}
	if !statement.Summary.Totals.Withdrawals.IsNegative() {
		t.Errorf("withdrawal total not negative: %s", statement.Summary.Totals.Withdrawals)
	}
	if !statement.Summary.Totals.Fees.Equal(models.ParseNegativeAmount("25.00")) {
		t.Errorf("fees = %s", statement.Summary.Totals.Fees)
	}

	if len(statement.Deposits) != 2 {
		t.Fatalf("deposits = %d, want 2", len(statement.Deposits))
	}
	first := statement.Deposits[0]
	if first.Date != "07/03/2023" || first.Description.Original != "Counter Credit" {
		t.Errorf("first deposit = %+v", first)
	}
	if got := statement.Deposits[1].Description.Best(); got != "STAPLES" {
		t.Errorf("shortened description = %q", got)
	}

	if len(statement.Withdrawals) != 1 {
		t.Fatalf("withdrawals = %d, want 1", len(statement.Withdrawals))
	}
	w := statement.Withdrawals[0]
	if !w.Amount.IsNegative() {
		t.Errorf("withdrawal amount not negative: %s", w.Amount)
	}
	if w.Description.Best() != "FDOR" {
		t.Errorf("shortened withdrawal = %q", w.Description.Best())
	}

	if !statement.DepositsMatchTotal() {
		t.Errorf("deposits should reconcile: computed %s printed %s",
			statement.ComputedDepositTotal(), statement.Summary.Totals.Deposits)
	}
	if !statement.WithdrawalsMatchTotal() {
		t.Errorf("withdrawals should reconcile: computed %s printed %s",
			statement.ComputedWithdrawalTotal(), statement.Summary.Totals.Withdrawals)
	}
}

func TestChaseHeaderExtraction(t *testing.T) {
	chase := &Chase{}
	doc := ocr.Document{[]*ocr.Line{
		lineAt(0.6, 0.06, "July 01, 2023 through July 31, 2023"),
		lineAt(0.6, 0.075, "Account Number: 000001234"),
		lineAt(0.1, 0.18, "WIDGETS INC", "100 MAIN ST", "ORLANDO FL 32801"),
		lineAt(0.1, 0.3, "Chase.com"),
	}}

	if !chase.Identify(doc) {
		t.Fatal("anchor not identified")
	}

	company := chase.ExtractCompany(doc)
	if company.Name != "WIDGETS INC" {
		t.Errorf("company = %q", company.Name)
	}
	if company.Address != "100 MAIN ST, ORLANDO FL 32801" {
		t.Errorf("address = %q", company.Address)
	}

	account := chase.ExtractAccount(doc)
	if account.Number != "000001234" {
		t.Errorf("account = %q", account.Number)
	}

	period := chase.ExtractPeriod(doc)
	if period.Start != "07/01/2023" || period.End != "07/31/2023" {
		t.Errorf("period = %+v", period)
	}
}

func TestChaseWithdrawalSections(t *testing.T) {
	chase := &Chase{}
	doc := ocr.Document{textLines(
		"Chase.com",
		"ELECTRONIC WITHDRAWALS",
		"07/12 Orig CO Name:Fpl Direct Debit Orig ID:3590247775 450.00",
		"Total Electronic Withdrawals $450.00",
		"FEES",
		"07/31 Monthly Service Fee 15.00",
		"Total Fees $15.00",
	)}

	period := models.Period{Start: "07/01/2023", End: "07/31/2023"}
	withdrawals := chase.ExtractWithdrawals(doc, period)
	if len(withdrawals) != 2 {
		t.Fatalf("withdrawals = %d, want 2", len(withdrawals))
	}
	for _, w := range withdrawals {
		if !w.Amount.IsNegative() {
			t.Errorf("amount not negative: %s", w.Amount)
		}
	}
	if got := withdrawals[0].Description.Best(); got != "Orig CO Name:Fpl Direct Debit" {
		t.Errorf("shortened = %q", got)
	}
}

func TestParseTransactionLine(t *testing.T) {
	sec := transactionSection{requireLetters: true}

	tx, ok := parseTransactionLine("07/03 Counter Credit 1,500.00", sec, "2023", "07/01/2023")
	if !ok || tx.Date != "07/03/2023" || tx.Amount.String() != "1500" {
		t.Fatalf("parsed = %+v, %v", tx, ok)
	}

	// Full dates keep their own year.
	tx, ok = parseTransactionLine("12/30/22 Carryover Credit 10.00", sec, "2023", "07/01/2023")
	if !ok || tx.Date != "12/30/2022" {
		t.Fatalf("carryover date = %q", tx.Date)
	}

	// Some issuers print the year with four digits.
	tx, ok = parseTransactionLine("08/23/2024 ACME PAYMENT 100.00", sec, "2024", "08/01/2024")
	if !ok || tx.Date != "08/23/2024" {
		t.Fatalf("four-digit year date = %q", tx.Date)
	}

	// No date falls back to the last seen date.
	tx, ok = parseTransactionLine("Service Charge 5.00", sec, "2023", "07/15/2023")
	if !ok || tx.Date != "07/15/2023" {
		t.Fatalf("fallback date = %q", tx.Date)
	}

	// Letterless rows are scanner noise.
	if _, ok := parseTransactionLine("07/03 123456 1,500.00", sec, "2023", "07/01/2023"); ok {
		t.Fatal("letterless row should be dropped")
	}

	// Rows without an amount never become transactions.
	if _, ok := parseTransactionLine("Date Description Amount", sec, "2023", "07/01/2023"); ok {
		t.Fatal("header row should be dropped")
	}
}

func TestSuretyIsIdentifyOnly(t *testing.T) {
	surety := &Surety{}
	doc := ocr.Document{textLines("Surety Bank", "statement of account")}
	if !surety.Identify(doc) {
		t.Fatal("anchor not identified")
	}

	statement := ParseStatement(doc, NewRegistry())
	if statement.Issuer != "Surety Bank" {
		t.Fatalf("issuer = %q", statement.Issuer)
	}
	if statement.Company.Name != models.Unknown {
		t.Errorf("company = %q, want sentinel", statement.Company.Name)
	}
	if !models.IsAmountUnknown(statement.Summary.Balance.Begin) {
		t.Errorf("balance should be sentinel")
	}
	if len(statement.Deposits) != 0 || len(statement.Withdrawals) != 0 {
		t.Errorf("expected no transactions")
	}
}

func TestUnidentifiedStatement(t *testing.T) {
	statement := ParseStatement(ocr.Document{textLines("some random document")}, NewRegistry())
	if statement.Identified() {
		t.Fatalf("issuer = %q, want empty", statement.Issuer)
	}
}
