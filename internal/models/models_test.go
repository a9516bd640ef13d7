package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,234.56", "1234.56"},
		{"$2,500.00", "2500"},
		{"-17.40", "-17.4"},
		{"(32.00)", "-32"},
		{"($1,000.00)", "-1000"},
		{"0.00", "0"},
		{"", "-1"},
		{"N/A", "-1"},
		{"-", "-1"},
	}

	for _, tt := range tests {
		got := ParseAmount(tt.in)
		if got.String() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseNegativeAmount(t *testing.T) {
	if got := ParseNegativeAmount("45.00"); got.String() != "-45" {
		t.Errorf("unsigned = %s, want -45", got)
	}
	if got := ParseNegativeAmount("-45.00"); got.String() != "-45" {
		t.Errorf("signed = %s, want -45", got)
	}
	if got := ParseNegativeAmount("garbage"); !IsAmountUnknown(got) {
		t.Errorf("garbage = %s, want sentinel", got)
	}
}

func TestIsAmountUnknown(t *testing.T) {
	if !IsAmountUnknown(AmountUnknown) {
		t.Error("sentinel not recognized")
	}
	// Zero is a legitimate amount, not the sentinel.
	if IsAmountUnknown(decimal.Zero) {
		t.Error("zero treated as unknown")
	}
}

func TestReformatDate(t *testing.T) {
	if got := ReformatDate("July 31, 2022", LongDateLayout); got != "07/31/2022" {
		t.Errorf("long date = %q", got)
	}
	if got := ReformatDate("07/05/22", ShortDateLayout); got != "07/05/2022" {
		t.Errorf("short date = %q", got)
	}
	if got := ReformatDate("not a date", LongDateLayout); got != Unknown {
		t.Errorf("garbage = %q, want sentinel", got)
	}
}

func TestDateWithYear(t *testing.T) {
	if got := DateWithYear("7/5", "2022"); got != "07/05/2022" {
		t.Errorf("got %q", got)
	}
	if got := DateWithYear("12/30", "2022"); got != "12/30/2022" {
		t.Errorf("got %q", got)
	}
	if got := DateWithYear("7/5", Unknown); got != Unknown {
		t.Errorf("unknown year = %q", got)
	}
	if got := DateWithYear("13/45", "2022"); got != Unknown {
		t.Errorf("invalid day = %q", got)
	}
}

func TestYearOf(t *testing.T) {
	if got := YearOf("07/31/2022"); got != "2022" {
		t.Errorf("got %q", got)
	}
	if got := YearOf(Unknown); got != "" {
		t.Errorf("unknown date year = %q", got)
	}
}

func TestNewSummarySentinels(t *testing.T) {
	s := NewSummary()
	if !IsAmountUnknown(s.Balance.Begin) || !IsAmountUnknown(s.Balance.End) {
		t.Error("balance fields not sentinel")
	}
	if !IsAmountUnknown(s.Totals.Deposits) || !IsAmountUnknown(s.Totals.Withdrawals) ||
		!IsAmountUnknown(s.Totals.Fees) || !IsAmountUnknown(s.Totals.Checks) {
		t.Error("totals fields not sentinel")
	}
}

func TestDescriptionBest(t *testing.T) {
	d := Description{Original: "FLA DEPT REVENUE DES:C01 ID:1234"}
	if d.Best() != d.Original {
		t.Errorf("without shortened form, Best = %q", d.Best())
	}
	d.Shortened = "FDOR"
	if d.Best() != "FDOR" {
		t.Errorf("with shortened form, Best = %q", d.Best())
	}
}

func TestStatementTotals(t *testing.T) {
	s := &Statement{
		Issuer:  "Test Bank",
		Summary: NewSummary(),
		Deposits: []Transaction{
			{Amount: decimal.RequireFromString("100.25")},
			{Amount: decimal.RequireFromString("899.75")},
		},
		Withdrawals: []Transaction{
			{Amount: decimal.RequireFromString("-45.00")},
		},
	}

	if got := s.ComputedDepositTotal(); got.String() != "1000" {
		t.Errorf("deposit total = %s", got)
	}
	if got := s.ComputedWithdrawalTotal(); got.String() != "-45" {
		t.Errorf("withdrawal total = %s", got)
	}

	// No printed totals: the check reports a mismatch, which callers
	// log.
	if s.DepositsMatchTotal() {
		t.Error("deposits matched with no printed total")
	}

	s.Summary.Totals.Deposits = decimal.NewFromInt(1000)
	s.Summary.Totals.Withdrawals = decimal.NewFromInt(-45)
	if !s.DepositsMatchTotal() {
		t.Error("deposits should match printed total")
	}
	if !s.WithdrawalsMatchTotal() {
		t.Error("withdrawals should match printed total")
	}

	s.Summary.Totals.Withdrawals = decimal.NewFromInt(-50)
	if s.WithdrawalsMatchTotal() {
		t.Error("withdrawals matched a wrong printed total")
	}
}

func TestStatementIdentified(t *testing.T) {
	if (&Statement{}).Identified() {
		t.Error("empty issuer counted as identified")
	}
	if !(&Statement{Issuer: "Chase"}).Identified() {
		t.Error("named issuer not identified")
	}
}

func TestAccountEntrySum(t *testing.T) {
	a := &Account{
		Number:      "6100",
		AmountTotal: decimal.RequireFromString("120.50"),
		Entries: []Entry{
			{Amount: decimal.RequireFromString("100.00")},
			{Amount: AmountUnknown},
			{Amount: decimal.RequireFromString("20.50")},
		},
	}

	if got := a.EntrySum(); got.String() != "120.5" {
		t.Errorf("entry sum = %s", got)
	}
	if !a.Reconciles() {
		t.Error("account should reconcile, unknown amounts skipped")
	}

	a.AmountTotal = decimal.NewFromInt(999)
	if a.Reconciles() {
		t.Error("account reconciled against a wrong total")
	}

	a.AmountTotal = AmountUnknown
	if !a.Reconciles() {
		t.Error("account without a printed total should reconcile")
	}
}

func TestLedgerReconcile(t *testing.T) {
	l := &Ledger{
		Format:            "Test",
		DistributionCount: 3,
		Accounts: []Account{
			{
				Number:      "3130",
				Name:        "SUSPENSE",
				AmountTotal: decimal.NewFromInt(50),
				Entries:     []Entry{{Amount: decimal.NewFromInt(50)}},
			},
			{
				Number:      "6100",
				Name:        "Office Supplies",
				AmountTotal: decimal.NewFromInt(100),
				Entries: []Entry{
					{Amount: decimal.NewFromInt(60)},
					{Amount: decimal.NewFromInt(30)},
				},
			},
		},
	}

	rec := l.Reconcile()
	if !rec.CountMatches() {
		t.Errorf("count mismatch: expected %d, actual %d", rec.ExpectedEntries, rec.ActualEntries)
	}
	if len(rec.Accounts) != 1 {
		t.Fatalf("discrepancies = %d, want 1", len(rec.Accounts))
	}
	if rec.Accounts[0].Number != "6100" {
		t.Errorf("discrepancy account = %s", rec.Accounts[0].Number)
	}
	if rec.Accounts[0].EntrySum.String() != "90" {
		t.Errorf("discrepancy entry sum = %s", rec.Accounts[0].EntrySum)
	}

	l.DistributionCount = -1
	if !l.Reconcile().CountMatches() {
		t.Error("absent distribution count should always match")
	}
}

func TestFindAccount(t *testing.T) {
	l := &Ledger{Accounts: []Account{
		{Number: "105", Name: "Cash in Bank"},
		{Number: "3130", Name: "SUSPENSE"},
	}}

	if a := l.FindAccountByNumber("3130"); a == nil || a.Name != "SUSPENSE" {
		t.Errorf("by number = %+v", a)
	}
	if a := l.FindAccountByName("Cash in Bank"); a == nil || a.Number != "105" {
		t.Errorf("by name = %+v", a)
	}
	if a := l.FindAccountByNumber("9999"); a != nil {
		t.Errorf("missing number = %+v", a)
	}
}

func TestSortAccounts(t *testing.T) {
	accounts := []Account{
		{Number: "6100"},
		{Number: "105.1"},
		{Number: "105"},
		{Number: "MISC"},
		{Number: "3130"},
	}

	SortAccounts(accounts)

	want := []string{"105", "105.1", "3130", "6100", "MISC"}
	for i, w := range want {
		if accounts[i].Number != w {
			t.Fatalf("order[%d] = %s, want %s", i, accounts[i].Number, w)
		}
	}
}
