package banks

import (
	"regexp"
	"strings"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
)

// Chase extracts business complete checking statements. Header fields
// live in fixed normalized rectangles; the transaction table splits
// withdrawals across several sections that are accumulated.
type Chase struct{}

const chaseAnchor = "Chase.com"

// Normalized header rectangles.
const (
	chaseCompanyXStart = 0.08
	chaseCompanyXEnd   = 0.48
	chaseCompanyYStart = 0.1675
	chaseCompanyYEnd   = 0.22

	chaseAccountXStart = 0.565
	chaseAccountXEnd   = 0.88
	chaseAccountYStart = 0.0675
	chaseAccountYEnd   = 0.085

	chasePeriodXStart = 0.565
	chasePeriodXEnd   = 0.88
	chasePeriodYStart = 0.0525
	chasePeriodYEnd   = 0.07

	chaseSummaryXStart = 0.05
	chaseSummaryXEnd   = 0.32
	chaseSummaryYStart = 0.62
	chaseSummaryYEnd   = 0.655
)

const chaseSummaryHeading = "CHECKING SUMMARY"

// chaseWithdrawalSections are the statement sections whose rows all
// land in the withdrawals bucket.
var chaseWithdrawalSections = []transactionSection{
	{open: "CHECKS PAID", close: "Total Checks Paid", negate: true},
	{open: "ATM & DEBIT CARD WITHDRAWALS", close: "Total ATM & Debit Card Withdrawals", negate: true},
	{open: "ELECTRONIC WITHDRAWALS", close: "Total Electronic Withdrawals", negate: true},
	{open: "FEES", close: "Total Fees", negate: true},
}

// Per-card subtotal rows inside the ATM & debit section.
var chaseCardSubtotalRe = regexp.MustCompile(`^Card \d{4}`)

func (c *Chase) Name() string { return "Chase" }

func (c *Chase) Identify(doc ocr.Document) bool {
	return firstPageContains(doc, chaseAnchor)
}

func (c *Chase) ExtractCompany(doc ocr.Document) models.Company {
	return companyFromRegion(doc,
		chaseCompanyXStart, chaseCompanyXEnd, chaseCompanyYStart, chaseCompanyYEnd)
}

// ExtractAccount reads the account-number fragment in the header
// rectangle. The fragment prints either the bare number or a labeled
// "Account Number: N" form.
func (c *Chase) ExtractAccount(doc ocr.Document) models.BankAccount {
	account := models.BankAccount{Number: models.Unknown}
	for _, line := range doc.FirstPage() {
		for _, f := range line.Fragments {
			corners := f.BoundingPoly.NormalizedVertices
			if account.Number != models.Unknown ||
				!corners.WithinRange(ocr.AxisX, chaseAccountXStart, chaseAccountXEnd) ||
				!corners.WithinRange(ocr.AxisY, chaseAccountYStart, chaseAccountYEnd) {
				continue
			}
			text := ocr.Strip(f.Text)
			if idx := strings.Index(text, ":"); idx >= 0 {
				text = strings.TrimSpace(text[idx+1:])
			}
			if text != "" {
				account.Number = text
			}
		}
	}
	return account
}

// ExtractPeriod reads the "<long date> through <long date>" fragment in
// the header rectangle.
func (c *Chase) ExtractPeriod(doc ocr.Document) models.Period {
	period := models.Period{Start: models.Unknown, End: models.Unknown}
	for _, line := range doc.FirstPage() {
		for _, f := range line.Fragments {
			corners := f.BoundingPoly.NormalizedVertices
			if !corners.WithinRange(ocr.AxisX, chasePeriodXStart, chasePeriodXEnd) ||
				!corners.WithinRange(ocr.AxisY, chasePeriodYStart, chasePeriodYEnd) {
				continue
			}
			m := longPeriodRe.FindStringSubmatch(ocr.Strip(f.Text))
			if m == nil {
				continue
			}
			period.Start = models.ReformatDate(m[1], models.LongDateLayout)
			period.End = models.ReformatDate(m[2], models.LongDateLayout)
			return period
		}
	}
	return period
}

// ExtractSummary walks the rows under the CHECKING SUMMARY heading,
// locating the heading by its rectangle so a footnote mentioning the
// literal elsewhere cannot open the block.
func (c *Chase) ExtractSummary(doc ocr.Document) models.Summary {
	summary := models.NewSummary()
	inBlock := false
	for _, line := range doc.FirstPage() {
		text := line.Text()
		if !inBlock {
			if strings.Contains(text, chaseSummaryHeading) && summaryHeadingInRect(line) {
				inBlock = true
			}
			continue
		}
		switch {
		case strings.Contains(text, "Beginning Balance"):
			summary.Balance.Begin = trailingAmount(text)
		case strings.Contains(text, "Deposits and Additions"):
			summary.Totals.Deposits = trailingAmount(text)
		case strings.Contains(text, "Checks Paid"):
			summary.Totals.Checks = trailingNegativeAmount(text)
		case strings.Contains(text, "Withdrawals"):
			// Several withdrawal rows (ATM & debit, electronic)
			// accumulate into one total.
			summary.Totals.Withdrawals = addNegative(summary.Totals.Withdrawals, trailingNegativeAmount(text))
		case strings.Contains(text, "Fees"):
			summary.Totals.Fees = trailingNegativeAmount(text)
		case strings.Contains(text, "Ending Balance"):
			summary.Balance.End = trailingAmount(text)
			return summary
		}
	}
	return summary
}

func summaryHeadingInRect(line *ocr.Line) bool {
	for _, f := range line.Fragments {
		corners := f.BoundingPoly.NormalizedVertices
		if corners.WithinRange(ocr.AxisX, chaseSummaryXStart, chaseSummaryXEnd) &&
			corners.WithinRange(ocr.AxisY, chaseSummaryYStart, chaseSummaryYEnd) {
			return true
		}
	}
	return false
}

func (c *Chase) ExtractDeposits(doc ocr.Document, period models.Period) []models.Transaction {
	return extractSectionTransactions(doc, transactionSection{
		open:    "DEPOSITS AND ADDITIONS",
		close:   "Total Deposits and Additions",
		shorten: shortenChaseDescription,
	}, period)
}

func (c *Chase) ExtractWithdrawals(doc ocr.Document, period models.Period) []models.Transaction {
	var transactions []models.Transaction
	for _, sec := range chaseWithdrawalSections {
		sec.noise = chaseCardSubtotalRe
		sec.shorten = shortenChaseDescription
		transactions = append(transactions, extractSectionTransactions(doc, sec, period)...)
	}
	return transactions
}

// shortenChaseDescription cuts the originator and trace identifiers
// appended to ACH rows.
func shortenChaseDescription(description string) string {
	if s := shortenCommonPayees(description); s != "" {
		return s
	}
	for _, marker := range []string{" Orig ID:", " Transaction#:"} {
		if idx := strings.Index(description, marker); idx > 0 {
			return strings.TrimSpace(description[:idx])
		}
	}
	return ""
}
