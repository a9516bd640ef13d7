package banks

import (
	"regexp"
	"strings"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
)

// WellsFargo extracts business choice checking statements. The period
// is the awkward field: only the end date is printed as a full date,
// while the start appears as a month/day in the beginning-balance row
// and borrows the end date's year.
type WellsFargo struct{}

const (
	wellsAnchor           = "1-800-CALL-WELLS"
	wellsBeginningLiteral = "Beginning balance on"
	wellsEndingLiteral    = "Ending balance on"
)

const (
	wellsCompanyXStart = 0.03
	wellsCompanyXEnd   = 0.35
	wellsCompanyYStart = 0.2
	wellsCompanyYEnd   = 0.265

	wellsAccountXStart = 0.6
	wellsAccountXEnd   = 0.83
	wellsAccountYStart = 0.59
	wellsAccountYEnd   = 0.62
)

var (
	wellsLongDateRe = regexp.MustCompile(`\w+ \d{1,2}, \d{4}`)
	wellsMonthDayRe = regexp.MustCompile(`\d{1,2}/\d{1,2}`)
	wellsDigitsRe   = regexp.MustCompile(`^\d{6,}$`)
)

func (w *WellsFargo) Name() string { return "Wells Fargo" }

func (w *WellsFargo) Identify(doc ocr.Document) bool {
	return firstPageContains(doc, wellsAnchor)
}

func (w *WellsFargo) ExtractCompany(doc ocr.Document) models.Company {
	return companyFromRegion(doc,
		wellsCompanyXStart, wellsCompanyXEnd, wellsCompanyYStart, wellsCompanyYEnd)
}

// ExtractAccount reads the account-number fragment in its rectangle;
// the fragment is either the bare number or a labeled form.
func (w *WellsFargo) ExtractAccount(doc ocr.Document) models.BankAccount {
	account := models.BankAccount{Number: models.Unknown}
	for _, line := range doc.FirstPage() {
		for _, f := range line.Fragments {
			corners := f.BoundingPoly.NormalizedVertices
			if account.Number != models.Unknown ||
				!corners.WithinRange(ocr.AxisX, wellsAccountXStart, wellsAccountXEnd) ||
				!corners.WithinRange(ocr.AxisY, wellsAccountYStart, wellsAccountYEnd) {
				continue
			}
			text := ocr.Strip(f.Text)
			if idx := strings.Index(text, ":"); idx >= 0 {
				text = strings.TrimSpace(text[idx+1:])
			}
			if wellsDigitsRe.MatchString(text) {
				account.Number = text
			}
		}
	}
	return account
}

// ExtractPeriod takes the first full date on the page as the period
// end, then completes the beginning-balance row's month/day with that
// year for the start.
func (w *WellsFargo) ExtractPeriod(doc ocr.Document) models.Period {
	period := models.Period{Start: models.Unknown, End: models.Unknown}
	for _, line := range doc.FirstPage() {
		if m := wellsLongDateRe.FindString(line.Text()); m != "" {
			period.End = models.ReformatDate(m, models.LongDateLayout)
			break
		}
	}
	year := models.YearOf(period.End)
	for _, line := range doc.FirstPage() {
		text := line.Text()
		if !strings.Contains(text, wellsBeginningLiteral) {
			continue
		}
		if m := wellsMonthDayRe.FindString(text[strings.Index(text, wellsBeginningLiteral):]); m != "" {
			period.Start = models.DateWithYear(m, year)
		}
		break
	}
	return period
}

func (w *WellsFargo) ExtractSummary(doc ocr.Document) models.Summary {
	summary := models.NewSummary()
	for _, line := range doc.FirstPage() {
		text := line.Text()
		switch {
		case strings.Contains(text, wellsBeginningLiteral):
			summary.Balance.Begin = trailingAmount(text)
		case strings.Contains(text, "Deposits/Credits"):
			summary.Totals.Deposits = trailingAmount(text)
		case strings.Contains(text, "Withdrawals/Debits"):
			summary.Totals.Withdrawals = trailingNegativeAmount(text)
		case strings.Contains(text, wellsEndingLiteral):
			summary.Balance.End = trailingAmount(text)
			return summary
		}
	}
	return summary
}

func (w *WellsFargo) ExtractDeposits(doc ocr.Document, period models.Period) []models.Transaction {
	return extractSectionTransactions(doc, transactionSection{
		open:    "Deposits and other credits",
		close:   "Total deposits",
		shorten: shortenWellsDescription,
	}, period)
}

func (w *WellsFargo) ExtractWithdrawals(doc ocr.Document, period models.Period) []models.Transaction {
	return extractSectionTransactions(doc, transactionSection{
		open:    "Withdrawals and other debits",
		close:   "Total withdrawals",
		negate:  true,
		shorten: shortenWellsDescription,
	}, period)
}

// shortenWellsDescription cuts the originating-company identifiers
// appended to ACH rows.
func shortenWellsDescription(description string) string {
	if s := shortenCommonPayees(description); s != "" {
		return s
	}
	for _, marker := range []string{" ACH ", " Ref #"} {
		if idx := strings.Index(description, marker); idx > 0 {
			return strings.TrimSpace(description[:idx])
		}
	}
	return ""
}
