package banks

import (
	"strings"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
)

// Regions extracts business checking statements. The layout is the
// most lexical of the issuers: every field hangs off an uppercase
// heading literal rather than a rectangle, and the scan quality of
// these statements leaves stray letterless rows that must be filtered.
type Regions struct{}

const (
	regionsAnchor         = "Regions Bank"
	regionsAccountLiteral = "ACCOUNT #"
	regionsSummaryHeading = "SUMMARY"
)

const (
	regionsCompanyXStart = 0.05
	regionsCompanyXEnd   = 0.5
	regionsCompanyYStart = 0.08
	regionsCompanyYEnd   = 0.2
)

func (r *Regions) Name() string { return "Regions" }

func (r *Regions) Identify(doc ocr.Document) bool {
	return firstPageContains(doc, regionsAnchor)
}

func (r *Regions) ExtractCompany(doc ocr.Document) models.Company {
	return companyFromRegion(doc,
		regionsCompanyXStart, regionsCompanyXEnd, regionsCompanyYStart, regionsCompanyYEnd)
}

func (r *Regions) ExtractAccount(doc ocr.Document) models.BankAccount {
	account := models.BankAccount{Number: models.Unknown}
	for _, line := range doc.FirstPage() {
		text := line.Text()
		idx := strings.Index(text, regionsAccountLiteral)
		if idx < 0 {
			continue
		}
		number := strings.TrimSpace(text[idx+len(regionsAccountLiteral):])
		// The cycle token sometimes lands on the same line.
		if fields := strings.Fields(number); len(fields) > 0 {
			account.Number = fields[0]
		}
		break
	}
	return account
}

func (r *Regions) ExtractPeriod(doc ocr.Document) models.Period {
	period := models.Period{Start: models.Unknown, End: models.Unknown}
	for _, line := range doc.FirstPage() {
		m := longPeriodRe.FindStringSubmatch(line.Text())
		if m == nil {
			continue
		}
		period.Start = models.ReformatDate(m[1], models.LongDateLayout)
		period.End = models.ReformatDate(m[2], models.LongDateLayout)
		break
	}
	return period
}

// ExtractSummary reads the rows under the SUMMARY heading. Regions
// prints withdrawals, fees and checks unsigned; they are flipped
// negative here.
func (r *Regions) ExtractSummary(doc ocr.Document) models.Summary {
	summary := models.NewSummary()
	inBlock := false
	for _, line := range doc.FirstPage() {
		text := line.Text()
		if !inBlock {
			if strings.Contains(text, regionsSummaryHeading) {
				inBlock = true
			}
			continue
		}
		switch {
		case strings.Contains(text, "Beginning Balance"):
			summary.Balance.Begin = trailingAmount(text)
		case strings.Contains(text, "Deposits & Credits"):
			summary.Totals.Deposits = trailingAmount(text)
		case strings.Contains(text, "Withdrawals"):
			summary.Totals.Withdrawals = trailingNegativeAmount(text)
		case strings.Contains(text, "Fees"):
			summary.Totals.Fees = trailingNegativeAmount(text)
		case strings.Contains(text, "Checks"):
			summary.Totals.Checks = trailingNegativeAmount(text)
		case strings.Contains(text, "Ending Balance"):
			summary.Balance.End = trailingAmount(text)
			return summary
		}
	}
	return summary
}

func (r *Regions) ExtractDeposits(doc ocr.Document, period models.Period) []models.Transaction {
	return extractSectionTransactions(doc, transactionSection{
		open:           "DEPOSITS & CREDITS",
		close:          "Total Deposits & Credits",
		requireLetters: true,
		shorten:        shortenCommonPayees,
	}, period)
}

func (r *Regions) ExtractWithdrawals(doc ocr.Document, period models.Period) []models.Transaction {
	return extractSectionTransactions(doc, transactionSection{
		open:           "WITHDRAWALS",
		close:          "Total Withdrawals",
		negate:         true,
		requireLetters: true,
		shorten:        shortenCommonPayees,
	}, period)
}
