package banks

import (
	"strings"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
)

// BankOfAmerica extracts business checking statements. The layout is
// mostly lexical: the account line, the period sentence and the summary
// block all carry stable literals.
type BankOfAmerica struct{}

const (
	bofaAnchor          = "1.888.BUSINESS"
	bofaAccountLiteral  = "Account number:"
	bofaPeriodPrefix    = "for "
	bofaSummaryOpen     = "Beginning balance on"
	bofaSummaryClose    = "Ending balance on"
	bofaDepositsOpen    = "Deposits and other credits"
	bofaDepositsClose   = "Total deposits and other credits"
	bofaWithdrawalOpen  = "Withdrawals and other debits"
	bofaWithdrawalClose = "Total withdrawals and other debits"
)

func (b *BankOfAmerica) Name() string { return "Bank of America" }

func (b *BankOfAmerica) Identify(doc ocr.Document) bool {
	return firstPageContains(doc, bofaAnchor)
}

// ExtractCompany takes the text preceding the account literal on the
// account line; the statement prints the holder's name on that line.
func (b *BankOfAmerica) ExtractCompany(doc ocr.Document) models.Company {
	company := models.Company{Name: models.Unknown}
	for _, line := range doc.FirstPage() {
		text := line.Text()
		idx := strings.Index(text, bofaAccountLiteral)
		if idx <= 0 {
			continue
		}
		if name := strings.TrimSpace(strings.Trim(text[:idx], "!| ")); name != "" {
			company.Name = name
		}
		break
	}
	return company
}

func (b *BankOfAmerica) ExtractAccount(doc ocr.Document) models.BankAccount {
	account := models.BankAccount{Number: models.Unknown}
	for _, line := range doc.FirstPage() {
		text := line.Text()
		idx := strings.Index(text, bofaAccountLiteral)
		if idx < 0 {
			continue
		}
		number := strings.TrimSpace(text[idx+len(bofaAccountLiteral):])
		if number != "" {
			account.Number = number
		}
		break
	}
	return account
}

// ExtractPeriod reads the "for <long date> to <long date>" sentence.
func (b *BankOfAmerica) ExtractPeriod(doc ocr.Document) models.Period {
	period := models.Period{Start: models.Unknown, End: models.Unknown}
	for _, line := range doc.FirstPage() {
		text := line.Text()
		if !strings.Contains(text, bofaPeriodPrefix) {
			continue
		}
		m := longPeriodRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		period.Start = models.ReformatDate(m[1], models.LongDateLayout)
		period.End = models.ReformatDate(m[2], models.LongDateLayout)
		break
	}
	return period
}

// ExtractSummary reads the account-summary block between the
// beginning-balance and ending-balance lines. Each row is a label with
// a trailing amount; withdrawals, checks and fees come back negative.
func (b *BankOfAmerica) ExtractSummary(doc ocr.Document) models.Summary {
	summary := models.NewSummary()
	inBlock := false
	for _, line := range doc.FirstPage() {
		text := line.Text()
		switch {
		case strings.Contains(text, bofaSummaryOpen):
			inBlock = true
			summary.Balance.Begin = trailingAmount(text)
		case !inBlock:
			continue
		case strings.Contains(text, bofaSummaryClose):
			summary.Balance.End = trailingAmount(text)
			return summary
		case strings.Contains(text, bofaDepositsOpen):
			summary.Totals.Deposits = trailingAmount(text)
		case strings.Contains(text, bofaWithdrawalOpen):
			summary.Totals.Withdrawals = trailingNegativeAmount(text)
		case strings.Contains(text, "Checks"):
			summary.Totals.Checks = trailingNegativeAmount(text)
		case strings.Contains(text, "Service fees"):
			summary.Totals.Fees = trailingNegativeAmount(text)
		}
	}
	return summary
}

func (b *BankOfAmerica) ExtractDeposits(doc ocr.Document, period models.Period) []models.Transaction {
	return extractSectionTransactions(doc, transactionSection{
		open:    bofaDepositsOpen,
		close:   bofaDepositsClose,
		shorten: shortenBofaDescription,
	}, period)
}

func (b *BankOfAmerica) ExtractWithdrawals(doc ocr.Document, period models.Period) []models.Transaction {
	return extractSectionTransactions(doc, transactionSection{
		open:    bofaWithdrawalOpen,
		close:   bofaWithdrawalClose,
		negate:  true,
		shorten: shortenBofaDescription,
	}, period)
}

// shortenBofaDescription cuts the ACH addenda that follows the payee
// name. Rows print as "PAYEE DES:ORIG ID:... INDN:...", and only the
// payee text carries matching signal.
func shortenBofaDescription(description string) string {
	if s := shortenCommonPayees(description); s != "" {
		return s
	}
	if idx := strings.Index(description, " DES:"); idx > 0 {
		return strings.TrimSpace(description[:idx])
	}
	return ""
}
