// Package glformats implements the general-ledger import formats: the
// OCR'd AccountingCS export and the spreadsheet export. Both produce
// the same models.Ledger shape so the matching engine never knows which
// path a ledger arrived through.
package glformats

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
	"bank-statement-coder/pkg/logger"
)

// Ledger format names.
const (
	FormatAccountingCS = "accountingcs"
	FormatSpreadsheet  = "spreadsheet"
)

// identifyScanLines bounds how deep into a page the format literal is
// searched.
const identifyScanLines = 6

const (
	acsAnchor        = "General Ledger"
	acsTotalsLiteral = "Totals for "
)

var (
	acsPeriodRe  = regexp.MustCompile(`(\w+ \d{1,2}, \d{4}) - (\w+ \d{1,2}, \d{4})`)
	acsTotalsRe  = regexp.MustCompile(`Totals for ([\d.]+)`)
	acsDistribRe = regexp.MustCompile(`(\d+) distributions?`)
	acsAccountRe = regexp.MustCompile(`^([\d.]+) +([A-Za-z].*)$`)
	acsDateRe    = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}\b`)
	// Reference and journal codes preceding an entry description.
	acsRefCodeRe = regexp.MustCompile(`^(PR|SS|MD|JV|RU|\d+)$`)
	// Amount tokens, with the AccountingCS trailing-minus credit form.
	acsAmountRe = regexp.MustCompile(`-?\d{1,3}(?:,\d{3})*\.\d{2}-?`)
)

// IdentifyAccountingCS reports whether the document is an AccountingCS
// general-ledger export: the literal appears within the first lines of
// a page.
func IdentifyAccountingCS(doc ocr.Document) bool {
	for _, page := range doc {
		limit := min(identifyScanLines, len(page))
		for _, line := range page[:limit] {
			if strings.Contains(line.Text(), acsAnchor) {
				return true
			}
		}
	}
	return false
}

// acsState is the reducer accumulator: entries buffer under a pending
// account until the matching totals line commits them. A totals line
// for a different account holds the buffer so a later matching line can
// still claim it.
type acsState struct {
	ledger         *models.Ledger
	order          []string
	byNumber       map[string]*models.Account
	pendingNumber  string
	pendingName    string
	pendingBalance string
	pendingEntries []models.Entry
	// held parks entry buffers whose totals line has not appeared yet,
	// keyed by their own account number.
	held map[string][]models.Entry
}

// ParseAccountingCS parses an OCR'd AccountingCS general-ledger export
// into a ledger. Unidentified documents come back with an empty format.
func ParseAccountingCS(doc ocr.Document) *models.Ledger {
	ledger := &models.Ledger{DistributionCount: -1}
	if !IdentifyAccountingCS(doc) {
		return ledger
	}
	ledger.Format = FormatAccountingCS
	ledger.Company = acsCompany(doc)
	ledger.Period = acsPeriod(doc)

	state := &acsState{
		ledger:   ledger,
		byNumber: map[string]*models.Account{},
		held:     map[string][]models.Entry{},
	}
	for _, page := range doc {
		for _, line := range page {
			state.reduce(line.Text())
		}
	}
	state.finalize()

	reconciliation := ledger.Reconcile()
	if !reconciliation.CountMatches() || len(reconciliation.Accounts) > 0 {
		logger.WithComponent(logger.ComponentGLFormats).WithFields(logger.Fields{
			"expectedEntries": reconciliation.ExpectedEntries,
			"actualEntries":   reconciliation.ActualEntries,
			"accountsOff":     len(reconciliation.Accounts),
		}).Warn("ledger does not reconcile")
	}
	return ledger
}

// acsCompany takes the text preceding the format literal; the export
// prints the company name on the title line.
func acsCompany(doc ocr.Document) models.Company {
	company := models.Company{Name: models.Unknown}
	for _, line := range doc.FirstPage() {
		text := line.Text()
		idx := strings.Index(text, acsAnchor)
		if idx < 0 {
			continue
		}
		if name := strings.TrimSpace(text[:idx]); name != "" {
			company.Name = name
		}
		break
	}
	return company
}

func acsPeriod(doc ocr.Document) models.Period {
	period := models.Period{Start: models.Unknown, End: models.Unknown}
	for _, line := range doc.FirstPage() {
		m := acsPeriodRe.FindStringSubmatch(line.Text())
		if m == nil {
			continue
		}
		period.Start = models.ReformatDate(m[1], models.LongDateLayout)
		period.End = models.ReformatDate(m[2], models.LongDateLayout)
		break
	}
	return period
}

func (s *acsState) reduce(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if strings.Contains(text, acsTotalsLiteral) {
		s.commitTotals(text)
		return
	}
	if m := acsDistribRe.FindStringSubmatch(text); m != nil && s.ledger.DistributionCount < 0 {
		s.ledger.DistributionCount = atoiOrNegative(m[1])
		return
	}
	if acsDateRe.MatchString(text) {
		s.appendEntry(text)
		return
	}
	if m := acsAccountRe.FindStringSubmatch(text); m != nil {
		s.openAccount(m[1], m[2])
		return
	}
	s.continueDescription(text)
}

// openAccount starts buffering for a new account header row. Trailing
// balance amounts printed after the name are stripped off and the first
// becomes the beginning balance. A still-pending buffer is parked under
// its own number first so it cannot leak into this account.
func (s *acsState) openAccount(number, rest string) {
	if s.pendingNumber != "" {
		s.parkPending()
	}

	amounts := acsAmountRe.FindAllString(rest, -1)
	name := strings.TrimSpace(acsAmountRe.ReplaceAllString(rest, ""))

	s.pendingNumber = number
	s.pendingName = name
	s.pendingBalance = ""
	if len(amounts) > 0 {
		s.pendingBalance = amounts[0]
	}
}

// appendEntry parses one distribution row: date, optional reference and
// journal codes, description, then amount and running balance.
func (s *acsState) appendEntry(text string) {
	date := acsDateRe.FindString(text)
	rest := strings.TrimSpace(text[len(date):])

	amounts := acsAmountRe.FindAllString(rest, -1)
	description := strings.TrimSpace(acsAmountRe.ReplaceAllString(rest, ""))
	description = stripReferenceCodes(description)

	amount := models.AmountUnknown
	if len(amounts) > 0 {
		// With a running balance present, the first token is the
		// entry amount.
		amount = parseAcsAmount(amounts[0])
	}

	s.pendingEntries = append(s.pendingEntries, models.Entry{
		Date:        parseAcsDate(date),
		Description: description,
		Amount:      amount,
	})
}

// continueDescription rejoins a description the OCR split across lines:
// the previous entry announced the continuation with a trailing "&" or
// " TO".
func (s *acsState) continueDescription(text string) {
	if len(s.pendingEntries) == 0 {
		return
	}
	last := &s.pendingEntries[len(s.pendingEntries)-1]
	if !strings.HasSuffix(last.Description, "&") && !strings.HasSuffix(last.Description, " TO") {
		return
	}
	addition := stripReferenceCodes(strings.TrimSpace(acsAmountRe.ReplaceAllString(text, "")))
	if addition == "" {
		return
	}
	last.Description = strings.TrimSpace(last.Description + " " + addition)
}

// commitTotals closes the pending account when the totals line names
// it. A totals line for a different number records that account's
// printed total but parks the entry buffer under its own number so a
// later matching line can still claim it.
func (s *acsState) commitTotals(text string) {
	m := acsTotalsRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	number := m[1]

	total := models.AmountUnknown
	if amounts := acsAmountRe.FindAllString(text[strings.Index(text, number)+len(number):], -1); len(amounts) > 0 {
		total = parseAcsAmount(amounts[0])
	}

	account := s.account(number)
	if !models.IsAmountUnknown(total) {
		account.AmountTotal = total
	}

	if s.pendingNumber != "" && s.pendingNumber != number {
		logger.WithComponent(logger.ComponentGLFormats).WithFields(logger.Fields{
			"pending": s.pendingNumber,
			"totals":  number,
		}).Debug("totals line does not match pending account, parking buffer")
		s.parkPending()
	}

	if held := s.held[number]; len(held) > 0 {
		account.Entries = append(account.Entries, held...)
		delete(s.held, number)
	}

	if s.pendingNumber != number {
		return
	}
	if s.pendingName != "" && account.Name == "" {
		account.Name = s.pendingName
	}
	if s.pendingBalance != "" && models.IsAmountUnknown(account.BeginningBalance) {
		account.BeginningBalance = parseAcsAmount(s.pendingBalance)
	}
	account.Entries = append(account.Entries, s.pendingEntries...)
	s.clearPending()
}

// parkPending moves the buffered entries aside under their own account
// number. The header's name and balance still land on that account;
// only the entries wait for the matching totals line.
func (s *acsState) parkPending() {
	account := s.account(s.pendingNumber)
	if s.pendingName != "" && account.Name == "" {
		account.Name = s.pendingName
	}
	if s.pendingBalance != "" && models.IsAmountUnknown(account.BeginningBalance) {
		account.BeginningBalance = parseAcsAmount(s.pendingBalance)
	}
	if len(s.pendingEntries) > 0 {
		s.held[s.pendingNumber] = append(s.held[s.pendingNumber], s.pendingEntries...)
	}
	s.clearPending()
}

func (s *acsState) clearPending() {
	s.pendingNumber = ""
	s.pendingName = ""
	s.pendingBalance = ""
	s.pendingEntries = nil
}

// account returns the accumulator's account for a number, creating it
// on first sight. Duplicate numbers across pages merge here.
func (s *acsState) account(number string) *models.Account {
	if a, ok := s.byNumber[number]; ok {
		return a
	}
	a := &models.Account{
		Number:           number,
		BeginningBalance: models.AmountUnknown,
		EndingBalance:    models.AmountUnknown,
		AmountTotal:      models.AmountUnknown,
	}
	s.byNumber[number] = a
	s.order = append(s.order, number)
	return a
}

// finalize drops invalid accounts and installs the sorted account list.
func (s *acsState) finalize() {
	for _, number := range s.order {
		a := s.byNumber[number]
		if !validAccount(a) {
			continue
		}
		s.ledger.Accounts = append(s.ledger.Accounts, *a)
	}
	models.SortAccounts(s.ledger.Accounts)
}

// validAccount filters artifacts of the export layout: the computed
// net-profit row and rows whose number cell caught an amount instead.
func validAccount(a *models.Account) bool {
	if a.Number == "" || a.Number == "0.00" || a.Number == models.Unknown {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(a.Name), "Net Profit")
}

// stripReferenceCodes removes the leading reference and journal code
// tokens from an entry description.
func stripReferenceCodes(description string) string {
	fields := strings.Fields(description)
	for len(fields) > 0 && acsRefCodeRe.MatchString(fields[0]) {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// parseAcsAmount handles the export's trailing-minus credit form.
func parseAcsAmount(token string) decimal.Decimal {
	negative := strings.HasSuffix(token, "-")
	token = strings.TrimSuffix(token, "-")
	amount := models.ParseAmount(token)
	if negative && !models.IsAmountUnknown(amount) {
		amount = amount.Abs().Neg()
	}
	return amount
}

// Entry dates print with or without zero padding and with 2- or
// 4-digit years.
func parseAcsDate(token string) string {
	for _, layout := range []string{"1/2/06", "1/2/2006"} {
		if date := models.ReformatDate(token, layout); date != models.Unknown {
			return date
		}
	}
	return models.Unknown
}

func atoiOrNegative(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
