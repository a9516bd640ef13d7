// Package banks implements the per-issuer statement layout extractors.
//
// Every issuer is a strategy implementing the Extractor capability set,
// selected through a priority-ordered registry: the first extractor
// whose Identify accepts the document fully determines which extractor
// set runs, so no statement is ever double-classified. New issuers are
// added by registering a strategy, not by growing a conditional chain.
//
// Field extraction is positional-then-lexical: values are searched only
// among fragments whose normalized bounding box falls inside a known
// per-issuer rectangle, then pattern-matched out of the text. A missing
// field yields a sentinel, never an error.
package banks

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
	"bank-statement-coder/pkg/logger"
)

// Extractor is the capability set an issuer strategy provides. Each
// extract method returns sentinel-filled results on failure.
type Extractor interface {
	Name() string
	Identify(doc ocr.Document) bool
	ExtractCompany(doc ocr.Document) models.Company
	ExtractAccount(doc ocr.Document) models.BankAccount
	ExtractPeriod(doc ocr.Document) models.Period
	ExtractSummary(doc ocr.Document) models.Summary
	ExtractDeposits(doc ocr.Document, period models.Period) []models.Transaction
	ExtractWithdrawals(doc ocr.Document, period models.Period) []models.Transaction
}

// Registry holds issuer extractors in priority order.
type Registry struct {
	extractors []Extractor
}

// NewRegistry returns the registry with the built-in issuers in their
// fixed priority order.
func NewRegistry() *Registry {
	return &Registry{extractors: []Extractor{
		&BankOfAmerica{},
		&Chase{},
		&Regions{},
		&Surety{},
		&WellsFargo{},
	}}
}

// Register appends an extractor at the lowest priority.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Detect returns the first extractor that identifies the document.
func (r *Registry) Detect(doc ocr.Document) (Extractor, bool) {
	for _, e := range r.extractors {
		if e.Identify(doc) {
			return e, true
		}
	}
	return nil, false
}

// ParseStatement runs issuer detection and, on a match, the full
// extractor set. An unidentified statement comes back with no issuer
// and nothing else populated; callers must check Identified before
// trusting any field. Soft total mismatches are logged, not rejected.
func ParseStatement(doc ocr.Document, registry *Registry) *models.Statement {
	statement := &models.Statement{Summary: models.NewSummary()}

	extractor, ok := registry.Detect(doc)
	if !ok {
		return statement
	}

	statement.Issuer = extractor.Name()
	statement.Company = extractor.ExtractCompany(doc)
	statement.Account = extractor.ExtractAccount(doc)
	statement.Period = extractor.ExtractPeriod(doc)
	statement.Summary = extractor.ExtractSummary(doc)
	statement.Deposits = extractor.ExtractDeposits(doc, statement.Period)
	statement.Withdrawals = extractor.ExtractWithdrawals(doc, statement.Period)

	log := logger.WithComponent(logger.ComponentBanks).WithField("issuer", statement.Issuer)
	if !models.IsAmountUnknown(statement.Summary.Totals.Deposits) && !statement.DepositsMatchTotal() {
		log.WithFields(logger.Fields{
			"computed": statement.ComputedDepositTotal().String(),
			"printed":  statement.Summary.Totals.Deposits.String(),
		}).Warn("deposit total does not reconcile")
	}
	if !models.IsAmountUnknown(statement.Summary.Totals.Withdrawals) && !statement.WithdrawalsMatchTotal() {
		log.WithFields(logger.Fields{
			"computed": statement.ComputedWithdrawalTotal().String(),
			"printed":  statement.Summary.Totals.Withdrawals.String(),
		}).Warn("withdrawal total does not reconcile")
	}

	return statement
}

// Shared lexical patterns.
var (
	longPeriodRe  = regexp.MustCompile(`(\w+ \d{1,2}, \d{4}) (?:through|to) (\w+ \d{1,2}, \d{4})`)
	dateTokenRe   = regexp.MustCompile(`^(\d{1,2}/\d{1,2})(/\d{2,4})?\b`)
	trailAmountRe = regexp.MustCompile(`\(?-?\$?\d{1,3}(?:,\d{3})*\.\d{2}\)?$`)
	anyLetterRe   = regexp.MustCompile(`[a-zA-Z]`)
)

// firstPageContains reports whether any first-page line contains the
// issuer's literal anchor string.
func firstPageContains(doc ocr.Document, anchor string) bool {
	for _, line := range doc.FirstPage() {
		for _, text := range line.Texts() {
			if strings.Contains(text, anchor) {
				return true
			}
		}
	}
	return false
}

// companyFromRegion assembles the company name and address from the
// fragments inside the issuer's company rectangle: first fragment is
// the name, the rest join as the address.
func companyFromRegion(doc ocr.Document, xStart, xEnd, yStart, yEnd float64) models.Company {
	company := models.Company{Name: models.Unknown}
	for _, line := range doc.FirstPage() {
		for _, f := range line.Fragments {
			corners := f.BoundingPoly.NormalizedVertices
			if !corners.WithinRange(ocr.AxisX, xStart, xEnd) ||
				!corners.WithinRange(ocr.AxisY, yStart, yEnd) {
				continue
			}
			text := ocr.Strip(f.Text)
			switch {
			case company.Name == models.Unknown:
				company.Name = text
			case company.Address == "":
				company.Address = text
			default:
				company.Address += ", " + text
			}
		}
	}
	return company
}

// accountFromRegion finds the line whose fragment inside the rectangle
// starts with query, and returns the rest of that line's joined text.
func accountFromRegion(doc ocr.Document, query string, xStart, xEnd, yStart, yEnd float64) models.BankAccount {
	account := models.BankAccount{Number: models.Unknown}
	for _, line := range doc.FirstPage() {
		for _, f := range line.Fragments {
			corners := f.BoundingPoly.NormalizedVertices
			if account.Number != models.Unknown ||
				!corners.WithinRange(ocr.AxisX, xStart, xEnd) ||
				!corners.WithinRange(ocr.AxisY, yStart, yEnd) {
				continue
			}
			if !strings.HasPrefix(ocr.Strip(f.Text), query) {
				continue
			}
			joined := line.Text()
			account.Number = strings.TrimSpace(joined[strings.Index(joined, query)+len(query):])
		}
	}
	return account
}

// transactionSection describes one capture window of a statement's
// transaction table.
type transactionSection struct {
	// open and close are the section-heading and matching-total
	// literals that bound the window.
	open, close string
	// negate sign-normalizes amounts to negative (withdrawals, fees).
	negate bool
	// requireLetters drops rows whose description has no letters.
	requireLetters bool
	// noise matches issuer-specific rows that must not become
	// transactions (e.g. card-account subtotal lines).
	noise *regexp.Regexp
	// shorten is the issuer's description post-processor; it returns
	// "" when no shortened form applies.
	shorten func(string) string
}

// extractSectionTransactions walks the document's lines, opens a
// capture window at the section heading and closes it at the matching
// total literal. Every line inside the window yields at most one
// transaction: leading date token, residual text as the description,
// trailing amount token. Rows lacking a clean date but carrying a
// description are still emitted with a best-effort date.
func extractSectionTransactions(doc ocr.Document, sec transactionSection, period models.Period) []models.Transaction {
	var transactions []models.Transaction
	year := models.YearOf(period.Start)
	lastDate := period.Start
	inWindow := false

	for _, page := range doc {
		for _, line := range page {
			text := line.Text()
			if !inWindow {
				// The summary block reuses section literals on its
				// total rows; a true section heading carries no amount.
				if strings.Contains(text, sec.open) && !trailAmountRe.MatchString(text) {
					inWindow = true
				}
				continue
			}
			if strings.Contains(text, sec.close) {
				return transactions
			}
			if sec.noise != nil && sec.noise.MatchString(text) {
				continue
			}

			tx, ok := parseTransactionLine(text, sec, year, lastDate)
			if !ok {
				continue
			}
			if tx.Date != models.Unknown {
				lastDate = tx.Date
			}
			transactions = append(transactions, tx)
		}
	}
	return transactions
}

func parseTransactionLine(text string, sec transactionSection, year, lastDate string) (models.Transaction, bool) {
	amountToken := trailAmountRe.FindString(text)
	if amountToken == "" {
		return models.Transaction{}, false
	}
	rest := strings.TrimSpace(strings.TrimSuffix(text, amountToken))

	date := lastDate
	if m := dateTokenRe.FindStringSubmatch(rest); m != nil {
		if m[2] != "" {
			date = parseStatementDate(m[1] + m[2])
		} else {
			date = models.DateWithYear(m[1], year)
		}
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	if rest == "" {
		return models.Transaction{}, false
	}
	if sec.requireLetters && !anyLetterRe.MatchString(rest) {
		return models.Transaction{}, false
	}

	amount := models.ParseAmount(amountToken)
	if models.IsAmountUnknown(amount) {
		return models.Transaction{}, false
	}
	if sec.negate {
		amount = amount.Abs().Neg()
	}

	description := models.Description{Original: rest}
	if sec.shorten != nil {
		description.Shortened = sec.shorten(rest)
	}

	return models.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
	}, true
}

// Transaction dates print with 2- or 4-digit years depending on the
// issuer.
func parseStatementDate(token string) string {
	for _, layout := range []string{models.ShortDateLayout, "1/2/2006"} {
		if date := models.ReformatDate(token, layout); date != models.Unknown {
			return date
		}
	}
	return models.Unknown
}

// trailingAmount parses the rightmost amount token on a summary row,
// AmountUnknown when the row has none.
func trailingAmount(text string) decimal.Decimal {
	token := trailAmountRe.FindString(text)
	if token == "" {
		return models.AmountUnknown
	}
	return models.ParseAmount(token)
}

// trailingNegativeAmount is trailingAmount sign-normalized negative,
// for withdrawal, fee and check rows printed unsigned.
func trailingNegativeAmount(text string) decimal.Decimal {
	token := trailAmountRe.FindString(text)
	if token == "" {
		return models.AmountUnknown
	}
	return models.ParseNegativeAmount(token)
}

// addNegative accumulates a summary amount across multiple rows,
// treating the sentinel as empty on either side.
func addNegative(current, add decimal.Decimal) decimal.Decimal {
	if models.IsAmountUnknown(add) {
		return current
	}
	if models.IsAmountUnknown(current) {
		return add
	}
	return current.Add(add)
}

// shortenCommonPayees maps well-known payees to their conventional
// ledger abbreviations. Shared by several issuers.
func shortenCommonPayees(description string) string {
	upper := strings.ToUpper(description)
	if strings.HasPrefix(upper, "FLA DEPT REVENUE") {
		return "FDOR"
	}
	if strings.HasPrefix(upper, "WESTERN UNION") {
		return "WU"
	}
	return ""
}
