package banks

import (
	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
)

// Surety identifies Surety Bank statements but extracts nothing else
// yet: the issuer is recognized so its documents are not misclassified,
// and every field comes back as a sentinel.
type Surety struct{}

const suretyAnchor = "Surety Bank"

func (s *Surety) Name() string { return "Surety Bank" }

func (s *Surety) Identify(doc ocr.Document) bool {
	return firstPageContains(doc, suretyAnchor)
}

func (s *Surety) ExtractCompany(ocr.Document) models.Company {
	return models.Company{Name: models.Unknown}
}

func (s *Surety) ExtractAccount(ocr.Document) models.BankAccount {
	return models.BankAccount{Number: models.Unknown}
}

func (s *Surety) ExtractPeriod(ocr.Document) models.Period {
	return models.Period{Start: models.Unknown, End: models.Unknown}
}

func (s *Surety) ExtractSummary(ocr.Document) models.Summary {
	return models.NewSummary()
}

func (s *Surety) ExtractDeposits(ocr.Document, models.Period) []models.Transaction {
	return nil
}

func (s *Surety) ExtractWithdrawals(ocr.Document, models.Period) []models.Transaction {
	return nil
}
