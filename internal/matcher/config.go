package matcher

import (
	"bank-statement-coder/pkg/errors"
)

// Config holds the matching thresholds. The values are empirically
// tuned against real statements and ledgers; treat them as a set, not
// as independently adjustable knobs.
type Config struct {
	// RatioCutoff is the minimum whole-description similarity for an
	// entry to count as a match.
	RatioCutoff float64 `json:"ratioCutoff"`
	// WordRatioCutoff is the similarity a single word pair must reach
	// for a word-level match.
	WordRatioCutoff float64 `json:"wordRatioCutoff"`
	// WordMatchRatio is the downgraded ratio recorded for word-level
	// matches, so they never outrank whole-description matches.
	WordMatchRatio float64 `json:"wordMatchRatio"`
	// AccountDigitsRatio is recorded when the transaction and the entry
	// reference the same 4-digit account suffix.
	AccountDigitsRatio float64 `json:"accountDigitsRatio"`
	// MaxCandidateLength truncates unshortened descriptions before
	// matching; OCR addenda past this point is noise.
	MaxCandidateLength int `json:"maxCandidateLength"`
	// SuspenseName and SuspenseNumber identify the fallback account for
	// unmatched transactions.
	SuspenseName   string `json:"suspenseName"`
	SuspenseNumber string `json:"suspenseNumber"`
}

// DefaultConfig returns the tuned threshold set.
func DefaultConfig() *Config {
	return &Config{
		RatioCutoff:        0.35,
		WordRatioCutoff:    0.85,
		WordMatchRatio:     0.35,
		AccountDigitsRatio: 0.95,
		MaxCandidateLength: 16,
		SuspenseName:       "SUSPENSE",
		SuspenseNumber:     "3130",
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	for name, ratio := range map[string]float64{
		"ratioCutoff":        c.RatioCutoff,
		"wordRatioCutoff":    c.WordRatioCutoff,
		"wordMatchRatio":     c.WordMatchRatio,
		"accountDigitsRatio": c.AccountDigitsRatio,
	} {
		if ratio <= 0 || ratio > 1 {
			return errors.Newf(errors.CategoryConfig, errors.CodeInvalidConfig,
				"%s must be in (0, 1], got %v", name, ratio)
		}
	}
	if c.MaxCandidateLength <= 0 {
		return errors.Newf(errors.CategoryConfig, errors.CodeInvalidConfig,
			"maxCandidateLength must be positive, got %d", c.MaxCandidateLength)
	}
	if c.SuspenseNumber == "" {
		return errors.New(errors.CategoryConfig, errors.CodeInvalidConfig,
			"suspenseNumber must not be empty")
	}
	return nil
}
