// Package matcher scores bank-statement transactions against
// general-ledger entries by edit-distance similarity and ranks the
// candidate accounts.
//
// Matching is a pure computation over immutable inputs: the same
// transaction and ledger always produce the same ranked candidates,
// which makes the coding layer's overrides and propagation safe to
// replay.
package matcher

import (
	"regexp"
	"sort"
	"strings"

	"bank-statement-coder/internal/models"
	"bank-statement-coder/pkg/logger"
)

// EntryMatch is one distinct entry description that matched. Ratio is
// fixed by the first observation; repeated observations (duplicate
// ledger entries, word-level hits) increment Count instead of adding a
// duplicate. Index points at the first such entry in the account's
// entry list.
type EntryMatch struct {
	Description string  `json:"description"`
	Index       int     `json:"index"`
	Count       int     `json:"count"`
	Ratio       float64 `json:"ratio"`
}

// AccountMatch is one candidate account with its matching entries,
// ranked best-first.
type AccountMatch struct {
	AccountNumber string        `json:"accountNumber"`
	AccountName   string        `json:"accountName"`
	AccountIndex  int           `json:"accountIndex"`
	Entries       []*EntryMatch `json:"entries"`
	TotalEntries  int           `json:"totalEntries"`
	AverageRatio  float64       `json:"averageRatio"`
	// Suspense marks the fallback candidate produced when nothing in
	// the ledger matched.
	Suspense bool `json:"suspense,omitempty"`
}

var (
	fourDigitsRe = regexp.MustCompile(`^\d{4}$`)
	nonLettersRe = regexp.MustCompile(`[^A-Za-z ]`)
	wordPunct    = strings.NewReplacer(",", "", ".", "", "#", "")
)

// candidateText produces the matching form of a transaction
// description: the shortened form whole when the issuer produced one,
// otherwise the original truncated, always uppercased.
func candidateText(description models.Description, cfg *Config) string {
	if description.Shortened != "" {
		return strings.ToUpper(strings.TrimSpace(description.Shortened))
	}
	original := strings.TrimSpace(description.Original)
	if runes := []rune(original); len(runes) > cfg.MaxCandidateLength {
		original = string(runes[:cfg.MaxCandidateLength])
	}
	return strings.ToUpper(original)
}

// alphabeticWords splits the candidate into its letters-only words for
// word-level matching.
func alphabeticWords(candidate string) []string {
	return strings.Fields(nonLettersRe.ReplaceAllString(candidate, ""))
}

// accountDigitWords picks the candidate words that are exactly four
// digits, the shape of an account-number suffix.
func accountDigitWords(candidate string) []string {
	var words []string
	for _, word := range strings.Fields(candidate) {
		word = wordPunct.Replace(word)
		if fourDigitsRe.MatchString(word) {
			words = append(words, word)
		}
	}
	return words
}

func entryWords(entry string) []string {
	fields := strings.Fields(entry)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		words = append(words, wordPunct.Replace(w))
	}
	return words
}

// MatchTransaction ranks the ledger's accounts against one transaction.
//
// Each entry produces observations: the whole-description ratio when it
// clears the cutoff, a downgraded word-match observation for every
// strong candidate-word hit, and a high-confidence observation when the
// candidate and an entry word share an exact 4-digit account suffix.
// Observations are deduplicated by entry description into an EntryMatch
// carrying the first ratio and an observation count; the observation
// count is also the account's primary rank. When no account produced an
// observation the result is a single suspense candidate carrying the
// transaction's first word at ratio zero.
func MatchTransaction(tx models.Transaction, accounts []models.Account, cfg *Config) []*AccountMatch {
	candidate := candidateText(tx.Description, cfg)
	if candidate == "" {
		return []*AccountMatch{suspenseMatch(tx, accounts, cfg)}
	}
	alphaWords := alphabeticWords(candidate)
	digitWords := accountDigitWords(candidate)

	var matches []*AccountMatch
	for ai := range accounts {
		account := &accounts[ai]
		byDescription := map[string]*EntryMatch{}
		var order []string
		observations := 0
		ratioSum := 0.0

		record := func(description string, ei int, ratio float64) {
			key := strings.ToUpper(strings.TrimSpace(description))
			em, ok := byDescription[key]
			if !ok {
				em = &EntryMatch{Description: description, Index: ei, Ratio: ratio}
				byDescription[key] = em
				order = append(order, key)
			}
			em.Count++
			observations++
			ratioSum += em.Ratio
		}

		for ei := range account.Entries {
			description := account.Entries[ei].Description
			entry := strings.ToUpper(strings.TrimSpace(description))
			if entry == "" {
				continue
			}
			words := entryWords(entry)

			if ratio := Ratio(candidate, entry); ratio >= cfg.RatioCutoff {
				record(description, ei, ratio)
			}
			for _, word := range alphaWords {
				for _, entryWord := range words {
					if Ratio(word, entryWord) >= cfg.WordRatioCutoff {
						record(description, ei, cfg.WordMatchRatio)
					}
				}
				if Ratio(word, entry) >= cfg.WordRatioCutoff {
					record(description, ei, cfg.WordMatchRatio)
				}
			}
			for _, digits := range digitWords {
				for _, entryWord := range words {
					if entryWord == digits {
						record(description, ei, cfg.AccountDigitsRatio)
					}
				}
			}
		}
		if observations == 0 {
			continue
		}

		match := &AccountMatch{
			AccountNumber: account.Number,
			AccountName:   account.Name,
			AccountIndex:  ai,
			TotalEntries:  observations,
			AverageRatio:  ratioSum / float64(observations),
		}
		for _, key := range order {
			match.Entries = append(match.Entries, byDescription[key])
		}

		sort.SliceStable(match.Entries, func(i, j int) bool {
			a, b := match.Entries[i], match.Entries[j]
			if a.Ratio != b.Ratio {
				return a.Ratio > b.Ratio
			}
			return a.Count > b.Count
		})
		matches = append(matches, match)
	}

	if len(matches) == 0 {
		return []*AccountMatch{suspenseMatch(tx, accounts, cfg)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.TotalEntries != b.TotalEntries {
			return a.TotalEntries > b.TotalEntries
		}
		return a.AverageRatio > b.AverageRatio
	})
	return matches
}

// suspenseMatch builds the fallback candidate: the ledger's suspense
// account when it has one, the configured default number otherwise. The
// proposed entry is the transaction's first word so the reviewer sees
// what failed to match.
func suspenseMatch(tx models.Transaction, accounts []models.Account, cfg *Config) *AccountMatch {
	match := &AccountMatch{
		AccountNumber: cfg.SuspenseNumber,
		AccountName:   cfg.SuspenseName,
		AccountIndex:  -1,
		Suspense:      true,
	}
	for ai := range accounts {
		if strings.EqualFold(accounts[ai].Name, cfg.SuspenseName) ||
			accounts[ai].Number == cfg.SuspenseNumber {
			match.AccountNumber = accounts[ai].Number
			match.AccountName = accounts[ai].Name
			match.AccountIndex = ai
			break
		}
	}

	description := "UNKNOWN"
	if fields := strings.Fields(tx.Description.Best()); len(fields) > 0 {
		description = strings.ToUpper(fields[0])
	}
	match.Entries = []*EntryMatch{{Description: description, Index: -1}}
	return match
}

// TransactionMatches pairs one transaction with its ranked candidates.
type TransactionMatches struct {
	Transaction models.Transaction `json:"transaction"`
	Matches     []*AccountMatch    `json:"matches"`
}

// Suspense reports whether the transaction fell through to the
// suspense candidate.
func (tm *TransactionMatches) Suspense() bool {
	return len(tm.Matches) > 0 && tm.Matches[0].Suspense
}

// Stats summarizes a coding run.
type Stats struct {
	Transactions int `json:"transactions"`
	Matched      int `json:"matched"`
	Suspense     int `json:"suspense"`
}

// CodeResults is the matching output for one statement-ledger pairing.
type CodeResults struct {
	Statement   *models.Statement    `json:"statement"`
	Ledger      *models.Ledger       `json:"ledger"`
	Deposits    []TransactionMatches `json:"deposits"`
	Withdrawals []TransactionMatches `json:"withdrawals"`
	Stats       Stats                `json:"stats"`
}

// Engine runs the matcher over whole statements.
type Engine struct {
	cfg *Config
	log logger.Logger
}

// NewEngine validates the configuration and returns a matching engine.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg: cfg,
		log: logger.WithComponent(logger.ComponentMatcher),
	}, nil
}

// Config returns the engine's threshold set.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Code matches every deposit and withdrawal of the statement against
// the ledger. Both directions run the same algorithm; the sign of the
// amounts plays no part in matching.
func (e *Engine) Code(statement *models.Statement, ledger *models.Ledger) *CodeResults {
	results := &CodeResults{Statement: statement, Ledger: ledger}
	results.Deposits = e.matchAll(statement.Deposits, ledger, &results.Stats)
	results.Withdrawals = e.matchAll(statement.Withdrawals, ledger, &results.Stats)

	e.log.WithFields(logger.Fields{
		"transactions": results.Stats.Transactions,
		"matched":      results.Stats.Matched,
		"suspense":     results.Stats.Suspense,
	}).Info("statement coded")
	return results
}

func (e *Engine) matchAll(transactions []models.Transaction, ledger *models.Ledger, stats *Stats) []TransactionMatches {
	results := make([]TransactionMatches, 0, len(transactions))
	for _, tx := range transactions {
		tm := TransactionMatches{
			Transaction: tx,
			Matches:     MatchTransaction(tx, ledger.Accounts, e.cfg),
		}
		stats.Transactions++
		if tm.Suspense() {
			stats.Suspense++
		} else {
			stats.Matched++
		}
		results = append(results, tm)
	}
	return results
}
