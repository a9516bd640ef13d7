// Package config builds component configurations from CLI inputs.
package config

import (
	"time"

	"bank-statement-coder/internal/matcher"
	"bank-statement-coder/internal/ocrclient"
)

// CreateMatcherConfig applies the CLI threshold overrides on top of the
// tuned defaults.
func CreateMatcherConfig(ratioCutoff float64, suspenseAccount string) *matcher.Config {
	cfg := matcher.DefaultConfig()
	if ratioCutoff > 0 {
		cfg.RatioCutoff = ratioCutoff
		cfg.WordMatchRatio = ratioCutoff
	}
	if suspenseAccount != "" {
		cfg.SuspenseNumber = suspenseAccount
	}
	return cfg
}

// CreateOCRClientConfig builds the OCR service configuration. The
// service is only contacted for statement files that are not cached
// fragment dumps.
func CreateOCRClientConfig(baseURL, processorID string, timeout time.Duration) *ocrclient.Config {
	return &ocrclient.Config{
		BaseURL:     baseURL,
		ProcessorID: processorID,
		Timeout:     timeout,
	}
}
