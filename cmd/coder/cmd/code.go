package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-statement-coder/cmd/coder/config"
	"bank-statement-coder/internal/banks"
	"bank-statement-coder/internal/coder"
	"bank-statement-coder/internal/glformats"
	"bank-statement-coder/internal/matcher"
	"bank-statement-coder/internal/models"
	"bank-statement-coder/internal/ocr"
	"bank-statement-coder/internal/ocrclient"
	"bank-statement-coder/internal/report"
	"bank-statement-coder/pkg/errors"
)

// Flags for the code command
var (
	statementFiles  []string
	ledgerFile      string
	ledgerXLSX      string
	outputFormat    string
	outputFile      string
	ratioCutoff     float64
	lineTolerance   float64
	suspenseAccount string
	concurrency     int
	ocrBaseURL      string
	ocrProcessorID  string
)

// codeCmd represents the code command
var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Code statement transactions against a general ledger",
	Long: `Code parses one or more bank statements and a general ledger, then
proposes a ledger account for every statement transaction by
description similarity.

Statement and ledger inputs are cached OCR fragment dumps (JSON). A
spreadsheet ledger export can be supplied instead with --ledger-xlsx.
Statements that are not dumps are sent to the OCR service, which
requires --ocr-base-url and --ocr-processor-id.

Examples:
  # Code one statement against an OCR'd ledger
  coder code --statement-files july.pdf.json --ledger-file gl.pdf.json

  # Several statements against a spreadsheet ledger, CSV output
  coder code --statement-files a.pdf.json,b.pdf.json \
    --ledger-xlsx gl.xlsx --output-format csv --output-file codings.csv

  # Tuned matching
  coder code --statement-files july.pdf.json --ledger-file gl.pdf.json \
    --ratio-cutoff 0.4 --suspense-account 3900`,

	PreRunE: validateCodeFlags,
	RunE:    runCode,
}

func init() {
	rootCmd.AddCommand(codeCmd)

	codeCmd.Flags().StringSliceVarP(&statementFiles, "statement-files", "s", []string{}, "comma-separated statement fragment dumps or documents (required)")
	codeCmd.Flags().StringVarP(&ledgerFile, "ledger-file", "l", "", "general-ledger fragment dump")
	codeCmd.Flags().StringVar(&ledgerXLSX, "ledger-xlsx", "", "general-ledger spreadsheet export")

	codeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	codeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	codeCmd.Flags().Float64Var(&ratioCutoff, "ratio-cutoff", 0, "minimum description similarity (0 keeps the tuned default)")
	codeCmd.Flags().Float64Var(&lineTolerance, "line-tolerance", ocr.LineYTolerance, "normalized Y tolerance for line reconstruction")
	codeCmd.Flags().StringVar(&suspenseAccount, "suspense-account", "", "account number for unmatched transactions")
	codeCmd.Flags().IntVar(&concurrency, "concurrency", 4, "statements coded in parallel")

	codeCmd.Flags().StringVar(&ocrBaseURL, "ocr-base-url", "", "OCR service base URL (for non-dump inputs)")
	codeCmd.Flags().StringVar(&ocrProcessorID, "ocr-processor-id", "", "OCR processor identifier")

	codeCmd.MarkFlagRequired("statement-files")

	viper.BindPFlag("statement-files", codeCmd.Flags().Lookup("statement-files"))
	viper.BindPFlag("ledger-file", codeCmd.Flags().Lookup("ledger-file"))
	viper.BindPFlag("ledger-xlsx", codeCmd.Flags().Lookup("ledger-xlsx"))
	viper.BindPFlag("output-format", codeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", codeCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("ratio-cutoff", codeCmd.Flags().Lookup("ratio-cutoff"))
	viper.BindPFlag("line-tolerance", codeCmd.Flags().Lookup("line-tolerance"))
	viper.BindPFlag("suspense-account", codeCmd.Flags().Lookup("suspense-account"))
	viper.BindPFlag("concurrency", codeCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("ocr-base-url", codeCmd.Flags().Lookup("ocr-base-url"))
	viper.BindPFlag("ocr-processor-id", codeCmd.Flags().Lookup("ocr-processor-id"))
}

func validateCodeFlags(cmd *cobra.Command, args []string) error {
	statementFiles = viper.GetStringSlice("statement-files")
	ledgerFile = viper.GetString("ledger-file")
	ledgerXLSX = viper.GetString("ledger-xlsx")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	ratioCutoff = viper.GetFloat64("ratio-cutoff")
	lineTolerance = viper.GetFloat64("line-tolerance")
	suspenseAccount = viper.GetString("suspense-account")
	concurrency = viper.GetInt("concurrency")
	ocrBaseURL = viper.GetString("ocr-base-url")
	ocrProcessorID = viper.GetString("ocr-processor-id")

	if len(statementFiles) == 0 {
		return fmt.Errorf("at least one statement-file is required")
	}
	if (ledgerFile == "") == (ledgerXLSX == "") {
		return fmt.Errorf("exactly one of --ledger-file and --ledger-xlsx is required")
	}

	for i, path := range statementFiles {
		if err := validateFileExists(path, fmt.Sprintf("statement file %d", i+1)); err != nil {
			return err
		}
	}
	ledgerPath := ledgerFile
	if ledgerPath == "" {
		ledgerPath = ledgerXLSX
	}
	if err := validateFileExists(ledgerPath, "ledger file"); err != nil {
		return err
	}

	if _, err := report.ParseFormat(outputFormat); err != nil {
		return err
	}
	if ratioCutoff < 0 || ratioCutoff > 1 {
		return fmt.Errorf("ratio-cutoff must be between 0 and 1")
	}
	if lineTolerance <= 0 || lineTolerance >= 1 {
		return fmt.Errorf("line-tolerance must be between 0 and 1")
	}
	if concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}

	needsOCR := false
	for _, path := range statementFiles {
		if !isFragmentDump(path) {
			needsOCR = true
		}
	}
	if needsOCR && (ocrBaseURL == "" || ocrProcessorID == "") {
		return fmt.Errorf("non-dump statement files require --ocr-base-url and --ocr-processor-id")
	}

	return nil
}

func validateFileExists(path, description string) error {
	if path == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, path)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, path)
	}
	return nil
}

func isFragmentDump(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func runCode(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	engine, err := matcher.NewEngine(config.CreateMatcherConfig(ratioCutoff, suspenseAccount))
	if err != nil {
		return err
	}

	var client *ocrclient.Client
	if ocrBaseURL != "" {
		client, err = ocrclient.NewClient(config.CreateOCRClientConfig(
			ocrBaseURL, ocrProcessorID, 2*time.Minute))
		if err != nil {
			return err
		}
	}

	ledger, err := loadLedger(ctx, client)
	if err != nil {
		return err
	}

	registry := banks.NewRegistry()
	results := make([]*coder.Results, len(statementFiles))
	codeErrs := make([]error, len(statementFiles))

	// One goroutine per statement-ledger pairing, bounded.
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, path := range statementFiles {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], codeErrs[i] = codeStatement(ctx, client, registry, engine, ledger, path)
		}(i, path)
	}
	wg.Wait()

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	format, _ := report.ParseFormat(outputFormat)
	reporter := report.New(output, format)
	for i, result := range results {
		if codeErrs[i] != nil {
			continue
		}
		if err := reporter.Write(result); err != nil {
			return err
		}
	}

	for _, codeErr := range codeErrs {
		if codeErr != nil {
			return codeErr
		}
	}
	return nil
}

// loadLedger parses the ledger from whichever input was supplied.
func loadLedger(ctx context.Context, client *ocrclient.Client) (*models.Ledger, error) {
	if ledgerXLSX != "" {
		f, err := os.Open(ledgerXLSX)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileNotFound, ledgerXLSX, err)
		}
		defer f.Close()

		ledger, err := glformats.ParseSpreadsheet(f)
		if err != nil {
			return nil, err
		}
		ledger.File = storedFile(ledgerXLSX)
		return ledger, nil
	}

	doc, err := loadDocument(ctx, client, ledgerFile)
	if err != nil {
		return nil, err
	}
	ledger := glformats.ParseAccountingCS(doc)
	if !ledger.Identified() {
		return nil, errors.Newf(errors.CategoryParse, errors.CodeUnknownGLFormat,
			"no known general-ledger format identified %s", ledgerFile)
	}
	ledger.File = storedFile(ledgerFile)
	return ledger, nil
}

func codeStatement(ctx context.Context, client *ocrclient.Client, registry *banks.Registry,
	engine *matcher.Engine, ledger *models.Ledger, path string) (*coder.Results, error) {

	doc, err := loadDocument(ctx, client, path)
	if err != nil {
		return nil, err
	}

	statement := banks.ParseStatement(doc, registry)
	if !statement.Identified() {
		return nil, errors.Newf(errors.CategoryParse, errors.CodeUnknownIssuer,
			"no known issuer identified %s", path)
	}
	statement.File = storedFile(path)

	return coder.New(statement, ledger, engine).Results(), nil
}

// loadDocument produces reconstructed lines from either a cached
// fragment dump or, for original documents, a fresh OCR pass.
func loadDocument(ctx context.Context, client *ocrclient.Client, path string) (ocr.Document, error) {
	var pages [][]*ocr.TextFragment

	if isFragmentDump(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		defer f.Close()

		pages, err = ocr.ReadDump(f)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
		}
	} else {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		pages, err = client.ProcessDocument(ctx, ocrclient.Document{
			Name:    filepath.Base(path),
			Content: content,
		})
		if err != nil {
			return nil, err
		}
	}

	for i := range pages {
		pages[i] = ocr.SortFragments(pages[i])
	}
	return ocr.GroupLinesRepairWithTolerance(pages, lineTolerance), nil
}

func storedFile(path string) *models.StoredFile {
	file := &models.StoredFile{
		ID:   uuid.New(),
		Name: filepath.Base(path),
	}
	if content, err := os.ReadFile(path); err == nil {
		sum := sha256.Sum256(content)
		file.Hash = hex.EncodeToString(sum[:])
	}
	return file
}
