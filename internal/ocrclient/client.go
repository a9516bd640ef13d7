// Package ocrclient talks to the hosted document-understanding service
// that produces text fragments from uploaded documents.
//
// The client is a thin transport: it splits oversized documents into
// page ranges the service accepts, merges the responses in order and
// reports empty results as fatal errors. Retry and backoff are the
// caller's concern.
package ocrclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bank-statement-coder/internal/ocr"
	"bank-statement-coder/pkg/errors"
	"bank-statement-coder/pkg/logger"
)

// maxPagesPerRequest is the service's per-request page limit.
const maxPagesPerRequest = 10

const defaultTimeout = 2 * time.Minute

// Config holds the client options.
type Config struct {
	BaseURL     string        `json:"baseUrl"`
	ProcessorID string        `json:"processorId"`
	Timeout     time.Duration `json:"timeout"`
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New(errors.CategoryConfig, errors.CodeInvalidConfig,
			"ocr baseUrl must not be empty")
	}
	if c.ProcessorID == "" {
		return errors.New(errors.CategoryConfig, errors.CodeInvalidConfig,
			"ocr processorId must not be empty")
	}
	return nil
}

// Client is the OCR service client.
type Client struct {
	baseURL     string
	processorID string
	httpClient  *http.Client
	log         logger.Logger
}

// NewClient validates the configuration and returns a client.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		processorID: cfg.ProcessorID,
		httpClient:  &http.Client{Timeout: timeout},
		log:         logger.WithComponent(logger.ComponentOCR),
	}, nil
}

// Document is one upload to process.
type Document struct {
	Name    string
	Content []byte
	// Pages is the page count when known; zero sends the whole
	// document in one request.
	Pages int
}

type processRequest struct {
	Content   string `json:"content"`
	StartPage int    `json:"startPage,omitempty"`
	EndPage   int    `json:"endPage,omitempty"`
}

type processResponse struct {
	Fragments []*ocr.TextFragment `json:"fragments"`
}

// ProcessDocument sends the document for OCR and returns its fragments
// grouped per page, in page order. Documents beyond the service's page
// limit go out as multiple range requests whose responses merge in
// order. A document yielding zero fragments is a fatal error: nothing
// downstream can work without text.
func (c *Client) ProcessDocument(ctx context.Context, doc Document) ([][]*ocr.TextFragment, error) {
	var fragments []*ocr.TextFragment
	for _, r := range pageRanges(doc.Pages) {
		chunk, err := c.process(ctx, doc, r.start, r.end)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, chunk...)
	}

	if len(fragments) == 0 {
		return nil, errors.OCRError(errors.CodeNoFragments, doc.Name, nil)
	}

	pageCount := doc.Pages
	for _, f := range fragments {
		if f.Page+1 > pageCount {
			pageCount = f.Page + 1
		}
	}
	pages := make([][]*ocr.TextFragment, pageCount)
	for _, f := range fragments {
		if f.Page < 0 || f.Page >= pageCount {
			continue
		}
		pages[f.Page] = append(pages[f.Page], f)
	}

	c.log.WithFields(logger.Fields{
		"document":  doc.Name,
		"pages":     pageCount,
		"fragments": len(fragments),
	}).Debug("document processed")
	return pages, nil
}

// ProcessBatch processes documents sequentially, failing fast on the
// first error.
func (c *Client) ProcessBatch(ctx context.Context, docs []Document) ([][][]*ocr.TextFragment, error) {
	results := make([][][]*ocr.TextFragment, 0, len(docs))
	for _, doc := range docs {
		pages, err := c.ProcessDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		results = append(results, pages)
	}
	return results, nil
}

func (c *Client) process(ctx context.Context, doc Document, startPage, endPage int) ([]*ocr.TextFragment, error) {
	body, err := json.Marshal(processRequest{
		Content:   base64.StdEncoding.EncodeToString(doc.Content),
		StartPage: startPage,
		EndPage:   endPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpected,
			"encoding OCR request")
	}

	url := fmt.Sprintf("%s/v1/processors/%s:process", c.baseURL, c.processorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpected,
			"building OCR request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.OCRError(errors.CodeOCRUnavailable, doc.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.OCRError(errors.CodeOCRUnavailable,
			fmt.Sprintf("%s: status %d", doc.Name, resp.StatusCode), nil)
	}

	var decoded processResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.OCRError(errors.CodeOCRBadResponse, doc.Name, err)
	}
	return decoded.Fragments, nil
}

type pageRange struct {
	start, end int
}

// pageRanges splits a page count into service-sized request ranges,
// 1-based inclusive. A zero count means a single unranged request.
func pageRanges(pages int) []pageRange {
	if pages <= 0 {
		return []pageRange{{}}
	}
	var ranges []pageRange
	for start := 1; start <= pages; start += maxPagesPerRequest {
		end := start + maxPagesPerRequest - 1
		if end > pages {
			end = pages
		}
		ranges = append(ranges, pageRange{start: start, end: end})
	}
	return ranges
}
