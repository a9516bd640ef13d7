package ocr

import (
	"encoding/json"
	"io"
)

// Fragment dumps cache OCR responses between runs so a document is
// only sent to the service once. Both shapes that have been cached over
// time decode: per-page nested arrays, and a flat fragment list that is
// regrouped by each fragment's page index.

// ReadDump decodes a cached fragment dump into per-page fragment
// sequences.
func ReadDump(r io.Reader) ([][]*TextFragment, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var pages [][]*TextFragment
	if err := json.Unmarshal(raw, &pages); err == nil {
		return pages, nil
	}

	var flat []*TextFragment
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return groupByPage(flat), nil
}

// WriteDump encodes per-page fragment sequences as a cacheable dump.
func WriteDump(w io.Writer, pages [][]*TextFragment) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(pages)
}

func groupByPage(fragments []*TextFragment) [][]*TextFragment {
	pageCount := 0
	for _, f := range fragments {
		if f.Page+1 > pageCount {
			pageCount = f.Page + 1
		}
	}
	pages := make([][]*TextFragment, pageCount)
	for _, f := range fragments {
		if f.Page < 0 {
			continue
		}
		pages[f.Page] = append(pages[f.Page], f)
	}
	return pages
}
