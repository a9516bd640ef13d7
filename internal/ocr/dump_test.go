package ocr

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadDumpNested(t *testing.T) {
	dump := `[
		[{"text": "hello", "page": 0}, {"text": "world", "page": 0}],
		[{"text": "second", "page": 1}]
	]`

	pages, err := ReadDump(strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if len(pages[0]) != 2 || pages[0][0].Text != "hello" {
		t.Errorf("first page = %+v", pages[0])
	}
	if len(pages[1]) != 1 || pages[1][0].Text != "second" {
		t.Errorf("second page = %+v", pages[1])
	}
}

func TestReadDumpFlat(t *testing.T) {
	dump := `[
		{"text": "a", "page": 0},
		{"text": "b", "page": 2},
		{"text": "c", "page": 0}
	]`

	pages, err := ReadDump(strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	if len(pages[0]) != 2 || pages[0][1].Text != "c" {
		t.Errorf("first page = %+v", pages[0])
	}
	// Page 1 has no fragments but keeps its slot.
	if len(pages[1]) != 0 {
		t.Errorf("middle page = %+v", pages[1])
	}
	if len(pages[2]) != 1 || pages[2][0].Text != "b" {
		t.Errorf("third page = %+v", pages[2])
	}
}

func TestReadDumpRejectsGarbage(t *testing.T) {
	if _, err := ReadDump(strings.NewReader(`{"not": "a dump"}`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	pages := [][]*TextFragment{
		{frag("alpha", 0.1, 0.1, 0), frag("beta", 0.3, 0.1, 0)},
		{frag("gamma", 0.1, 0.2, 1)},
	}

	var buf bytes.Buffer
	if err := WriteDump(&buf, pages); err != nil {
		t.Fatalf("WriteDump: %v", err)
	}

	decoded, err := ReadDump(&buf)
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if len(decoded) != 2 || len(decoded[0]) != 2 || len(decoded[1]) != 1 {
		t.Fatalf("shape = %d pages", len(decoded))
	}
	if decoded[0][1].Text != "beta" {
		t.Errorf("text = %q", decoded[0][1].Text)
	}
	got := decoded[1][0].BoundingPoly.NormalizedVertices.BottomLeft
	want := pages[1][0].BoundingPoly.NormalizedVertices.BottomLeft
	if got != want {
		t.Errorf("poly = %+v, want %+v", got, want)
	}
}
