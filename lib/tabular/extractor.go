// Package tabular locates tables inside scraped documents and maps
// their header-driven schemas onto logical record fields.
package tabular

import (
	"fmt"
	"strings"
	"timesales-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var ErrTableNotFound = fmt.Errorf("no table matched any locate strategy")

type StrategyKind string

const (
	// find a heading whose text contains Phrase, take its enclosing
	// section and return the section's first descendant table
	ByAnchorHeading StrategyKind = "anchor_heading"
	// iterate all sections, match heading text case-insensitively
	BySectionScan StrategyKind = "section_scan"
	// return the first table whose inner text contains every marker
	ByFingerprint StrategyKind = "fingerprint"
)

type Strategy struct {
	Kind    StrategyKind `json:"kind"`
	Phrase  string       `json:"phrase,omitempty"`
	Markers []string     `json:"markers,omitempty"`
}

// LocateSpec is the fallback chain, tried in order. It is data rather
// than control flow so venue markup changes are a config edit.
type LocateSpec struct {
	Strategies []Strategy `json:"strategies"`
}

type RawTable struct {
	Headers []string
	Rows    [][]string
}

// FindTable runs the fallback chain over doc and returns the first
// matching table selection.
func FindTable(doc *goquery.Document, spec LocateSpec) (*goquery.Selection, error) {
	for _, strategy := range spec.Strategies {
		var table *goquery.Selection
		switch strategy.Kind {
		case ByAnchorHeading:
			table = findByAnchorHeading(doc, strategy.Phrase)
		case BySectionScan:
			table = findBySectionScan(doc, strategy.Phrase)
		case ByFingerprint:
			table = findByFingerprint(doc, strategy.Markers)
		}
		if table != nil {
			return table, nil
		}
	}
	return nil, ErrTableNotFound
}

func findByAnchorHeading(doc *goquery.Document, phrase string) *goquery.Selection {
	want := strings.ToLower(phrase)
	var found *goquery.Selection

	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		text := strings.ToLower(htmlutil.NormalizeText(heading.Text()))
		if !strings.Contains(text, want) {
			return true
		}
		table := heading.Closest("section").Find("table").First()
		if table.Length() > 0 {
			found = table
			return false
		}
		return true
	})
	return found
}

func findBySectionScan(doc *goquery.Document, phrase string) *goquery.Selection {
	want := strings.ToLower(phrase)
	var found *goquery.Selection

	doc.Find("section").EachWithBreak(func(_ int, section *goquery.Selection) bool {
		matched := false
		section.Find("h1, h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
			text := strings.ToLower(htmlutil.NormalizeText(heading.Text()))
			if strings.Contains(text, want) {
				matched = true
				return false
			}
			return true
		})
		if !matched {
			return true
		}
		table := section.Find("table").First()
		if table.Length() > 0 {
			found = table
			return false
		}
		return true
	})
	return found
}

func findByFingerprint(doc *goquery.Document, markers []string) *goquery.Selection {
	var found *goquery.Selection

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		text := strings.ToLower(table.Text())
		for _, marker := range markers {
			if !strings.Contains(text, strings.ToLower(marker)) {
				return true
			}
		}
		found = table
		return false
	})
	return found
}

// ExtractRaw pulls the header cell texts and body row cell texts out of
// a located table. The header row is the thead row when present,
// otherwise the table's first row; <th> cells are preferred over <td>
// within it.
func ExtractRaw(table *goquery.Selection) (RawTable, error) {
	headerRow := table.Find("thead tr").First()
	usedThead := headerRow.Length() > 0
	if !usedThead {
		headerRow = table.Find("tr").First()
	}
	if headerRow.Length() == 0 {
		return RawTable{}, fmt.Errorf("table has no rows")
	}

	headerCells := headerRow.Find("th")
	if headerCells.Length() == 0 {
		headerCells = headerRow.Find("td")
	}
	var out RawTable
	headerCells.Each(func(_ int, cell *goquery.Selection) {
		out.Headers = append(out.Headers, htmlutil.NormalizeText(cell.Text()))
	})

	// the html parser inserts an implicit <tbody>, so body rows are all
	// <tr> outside a <thead>, minus the header row itself when the
	// header came from the first row
	seenBody := 0
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Closest("thead").Length() > 0 {
			return
		}
		seenBody++
		if !usedThead && seenBody == 1 {
			return
		}
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, htmlutil.NormalizeText(cell.Text()))
		})
		if len(cells) > 0 {
			out.Rows = append(out.Rows, cells)
		}
	})
	return out, nil
}
