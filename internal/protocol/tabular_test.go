package protocol

import (
	"testing"

	"github.com/rxlab/protoextract/internal/rules"
	"github.com/rxlab/protoextract/internal/tables"
)

func makeRow(idx int, texts ...string) tables.Row {
	row := tables.Row{Index: idx}
	for col, text := range texts {
		row.Cells = append(row.Cells, tables.Cell{Text: text, Col: col, Row: idx})
	}
	return row
}

func TestTabularParser_CodeAndTitleRow(t *testing.T) {
	parser := NewTabularParser(rules.DefaultRuleSet())
	table := &tables.Table{
		Page: 3,
		Rows: []tables.Row{makeRow(0, "A001E", "ORLISTATUM")},
	}

	candidates := parser.ParseTable(table)
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}

	cand := candidates[0]
	if cand.Code != "A001E" {
		t.Errorf("Expected code A001E, got %q", cand.Code)
	}
	if cand.Title != "ORLISTATUM" {
		t.Errorf("Expected title ORLISTATUM, got %q", cand.Title)
	}
	if cand.PageNumber != 3 {
		t.Errorf("Expected page 3, got %d", cand.PageNumber)
	}
	if cand.Source != SourceTable {
		t.Errorf("Expected table source, got %q", cand.Source)
	}
	// Strict code, sane length, real letters, no corruption: all bonuses.
	if cand.Confidence < 90 {
		t.Errorf("Expected confidence >= 90, got %d", cand.Confidence)
	}
}

func TestTabularParser_RowsWithoutCodeSkipped(t *testing.T) {
	parser := NewTabularParser(rules.DefaultRuleSet())
	table := &tables.Table{
		Page: 1,
		Rows: []tables.Row{
			makeRow(0, "Nr. crt", "Denumire protocol"),
			makeRow(1, "A001E", "ORLISTATUM"),
			makeRow(2, "", "text fara cod"),
		},
	}

	candidates := parser.ParseTable(table)
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Code != "A001E" {
		t.Errorf("Expected A001E to survive, got %q", candidates[0].Code)
	}
}

func TestTabularParser_JunkTitleRejected(t *testing.T) {
	parser := NewTabularParser(rules.DefaultRuleSet())
	table := &tables.Table{
		Page: 1,
		Rows: []tables.Row{makeRow(0, "A001E", "Denumire protocol")},
	}

	if candidates := parser.ParseTable(table); len(candidates) != 0 {
		t.Errorf("Expected junk title row to be rejected, got %v", candidates)
	}
}

func TestTabularParser_DCISplitFromTitle(t *testing.T) {
	parser := NewTabularParser(rules.DefaultRuleSet())
	table := &tables.Table{
		Page: 2,
		Rows: []tables.Row{makeRow(0, "B009I", "BOALA CARDIOVASCULARA DCI: CLOPIDOGRELUM")},
	}

	candidates := parser.ParseTable(table)
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Title != "BOALA CARDIOVASCULARA" {
		t.Errorf("Expected DCI stripped from title, got %q", candidates[0].Title)
	}
	if candidates[0].DCI != "CLOPIDOGRELUM" {
		t.Errorf("Expected DCI CLOPIDOGRELUM, got %q", candidates[0].DCI)
	}
}

func TestTabularParser_TitleFromPositionFallbacks(t *testing.T) {
	parser := NewTabularParser(rules.DefaultRuleSet())

	// Title lives in the cell before the code.
	table := &tables.Table{
		Page: 1,
		Rows: []tables.Row{makeRow(0, "METHYLPHENIDATUM", "A017E", "")},
	}
	candidates := parser.ParseTable(table)
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Title != "METHYLPHENIDATUM" {
		t.Errorf("Expected title from preceding cell, got %q", candidates[0].Title)
	}
}

func TestTabularParser_NilTable(t *testing.T) {
	parser := NewTabularParser(rules.DefaultRuleSet())
	if candidates := parser.ParseTable(nil); candidates != nil {
		t.Errorf("Expected nil for nil table, got %v", candidates)
	}
}
