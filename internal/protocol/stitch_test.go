package protocol

import (
	"strings"
	"testing"
)

func sectionLines() []string {
	return []string{
		"Lista protocoalelor",
		"A001E ORLISTATUM",
		"B009I CLOPIDOGRELUM",
		"Protocol terapeutic corespunzator pozitiei nr. 1, cod (A001E): DCI ORLISTATUM",
		"Indicatii: tratamentul pacientilor cu obezitate si indice de masa corporala crescut.",
		"Criterii de includere in tratament: varsta peste 18 ani, evaluare clinica completa.",
		"Monitorizare: evaluare lunara a greutatii si a tolerantei digestive.",
		"Prescriptori: medici specialisti in diabet, nutritie si boli metabolice.",
		"Protocol terapeutic corespunzator pozitiei nr. 2, cod (B009I): DCI CLOPIDOGRELUM",
		"Indicatii: prevenirea evenimentelor aterotrombotice.",
	}
}

func TestStitch_SectionReplacesRowContent(t *testing.T) {
	stitcher := NewStitcher(nil)
	cand := &Candidate{
		Code:       "A001E",
		Title:      "ORLISTATUM",
		Content:    "A001E ORLISTATUM",
		Confidence: 95,
	}

	result := stitcher.Stitch(cand, sectionLines())
	if !result.Replaced {
		t.Fatal("Expected section content to replace the table row")
	}
	if result.Fallback {
		t.Error("Expected the header-anchored path, not the fallback")
	}
	if !strings.Contains(cand.Content, "Criterii de includere") {
		t.Errorf("Expected full section content, got %q", cand.Content)
	}
	if strings.Contains(cand.Content, "B009I") {
		t.Errorf("Expected section to stop before the next header, got %q", cand.Content)
	}
	if cand.StitchWindow == 0 {
		t.Error("Expected the applied window to be recorded")
	}
	if cand.Confidence != 95 {
		t.Errorf("Expected anchored stitch to keep confidence, got %d", cand.Confidence)
	}
}

func TestStitch_NeverShortens(t *testing.T) {
	stitcher := NewStitcher(nil)
	longContent := strings.Repeat("continut existent deja foarte lung ", 40)
	cand := &Candidate{
		Code:       "A001E",
		Title:      "ORLISTATUM",
		Content:    longContent,
		Confidence: 95,
	}

	result := stitcher.Stitch(cand, sectionLines())
	if result.Replaced {
		t.Fatal("Expected no replacement when the section is not materially longer")
	}
	if cand.Content != longContent {
		t.Error("Expected existing content untouched")
	}
	if cand.Confidence != 95 {
		t.Errorf("Expected confidence untouched, got %d", cand.Confidence)
	}
}

func TestStitch_RederivesTitleFromHeader(t *testing.T) {
	stitcher := NewStitcher(nil)
	cand := &Candidate{
		Code:       "A001E",
		Title:      "): DCI",
		Content:    "A001E",
		Confidence: 80,
	}

	result := stitcher.Stitch(cand, sectionLines())
	if !result.Replaced {
		t.Fatal("Expected replacement")
	}
	if cand.Title != "ORLISTATUM" {
		t.Errorf("Expected title rederived from the section header, got %q", cand.Title)
	}
}

func TestStitch_FallbackLowersConfidence(t *testing.T) {
	stitcher := NewStitcher(nil)
	lines := []string{
		"A001E ORLISTATUM",
		"Indicatii: tratamentul obezitatii la pacientii adulti cu indice de masa crescut.",
		"Criterii de includere: evaluare completa inainte de initierea tratamentului.",
		"B009I CLOPIDOGRELUM",
	}
	cand := &Candidate{
		Code:       "A001E",
		Title:      "ORLISTATUM",
		Content:    "A001E ORLISTATUM",
		Confidence: 80,
	}

	result := stitcher.Stitch(cand, lines)
	if !result.Replaced || !result.Fallback {
		t.Fatalf("Expected fallback replacement, got %+v", result)
	}
	if cand.Confidence != 70 {
		t.Errorf("Expected confidence lowered by the fallback penalty, got %d", cand.Confidence)
	}
	if strings.Contains(cand.Content, "B009I") {
		t.Errorf("Expected fallback window to stop at the next code, got %q", cand.Content)
	}
}

func TestStitch_CodeAbsentLeavesCandidateAlone(t *testing.T) {
	stitcher := NewStitcher(nil)
	cand := &Candidate{
		Code:       "Z999X",
		Title:      "NECUNOSCUT",
		Content:    "Z999X NECUNOSCUT",
		Confidence: 75,
	}

	result := stitcher.Stitch(cand, sectionLines())
	if result.Replaced {
		t.Error("Expected no replacement for an absent code")
	}
	if cand.Content != "Z999X NECUNOSCUT" || cand.Confidence != 75 {
		t.Errorf("Expected candidate untouched, got %+v", cand)
	}
}
