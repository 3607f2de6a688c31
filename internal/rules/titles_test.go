package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleValidator_IsCorrupted(t *testing.T) {
	validator := NewTitleValidator(DefaultRuleSet())

	tests := []struct {
		name              string
		title             string
		expectedCorrupted bool
		expectedSignature string
	}{
		{
			name:              "empty code reference",
			title:             "): DCI",
			expectedCorrupted: true,
			expectedSignature: "empty_code_reference",
		},
		{
			name:              "starts lowercase",
			title:             "tratamentul obezitatii",
			expectedCorrupted: true,
			expectedSignature: "starts_lowercase",
		},
		{
			name:              "starts with punctuation",
			title:             ", continuare de rand",
			expectedCorrupted: true,
			expectedSignature: "starts_punctuation",
		},
		{
			name:              "short acronym",
			title:             "DCI",
			expectedCorrupted: true,
			expectedSignature: "short_acronym",
		},
		{
			name:              "digits only",
			title:             "12 34",
			expectedCorrupted: true,
			expectedSignature: "digits_only",
		},
		{
			name:              "table header fragment",
			title:             "Codul protocolului",
			expectedCorrupted: true,
			expectedSignature: "header_fragment",
		},
		{
			name:              "clean drug title",
			title:             "ORLISTATUM",
			expectedCorrupted: false,
		},
		{
			name:              "clean descriptive title",
			title:             "Tratamentul poliartritei reumatoide severe",
			expectedCorrupted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corrupted, signatures := validator.IsCorrupted(tt.title)
			assert.Equal(t, tt.expectedCorrupted, corrupted)
			if tt.expectedSignature != "" {
				assert.Contains(t, signatures, tt.expectedSignature)
			}
		})
	}
}

func TestTitleValidator_CorrectFromKnownTitles(t *testing.T) {
	validator := NewTitleValidator(DefaultRuleSet())

	correction := validator.Correct("A017E", "): DCI", "")
	require.True(t, correction.Corrected)
	assert.Equal(t, "METHYLPHENIDATUM", correction.Title)
	assert.Equal(t, SourceKnownTitle, correction.Source)
}

func TestTitleValidator_CorrectFromContentHeader(t *testing.T) {
	validator := NewTitleValidator(DefaultRuleSet())

	content := "Protocol terapeutic, cod (X123Y): TRATAMENTUL HEPATITEI CRONICE\nIndicatii: ..."
	correction := validator.Correct("X123Y", "): DCI", content)
	require.True(t, correction.Corrected)
	assert.Equal(t, "TRATAMENTUL HEPATITEI CRONICE", correction.Title)
	assert.Equal(t, SourceContent, correction.Source)
}

func TestTitleValidator_CorrectFromContentDrugName(t *testing.T) {
	validator := NewTitleValidator(DefaultRuleSet())

	content := "sectiune fara antet\ntratament cu ADALIMUMABUM subcutanat\nmonitorizare"
	correction := validator.Correct("X123Y", "dci", content)
	require.True(t, correction.Corrected)
	assert.Equal(t, "ADALIMUMABUM", correction.Title)
	assert.Equal(t, SourceContent, correction.Source)
}

func TestTitleValidator_CorrectGivesUp(t *testing.T) {
	validator := NewTitleValidator(DefaultRuleSet())

	correction := validator.Correct("X123Y", "): DCI", "")
	assert.False(t, correction.Corrected)
	assert.Equal(t, "): DCI", correction.Title)
	assert.Equal(t, SourceNone, correction.Source)
}

func TestTitleValidator_CleanTitleNeverTouched(t *testing.T) {
	validator := NewTitleValidator(DefaultRuleSet())

	corrupted, _ := validator.IsCorrupted("ORLISTATUM")
	assert.False(t, corrupted)
}
