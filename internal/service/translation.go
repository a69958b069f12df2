package service

import (
	"strings"

	"github.com/alexivanou/cityphoto-api/internal/model"
)

// TranslationGenerator seeds one translation per supported language.
// Every language currently receives the canonical name unchanged.
type TranslationGenerator struct {
	languages []string
}

// NewTranslationGenerator normalizes and de-duplicates the language codes
func NewTranslationGenerator(languages []string) *TranslationGenerator {
	seen := make(map[string]bool, len(languages))
	var langs []string
	for _, l := range languages {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		langs = append(langs, l)
	}
	return &TranslationGenerator{languages: langs}
}

// Languages returns a copy of the supported language codes
func (g *TranslationGenerator) Languages() []string {
	return append([]string(nil), g.languages...)
}

// Generate returns the translations for a newly created city
func (g *TranslationGenerator) Generate(name string, cityID int64) []model.CityTranslation {
	translations := make([]model.CityTranslation, 0, len(g.languages))
	for _, lang := range g.languages {
		translations = append(translations, model.CityTranslation{
			CityID:         cityID,
			Language:       lang,
			TranslatedName: name,
		})
	}
	return translations
}
