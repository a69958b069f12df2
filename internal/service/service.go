package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/geocoding"
	"github.com/alexivanou/cityphoto-api/internal/repository"
	"go.uber.org/zap"
)

// Transactor hands out repositories, plain or bound to a transaction.
// *repository.Store satisfies it.
type Transactor interface {
	Repositories() *repository.Container
	WithinTx(ctx context.Context, fn func(repos *repository.Container) error) error
}

// Service provides business logic for the API
type Service struct {
	store        Transactor
	geocoder     geocoding.Geocoder
	translations *TranslationGenerator
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a new service instance
func NewService(
	store Transactor,
	geocoder geocoding.Geocoder,
	languages []string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:        store,
		geocoder:     geocoder,
		translations: NewTranslationGenerator(languages),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetAvailableLanguages returns the supported languages followed by any
// other language found among stored translations
func (s *Service) GetAvailableLanguages(ctx context.Context) ([]string, error) {
	stored, err := s.store.Repositories().Translation.GetAvailableLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get languages: %w", err)
	}

	langs := s.translations.Languages()
	seen := make(map[string]bool, len(langs))
	for _, l := range langs {
		seen[l] = true
	}
	for _, l := range stored {
		if !seen[l] {
			seen[l] = true
			langs = append(langs, l)
		}
	}
	return langs, nil
}
