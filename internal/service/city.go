package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/alexivanou/cityphoto-api/internal/repository"
	"go.uber.org/zap"
)

const defaultLang = "en"

// ResolveOrCreateCity returns the city with exactly this name and country,
// creating it together with its translations when absent. repos should be
// bound to the caller's transaction.
func (s *Service) ResolveOrCreateCity(ctx context.Context, repos *repository.Container, name, country string) (*model.City, error) {
	if name == "" || country == "" {
		return nil, fmt.Errorf("%w: city and country are required", ErrInvalidInput)
	}

	city, err := repos.City.FindByNameCountry(ctx, name, country)
	if err != nil {
		return nil, fmt.Errorf("failed to find city: %w", err)
	}
	if city != nil {
		s.logger.Debug("city resolved", zap.Int64("city_id", city.ID), zap.String("city", name), zap.String("country", country))
		return city, nil
	}

	city = &model.City{Name: name, Country: country}
	created, err := repos.City.CreateIfAbsent(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to create city: %w", err)
	}

	if !created {
		// A concurrent request inserted the same pair after our lookup.
		city, err = repos.City.FindByNameCountry(ctx, name, country)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read city: %w", err)
		}
		if city == nil {
			return nil, fmt.Errorf("city %q, %q missing after insert conflict", name, country)
		}
		s.logger.Info("city created concurrently, reusing",
			zap.Int64("city_id", city.ID), zap.String("city", name), zap.String("country", country))
		return city, nil
	}

	translations := s.translations.Generate(name, city.ID)
	if err := repos.Translation.BulkInsertCityTranslations(ctx, translations); err != nil {
		return nil, fmt.Errorf("failed to seed translations: %w", err)
	}

	s.logger.Info("city created",
		zap.Int64("city_id", city.ID),
		zap.String("city", name),
		zap.String("country", country),
		zap.Int("translations", len(translations)),
	)
	return city, nil
}

// MaybeSetCover makes photo the city's cover if the city has none yet.
// The photo must already be persisted.
func (s *Service) MaybeSetCover(ctx context.Context, repos *repository.Container, city *model.City, photo *model.Photo) (bool, error) {
	if photo == nil || photo.ID == 0 {
		return false, errors.New("cover photo must be persisted first")
	}
	if city.CoverPhotoID != nil {
		return false, nil
	}

	acted, err := repos.City.SetCoverIfEmpty(ctx, city.ID, photo.ID)
	if err != nil {
		return false, fmt.Errorf("failed to set cover photo: %w", err)
	}
	if !acted {
		s.logger.Debug("cover already set", zap.Int64("city_id", city.ID))
		return false, nil
	}

	city.CoverPhotoID = &photo.ID
	s.logger.Info("cover photo assigned", zap.Int64("city_id", city.ID), zap.Int64("photo_id", photo.ID))
	return true, nil
}

// ListCities returns every city with its cover URL and translations. When
// lang is set, LocalizedName holds that translation, falling back to English
// and then to the canonical name.
func (s *Service) ListCities(ctx context.Context, lang string) ([]model.CityResponse, error) {
	repos := s.store.Repositories()

	cities, err := repos.City.ListCitiesWithCover(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	ids := make([]int64, 0, len(cities))
	for _, c := range cities {
		ids = append(ids, c.ID)
	}

	translations, err := repos.Translation.ListByCityIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	byCity := make(map[int64][]model.CityTranslation, len(cities))
	for _, t := range translations {
		byCity[t.CityID] = append(byCity[t.CityID], t)
	}

	lang = strings.ToLower(strings.TrimSpace(lang))
	result := make([]model.CityResponse, 0, len(cities))
	for _, c := range cities {
		resp := model.CityResponse{
			ID:            c.ID,
			Name:          c.Name,
			Country:       c.Country,
			CoverPhotoURL: c.CoverPhotoURL,
			Translations:  byCity[c.ID],
		}
		if resp.Translations == nil {
			resp.Translations = []model.CityTranslation{}
		}
		if lang != "" {
			resp.LocalizedName = localizedName(c.Name, resp.Translations, lang)
		}
		result = append(result, resp)
	}
	return result, nil
}

func localizedName(canonical string, translations []model.CityTranslation, lang string) string {
	var fallback string
	for _, t := range translations {
		switch t.Language {
		case lang:
			return t.TranslatedName
		case defaultLang:
			fallback = t.TranslatedName
		}
	}
	if fallback != "" {
		return fallback
	}
	return canonical
}
