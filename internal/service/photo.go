package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/cityphoto-api/internal/geocoding"
	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/alexivanou/cityphoto-api/internal/repository"
	"go.uber.org/zap"
)

// IngestPhoto resolves the photo's city from its coordinates, stores the
// photo and makes it the city's cover when the city has none. Nothing is
// written when the coordinates cannot be resolved.
func (s *Service) IngestPhoto(ctx context.Context, req model.CreatePhotoRequest) (*model.Photo, error) {
	if err := validatePhoto(req); err != nil {
		return nil, err
	}
	lat, lon := *req.Latitude, *req.Longitude

	place, err := s.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		if errors.Is(err, geocoding.ErrUnavailable) {
			s.logger.Warn("ingestion rejected: geocoder unavailable",
				zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		} else {
			s.logger.Info("ingestion rejected: no city at coordinates",
				zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrCityNotResolved, err)
	}
	if place == nil || place.City == "" || place.Country == "" {
		return nil, ErrCityNotResolved
	}

	photo := &model.Photo{
		ImageURL:  strings.TrimSpace(req.ImageURL),
		Latitude:  lat,
		Longitude: lon,
		UserID:    req.UserID,
	}

	err = s.store.WithinTx(ctx, func(repos *repository.Container) error {
		city, err := s.ResolveOrCreateCity(ctx, repos, place.City, place.Country)
		if err != nil {
			return err
		}

		photo.CityID = &city.ID
		if err := repos.Photo.Create(ctx, photo); err != nil {
			return fmt.Errorf("failed to create photo: %w", err)
		}

		_, err = s.MaybeSetCover(ctx, repos, city, photo)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("photo ingested",
		zap.Int64("photo_id", photo.ID),
		zap.Int64("city_id", *photo.CityID),
		zap.String("city", place.City),
	)
	return photo, nil
}

// PhotosByCity lists a city's photos, ErrNotFound when there are none
func (s *Service) PhotosByCity(ctx context.Context, cityID int64) ([]model.Photo, error) {
	photos, err := s.store.Repositories().Photo.ListByCityID(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: no photos found for city %d", ErrNotFound, cityID)
	}
	return photos, nil
}

func validatePhoto(req model.CreatePhotoRequest) error {
	if strings.TrimSpace(req.ImageURL) == "" {
		return fmt.Errorf("%w: image_url is required", ErrInvalidInput)
	}
	if req.Latitude == nil || req.Longitude == nil {
		return fmt.Errorf("%w: latitude and longitude are required", ErrInvalidInput)
	}
	if *req.Latitude < -90 || *req.Latitude > 90 {
		return fmt.Errorf("%w: latitude out of range", ErrInvalidInput)
	}
	if *req.Longitude < -180 || *req.Longitude > 180 {
		return fmt.Errorf("%w: longitude out of range", ErrInvalidInput)
	}
	return nil
}
