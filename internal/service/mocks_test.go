package service

import (
	"context"

	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/alexivanou/cityphoto-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockCityRepository implements repository.CityRepository interface
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) FindByNameCountry(ctx context.Context, name, country string) (*model.City, error) {
	args := m.Called(ctx, name, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) GetCityByID(ctx context.Context, id int64) (*model.City, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) CreateIfAbsent(ctx context.Context, city *model.City) (bool, error) {
	args := m.Called(ctx, city)
	return args.Bool(0), args.Error(1)
}

func (m *MockCityRepository) SetCoverIfEmpty(ctx context.Context, cityID, photoID int64) (bool, error) {
	args := m.Called(ctx, cityID, photoID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCityRepository) ListCitiesWithCover(ctx context.Context) ([]model.CityWithCover, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CityWithCover), args.Error(1)
}

// MockTranslationRepository implements repository.TranslationRepository interface
type MockTranslationRepository struct {
	mock.Mock
}

func (m *MockTranslationRepository) BulkInsertCityTranslations(ctx context.Context, translations []model.CityTranslation) error {
	args := m.Called(ctx, translations)
	return args.Error(0)
}

func (m *MockTranslationRepository) ListByCityIDs(ctx context.Context, cityIDs []int64) ([]model.CityTranslation, error) {
	args := m.Called(ctx, cityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CityTranslation), args.Error(1)
}

func (m *MockTranslationRepository) GetAvailableLanguages(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockGeocoder implements geocoding.Geocoder interface
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Reverse(ctx context.Context, lat, lon float64) (*model.Place, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Place), args.Error(1)
}

// fakeStore hands the same container to plain and transactional callers
type fakeStore struct {
	repos *repository.Container
}

func (f *fakeStore) Repositories() *repository.Container { return f.repos }

func (f *fakeStore) WithinTx(ctx context.Context, fn func(repos *repository.Container) error) error {
	return fn(f.repos)
}

