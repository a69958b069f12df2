package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/alexivanou/cityphoto-api/internal/database"
	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *sqlx.DB) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("repo_%d", rng.Int()),
	}

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, cfg, "file://../../migrations"))

	return NewStore(db), db
}

func TestCityRepository_CreateIfAbsent(t *testing.T) {
	store, _ := setupStore(t)
	repos := store.Repositories()
	ctx := context.Background()

	first := &model.City{Name: "Lisbon", Country: "Portugal"}
	created, err := repos.City.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	second := &model.City{Name: "Lisbon", Country: "Portugal"}
	created, err = repos.City.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, second.ID)

	found, err := repos.City.FindByNameCountry(ctx, "Lisbon", "Portugal")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
	assert.Nil(t, found.CoverPhotoID)
}

func TestCityRepository_FindByNameCountry(t *testing.T) {
	store, _ := setupStore(t)
	repos := store.Repositories()
	ctx := context.Background()

	_, err := repos.City.CreateIfAbsent(ctx, &model.City{Name: "Porto", Country: "Portugal"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		city    string
		country string
		found   bool
	}{
		{name: "exact match", city: "Porto", country: "Portugal", found: true},
		{name: "case differs", city: "porto", country: "Portugal", found: false},
		{name: "other country", city: "Porto", country: "Brazil", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, err := repos.City.FindByNameCountry(ctx, tt.city, tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.found, city != nil)
		})
	}
}

func TestCityRepository_SetCoverIfEmpty(t *testing.T) {
	store, db := setupStore(t)
	repos := store.Repositories()
	ctx := context.Background()

	city := &model.City{Name: "Kyoto", Country: "Japan"}
	_, err := repos.City.CreateIfAbsent(ctx, city)
	require.NoError(t, err)

	p1 := &model.Photo{ImageURL: "https://img/1.jpg", Latitude: 35.0, Longitude: 135.7, CityID: &city.ID}
	p2 := &model.Photo{ImageURL: "https://img/2.jpg", Latitude: 35.0, Longitude: 135.7, CityID: &city.ID}
	require.NoError(t, repos.Photo.Create(ctx, p1))
	require.NoError(t, repos.Photo.Create(ctx, p2))

	acted, err := repos.City.SetCoverIfEmpty(ctx, city.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, acted)

	acted, err = repos.City.SetCoverIfEmpty(ctx, city.ID, p2.ID)
	require.NoError(t, err)
	assert.False(t, acted)

	got, err := repos.City.GetCityByID(ctx, city.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CoverPhotoID)
	assert.Equal(t, p1.ID, *got.CoverPhotoID)

	t.Run("deleting the cover photo clears the reference", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "DELETE FROM photos WHERE id = ?", p1.ID)
		require.NoError(t, err)

		got, err := repos.City.GetCityByID(ctx, city.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CoverPhotoID)
	})
}

func TestCityRepository_ListCitiesWithCover(t *testing.T) {
	store, _ := setupStore(t)
	repos := store.Repositories()
	ctx := context.Background()

	withCover := &model.City{Name: "Berlin", Country: "Germany"}
	withoutCover := &model.City{Name: "Potsdam", Country: "Germany"}
	_, err := repos.City.CreateIfAbsent(ctx, withCover)
	require.NoError(t, err)
	_, err = repos.City.CreateIfAbsent(ctx, withoutCover)
	require.NoError(t, err)

	photo := &model.Photo{ImageURL: "https://img/berlin.jpg", Latitude: 52.52, Longitude: 13.40, CityID: &withCover.ID}
	require.NoError(t, repos.Photo.Create(ctx, photo))
	_, err = repos.City.SetCoverIfEmpty(ctx, withCover.ID, photo.ID)
	require.NoError(t, err)

	cities, err := repos.City.ListCitiesWithCover(ctx)
	require.NoError(t, err)
	require.Len(t, cities, 2)

	assert.Equal(t, "Berlin", cities[0].Name)
	require.NotNil(t, cities[0].CoverPhotoURL)
	assert.Equal(t, "https://img/berlin.jpg", *cities[0].CoverPhotoURL)
	assert.Nil(t, cities[1].CoverPhotoURL)
}

func TestTranslationRepository(t *testing.T) {
	store, db := setupStore(t)
	repos := store.Repositories()
	ctx := context.Background()

	city := &model.City{Name: "Tokyo", Country: "Japan"}
	_, err := repos.City.CreateIfAbsent(ctx, city)
	require.NoError(t, err)

	translations := []model.CityTranslation{
		{CityID: city.ID, Language: "en", TranslatedName: "Tokyo"},
		{CityID: city.ID, Language: "ja", TranslatedName: "東京"},
	}
	require.NoError(t, repos.Translation.BulkInsertCityTranslations(ctx, translations))

	t.Run("duplicate language is rejected", func(t *testing.T) {
		err := repos.Translation.BulkInsertCityTranslations(ctx, []model.CityTranslation{
			{CityID: city.ID, Language: "en", TranslatedName: "Tokio"},
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("list by city", func(t *testing.T) {
		got, err := repos.Translation.ListByCityIDs(ctx, []int64{city.ID})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "en", got[0].Language)
		assert.Equal(t, "東京", got[1].TranslatedName)
	})

	t.Run("empty id list", func(t *testing.T) {
		got, err := repos.Translation.ListByCityIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("languages", func(t *testing.T) {
		langs, err := repos.Translation.GetAvailableLanguages(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"en", "ja"}, langs)
	})

	t.Run("cascade on city delete", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "DELETE FROM cities WHERE id = ?", city.ID)
		require.NoError(t, err)

		got, err := repos.Translation.ListByCityIDs(ctx, []int64{city.ID})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStore_WithinTx(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	t.Run("rollback on error", func(t *testing.T) {
		err := store.WithinTx(ctx, func(repos *Container) error {
			if _, err := repos.City.CreateIfAbsent(ctx, &model.City{Name: "Rome", Country: "Italy"}); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		city, err := store.Repositories().City.FindByNameCountry(ctx, "Rome", "Italy")
		require.NoError(t, err)
		assert.Nil(t, city)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := store.WithinTx(ctx, func(repos *Container) error {
			_, err := repos.City.CreateIfAbsent(ctx, &model.City{Name: "Milan", Country: "Italy"})
			return err
		})
		require.NoError(t, err)

		city, err := store.Repositories().City.FindByNameCountry(ctx, "Milan", "Italy")
		require.NoError(t, err)
		assert.NotNil(t, city)
	})
}
