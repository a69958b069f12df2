package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/jmoiron/sqlx"
)

const cityColumns = `id, name, country, cover_photo_id, created_at`

type cityRepository struct {
	db dbtx
}

func (r *cityRepository) FindByNameCountry(ctx context.Context, name, country string) (*model.City, error) {
	q := r.db.Rebind(`SELECT ` + cityColumns + ` FROM cities WHERE name = ? AND country = ?`)
	var city model.City
	if err := r.db.GetContext(ctx, &city, q, name, country); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find city: %w", err)
	}
	return &city, nil
}

func (r *cityRepository) GetCityByID(ctx context.Context, id int64) (*model.City, error) {
	q := r.db.Rebind(`SELECT ` + cityColumns + ` FROM cities WHERE id = ?`)
	var city model.City
	if err := r.db.GetContext(ctx, &city, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return &city, nil
}

func (r *cityRepository) CreateIfAbsent(ctx context.Context, city *model.City) (bool, error) {
	if city.CreatedAt.IsZero() {
		city.CreatedAt = time.Now().UTC()
	}

	// Both dialects support upsert with RETURNING; a conflict yields no row.
	q := r.db.Rebind(`
		INSERT INTO cities (name, country, cover_photo_id, created_at)
		VALUES (?, ?, NULL, ?)
		ON CONFLICT (name, country) DO NOTHING
		RETURNING id`)

	var id int64
	err := r.db.QueryRowxContext(ctx, q, city.Name, city.Country, city.CreatedAt).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create city: %w", err)
	}

	city.ID = id
	city.CoverPhotoID = nil
	return true, nil
}

func (r *cityRepository) SetCoverIfEmpty(ctx context.Context, cityID, photoID int64) (bool, error) {
	q := r.db.Rebind(`UPDATE cities SET cover_photo_id = ? WHERE id = ? AND cover_photo_id IS NULL`)
	result, err := r.db.ExecContext(ctx, q, photoID, cityID)
	if err != nil {
		return false, fmt.Errorf("failed to set cover photo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected failed: %w", err)
	}
	return affected > 0, nil
}

func (r *cityRepository) ListCitiesWithCover(ctx context.Context) ([]model.CityWithCover, error) {
	q := `
		SELECT
			c.id, c.name, c.country, c.cover_photo_id, c.created_at,
			p.image_url AS cover_photo_url
		FROM cities c
		LEFT JOIN photos p ON p.id = c.cover_photo_id
		ORDER BY c.id
	`
	var cities []model.CityWithCover
	if err := r.db.SelectContext(ctx, &cities, q); err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

type translationRepository struct {
	db dbtx
}

func (r *translationRepository) BulkInsertCityTranslations(ctx context.Context, translations []model.CityTranslation) error {
	if len(translations) == 0 {
		return nil
	}

	q := `INSERT INTO city_translations (city_id, language, translated_name)
		  VALUES (:city_id, :language, :translated_name)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, q, translations); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("translation already exists: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert translations: %w", err)
	}
	return nil
}

func (r *translationRepository) ListByCityIDs(ctx context.Context, cityIDs []int64) ([]model.CityTranslation, error) {
	if len(cityIDs) == 0 {
		return nil, nil
	}

	q, args, err := sqlx.In(`
		SELECT id, city_id, language, translated_name
		FROM city_translations
		WHERE city_id IN (?)
		ORDER BY city_id, language`, cityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build translations query: %w", err)
	}

	var translations []model.CityTranslation
	if err := r.db.SelectContext(ctx, &translations, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	return translations, nil
}

func (r *translationRepository) GetAvailableLanguages(ctx context.Context) ([]string, error) {
	q := `SELECT DISTINCT language FROM city_translations ORDER BY language`
	var langs []string
	if err := r.db.SelectContext(ctx, &langs, q); err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	return langs, nil
}
