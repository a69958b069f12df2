package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/model"
)

const photoColumns = `id, image_url, latitude, longitude, city_id, user_id, created_at`

type photoRepository struct {
	db dbtx
}

func (r *photoRepository) Create(ctx context.Context, photo *model.Photo) error {
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}

	q := r.db.Rebind(`
		INSERT INTO photos (image_url, latitude, longitude, city_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, q,
		photo.ImageURL, photo.Latitude, photo.Longitude, photo.CityID, photo.UserID, photo.CreatedAt,
	).Scan(&photo.ID)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

func (r *photoRepository) GetByID(ctx context.Context, id int64) (*model.Photo, error) {
	q := r.db.Rebind(`SELECT ` + photoColumns + ` FROM photos WHERE id = ?`)
	var photo model.Photo
	if err := r.db.GetContext(ctx, &photo, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &photo, nil
}

func (r *photoRepository) ListByCityID(ctx context.Context, cityID int64) ([]model.Photo, error) {
	q := r.db.Rebind(`SELECT ` + photoColumns + ` FROM photos WHERE city_id = ? ORDER BY id`)
	var photos []model.Photo
	if err := r.db.SelectContext(ctx, &photos, q, cityID); err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}
