package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// CityRepository defines operations for cities
type CityRepository interface {
	// FindByNameCountry returns nil when no city has exactly this pair.
	FindByNameCountry(ctx context.Context, name, country string) (*model.City, error)
	GetCityByID(ctx context.Context, id int64) (*model.City, error)
	// CreateIfAbsent inserts the city unless (name, country) already exists.
	// It reports false, leaving city.ID untouched, when another writer got there first.
	CreateIfAbsent(ctx context.Context, city *model.City) (bool, error)
	// SetCoverIfEmpty assigns the cover photo only when none is set.
	SetCoverIfEmpty(ctx context.Context, cityID, photoID int64) (bool, error)
	ListCitiesWithCover(ctx context.Context) ([]model.CityWithCover, error)
}

// TranslationRepository defines operations for translations
type TranslationRepository interface {
	BulkInsertCityTranslations(ctx context.Context, translations []model.CityTranslation) error
	ListByCityIDs(ctx context.Context, cityIDs []int64) ([]model.CityTranslation, error)
	GetAvailableLanguages(ctx context.Context) ([]string, error)
}

// PhotoRepository defines operations for photos
type PhotoRepository interface {
	Create(ctx context.Context, photo *model.Photo) error
	GetByID(ctx context.Context, id int64) (*model.Photo, error)
	ListByCityID(ctx context.Context, cityID int64) ([]model.Photo, error)
}

// UserRepository defines operations for users and their provider links
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	CreateProvider(ctx context.Context, provider *model.UserProvider) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	ListProviders(ctx context.Context, userID int64) ([]model.UserProvider, error)
	Update(ctx context.Context, user *model.User) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Container holds all repositories bound to one database handle or transaction
type Container struct {
	City        CityRepository
	Translation TranslationRepository
	Photo       PhotoRepository
	User        UserRepository
}

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx
type dbtx interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func newContainer(db dbtx) *Container {
	return &Container{
		City:        &cityRepository{db: db},
		Translation: &translationRepository{db: db},
		Photo:       &photoRepository{db: db},
		User:        &userRepository{db: db},
	}
}

// Store hands out repositories, either directly on the pool or inside a transaction
type Store struct {
	db *sqlx.DB
}

// NewStore creates a store over an open connection pool
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Repositories returns repositories that run each statement on its own
func (s *Store) Repositories() *Container {
	return newContainer(s.db)
}

// WithinTx runs fn against repositories bound to a single transaction.
// The transaction commits only when fn returns nil and is rolled back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(repos *Container) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newContainer(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
