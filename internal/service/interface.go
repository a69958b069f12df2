package service

import (
	"context"

	"github.com/alexivanou/cityphoto-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	IngestPhoto(ctx context.Context, req model.CreatePhotoRequest) (*model.Photo, error)
	PhotosByCity(ctx context.Context, cityID int64) ([]model.Photo, error)
	ListCities(ctx context.Context, lang string) ([]model.CityResponse, error)
	GetAvailableLanguages(ctx context.Context) ([]string, error)

	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	LinkOrCreateUser(ctx context.Context, req model.LinkUserRequest) (*model.User, error)
	FederatedLogin(ctx context.Context, identity model.Identity) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error)
	ListProviders(ctx context.Context, userID int64) ([]model.UserProvider, error)
}
