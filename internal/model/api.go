package model

// CreatePhotoRequest is the input of photo ingestion
type CreatePhotoRequest struct {
	ImageURL  string   `json:"image_url" validate:"required,url"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	UserID    *int64   `json:"user_id,omitempty" validate:"omitempty,gt=0"`
}

// CityResponse represents a city in listings
type CityResponse struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Country       string            `json:"country"`
	LocalizedName string            `json:"localized_name,omitempty"`
	CoverPhotoURL *string           `json:"cover_photo_url"`
	Translations  []CityTranslation `json:"translations"`
}

// CreateUserRequest is a direct (non-federated) registration
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// UpdateUserRequest carries optional profile changes
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// LinkUserRequest links an external identity to a new local user
type LinkUserRequest struct {
	ExternalUID string
	Email       string
	Username    string
	Provider    string
}

// LinkUserBody is the optional JSON body of the link endpoint
type LinkUserBody struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// UploadSignature holds signed parameters for a direct upload to the media host
type UploadSignature struct {
	CloudName string  `json:"cloud_name"`
	APIKey    string  `json:"api_key"`
	Timestamp int64   `json:"timestamp"`
	Signature string  `json:"signature"`
	Folder    string  `json:"folder"`
	PublicID  *string `json:"public_id"`
}
