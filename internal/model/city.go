package model

import "time"

// City represents a city in the database
type City struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Country      string    `db:"country"`
	CoverPhotoID *int64    `db:"cover_photo_id"`
	CreatedAt    time.Time `db:"created_at"`
}

// CityTranslation represents a translation of a city name
type CityTranslation struct {
	ID             int64  `db:"id" json:"-"`
	CityID         int64  `db:"city_id" json:"-"`
	Language       string `db:"language" json:"language"`
	TranslatedName string `db:"translated_name" json:"translated_name"`
}

// CityWithCover is a city joined with its cover photo URL, used for listings
type CityWithCover struct {
	City
	CoverPhotoURL *string `db:"cover_photo_url"`
}

// Photo represents a geotagged photo. CityID is advisory and not enforced by
// a foreign key.
type Photo struct {
	ID        int64     `db:"id" json:"id"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	CityID    *int64    `db:"city_id" json:"city_id"`
	UserID    *int64    `db:"user_id" json:"user_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Place is the outcome of reverse geocoding a coordinate
type Place struct {
	City    string
	Country string
}
