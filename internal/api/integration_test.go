package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/alexivanou/cityphoto-api/internal/database"
	"github.com/alexivanou/cityphoto-api/internal/geocoding"
	"github.com/alexivanou/cityphoto-api/internal/model"
	"github.com/alexivanou/cityphoto-api/internal/repository"
	"github.com/alexivanou/cityphoto-api/internal/service"
	"github.com/alexivanou/cityphoto-api/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeNominatim answers reverse lookups for a couple of fixed coordinates
func fakeNominatim(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("lat") {
		case "38.7223":
			w.Write([]byte(`{"address":{"city":"Lisbon","country":"Portugal"}}`))
		case "35.0116":
			w.Write([]byte(`{"address":{"city":"Kyoto","country":"Japan"}}`))
		default:
			w.Write([]byte(`{"error":"Unable to geocode"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupIntegrationStack(t *testing.T) http.Handler {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("testdb_%d", rng.Int()),
	}

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, cfg, "file://../../migrations"))

	geocoder := geocoding.NewClient(config.GeocoderConfig{
		BaseURL:  fakeNominatim(t).URL,
		Language: "en",
		Timeout:  time.Second,
	}, zap.NewNop())

	svc := service.NewService(repository.NewStore(db), geocoder, []string{"en", "pt", "ja", "zh"}, zap.NewNop())
	verifier := stubVerifier{token: "good", identity: model.Identity{UID: "uid-ana", Email: "ana@example.com", Provider: model.ProviderGoogle}}

	return NewRouter(svc, stats.NewCollector(db, cfg), verifier, stubSigner{}, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPI_Integration_PhotoIngestion(t *testing.T) {
	handler := setupIntegrationStack(t)

	rr := do(t, handler, http.MethodPost, "/api/v1/photos", `{"image_url":"https://img/lisbon-1.jpg","latitude":38.7223,"longitude":-9.1393}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var first model.Photo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.NotNil(t, first.CityID)

	rr = do(t, handler, http.MethodPost, "/api/v1/photos", `{"image_url":"https://img/lisbon-2.jpg","latitude":38.7223,"longitude":-9.1393}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var second model.Photo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	assert.Equal(t, *first.CityID, *second.CityID)

	rr = do(t, handler, http.MethodPost, "/api/v1/photos", `{"image_url":"https://img/ocean.jpg","latitude":0,"longitude":-30}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "could not determine city")

	rr = do(t, handler, http.MethodGet, "/api/v1/cities?lang=ja", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var cities []model.CityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cities))
	require.Len(t, cities, 1)
	assert.Equal(t, "Lisbon", cities[0].Name)
	assert.Equal(t, "Lisbon", cities[0].LocalizedName)
	require.NotNil(t, cities[0].CoverPhotoURL)
	assert.Equal(t, "https://img/lisbon-1.jpg", *cities[0].CoverPhotoURL)
	assert.Len(t, cities[0].Translations, 4)

	rr = do(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/photos/by_city/%d", *first.CityID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var photos []model.Photo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &photos))
	assert.Len(t, photos, 2)

	rr = do(t, handler, http.MethodGet, "/api/v1/photos/by_city/999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, handler, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var st stats.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, int64(1), st.Content.Cities)
	assert.Equal(t, int64(1), st.Content.CitiesWithCover)
	assert.Equal(t, int64(2), st.Content.Photos)
}

func TestAPI_Integration_Users(t *testing.T) {
	handler := setupIntegrationStack(t)
	bearer := []string{"Authorization", "Bearer good"}

	rr := do(t, handler, http.MethodGet, "/api/v1/users", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, handler, http.MethodPost, "/api/v1/auth/login", "", bearer...)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, handler, http.MethodPost, "/api/v1/auth/link", "", bearer...)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var linked model.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &linked))
	assert.Equal(t, "ana", linked.Username)

	rr = do(t, handler, http.MethodPost, "/api/v1/auth/link", "", bearer...)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, handler, http.MethodPost, "/api/v1/auth/login", "", bearer...)
	require.Equal(t, http.StatusOK, rr.Code)
	var loggedIn model.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loggedIn))
	assert.NotNil(t, loggedIn.LastLogin)

	rr = do(t, handler, http.MethodGet, "/api/v1/users/firebase/uid-ana", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/providers", linked.ID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var providers []model.UserProvider
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &providers))
	require.Len(t, providers, 1)
	assert.Equal(t, model.ProviderGoogle, providers[0].Provider)

	rr = do(t, handler, http.MethodPost, "/api/v1/users", `{"username":"ana","email":"other@example.com","password":"long enough"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, handler, http.MethodPost, "/api/v1/users", `{"username":"bruno","email":"bruno@example.com","password":"long enough"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = do(t, handler, http.MethodPatch, fmt.Sprintf("/api/v1/users/%d", linked.ID), `{"email":"bruno@example.com"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, handler, http.MethodGet, "/api/v1/users/999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, handler, http.MethodPost, "/api/v1/uploads/signature", "", bearer...)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "travelapp/user_uid-ana/")
}
