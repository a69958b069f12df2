package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/alexivanou/cityphoto-api/internal/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNoMatch means the service answered but returned no usable city and country.
	ErrNoMatch = errors.New("no city found for coordinates")
	// ErrUnavailable covers transport failures, timeouts, non-200 statuses and
	// payloads that cannot be decoded.
	ErrUnavailable = errors.New("geocoding service unavailable")
)

// Geocoder resolves coordinates into a place
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*model.Place, error)
}

// Client talks to a Nominatim-compatible reverse geocoding endpoint
type Client struct {
	baseURL    string
	language   string
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new geocoding client
func NewClient(cfg config.GeocoderConfig, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		userAgent:  cfg.UserAgent,
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, burst),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
	Error string `json:"error"`
}

// Reverse returns the city and country at the given coordinates. A single
// attempt is made, bounded by the configured timeout.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*model.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// waiting for a token counts against the same deadline as the request
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("geocoder throttled", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("accept-language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("geocoder request failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("geocoder returned non-200", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("geocoder payload malformed", zap.Error(err))
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	place := body.place()
	if place == nil {
		c.logger.Info("geocoder found no city", zap.Float64("lat", lat), zap.Float64("lon", lon))
		return nil, ErrNoMatch
	}

	c.logger.Debug("geocoder resolved place",
		zap.String("city", place.City), zap.String("country", place.Country))
	return place, nil
}

func (r reverseResponse) place() *model.Place {
	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}
	if city == "" || r.Address.Country == "" {
		return nil
	}
	return &model.Place{City: city, Country: r.Address.Country}
}
