package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
)

// DefaultMinInterval is the minimum spacing between consecutive requests to
// the provider. Nominatim's usage policy rejects clients that exceed roughly
// one request per second; spacing requests is a correctness requirement, not
// an optimization.
const DefaultMinInterval = 1100 * time.Millisecond

// NominatimConfig configures the Nominatim geocoding client.
type NominatimConfig struct {
	// BaseURL of the Nominatim instance (e.g. "https://nominatim.openstreetmap.org").
	BaseURL string

	// UserAgent is the distinguishing client identifier sent with every
	// request. Required by the provider's usage policy.
	UserAgent string

	// CountryCodes restricts results (e.g. "br").
	CountryCodes string

	// MinInterval overrides DefaultMinInterval when positive.
	MinInterval time.Duration

	// HTTPClient overrides the default client (used by tests).
	HTTPClient *http.Client
}

// NominatimProvider implements Provider against the Nominatim search API.
// Calls are serialized and spaced by MinInterval.
type NominatimProvider struct {
	baseURL      string
	userAgent    string
	countryCodes string
	minInterval  time.Duration
	client       *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

// NewNominatimProvider creates a Nominatim geocoding provider.
func NewNominatimProvider(cfg NominatimConfig) (*NominatimProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("geocoder base URL is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("geocoder user agent is required")
	}

	interval := cfg.MinInterval
	if interval <= 0 {
		interval = DefaultMinInterval
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &NominatimProvider{
		baseURL:      cfg.BaseURL,
		userAgent:    cfg.UserAgent,
		countryCodes: cfg.CountryCodes,
		minInterval:  interval,
		client:       client,
	}, nil
}

// nominatimResult is the subset of the search response the client reads.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Locate resolves a free-text address to coordinates.
func (p *NominatimProvider) Locate(ctx context.Context, query string) (*Coordinates, error) {
	if err := p.waitTurn(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	if p.countryCodes != "" {
		q.Set("countrycodes", p.countryCodes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, "geocode.locate", "Geocoding service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Errorf(domain.EUNAVAILABLE, "geocode.locate", "geocoding service returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, domain.Internal(err, "geocode.locate", "failed to decode geocoding response")
	}

	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, domain.Internal(err, "geocode.locate", "invalid latitude in geocoding response")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, domain.Internal(err, "geocode.locate", "invalid longitude in geocoding response")
	}

	return &Coordinates{Lat: lat, Lon: lon}, nil
}

// waitTurn blocks until minInterval has passed since the previous request.
// The mutex is held across the wait so calls are strictly sequential.
func (p *NominatimProvider) waitTurn(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.lastCall.IsZero() {
		if wait := p.minInterval - time.Since(p.lastCall); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	p.lastCall = time.Now()
	return nil
}
