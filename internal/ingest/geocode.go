// AngelaMos | 2026
// geocode.go

package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/byzip-v2/byzip-backend-v2/internal/config"
	"github.com/byzip-v2/byzip-backend-v2/internal/httpclient"
)

var (
	ErrGeocoderNotConfigured = errors.New("geocoder credentials not configured")
	ErrNoGeocodeResult       = errors.New("no geocode result")
)

const (
	geocodeCachePrefix = "geocode:"
	defaultGeocodeTTL  = 30 * 24 * time.Hour
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}

// NaverGeocoder resolves addresses through the Naver Cloud geocoding API.
type NaverGeocoder struct {
	http *httpclient.CircuitBreakerClient
	cfg  config.GeocodingConfig
}

func NewNaverGeocoder(
	client *httpclient.CircuitBreakerClient,
	cfg config.GeocodingConfig,
) *NaverGeocoder {
	return &NaverGeocoder{http: client, cfg: cfg}
}

type naverResponse struct {
	Status    string `json:"status"`
	Addresses []struct {
		X string `json:"x"`
		Y string `json:"y"`
	} `json:"addresses"`
	ErrorMessage string `json:"errorMessage"`
}

func (g *NaverGeocoder) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	if g.cfg.ClientID == "" || g.cfg.ClientSecret == "" {
		return nil, ErrGeocoderNotConfigured
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoGeocodeResult
	}

	reqURL := g.cfg.URL + "?" + url.Values{"query": {address}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("x-ncp-apigw-api-key-id", g.cfg.ClientID)
	req.Header.Set("x-ncp-apigw-api-key", g.cfg.ClientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	if err := httpclient.CheckResponse(resp, "geocoder"); err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body naverResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(body.Addresses) == 0 {
		return nil, ErrNoGeocodeResult
	}

	first := body.Addresses[0]
	lat, latErr := strconv.ParseFloat(first.Y, 64)
	lng, lngErr := strconv.ParseFloat(first.X, 64)
	if latErr != nil || lngErr != nil {
		return nil, fmt.Errorf("unparseable coordinates %q,%q: %w", first.Y, first.X, ErrNoGeocodeResult)
	}

	return &Coordinates{Latitude: lat, Longitude: lng}, nil
}

// CachedGeocoder memoizes successful lookups in redis. Cache failures are
// treated as misses.
type CachedGeocoder struct {
	next   Geocoder
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedGeocoder(
	next Geocoder,
	rdb *redis.Client,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedGeocoder {
	if ttl <= 0 {
		ttl = defaultGeocodeTTL
	}
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func geocodeCacheKey(address string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(address)))
	return geocodeCachePrefix + hex.EncodeToString(sum[:])
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	key := geocodeCacheKey(address)

	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var coords Coordinates
			if jsonErr := json.Unmarshal(cached, &coords); jsonErr == nil {
				return &coords, nil
			}
		case !errors.Is(err, redis.Nil):
			c.logger.WarnContext(ctx, "geocode cache read failed", "error", err)
		}
	}

	coords, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		payload, _ := json.Marshal(coords) //nolint:errchkjson
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "geocode cache write failed", "error", err)
		}
	}

	return coords, nil
}
