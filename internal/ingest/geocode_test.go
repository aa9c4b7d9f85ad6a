// AngelaMos | 2026
// geocode_test.go

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byzip-v2/byzip-backend-v2/internal/config"
)

func naverServer(t *testing.T, calls *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "id", r.Header.Get("x-ncp-apigw-api-key-id"))
		assert.Equal(t, "secret", r.Header.Get("x-ncp-apigw-api-key"))
		assert.NotEmpty(t, r.URL.Query().Get("query"))
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNaverGeocoder_ParsesFirstAddress(t *testing.T) {
	var calls atomic.Int32
	server := naverServer(t, &calls, `{"status":"OK","addresses":[{"x":"126.9780","y":"37.5665"},{"x":"0","y":"0"}]}`)

	g := NewNaverGeocoder(testBreaker("geocoder-ok"), config.GeocodingConfig{
		URL: server.URL, ClientID: "id", ClientSecret: "secret",
	})

	coords, err := g.Geocode(context.Background(), "Seoul Jung-gu Sejong-daero 110")
	require.NoError(t, err)
	assert.InDelta(t, 37.5665, coords.Latitude, 1e-9)
	assert.InDelta(t, 126.9780, coords.Longitude, 1e-9)
}

func TestNaverGeocoder_Failures(t *testing.T) {
	var calls atomic.Int32

	empty := naverServer(t, &calls, `{"status":"OK","addresses":[]}`)
	g := NewNaverGeocoder(testBreaker("geocoder-empty"), config.GeocodingConfig{
		URL: empty.URL, ClientID: "id", ClientSecret: "secret",
	})
	_, err := g.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoGeocodeResult)

	garbage := naverServer(t, &calls, `{"addresses":[{"x":"east","y":"north"}]}`)
	g = NewNaverGeocoder(testBreaker("geocoder-garbage"), config.GeocodingConfig{
		URL: garbage.URL, ClientID: "id", ClientSecret: "secret",
	})
	_, err = g.Geocode(context.Background(), "somewhere")
	assert.ErrorIs(t, err, ErrNoGeocodeResult)

	g = NewNaverGeocoder(testBreaker("geocoder-nocreds"), config.GeocodingConfig{URL: empty.URL})
	_, err = g.Geocode(context.Background(), "somewhere")
	assert.ErrorIs(t, err, ErrGeocoderNotConfigured)
	assert.Equal(t, int32(2), calls.Load())
}

type countingGeocoder struct {
	calls  atomic.Int32
	coords *Coordinates
	err    error
}

func (g *countingGeocoder) Geocode(context.Context, string) (*Coordinates, error) {
	g.calls.Add(1)
	return g.coords, g.err
}

func TestCachedGeocoder_CachesSuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingGeocoder{coords: &Coordinates{Latitude: 35.1, Longitude: 129.0}}
	g := NewCachedGeocoder(inner, rdb, 0, slog.Default())
	ctx := context.Background()

	first, err := g.Geocode(ctx, "Busan Haeundae-gu 1")
	require.NoError(t, err)
	second, err := g.Geocode(ctx, "Busan Haeundae-gu 1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())

	key := geocodeCacheKey("Busan Haeundae-gu 1")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30*24*time.Hour, mr.TTL(key))
}

func TestCachedGeocoder_RedisDownIsAMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	inner := &countingGeocoder{coords: &Coordinates{Latitude: 1, Longitude: 2}}
	g := NewCachedGeocoder(inner, rdb, time.Hour, slog.Default())

	coords, err := g.Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, coords.Latitude, 1e-9)
}

func TestCachedGeocoder_DoesNotCacheFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingGeocoder{err: ErrNoGeocodeResult}
	g := NewCachedGeocoder(inner, rdb, time.Hour, slog.Default())

	_, err := g.Geocode(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoGeocodeResult)
	assert.False(t, mr.Exists(geocodeCacheKey("x")))
}
