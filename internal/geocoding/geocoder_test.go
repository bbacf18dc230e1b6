package geocoding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/database"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) (*Geocoder, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g := NewGeocoder(logrus.New(), t.TempDir())
	g.baseURL = server.URL
	g.throttle = 0
	return g, server
}

func TestGeocodeBlock(t *testing.T) {
	var requests int
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "sg", r.URL.Query().Get("countrycodes"))
		assert.Contains(t, r.URL.Query().Get("q"), "123A BEDOK NORTH AVE 1")
		json.NewEncoder(w).Encode([]map[string]string{
			{"lat": "1.3291", "lon": "103.9271"},
		})
	})

	lat, lon, err := g.GeocodeBlock("123A", "BEDOK NORTH AVE 1")
	require.NoError(t, err)
	assert.Equal(t, 1.3291, lat)
	assert.Equal(t, 103.9271, lon)

	// Second lookup comes from cache.
	lat, lon, err = g.GeocodeBlock("123A", "BEDOK NORTH AVE 1")
	require.NoError(t, err)
	assert.Equal(t, 1.3291, lat)
	assert.Equal(t, 103.9271, lon)
	assert.Equal(t, 1, requests)
}

func TestGeocodeBlockNoResults(t *testing.T) {
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	_, _, err := g.GeocodeBlock("999", "NOWHERE ST")
	assert.Error(t, err)
}

func TestCacheSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cache := map[string][]float64{"123A|BEDOK NORTH AVE 1": {1.33, 103.93}}
	data, err := json.Marshal(cache)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geocode_cache.json"), data, 0644))

	g := NewGeocoder(logrus.New(), dir)
	g.throttle = 0

	lat, lon, err := g.GeocodeBlock("123A", "BEDOK NORTH AVE 1")
	require.NoError(t, err)
	assert.Equal(t, 1.33, lat)
	assert.Equal(t, 103.93, lon)
}

type stubBlockSource struct {
	blocks  []database.BlockAddress
	updates map[int64][2]float64
}

func (s *stubBlockSource) GetBlocksWithoutCoordinates(limit int) ([]database.BlockAddress, error) {
	return s.blocks, nil
}

func (s *stubBlockSource) UpdateBlockCoordinates(blockID int64, latitude, longitude float64) error {
	if s.updates == nil {
		s.updates = make(map[int64][2]float64)
	}
	s.updates[blockID] = [2]float64{latitude, longitude}
	return nil
}

func TestBackfillSkipsFailures(t *testing.T) {
	g, _ := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "BAD NOWHERE ST, Singapore" {
			w.Write([]byte("[]"))
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{
			{"lat": "1.35", "lon": "103.85"},
		})
	})

	src := &stubBlockSource{
		blocks: []database.BlockAddress{
			{BlockID: 1, BlockNumber: "123A", StreetName: "BEDOK NORTH AVE 1"},
			{BlockID: 2, BlockNumber: "BAD", StreetName: "NOWHERE ST"},
		},
	}

	updated, err := g.Backfill(src, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	require.Contains(t, src.updates, int64(1))
	assert.Equal(t, [2]float64{1.35, 103.85}, src.updates[1])

	// Give the async cache save a moment before TempDir cleanup.
	time.Sleep(50 * time.Millisecond)
}
