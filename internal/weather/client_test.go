package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Units:   "metric",
		Lang:    "zh_tw",
	})
	return client, srv
}

func TestByCityParsesResponse(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Taipei", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{"name":"Taipei","main":{"temp":26.5,"humidity":70},"weather":[{"description":"晴，少雲","icon":"02d"}]}`))
	})
	defer srv.Close()

	obs, err := client.ByCity(context.Background(), "Taipei")
	require.NoError(t, err)

	assert.Equal(t, 26.5, obs.Temperature)
	assert.Equal(t, "晴，少雲", obs.Description)
	assert.Equal(t, "Taipei", obs.City)
	assert.Equal(t, 70, obs.Humidity)
	assert.Equal(t, "02d", obs.Icon)
}

func TestByCityFallsBackToQueryName(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"main":{"temp":10},"weather":[]}`))
	})
	defer srv.Close()

	obs, err := client.ByCity(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Equal(t, "Nowhere", obs.City)
	assert.Empty(t, obs.Description)
}

func TestByCoordSendsCoordinates(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25.033", r.URL.Query().Get("lat"))
		assert.Equal(t, "121.5654", r.URL.Query().Get("lon"))
		w.Write([]byte(`{"name":"Taipei","main":{"temp":20,"humidity":60},"weather":[{"description":"陰","icon":"04d"}]}`))
	})
	defer srv.Close()

	obs, err := client.ByCoord(context.Background(), 25.033, 121.5654)
	require.NoError(t, err)
	assert.Equal(t, "Taipei", obs.City)
}

func TestFetchErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrInvalidAPIKey},
		{"not found", http.StatusNotFound, ErrLocationUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			defer srv.Close()

			_, err := client.ByCity(context.Background(), "Taipei")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFetchUnexpectedStatus(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := client.ByCity(context.Background(), "Taipei")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidAPIKey)
	assert.NotErrorIs(t, err, ErrLocationUnknown)
}
