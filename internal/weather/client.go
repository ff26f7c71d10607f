package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	ErrInvalidAPIKey   = errors.New("weather api key rejected")
	ErrLocationUnknown = errors.New("weather location not found")
)

// Config holds the OpenWeatherMap settings.
type Config struct {
	BaseURL string
	APIKey  string
	Units   string
	Lang    string
}

// Observation is the subset of the provider response the app uses.
type Observation struct {
	Temperature float64
	Description string
	City        string
	Humidity    int
	Icon        string
}

// Client fetches current conditions from OpenWeatherMap.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ByCity fetches current weather for a city name.
func (c *Client) ByCity(ctx context.Context, city string) (*Observation, error) {
	params := url.Values{}
	params.Set("q", city)
	obs, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	if obs.City == "" {
		obs.City = city
	}
	return obs, nil
}

// ByCoord fetches current weather for a latitude/longitude pair.
func (c *Client) ByCoord(ctx context.Context, lat, lon float64) (*Observation, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return c.fetch(ctx, params)
}

func (c *Client) fetch(ctx context.Context, params url.Values) (*Observation, error) {
	params.Set("appid", c.cfg.APIKey)
	params.Set("units", c.cfg.Units)
	params.Set("lang", c.cfg.Lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response failed: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidAPIKey
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrLocationUnknown
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("weather response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Name string `json:"name"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse weather json failed: %w", err)
	}

	obs := &Observation{
		Temperature: parsed.Main.Temp,
		Humidity:    parsed.Main.Humidity,
		City:        parsed.Name,
	}
	if len(parsed.Weather) > 0 {
		obs.Description = parsed.Weather[0].Description
		obs.Icon = parsed.Weather[0].Icon
	}
	return obs, nil
}
