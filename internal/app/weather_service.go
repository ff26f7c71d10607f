package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"smartcloset/internal/repository"
	"smartcloset/internal/weather"
)

// WeatherObservationCache caches provider lookups. May be nil.
type WeatherObservationCache interface {
	Get(ctx context.Context, key string) (*weather.Observation, bool, error)
	Set(ctx context.Context, key string, obs *weather.Observation) error
}

// WeatherService combines provider observations with the deterministic
// clothing suggestion rules and the user's wardrobe.
type WeatherService struct {
	client       *weather.Client
	cache        WeatherObservationCache
	wardrobeRepo *repository.WardrobeRepository
}

type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	City        string  `json:"city"`
	Humidity    int     `json:"humidity"`
	Suggestion  string  `json:"suggestion"`
	Icon        string  `json:"icon"`
}

type WardrobeOutfitSuggestion struct {
	City          string   `json:"city"`
	Temperature   float64  `json:"temperature"`
	Weather       string   `json:"weather"`
	Suggestion    string   `json:"suggestion"`
	WardrobeItems []string `json:"wardrobe_items"`
}

func NewWeatherService(
	client *weather.Client,
	cache WeatherObservationCache,
	wardrobeRepo *repository.WardrobeRepository,
) *WeatherService {
	return &WeatherService{
		client:       client,
		cache:        cache,
		wardrobeRepo: wardrobeRepo,
	}
}

// CurrentByCity returns current conditions and a clothing suggestion.
func (s *WeatherService) CurrentByCity(ctx context.Context, city string) (*CurrentWeather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrInvalidInput
	}

	obs, err := s.lookup(ctx, "city:"+city, func() (*weather.Observation, error) {
		return s.client.ByCity(ctx, city)
	})
	if err != nil {
		return nil, err
	}
	return buildCurrentWeather(obs), nil
}

// CurrentByCoord returns current conditions for a latitude/longitude pair.
func (s *WeatherService) CurrentByCoord(ctx context.Context, lat, lon float64) (*CurrentWeather, error) {
	key := fmt.Sprintf("coord:%.4f,%.4f", lat, lon)
	obs, err := s.lookup(ctx, key, func() (*weather.Observation, error) {
		return s.client.ByCoord(ctx, lat, lon)
	})
	if err != nil {
		return nil, err
	}
	return buildCurrentWeather(obs), nil
}

// OutfitSuggestion combines the weather-conditioned suggestion with the
// user's stored wardrobe filenames. Fails when the wardrobe is empty.
func (s *WeatherService) OutfitSuggestion(ctx context.Context, userID uint, city string) (*WardrobeOutfitSuggestion, error) {
	city = strings.TrimSpace(city)
	if userID == 0 || city == "" {
		return nil, ErrInvalidInput
	}

	obs, err := s.lookup(ctx, "city:"+city, func() (*weather.Observation, error) {
		return s.client.ByCity(ctx, city)
	})
	if err != nil {
		return nil, err
	}

	items, err := s.wardrobeRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrWardrobeEmpty
	}

	filenames := make([]string, 0, len(items))
	for _, item := range items {
		filenames = append(filenames, item.Filename)
	}

	return &WardrobeOutfitSuggestion{
		City:          city,
		Temperature:   obs.Temperature,
		Weather:       obs.Description,
		Suggestion:    weather.Suggestion(obs.Temperature, obs.Description),
		WardrobeItems: filenames,
	}, nil
}

func (s *WeatherService) lookup(ctx context.Context, key string, fetch func() (*weather.Observation, error)) (*weather.Observation, error) {
	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, key); err == nil && hit {
			return cached, nil
		}
	}

	obs, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, obs); err != nil {
			log.Printf("cache weather failed: %v", err)
		}
	}
	return obs, nil
}

func buildCurrentWeather(obs *weather.Observation) *CurrentWeather {
	return &CurrentWeather{
		Temperature: obs.Temperature,
		Description: obs.Description,
		City:        obs.City,
		Humidity:    obs.Humidity,
		Suggestion:  weather.Suggestion(obs.Temperature, obs.Description),
		Icon:        obs.Icon,
	}
}
