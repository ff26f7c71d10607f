package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartcloset/internal/app"
	"smartcloset/internal/transport/http/response"
	"smartcloset/internal/weather"
)

type WeatherHandler struct {
	weatherService *app.WeatherService
}

func NewWeatherHandler(weatherService *app.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// Current reports conditions by city name or lat/lon pair; at least one of
// the two must be given.
func (h *WeatherHandler) Current(c *gin.Context) {
	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw != "" && lonRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid lat/lon")
			return
		}
		h.respondCurrent(c, func() (*app.CurrentWeather, error) {
			return h.weatherService.CurrentByCoord(c.Request.Context(), lat, lon)
		})
		return
	}

	city := c.Query("city")
	if city == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "請提供 city 或 lat & lon 其中之一。")
		return
	}
	h.respondCurrent(c, func() (*app.CurrentWeather, error) {
		return h.weatherService.CurrentByCity(c.Request.Context(), city)
	})
}

// ByCoord is the legacy coordinate-only route.
func (h *WeatherHandler) ByCoord(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid lat/lon")
		return
	}
	h.respondCurrent(c, func() (*app.CurrentWeather, error) {
		return h.weatherService.CurrentByCoord(c.Request.Context(), lat, lon)
	})
}

// OutfitSuggestion combines the weather-conditioned suggestion with the
// authenticated user's wardrobe.
func (h *WeatherHandler) OutfitSuggestion(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	city := c.Query("city")
	if city == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing city")
		return
	}

	suggestion, err := h.weatherService.OutfitSuggestion(c.Request.Context(), userID, city)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrWardrobeEmpty):
			response.Error(c, http.StatusNotFound, response.CodeWardrobeEmpty, "衣櫃為空，無法生成建議。")
		default:
			h.weatherError(c, err)
		}
		return
	}

	response.OK(c, suggestion)
}

func (h *WeatherHandler) respondCurrent(c *gin.Context, fetch func() (*app.CurrentWeather, error)) {
	current, err := fetch()
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		h.weatherError(c, err)
		return
	}
	response.OK(c, current)
}

func (h *WeatherHandler) weatherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, weather.ErrInvalidAPIKey):
		response.Error(c, http.StatusUnauthorized, response.CodeExternalService, "API 金鑰無效。")
	case errors.Is(err, weather.ErrLocationUnknown):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "找不到該地區天氣。")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeExternalService, "獲取天氣資料失敗")
	}
}
