package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"smartcloset/internal/ai"
	appsvc "smartcloset/internal/app"
	"smartcloset/internal/bootstrap"
	"smartcloset/internal/cache"
	rabbitmqClient "smartcloset/internal/platform/rabbitmq"
	"smartcloset/internal/closet"
	"smartcloset/internal/repository"
	"smartcloset/internal/transport/http/handler"
	"smartcloset/internal/transport/http/middleware"
	"smartcloset/internal/weather"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5175"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.Static("/wardrobe", app.Store.WardrobeRoot())

	chatCfg := ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.ChatModel,
	}
	visionCfg := ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.VisionModel,
	}

	userRepo := repository.NewUserRepository(app.MySQL)
	wardrobeRepo := repository.NewWardrobeRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	classifier := closet.NewClassifier(app.LLM, visionCfg)
	eventPublisher := rabbitmqClient.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.UploadEventQueue)
	uploadService := appsvc.NewUploadService(app.Store, app.Remover, classifier, wardrobeRepo, eventPublisher)
	wardrobeService := appsvc.NewWardrobeService(wardrobeRepo, "/wardrobe")
	advisorService := appsvc.NewAdvisorService(wardrobeRepo, app.Store, app.LLM, chatCfg, visionCfg)

	weatherClient := weather.NewClient(weather.Config{
		BaseURL: app.Config.Weather.BaseURL,
		APIKey:  app.Config.Weather.APIKey,
		Units:   app.Config.Weather.Units,
		Lang:    app.Config.Weather.Lang,
	})
	weatherCache := cache.NewWeatherCache(app.Redis, time.Duration(app.Config.Redis.WeatherTTLSeconds)*time.Second)
	weatherService := appsvc.NewWeatherService(weatherClient, weatherCache, wardrobeRepo)

	authHandler := handler.NewAuthHandler(authService)
	uploadHandler := handler.NewUploadHandler(uploadService)
	wardrobeHandler := handler.NewWardrobeHandler(wardrobeService)
	chatHandler := handler.NewChatHandler(advisorService)
	priceHandler := handler.NewPriceHandler(advisorService)
	weatherHandler := handler.NewWeatherHandler(weatherService)

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authJWT, authHandler.Me)

	v1.POST("/upload", authJWT, uploadHandler.Upload)
	v1.GET("/wardrobe-items", wardrobeHandler.List)
	v1.POST("/chat", chatHandler.Recommend)
	v1.POST("/price-suggestion", priceHandler.Suggest)

	weatherGroup := v1.Group("/weather")
	weatherGroup.GET("/current", weatherHandler.Current)
	weatherGroup.GET("/by-coord", weatherHandler.ByCoord)
	weatherGroup.GET("/outfit-suggestion", authJWT, weatherHandler.OutfitSuggestion)

	return router
}
