package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"smartcloset/internal/ai"
	"smartcloset/internal/config"
	"smartcloset/internal/model"
	mysqlClient "smartcloset/internal/platform/mysql"
	rabbitmqClient "smartcloset/internal/platform/rabbitmq"
	redisClient "smartcloset/internal/platform/redis"
	"smartcloset/internal/repository"
	"smartcloset/internal/storage"
	"smartcloset/internal/vision"
	"smartcloset/internal/worker"
)

// App holds every process-scoped resource, constructed once at startup and
// passed into the router by reference.
type App struct {
	Config      *config.Config
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EventWorker *worker.UploadEventWorker
	Store       *storage.Store
	Remover     *vision.Remover
	LLM         *ai.OpenAICompatibleClient

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.WardrobeItem{}, &model.UploadEvent{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.UploadEventQueue)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.Storage.UploadDir, cfg.Storage.WardrobeRoot)
	if err != nil {
		return nil, err
	}

	eventRepo := repository.NewUploadEventRepository(mysqlDB)
	eventWorker := worker.NewUploadEventWorker(mqConn, eventRepo, cfg.RabbitMQ.UploadEventQueue)
	if err := eventWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start upload event worker failed: %w", err)
	}

	return &App{
		Config:      cfg,
		MySQL:       mysqlDB,
		Redis:       redisCli,
		MQConn:      mqConn,
		EventWorker: eventWorker,
		Store:       store,
		Remover:     vision.NewRemover(cfg.Segmentation.ModelPath, cfg.Segmentation.ONNXSharedLibPath),
		LLM:         ai.NewOpenAICompatibleClient(),
		StartedAt:   time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
