package main

import (
	"chatarchive-backend/internal/archive"
	"chatarchive-backend/internal/config"
	"chatarchive-backend/internal/database"
	"chatarchive-backend/internal/discord"
	"chatarchive-backend/internal/handlers"
	"chatarchive-backend/internal/hub"
	"chatarchive-backend/internal/jwt"
	"chatarchive-backend/internal/settings"
	"chatarchive-backend/internal/snowflake"
	"chatarchive-backend/internal/tokens"
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func setupLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.LogToFile {
		zapConfig.OutputPaths = []string{"app.log", "stdout"}
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = level

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}

func setupRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := rdb.Ping(context.Background()).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func main() {
	fmt.Println("Reading config file...")
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Setting up logger...")
	sugar, err := setupLogger(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer sugar.Sync()

	fmt.Println("Connecting to database...")
	db, err := database.Setup(&cfg.Database)
	if err != nil {
		sugar.Fatal(err)
	}

	var redisClient *redis.Client
	if !cfg.Redis.SelfContained {
		fmt.Println("Connecting to redis...")
		redisClient, err = setupRedis(&cfg.Redis)
		if err != nil {
			sugar.Fatal(err)
		}
	}

	err = snowflake.Setup(cfg.SnowflakeWorkerID)
	if err != nil {
		sugar.Fatal(err)
	}

	isHttps := cfg.Server.TlsCert != "" && cfg.Server.TlsKey != ""

	tokens.Setup(sugar, redisClient, cfg.Redis.SelfContained)
	jwt.Setup(cfg.JwtSecret, isHttps)
	hub.Setup(sugar)

	clock := clockwork.NewRealClock()
	discordClient := discord.NewClient(cfg.Discord.BaseUrl)

	services := handlers.Services{
		DiscordClient: discordClient,
		Retriever:     discord.NewRetriever(discordClient, cfg.Discord.PageCap, cfg.Discord.PageDelay, clock),
		Writer:        archive.NewWriter(clock),
		Store:         archive.NewStore(sugar),
		Settings:      settings.New(db, sugar),
	}

	var httpProtocol string
	if isHttps {
		httpProtocol = "https"
	} else {
		httpProtocol = "http"
	}

	fmt.Printf("Server is running on %s://%s:%s\n", httpProtocol, cfg.Server.Address, cfg.Server.Port)

	err = handlers.Setup(isHttps, cfg, sugar, db, services)
	if err != nil {
		sugar.Fatal(err)
	}
}
