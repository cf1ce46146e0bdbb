package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nebulalearn/nebula/internal/cli"
	"github.com/nebulalearn/nebula/internal/repository"
	"github.com/nebulalearn/nebula/internal/service"
	"github.com/nebulalearn/nebula/pkg/generator"
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	if err := godotenv.Load(); err != nil {
		zap.S().Debug("load .env file", zap.Error(err))
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	postgresPort := os.Getenv("POSTGRES_PORT")
	postgresUser := os.Getenv("POSTGRES_USER")
	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	postgresDB := os.Getenv("POSTGRES_DB")
	generatorBaseURL := os.Getenv("GENERATOR_BASE_URL")
	generatorAPIKey := os.Getenv("GENERATOR_API_KEY")
	generatorModel := os.Getenv("GENERATOR_MODEL")

	if postgresHost == "" {
		zap.S().Fatal("missing required environment variables")
	}
	if generatorBaseURL == "" {
		generatorBaseURL = "https://api.openai.com/v1"
	}
	if generatorModel == "" {
		generatorModel = "gpt-4o-mini"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		postgresHost, postgresPort, postgresUser, postgresPassword, postgresDB)

	repo, err := repository.NewDB(dsn, 10, 20)
	if err != nil {
		zap.S().Error("connect to PostgreSQL", zap.Error(err), zap.String("host", postgresHost))
		os.Exit(1)
	}
	defer repo.Close()

	if err = repo.Up("migrations"); err != nil {
		zap.S().Error("run migrations", zap.Error(err))
		os.Exit(1)
	}

	genClient := generator.NewClient(generatorBaseURL, generatorAPIKey, generatorModel, 3)
	defer genClient.Close()

	svc := service.NewService(repo, genClient)

	if err := cli.NewRootCmd(svc).Execute(); err != nil {
		zap.S().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
