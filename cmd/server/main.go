package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/ridwanfathin/market-receipts-service/internal/config"
	"github.com/ridwanfathin/market-receipts-service/internal/currency"
	"github.com/ridwanfathin/market-receipts-service/internal/database"
	"github.com/ridwanfathin/market-receipts-service/internal/extract"
	"github.com/ridwanfathin/market-receipts-service/internal/handler"
	"github.com/ridwanfathin/market-receipts-service/internal/logger"
	"github.com/ridwanfathin/market-receipts-service/internal/repository"
	"github.com/ridwanfathin/market-receipts-service/internal/server"
	"github.com/ridwanfathin/market-receipts-service/internal/service"
	"github.com/ridwanfathin/market-receipts-service/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
	zlog.Info("server shutdown complete")
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx := context.Background()

	repo, closeRepo, err := newRepository(ctx, cfg, zlog)
	if err != nil {
		return err
	}

	extractor, err := extract.New(cfg.PDFExtractor, cfg.PdftotextPath, zlog.Named("extract"))
	if err != nil {
		closeRepo()
		return err
	}
	zlog.Info("pdf extractor ready", zap.String("kind", cfg.PDFExtractor))

	archiver := newArchiver(cfg, zlog)
	currencyClient := currency.NewClient(currency.WithBaseURL(cfg.CurrencyAPIURL))

	// Services
	corpusService := service.NewCorpusService(repo, currencyClient, cfg.BaseCurrency, zlog.Named("corpus"))
	if err := corpusService.Load(ctx); err != nil {
		closeRepo()
		return err
	}
	listService := service.NewShoppingListService(repo, corpusService, zlog.Named("shopping_lists"))
	if err := listService.Load(ctx); err != nil {
		closeRepo()
		return err
	}
	receiptService := service.NewReceiptService(extractor, archiver, zlog.Named("receipts"), cfg.MaxWorkers)

	// Server and routes
	appServer := server.NewServer(cfg, zlog)
	appServer.OnShutdown(closeRepo)

	v1 := appServer.APIGroup()
	handler.NewReceiptHandler(receiptService, corpusService, cfg.MaxUploadBytes, zlog).RegisterReceiptRoutes(v1)
	handler.NewCorpusHandler(corpusService, zlog).RegisterCorpusRoutes(v1)
	handler.NewShoppingListHandler(listService, zlog).RegisterShoppingListRoutes(v1)
	handler.NewCurrencyHandler(currencyClient, cfg.BaseCurrency, zlog).RegisterCurrencyRoutes(v1)

	return appServer.Start()
}

// newRepository opens the configured document store. The returned function
// releases it.
func newRepository(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (repository.DocumentRepository, func(), error) {
	if cfg.StorageDriver == config.StoragePostgres {
		db, err := database.NewPostgresDB(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		applied, err := db.Migrate(ctx)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		zlog.Info("using postgres document storage", zap.Strings("migrations_applied", applied))
		return repository.NewPostgresDocumentRepository(db.GetPool()), db.Close, nil
	}

	repo, err := repository.NewFileRepository(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	zlog.Info("using file document storage", zap.String("dir", cfg.DataDir))
	return repo, func() {}, nil
}

// newArchiver returns the S3 archiver when archiving is enabled and configured
func newArchiver(cfg *config.Config, zlog *zap.Logger) storage.Archiver {
	if !cfg.ArchiveEnabled {
		return storage.NopArchiver{}
	}

	archiver, err := storage.NewS3Archiver(&storage.Config{
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		AccessKeySecret: cfg.S3AccessKeySecret,
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
	})
	if err != nil {
		zlog.Warn("receipt archive disabled", zap.Error(err))
		return storage.NopArchiver{}
	}
	zlog.Info("archiving receipts", zap.String("bucket", cfg.S3Bucket))
	return archiver
}
