package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/suPer8Hu/ai-studio/internal/ai"
	"github.com/suPer8Hu/ai-studio/internal/config"
	"github.com/suPer8Hu/ai-studio/internal/creation"
	"github.com/suPer8Hu/ai-studio/internal/db"
	"github.com/suPer8Hu/ai-studio/internal/httpapi"
	"github.com/suPer8Hu/ai-studio/internal/httpapi/handlers"
	"github.com/suPer8Hu/ai-studio/internal/pdftext"
	"github.com/suPer8Hu/ai-studio/internal/storage"
	"github.com/suPer8Hu/ai-studio/internal/store/rabbitmq"
	"github.com/suPer8Hu/ai-studio/internal/store/redisstore"
)

func textRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()
	reg.Register("gemini", func(ctx context.Context, model string) (ai.TextGenerator, error) {
		if model == "" {
			model = cfg.GeminiModel
		}
		return ai.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, model), nil
	})
	reg.Register("ollama", func(ctx context.Context, model string) (ai.TextGenerator, error) {
		if model == "" {
			model = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, model), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.TextGenerator, error) {
		if model == "" {
			model = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, model, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})
	return reg
}

func imageStore(ctx context.Context, cfg config.Config) (storage.ImageStore, error) {
	switch cfg.StorageProvider {
	case "s3":
		return storage.NewS3(ctx, storage.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Prefix:        cfg.CloudinaryFolder,
		})
	default:
		return storage.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	}
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err := gdb.AutoMigrate(&creation.Creation{}); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	rds, err := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rds.Close()

	text, err := textRegistry(cfg).Get(ctx, cfg.TextProvider, "")
	if err != nil {
		log.Fatalf("text provider: %v", err)
	}

	store, err := imageStore(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	deps := creation.Deps{
		Repo:      creation.NewRepo(gdb),
		Usage:     rds,
		Text:      text,
		Images:    ai.NewClipDropProvider(cfg.ClipDropBaseURL, cfg.ClipDropAPIKey),
		Store:     store,
		Extract:   pdftext.Extract,
		Feed:      rds,
		FreeLimit: cfg.FreeUsageLimit,
	}

	// creation events are best effort; the API serves without a broker
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbitmq unavailable, creation events disabled: %v", err)
	} else {
		defer pub.Close()
		deps.Events = pub
	}

	svc := creation.NewService(deps)
	r := httpapi.NewRouter(handlers.NewHandler(cfg, svc, rds))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s text=%s storage=%s", cfg.Port, cfg.TextProvider, cfg.StorageProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
