package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/docchat/internal/api/handlers"
	"github.com/cloo-solutions/docchat/internal/config"
	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/openai"
	"github.com/cloo-solutions/docchat/internal/pdf"
	"github.com/cloo-solutions/docchat/internal/repository"
	"github.com/cloo-solutions/docchat/internal/server"
	"github.com/cloo-solutions/docchat/internal/service"
	"github.com/cloo-solutions/docchat/internal/storage"
	"github.com/cloo-solutions/docchat/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the docchat API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		env := os.Getenv("ENVIRONMENT")
		if env == "" {
			env = "development"
		}
		// Sample every trace in development, one in ten elsewhere.
		rate := 0.1
		if env == "development" {
			rate = 1.0
		}
		flush, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      env,
			TracesSampleRate: rate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer flush()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	documentRepo := repository.NewDocumentRepository(pool)
	vectorIndex := repository.NewVectorIndexWithTable(pool, cfg.VectorTable)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(apiKeyRepo, uuidGen)

	if cfg.InitUserID != "" {
		if err := bootstrapInitialKey(ctx, cfg, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial API key: %w", err)
		}
	}

	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err = storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	}

	var objectStore storage.ObjectStore
	if s3Client != nil {
		objectStore = s3Client
	}
	fetcher := storage.NewFetcher(objectStore)

	var ingestHandler *handlers.IngestHandler
	var chatHandler *handlers.ChatHandler
	if cfg.HasOpenAI() {
		embeddingClient, err := openai.NewEmbeddingClient(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create embedding client: %w", err)
		}

		embedder, err := openai.NewPaddedEmbedder(ctx, embeddingClient)
		if err != nil {
			return fmt.Errorf("failed to verify embedding provider: %w", err)
		}
		log.Printf("embedding provider ready (%d dimensions)", embedder.Dimensions())

		chatClient, err := openai.NewChatClient(openai.ChatConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create chat client: %w", err)
		}

		ingestSvc := service.NewIngestService(documentRepo, vectorIndex, fetcher, embedder, pdf.Extract)
		chatSvc := service.NewChatService(embedder, vectorIndex, chatClient)

		ingestHandler = handlers.NewIngestHandler(ingestSvc)
		chatHandler = handlers.NewChatHandler(chatSvc)
	} else {
		log.Println("OPENAI_API_KEY not set: ingest and chat disabled")
		ingestHandler = handlers.NewIngestHandler(&NoOpIngestService{})
		chatHandler = handlers.NewChatHandler(&NoOpChatService{})
	}

	documentSvc := service.NewDocumentService(documentRepo, vectorIndex)

	var uploadHandler *handlers.UploadHandler
	if s3Client != nil {
		uploadHandler = handlers.NewUploadHandler(s3Client)
	} else {
		uploadHandler = handlers.NewUploadHandler(nil)
	}

	routerCfg := server.RouterConfig{
		AuthValidator:      authSvc,
		IngestHandler:      ingestHandler,
		ChatHandler:        chatHandler,
		DocumentHandler:    handlers.NewDocumentHandler(documentSvc),
		UploadHandler:      uploadHandler,
		AuthHandler:        handlers.NewAuthHandler(authSvc),
		RateLimitPerSecond: cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

type NoOpIngestService struct{}

func (s *NoOpIngestService) Ingest(ctx context.Context, input service.IngestInput) (*domain.Document, error) {
	return nil, fmt.Errorf("ingestion not configured: OPENAI_API_KEY required")
}

type NoOpChatService struct{}

func (s *NoOpChatService) Answer(ctx context.Context, documentID string, messages []domain.Message) (string, error) {
	return "", fmt.Errorf("chat not configured: OPENAI_API_KEY required")
}

func bootstrapInitialKey(ctx context.Context, cfg *config.Config, authSvc *service.AuthService) error {
	if cfg.InitAPIKey == "" {
		return nil
	}

	if !service.IsValidAPIToken(cfg.InitAPIKey) {
		return fmt.Errorf("invalid DOCCHAT_INIT_API_KEY format (expected 'dcc_<64 hex chars>')")
	}

	existing, err := authSvc.GetAPIKeyByHash(ctx, cfg.InitAPIKey)
	if err == nil && existing != nil {
		log.Printf("bootstrap: API key already exists (id: %s)", existing.ID)
		return nil
	}
	if err != nil && !errors.Is(err, domain.ErrAPIKeyNotFound) {
		return fmt.Errorf("check existing key: %w", err)
	}

	if err := authSvc.CreateAPIKeyWithToken(ctx, cfg.InitUserID, "bootstrap", cfg.InitAPIKey); err != nil {
		return fmt.Errorf("create bootstrap key: %w", err)
	}
	log.Printf("bootstrap: created API key for user %s", cfg.InitUserID)

	return nil
}

// runMigrations applies pending schema migrations from the migrations/
// directory. golang-migrate needs a database/sql handle, so a separate
// connection is opened just for this.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}

	version, dirty, verErr := m.Version()
	switch {
	case errors.Is(verErr, migrate.ErrNilVersion):
		log.Println("migrations: no migrations applied yet")
	case verErr != nil:
		return fmt.Errorf("read migration version: %w", verErr)
	case dirty:
		return fmt.Errorf("migration version %d is dirty, manual intervention required", version)
	case errors.Is(upErr, migrate.ErrNoChange):
		log.Printf("migrations: up to date at version %d", version)
	default:
		log.Printf("migrations: applied up to version %d", version)
	}
	return nil
}
