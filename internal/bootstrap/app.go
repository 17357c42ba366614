package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/authz"
	"recruit-backend/internal/documents"
	"recruit-backend/internal/extract"
	"recruit-backend/internal/parser"
	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/server"
	"recruit-backend/internal/shared/storage/db"
	"recruit-backend/internal/shared/storage/object"
	localstore "recruit-backend/internal/shared/storage/object/local"
	s3store "recruit-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Local            object.ObjectStore
	Remote           object.ObjectStore
	DocumentsRepo    documents.Repo
	SlotStore        documents.SlotStore
	DocumentsService *documents.Service
	Pipeline         *extract.Pipeline
	DocumentsHandler *documents.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	local := localstore.New(cfg.LocalStoreDir)
	remote, remoteURL, err := buildRemoteStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo documents.Repo
	var slots documents.SlotStore
	if sqlDB != nil {
		repo = &documents.PGRepo{DB: sqlDB}
		slots = &documents.PGSlotStore{DB: sqlDB}
	} else {
		repo = documents.NewMemoryRepo()
		slots = documents.NewMemorySlotStore()
	}

	parserClient, err := buildParser(cfg)
	if err != nil {
		return nil, err
	}

	docSvc := &documents.Service{
		Repo:      repo,
		Slots:     slots,
		Remote:    remote,
		Local:     local,
		Policy:    authz.NewRolePolicy("admin", "recruiter"),
		RemoteURL: remoteURL,
	}
	pipeline := &extract.Pipeline{Parser: parserClient}
	docHandler := documents.NewHandler(docSvc, pipeline)

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		Local:            local,
		Remote:           remote,
		DocumentsRepo:    repo,
		SlotStore:        slots,
		DocumentsService: docSvc,
		Pipeline:         pipeline,
		DocumentsHandler: docHandler,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		DB:              sqlDB,
		Remote:          remote,
		DocumentHandler: docHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRemoteStore(ctx context.Context, cfg config.Config) (object.ObjectStore, func(string) string, error) {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		log.Printf("bootstrap: S3_BUCKET empty; durable uploads will be rejected")
		return nil, nil, nil
	}
	store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID, false)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: object store init failed; durable uploads will be rejected: %v", err)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return store, store.PublicURL, nil
}

func buildParser(cfg config.Config) (parser.Client, error) {
	if strings.TrimSpace(cfg.ParserURL) == "" {
		log.Printf("bootstrap: PARSER_URL empty; parse requests will fail")
		return parser.PlaceholderClient{}, nil
	}
	return parser.NewHTTPClient(cfg.ParserURL, cfg.ParserAPIKey)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
