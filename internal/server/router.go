package server

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/formdeck/formd/internal/api/handler"
	"github.com/formdeck/formd/internal/auditlog"
	"github.com/formdeck/formd/internal/auth"
	"github.com/formdeck/formd/internal/formdef"
	"github.com/formdeck/formd/internal/formdef/audit"
	"github.com/formdeck/formd/internal/logger"
	"github.com/formdeck/formd/internal/server/middleware"
	"github.com/formdeck/formd/internal/server/reserved"
	pkgutil "github.com/formdeck/formd/pkg/util"
)

func New(db *sql.DB, cfg DBConfig) (huma.API, error) {
	r := chi.NewRouter()

	_, file, _, _ := runtime.Caller(0)
	base := filepath.Join(filepath.Dir(file), "..", "..")
	reservedPath := filepath.Join(base, "configs", "default.yaml")
	reserved.Load(reservedPath)
	go func() {
		if err := reserved.Watch(context.Background(), reservedPath); err != nil {
			logger.L.Warn("watch reserved fields", "err", err)
		}
	}()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	dialect := pkgutil.DialectFromDriver(cfg.Driver)
	secret := mustJWTSecret()

	e, err := initEnforcer(db, cfg.Driver, cfg.TablePrefix)
	if err != nil {
		return nil, fmt.Errorf("init enforcer: %w", err)
	}

	api := humachi.New(r, huma.DefaultConfig("Formdeck API", "1.0.0"))
	jwtHandler := auth.NewJWT(secret, 15*time.Minute)

	// Register login & refresh handlers before applying auth middleware so
	// that they remain publicly accessible.
	auth.Register(api, &auth.Handler{Repo: &auth.UserRepo{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}, JWT: jwtHandler})

	// Apply authentication middleware for subsequent endpoints.
	api.UseMiddleware(auth.Middleware(api, jwtHandler))

	// Apply RBAC middleware for the remaining endpoints. The admin gate is
	// mandatory; if the enforcer cannot be built the server does not start.
	api.UseMiddleware(middleware.RBAC(e, roleResolver(db, cfg.Driver, cfg.TablePrefix)))

	rec := &audit.Recorder{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}
	if err := initEvents(db, cfg.Driver, cfg.TablePrefix); err != nil {
		return nil, fmt.Errorf("init events: %w", err)
	}

	var repo formdef.Repository
	if cfg.Driver == "mongo" && cfg.DSN != "" {
		cli, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		repo = &formdef.MongoRepo{Client: cli, Database: "formdeck"}
	} else {
		repo = &formdef.SQLRepo{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}
	}

	setupMetrics(api, r, repo)

	handler.Register(api, &handler.FormHandler{Repo: repo, Recorder: rec})
	handler.RegisterAudit(api, &handler.AuditHandler{Repo: &auditlog.Repo{DB: db, Dialect: dialect, Driver: cfg.Driver, TablePrefix: cfg.TablePrefix}})
	return api, nil
}
