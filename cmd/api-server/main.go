package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/go-co-op/gocron"

	"github.com/formdeck/formd/internal/auditlog"
	"github.com/formdeck/formd/internal/config"
	"github.com/formdeck/formd/internal/logger"
	"github.com/formdeck/formd/internal/server"
	"github.com/formdeck/formd/pkg/util"
)

func main() {
	dsn := flag.String("dsn", "", "database DSN")
	driver := flag.String("driver", "postgres", "database driver")
	tblPrefix := flag.String("table-prefix", util.GetEnv("TABLE_PREFIX", "formd_"), "table prefix (default formd_)")
	addr := flag.String("addr", ":8080", "listen address")
	openapi := flag.String("openapi", "", "write OpenAPI JSON and exit")
	flag.Parse()

	logger.Set(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	driverProvided := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "driver" {
			driverProvided = true
		}
	})

	if *dsn != "" {
		if detected, err := util.DetectDriver(*dsn); err != nil {
			if !driverProvided || *driver == "" {
				logger.L.Error("detect driver", "dsn", *dsn, "err", err)
				os.Exit(1)
			}
		} else {
			if !driverProvided || *driver == "" {
				*driver = detected
			} else if detected != "" && *driver != detected {
				logger.L.Error("driver mismatch", "driver", *driver, "dsn", *dsn, "expected", detected)
				os.Exit(1)
			}
		}
	}

	var db *sql.DB
	var err error
	dialect := util.DialectFromDriver(*driver)
	if *dsn != "" && *driver != "mongo" {
		db, err = sql.Open(*driver, *dsn)
		if err != nil {
			logger.L.Error("db open", "err", err)
			os.Exit(1)
		}
		if err := config.CheckPrefix(context.Background(), db, dialect, *tblPrefix); err != nil {
			logger.L.Error("prefix check", "err", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	cfg := config.Config{TablePrefix: *tblPrefix}

	dbCfg := server.DBConfig{Driver: *driver, DSN: *dsn, TablePrefix: cfg.TablePrefix}
	log.Printf("table prefix: %q", dbCfg.TablePrefix)

	api, err := server.New(db, dbCfg)
	if err != nil {
		logger.L.Error("server init", "err", err)
		os.Exit(1)
	}

	if db != nil {
		retention := 90
		if v := os.Getenv("FD_AUDIT_RETENTION_DAYS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				retention = n
			} else {
				logger.L.Warn("invalid FD_AUDIT_RETENTION_DAYS", "value", v)
			}
		}
		repo := &auditlog.Repo{DB: db, Dialect: dialect, Driver: dbCfg.Driver, TablePrefix: dbCfg.TablePrefix}
		s := gocron.NewScheduler(time.UTC)
		if _, err := s.Cron("0 3 * * *").Do(func() {
			ctx := context.Background()
			cutoff := time.Now().AddDate(0, 0, -retention)
			n, err := repo.PurgeOlderThan(ctx, cutoff)
			if err != nil {
				logger.L.Error("purge audit logs", "err", err)
				return
			}
			logger.L.Info("purged audit logs", "removed", n, "cutoff", cutoff)
		}); err != nil {
			logger.L.Error("schedule audit purge", "err", err)
		}
		s.StartAsync()
	}

	if *openapi != "" {
		data, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
		if err != nil {
			logger.L.Error("marshal openapi", "err", err)
			os.Exit(1)
		}
		p := filepath.Clean(*openapi)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			logger.L.Error("write openapi", "err", err)
			os.Exit(1)
		}
		return
	}

	logger.L.Info("listening", "addr", *addr)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.Adapter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.L.Error("server error", "err", err)
		os.Exit(1)
	}
}
