package server

import (
	"database/sql"
	"os"

	"github.com/formdeck/formd/internal/events"
	"github.com/formdeck/formd/internal/logger"
)

// initEvents wires the global dispatcher from FD_EVENTS_CONFIG. A broken
// config aborts startup; an unset one leaves eventing off.
func initEvents(db *sql.DB, driver, tablePrefix string) error {
	cfg, err := events.LoadConfig(os.Getenv("FD_EVENTS_CONFIG"))
	if err != nil {
		return err
	}
	sinks, err := cfg.BuildSinks()
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		logger.L.Info("events disabled, no sinks configured")
	}
	dlq := &events.SQLDLQ{DB: db, Driver: driver, TablePrefix: tablePrefix}
	events.Default = events.NewDispatcher(cfg, dlq, sinks...)
	return nil
}
