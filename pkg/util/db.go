package util

import (
	"fmt"
	"strings"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
)

// UnsupportedDialect is returned when a driver has no corresponding goquent dialect.
type UnsupportedDialect struct{ Driver string }

func (UnsupportedDialect) Placeholder(int) string { return "?" }

func (UnsupportedDialect) QuoteIdent(ident string) string { return ident }

// DetectDriver infers the driver from the DSN. URL style DSNs carry an
// explicit scheme; bare go-sql-driver DSNs ("user:pw@tcp(host)/db") are
// treated as mysql.
func DetectDriver(dsn string) (string, error) {
	scheme, _, found := strings.Cut(dsn, "://")
	if !found {
		if strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix(") {
			return "mysql", nil
		}
		return "", fmt.Errorf("cannot infer driver from dsn")
	}
	switch scheme {
	case "postgres", "postgresql":
		return "postgres", nil
	case "mongodb", "mongodb+srv":
		return "mongo", nil
	case "mysql":
		return "mysql", nil
	}
	return "", fmt.Errorf("unknown scheme: %s", scheme)
}

// DialectFromDriver returns the goquent dialect corresponding to a driver.
func DialectFromDriver(d string) ormdriver.Dialect {
	switch d {
	case "postgres":
		return ormdriver.PostgresDialect{}
	case "mysql":
		return ormdriver.MySQLDialect{}
	}
	return UnsupportedDialect{Driver: d}
}
