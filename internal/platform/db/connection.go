package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/marketpulse/reporting-gateway/internal/config"

	_ "github.com/lib/pq"
)

func InitializeDatabaseConnection(cfg *config.Config) (*sql.DB, error) {

	psqlConnectionInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s TimeZone=UTC",
		cfg.ReportingDatabaseHost,
		cfg.ReportingDatabasePort,
		cfg.ReportingDatabaseUser,
		cfg.ReportingDatabasePassword,
		cfg.ReportingDatabaseName)

	sslSettings, err := buildPostgresSslConfigString(cfg)
	if err != nil {
		return nil, err
	}

	psqlConnectionInfo += " " + sslSettings

	return sql.Open("postgres", psqlConnectionInfo)
}

func buildPostgresSslConfigString(cfg *config.Config) (string, error) {
	if cfg.ReportingDatabaseSslMode == "disable" {
		return "sslmode=disable", nil
	} else if cfg.ReportingDatabaseSslMode == "verify-full" {
		return "sslmode=verify-full sslrootcert=" + cfg.ReportingDatabaseSslRootCert, nil
	} else {
		return "", errors.New("Invalid SSL configuration for database connection: " + cfg.ReportingDatabaseSslMode)
	}
}
