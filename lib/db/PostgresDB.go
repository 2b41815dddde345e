package db

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ether/articlestore/lib/db/migrations"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const postgresUniqueViolation = "23505"

type PostgresDB struct {
	sqlStore
	options PostgresOptions
}

type PostgresOptions struct {
	Username string
	Password string
	Port     int
	Host     string
	Database string
	SSLMode  string
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == postgresUniqueViolation
	}
	return false
}

func (o PostgresOptions) DSN() string {
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		o.Username, o.Password, o.Host, o.Port, o.Database, sslMode)
}

// NewPostgresDB This function creates a new PostgresDB and returns a pointer to it.
func NewPostgresDB(options PostgresOptions, logger *zap.SugaredLogger) (*PostgresDB, error) {
	return NewPostgresDBFromDSN(options.DSN(), options, logger)
}

func NewPostgresDBFromDSN(dsn string, options PostgresOptions, logger *zap.SugaredLogger) (*PostgresDB, error) {
	sqlDb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := sqlDb.Ping(); err != nil {
		sqlDb.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	migrationManager := migrations.NewMigrationManager(sqlDb, migrations.DialectPostgres, logger)
	if err := migrationManager.Run(); err != nil {
		sqlDb.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresDB{
		sqlStore: sqlStore{
			sqlDB:             sqlDb,
			builder:           psql,
			isUniqueViolation: isPostgresUniqueViolation,
			migrations:        migrationManager,
		},
		options: options,
	}, nil
}

var _ DataStore = (*PostgresDB)(nil)
