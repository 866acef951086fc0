package db

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vietanh2810/camp-animal-economy/internal/config"
)

// OpenPostgres opens the market database, creating it first when configured
// to and when discrete connection fields are used.
func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	if conf.CreateDatabase {
		if conf.URL != "" {
			zap.L().Info("skipping database creation for postgres.url")
		} else if err := CreateDatabase(conf); err != nil {
			return nil, fmt.Errorf("CreateDatabase -> %w", err)
		}
	}

	db, err := OpenPostgresWithURL(conf.DSN())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	if conf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	}
	if conf.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(conf.ConnMaxLifetime)
	}

	return db, nil
}

func OpenPostgresWithURL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return db, nil
}

// CreateDatabase creates conf.DBName on the server if it does not exist yet.
func CreateDatabase(conf *config.PostgresConfig) error {
	admin, err := sql.Open("postgres", conf.AdminDSN())
	if err != nil {
		return fmt.Errorf("sql.Open -> %w", err)
	}
	defer admin.Close()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := admin.QueryRow(query, conf.DBName).Scan(&exists); err != nil {
		return fmt.Errorf("admin.QueryRow -> %w", err)
	}

	if exists {
		return nil
	}

	if _, err := admin.Exec("CREATE DATABASE " + pq.QuoteIdentifier(conf.DBName)); err != nil {
		return fmt.Errorf("admin.Exec -> %w", err)
	}
	zap.L().Info("database created", zap.String("dbname", conf.DBName))

	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db.DB -> %w", err)
	}

	return sqlDB.Close()
}
