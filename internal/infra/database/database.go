package database

import (
	"fmt"
	"time"

	"shop-service/internal/config"
	"shop-service/internal/repository/gormrepo"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Open connects to the SQL backend named by cfg.StoreBackend and migrates the
// schema. The memory backend has no database, so it is rejected here.
func Open(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = cfg.MySQL.DSN()
		}
		dialector = mysql.Open(dsn)
	case config.BackendPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("backend %q has no database", cfg.StoreBackend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(gormrepo.Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
