package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/models"
)

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// Open connects to Postgres, configures the pool and pings with a
// short deadline.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("получение sql.DB: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping БД: %w", err)
	}

	return gdb, nil
}

// Migrate creates the six catalog tables and, on Postgres, the russian
// full-text index over product name+description.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.CarouselSlide{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("миграция: %w", err)
	}

	if gdb.Dialector.Name() == "postgres" {
		idx := `CREATE INDEX IF NOT EXISTS idx_products_fts ON products USING GIN (
			to_tsvector('russian', coalesce(name,'') || ' ' || coalesce(description,''))
		)`
		if err := gdb.Exec(idx).Error; err != nil {
			return fmt.Errorf("создание FTS индекса: %w", err)
		}
	}
	return nil
}
