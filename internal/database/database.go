package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"printkit/internal/logger"
	"printkit/internal/models"
)

var ErrNotFound = errors.New("record not found")

type Database struct {
	DB     *gorm.DB
	logger *logger.Logger
}

// New opens the ledger database. URLs starting with sqlite:// use SQLite,
// anything else is treated as a PostgreSQL DSN.
func New(databaseURL string, log *logger.Logger) (*Database, error) {
	var db *gorm.DB
	var err error

	logLevel := gormlogger.Silent
	if log.Level() == "debug" {
		logLevel = gormlogger.Info
	}
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	}

	sqliteDB := strings.HasPrefix(databaseURL, "sqlite://")
	if sqliteDB {
		// SQLite for local use and tests
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), gormConfig)
	} else {
		// PostgreSQL through lib/pq
		db, err = gorm.Open(postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        databaseURL,
		}), gormConfig)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if sqliteDB {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.ProductRecord{}, &models.ImageRecord{}); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db, logger: log}, nil
}

// Open returns nil without error when no database is configured.
func Open(databaseURL string, log *logger.Logger) (*Database, error) {
	if databaseURL == "" {
		return nil, nil
	}
	return New(databaseURL, log)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) RecordProduct(ctx context.Context, rec *models.ProductRecord) error {
	if err := d.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record product: %w", err)
	}
	return nil
}

// GetProduct finds the newest ledger entry for a remote product id.
func (d *Database) GetProduct(ctx context.Context, remoteID string) (*models.ProductRecord, error) {
	var rec models.ProductRecord
	err := d.DB.WithContext(ctx).Where("remote_id = ?", remoteID).Order("created_at desc").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &rec, nil
}

// ListProducts returns ledger entries newest first, optionally filtered by
// status. A non-positive limit returns everything.
func (d *Database) ListProducts(ctx context.Context, status string, limit int) ([]models.ProductRecord, error) {
	query := d.DB.WithContext(ctx).Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.ProductRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return records, nil
}

func (d *Database) MarkPublished(ctx context.Context, remoteID string, at time.Time) error {
	return d.updateStatus(ctx, remoteID, map[string]interface{}{
		"status":       models.ProductStatusPublished,
		"published_at": at,
	})
}

func (d *Database) MarkDeleted(ctx context.Context, remoteID string) error {
	return d.updateStatus(ctx, remoteID, map[string]interface{}{
		"status": models.ProductStatusDeleted,
	})
}

func (d *Database) updateStatus(ctx context.Context, remoteID string, fields map[string]interface{}) error {
	result := d.DB.WithContext(ctx).Model(&models.ProductRecord{}).Where("remote_id = ?", remoteID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update product %s: %w", remoteID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) RecordImage(ctx context.Context, rec *models.ImageRecord) error {
	if err := d.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record image: %w", err)
	}
	return nil
}

func (d *Database) ListImages(ctx context.Context, limit int) ([]models.ImageRecord, error) {
	query := d.DB.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []models.ImageRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return records, nil
}
