// Package database owns the embedded SQLite instance: opening it, the
// destructive versioned migration, and seeding of the default category
// catalog. The Manager is constructed once at the composition root and
// passed to repositories by reference; there is no package-level handle.
package database

import (
	"fmt"
	"time"

	"kosh/internal/logger"
	"kosh/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SchemaVersion is the single integer identifying the current schema. Any
// mismatch with the stored version triggers a drop-and-recreate migration:
// the database is a cache of locally entered data, not a synced source of
// truth, so incremental migrations are not worth their complexity here.
const SchemaVersion = 1

// schemaInfo is the single-row table recording the migrated version.
type schemaInfo struct {
	ID      uint `gorm:"primaryKey"`
	Version int  `gorm:"not null"`
}

func (schemaInfo) TableName() string { return "schema_info" }

// allModels lists every persisted entity, in creation order.
var allModels = []interface{}{
	&models.User{},
	&models.Category{},
	&models.Transaction{},
	&models.Budget{},
	&models.Reminder{},
	&models.Note{},
	&models.Settings{},
}

// Manager handles database lifecycle operations.
type Manager struct {
	db *gorm.DB
}

// NewManager opens the SQLite database at path with foreign keys enforced.
func NewManager(path string) (*Manager, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// churn under concurrent repository calls.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db}, nil
}

// Migrate brings the schema to SchemaVersion. A fresh database is created
// and seeded; a version mismatch drops every table and recreates it.
func (m *Manager) Migrate() error {
	log := logger.Get()

	current, err := m.storedVersion()
	if err != nil {
		return err
	}

	if current == SchemaVersion {
		// Schema is current; still seed in case the catalog is missing.
		return m.seedDefaultCategories()
	}

	if current > 0 {
		log.Warnf("schema version %d != %d, dropping and recreating all tables", current, SchemaVersion)
		if err := m.dropAll(); err != nil {
			return err
		}
	} else {
		log.Info("creating database schema")
	}

	if err := m.db.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := m.db.AutoMigrate(&schemaInfo{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := m.db.Create(&schemaInfo{ID: 1, Version: SchemaVersion}).Error; err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := m.seedDefaultCategories(); err != nil {
		return err
	}

	log.Infof("database migrated to schema version %d", SchemaVersion)
	return nil
}

// storedVersion reads the recorded schema version, or 0 for a fresh database.
func (m *Manager) storedVersion() (int, error) {
	if !m.db.Migrator().HasTable(&schemaInfo{}) {
		return 0, nil
	}

	var info schemaInfo
	if err := m.db.First(&info).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return info.Version, nil
}

// dropAll removes every known table, including the version row.
func (m *Manager) dropAll() error {
	tables := append([]interface{}{}, allModels...)
	tables = append(tables, &schemaInfo{})
	if err := m.db.Migrator().DropTable(tables...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return nil
}

// Version reports the stored schema version, or 0 for a fresh database.
func (m *Manager) Version() (int, error) {
	return m.storedVersion()
}

// Reset drops every table and rebuilds the schema from scratch.
func (m *Manager) Reset() error {
	if err := m.dropAll(); err != nil {
		return err
	}
	return m.Migrate()
}

// DB returns the underlying GORM database instance.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close closes the underlying connection.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
