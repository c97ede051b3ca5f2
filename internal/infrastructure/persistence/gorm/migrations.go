package gorm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationModel records an applied schema migration
type MigrationModel struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName overrides the table name
func (MigrationModel) TableName() string {
	return "schema_migrations"
}

// Migration is one ordered schema change
type Migration struct {
	Version string
	Name    string
	Up      func(*gorm.DB) error
}

// Migrations lists every schema change in the order it is applied
var Migrations = []Migration{
	{
		Version: "001",
		Name:    "create scrape attempt tables",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&AttemptModel{}, &BackendAttemptModel{})
		},
	},
	{
		Version: "002",
		Name:    "index attempts by item and finish time",
		Up: func(tx *gorm.DB) error {
			return tx.Exec("CREATE INDEX IF NOT EXISTS idx_scrape_attempts_item_finished ON scrape_attempts (item_id, finished_at)").Error
		},
	},
	{
		Version: "003",
		Name:    "index backend attempts by outcome",
		Up: func(tx *gorm.DB) error {
			return tx.Exec("CREATE INDEX IF NOT EXISTS idx_scrape_backend_attempts_outcome ON scrape_backend_attempts (backend, outcome)").Error
		},
	},
}

// Migrator applies Migrations and tracks them in schema_migrations
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
	logger     *zap.Logger
}

// NewMigrator creates a migrator over the default migration list
func NewMigrator(db *gorm.DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: Migrations,
		logger:     logger.Named("migrate"),
	}
}

// Applied returns the applied migrations, newest first
func (m *Migrator) Applied(ctx context.Context) ([]MigrationModel, error) {
	if !m.db.Migrator().HasTable(&MigrationModel{}) {
		return nil, nil
	}
	var applied []MigrationModel
	if err := m.db.WithContext(ctx).Order("version DESC").Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return applied, nil
}

// Pending returns the migrations that have not been applied yet
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]struct{}, len(applied))
	for _, a := range applied {
		done[a.Version] = struct{}{}
	}

	var pending []Migration
	for _, migration := range m.migrations {
		if _, ok := done[migration.Version]; !ok {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// Migrate applies every pending migration, each in its own transaction, and
// returns the ones it applied.
func (m *Migrator) Migrate(ctx context.Context) ([]Migration, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationModel{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	for i, migration := range pending {
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationModel{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return pending[:i], fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
		m.logger.Info("Applied migration",
			zap.String("version", migration.Version),
			zap.String("name", migration.Name),
		)
	}
	return pending, nil
}
