package musicstore

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const defaultPath = "musicstore.db"

// Open connects to the SQLite file at path and migrates the catalog schema.
func Open(path string) (*gorm.DB, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPath
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open music store %s", path)
	}

	if err := Migrate(db); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every catalog table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return errors.Wrap(err, "migrate music store schema")
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Reset empties every catalog table, children first.
func Reset(ctx context.Context, db *gorm.DB) error {
	models := allModels()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx := len(models) - 1; idx >= 0; idx-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[idx]).Error; err != nil {
				return errors.Wrapf(err, "reset %T", models[idx])
			}
		}
		return nil
	})
}

// Seed inserts data in one transaction, parents before children.
func Seed(ctx context.Context, db *gorm.DB, data Dataset) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batches := []struct {
			table string
			rows  any
			count int
		}{
			{"genre", &data.Genres, len(data.Genres)},
			{"album", &data.Albums, len(data.Albums)},
			{"track", &data.Tracks, len(data.Tracks)},
			{"employee", &data.Employees, len(data.Employees)},
			{"customer", &data.Customers, len(data.Customers)},
			{"invoice", &data.Invoices, len(data.Invoices)},
			{"invoice_line", &data.InvoiceLines, len(data.InvoiceLines)},
		}
		for _, batch := range batches {
			// gorm rejects empty slices.
			if batch.count == 0 {
				continue
			}
			if err := tx.Create(batch.rows).Error; err != nil {
				return errors.Wrapf(err, "seed %s", batch.table)
			}
		}
		return nil
	})
}

// Counts reports the number of rows per catalog table.
func Counts(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range Tables {
		var count int64
		if err := db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			return nil, errors.Wrapf(err, "count %s", table)
		}
		counts[table] = count
	}
	return counts, nil
}
