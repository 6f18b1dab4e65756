package musicstore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSeedFixture(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	if err := Seed(ctx, db, Fixture()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	counts, err := Counts(ctx, db)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	want := map[string]int64{
		"genre":        4,
		"album":        3,
		"track":        7,
		"employee":     3,
		"customer":     4,
		"invoice":      6,
		"invoice_line": 11,
	}
	for table, count := range want {
		if counts[table] != count {
			t.Fatalf("count(%s) = %d, want %d", table, counts[table], count)
		}
	}

	var rockMs int64
	if err := db.WithContext(ctx).
		Raw(`SELECT SUM(t.milliseconds) FROM track t JOIN genre g ON g.genre_id = t.genre_id WHERE g.name = ?`, "Rock").
		Scan(&rockMs).Error; err != nil {
		t.Fatalf("rock total query failed: %v", err)
	}
	if rockMs != 600000 {
		t.Fatalf("rock total = %d, want 600000", rockMs)
	}

	var year string
	if err := db.WithContext(ctx).
		Raw(`SELECT substr(invoice_date, 1, 4) FROM invoice WHERE invoice_id = 2`).
		Scan(&year).Error; err != nil {
		t.Fatalf("invoice year query failed: %v", err)
	}
	if year != "2022" {
		t.Fatalf("invoice year = %q, want 2022", year)
	}
}

func TestSeedSkipsEmptyTablesAndReset(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	if err := Seed(ctx, db, Dataset{Genres: []Genre{{GenreID: 1, Name: "Rock"}}}); err != nil {
		t.Fatalf("Seed with sparse dataset failed: %v", err)
	}

	// Seeding the same keys twice violates the primary key.
	if err := Seed(ctx, db, Dataset{Genres: []Genre{{GenreID: 1, Name: "Rock"}}}); err == nil {
		t.Fatalf("expected duplicate seed to fail")
	}

	if err := Reset(ctx, db); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	counts, err := Counts(ctx, db)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	for table, count := range counts {
		if count != 0 {
			t.Fatalf("count(%s) = %d after reset, want 0", table, count)
		}
	}
}
