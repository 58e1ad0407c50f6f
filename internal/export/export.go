// Package export writes the verses of a zText module into a SQLite database.
package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/FocuswithJustin/swordverse/core/canon"
	lookuperr "github.com/FocuswithJustin/swordverse/core/errors"
	"github.com/FocuswithJustin/swordverse/core/sqlite"
	"github.com/FocuswithJustin/swordverse/core/ztext"
	"github.com/FocuswithJustin/swordverse/internal/logging"
)

// SchemaVersion is stored in the meta table.
const SchemaVersion = "1"

var schema = []string{
	`CREATE TABLE meta (
		key TEXT PRIMARY KEY,
		value TEXT
	)`,
	`CREATE TABLE books (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		testament TEXT NOT NULL,
		book_order INTEGER NOT NULL
	)`,
	`CREATE TABLE verses (
		id TEXT PRIMARY KEY,
		book TEXT NOT NULL,
		chapter INTEGER NOT NULL,
		verse INTEGER NOT NULL,
		text TEXT NOT NULL,
		FOREIGN KEY (book) REFERENCES books(id)
	)`,
	`CREATE INDEX idx_verses_ref ON verses(book, chapter, verse)`,
}

// Stats summarizes an export.
type Stats struct {
	Books    int           `json:"books"`
	Verses   int           `json:"verses"`  // Rows written
	Empty    int           `json:"empty"`   // Slots with no text
	Failed   int           `json:"failed"`  // Slots that failed with a corpus error
	Duration time.Duration `json:"duration"`
}

// ToSQLite exports every verse of mod to a new database at path. Verses that
// fail with a corpus error are counted and skipped; any other failure aborts
// the export and nothing is committed.
func ToSQLite(ctx context.Context, mod *ztext.Module, path string) (Stats, error) {
	if _, err := os.Stat(path); err == nil {
		return Stats{}, fmt.Errorf("export: %s already exists", path)
	}

	stats, err := writeDatabase(ctx, mod, path)
	if err != nil {
		os.Remove(path)
		return stats, err
	}
	return stats, nil
}

func writeDatabase(ctx context.Context, mod *ztext.Module, path string) (Stats, error) {
	start := time.Now()
	logger := logging.LoggerFromContext(ctx)

	db, err := sqlite.OpenWriter(ctx, path)
	if err != nil {
		return Stats{}, fmt.Errorf("export: failed to create database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("export: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return Stats{}, fmt.Errorf("export: failed to create schema: %w", err)
		}
	}

	stats, err := writeVerses(ctx, tx, mod)
	if err != nil {
		return stats, err
	}

	meta := map[string]string{
		"module":         mod.Name(),
		"canon":          mod.Canon().Name(),
		"encoding":       string(mod.Encoding()),
		"schema_version": SchemaVersion,
		"sqlite_driver":  sqlite.DriverType(),
		"exported_at":    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return stats, fmt.Errorf("export: failed to write meta: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("export: commit failed: %w", err)
	}

	stats.Duration = time.Since(start)
	logger.Info("export complete",
		"module", mod.Name(),
		"path", path,
		"books", stats.Books,
		"verses", stats.Verses,
		"empty", stats.Empty,
		"failed", stats.Failed,
		"duration_ms", stats.Duration.Milliseconds())
	return stats, nil
}

// writeVerses inserts the books and verses of every testament the module
// carries, in canonical order.
func writeVerses(ctx context.Context, tx *sql.Tx, mod *ztext.Module) (Stats, error) {
	var stats Stats
	logger := logging.LoggerFromContext(ctx)

	insertBook, err := tx.PrepareContext(ctx,
		"INSERT INTO books (id, name, testament, book_order) VALUES (?, ?, ?, ?)")
	if err != nil {
		return stats, fmt.Errorf("export: %w", err)
	}
	defer insertBook.Close()

	insertVerse, err := tx.PrepareContext(ctx,
		"INSERT INTO verses (id, book, chapter, verse, text) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return stats, fmt.Errorf("export: %w", err)
	}
	defer insertVerse.Close()

	c := mod.Canon()
	order := 0
	for _, t := range canon.Testaments {
		if !mod.HasTestament(t) {
			continue
		}
		for _, book := range c.Books(t) {
			order++
			if _, err := insertBook.ExecContext(ctx, book.OSIS(), book.Name(), t.Code(), order); err != nil {
				return stats, fmt.Errorf("export: insert book %s: %w", book.OSIS(), err)
			}
			stats.Books++

			for ch := 1; ch <= book.NumChapters(); ch++ {
				for v := 1; v <= book.VerseCount(ch); v++ {
					if err := ctx.Err(); err != nil {
						return stats, fmt.Errorf("export: %w", err)
					}

					text, err := mod.LookupIndex(t, book.Index(ch, v))
					if err != nil {
						if !lookuperr.IsCorpusError(err) {
							return stats, err
						}
						stats.Failed++
						logger.Warn("skipping verse",
							"ref", fmt.Sprintf("%s %d:%d", book.Name(), ch, v),
							"error", err)
						continue
					}
					if text == "" {
						stats.Empty++
						continue
					}

					id := fmt.Sprintf("%s.%d.%d", book.OSIS(), ch, v)
					if _, err := insertVerse.ExecContext(ctx, id, book.OSIS(), ch, v, text); err != nil {
						return stats, fmt.Errorf("export: insert %s: %w", id, err)
					}
					stats.Verses++
				}
			}
		}
	}

	if stats.Verses == 0 && stats.Failed > 0 {
		return stats, errors.New("export: every verse failed to read")
	}
	return stats, nil
}
