// Package photostore persists binary assets (item photos, location photos,
// area layout sketches) in a local SQLite database. Assets are keyed by
// category plus owner key, mirroring the entry names used inside backup
// archives.
package photostore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kardexlabs/kardex/pkg/errors"
)

// Asset categories. The category is the prefix of the asset's entry name
// in backup archives.
const (
	CategoryInventory  = "inventory"
	CategoryAdditional = "additional"
	CategoryLocation   = "location"
	CategoryLayout     = "layout"
)

// Categories lists all known asset categories.
var Categories = []string{CategoryInventory, CategoryAdditional, CategoryLocation, CategoryLayout}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Asset is one stored binary with its addressing metadata.
type Asset struct {
	Category string
	Key      string
	MimeType string
	Data     []byte
}

// EntryName returns the asset's name inside a backup archive.
func (a Asset) EntryName() string {
	return a.Category + "-" + a.Key
}

// SplitEntryName parses a backup entry name back into category and key.
// The second return is false when the prefix is not a known category.
func SplitEntryName(name string) (category, key string, ok bool) {
	for _, c := range Categories {
		if strings.HasPrefix(name, c+"-") {
			return c, strings.TrimPrefix(name, c+"-"), true
		}
	}
	return "", "", false
}

// Store is a SQLite-backed asset store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the asset database at dbPath and
// applies pending migrations.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.WrapIO("open", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.WrapIO("open", dbPath, err)
	}

	if err := runMigrations(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces an asset.
func (s *Store) Put(ctx context.Context, asset Asset) error {
	if asset.Category == "" || asset.Key == "" {
		return errors.NewValidationError("key", asset.Key, "asset category and key are required")
	}
	mime := asset.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (category, item_key, mime_type, data, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(category, item_key) DO UPDATE SET
			mime_type = excluded.mime_type,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, asset.Category, asset.Key, mime, asset.Data)
	if err != nil {
		return errors.WrapResource("store", "asset", asset.EntryName(), err)
	}
	return nil
}

// Get returns an asset by category and key.
func (s *Store) Get(ctx context.Context, category, key string) (Asset, error) {
	asset := Asset{Category: category, Key: key}
	err := s.db.QueryRowContext(ctx, `
		SELECT mime_type, data FROM assets WHERE category = ? AND item_key = ?
	`, category, key).Scan(&asset.MimeType, &asset.Data)

	if err == sql.ErrNoRows {
		return Asset{}, &errors.NotFoundError{Resource: "asset", ID: asset.EntryName()}
	}
	if err != nil {
		return Asset{}, errors.WrapResource("get", "asset", asset.EntryName(), err)
	}
	return asset, nil
}

// Exists reports whether an asset is present.
func (s *Store) Exists(ctx context.Context, category, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM assets WHERE category = ? AND item_key = ?
	`, category, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapResource("get", "asset", category+"-"+key, err)
	}
	return true, nil
}

// Delete removes an asset. Deleting an absent asset is not an error.
func (s *Store) Delete(ctx context.Context, category, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM assets WHERE category = ? AND item_key = ?
	`, category, key)
	if err != nil {
		return errors.WrapResource("delete", "asset", category+"-"+key, err)
	}
	return nil
}

// Keys returns the sorted owner keys of all assets in a category.
func (s *Store) Keys(ctx context.Context, category string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_key FROM assets WHERE category = ?
	`, category)
	if err != nil {
		return nil, errors.WrapResource("list", "asset", category, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.WrapResource("list", "asset", category, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("list", "asset", category, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Count returns the total number of stored assets.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&count); err != nil {
		return 0, errors.WrapResource("count", "asset", "", err)
	}
	return count, nil
}

// ForEach streams every asset to fn in deterministic order. Iteration
// stops on the first error fn returns.
func (s *Store) ForEach(ctx context.Context, fn func(Asset) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, item_key, mime_type, data FROM assets
		ORDER BY category, item_key
	`)
	if err != nil {
		return errors.WrapResource("list", "asset", "", err)
	}
	defer rows.Close()

	for rows.Next() {
		var asset Asset
		if err := rows.Scan(&asset.Category, &asset.Key, &asset.MimeType, &asset.Data); err != nil {
			return errors.WrapResource("list", "asset", "", err)
		}
		if err := fn(asset); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Clear removes every stored asset.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assets`); err != nil {
		return errors.WrapResource("delete", "asset", "", err)
	}
	return nil
}

// RemoveItemAsset deletes the inventory photo of an item. It satisfies
// the reconcile.AssetRemover interface.
func (s *Store) RemoveItemAsset(key string) error {
	return s.Delete(context.Background(), CategoryInventory, key)
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty BOOLEAN NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	type migration struct {
		version int
		name    string
	}

	var migrations []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		parts := strings.Split(name, "_")
		if len(parts) < 2 {
			continue
		}
		version := 0
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			continue
		}
		migrations = append(migrations, migration{version: version, name: name})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })

	for _, m := range migrations {
		var applied int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied > 0 {
			continue
		}

		data, err := fs.ReadFile(migrationsFS, "migrations/"+m.name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", m.name, err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	return nil
}
