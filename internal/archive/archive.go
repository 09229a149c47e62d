// Package archive exports fetched posts to a local sqlite file. The
// file is a terminal artifact: glint only ever writes it, nothing in
// the pipeline reads archived rows back.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"

	"github.com/glintlabs/glint/internal/post"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Archive is a write-only sqlite exporter.
type Archive struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the archive file, applying the schema.
func Open(path string) (*Archive, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("archive: path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Archive{db: db, now: time.Now}, nil
}

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Export writes posts to the archive, skipping rows already present for
// the same platform and URL, and returns how many were new.
func (a *Archive) Export(ctx context.Context, posts []post.Post) (int, error) {
	if a == nil || a.db == nil {
		return 0, errors.New("archive is not initialized")
	}
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	exportedAt := a.now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, p := range posts {
		media, err := json.Marshal(p.MediaURLs)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal media urls: %w", err)
		}
		categories, err := json.Marshal(p.Categories)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal categories: %w", err)
		}
		metadata, err := json.Marshal(p.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal metadata: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO posts (platform, source, url, content, posted_at, media_urls, categories, metadata, exported_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(platform, url) DO NOTHING`,
			p.Platform, p.Source, p.URL, p.Content,
			p.PostedAt.UTC().Format(time.RFC3339),
			string(media), string(categories), string(metadata), exportedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert %s: %w", p.URL, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply schema: %w", err)
	}

	var versionStr string
	err = tx.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&versionStr)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx, "INSERT INTO metadata(key, value) VALUES('schema_version', ?)", strconv.Itoa(schemaVersion)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert schema version: %w", err)
		}
		return tx.Commit()
	}
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("read schema version: %w", err)
	}

	version, err := strconv.Atoi(versionStr)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("parse schema version: %w", err)
	}
	if version > schemaVersion {
		_ = tx.Rollback()
		return fmt.Errorf("archive schema version %d is newer than supported %d", version, schemaVersion)
	}

	return tx.Commit()
}
