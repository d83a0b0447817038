package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DeleteComic removes an item together with everything it owns: its
// metadata row, all cached pages (swept via the comic_id index), and one
// reference on its blob. The whole cascade is one transaction, so a
// partial failure can never strand an item whose blob is gone or delete a
// blob another item still references.
func (s *Store) DeleteComic(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var hash string
		row := tx.QueryRowContext(ctx, `SELECT content_hash FROM items WHERE id = ?`, id)
		if err := row.Scan(&hash); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("item %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("read item hash: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM comic_metadata WHERE comic_id = ?`, id); err != nil {
			return fmt.Errorf("delete metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM page_cache WHERE comic_id = ?`, id); err != nil {
			return fmt.Errorf("delete cached pages: %w", err)
		}
		return releaseBlobTx(ctx, tx, hash)
	})
}

// StorageBytes reports the bytes held by blobs, cached pages, and
// thumbnails.
func (s *Store) StorageBytes(ctx context.Context) (StorageStats, error) {
	var stats StorageStats

	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(data)), 0) FROM blobs`)
	if err := row.Scan(&stats.BlobBytes); err != nil {
		return StorageStats{}, fmt.Errorf("sum blob bytes: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(data)), 0) FROM page_cache`)
	if err := row.Scan(&stats.PageCacheBytes); err != nil {
		return StorageStats{}, fmt.Errorf("sum page cache bytes: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(thumbnail)), 0) FROM items WHERE thumbnail IS NOT NULL`)
	if err := row.Scan(&stats.ThumbnailBytes); err != nil {
		return StorageStats{}, fmt.Errorf("sum thumbnail bytes: %w", err)
	}

	return stats, nil
}

// ItemCount returns the number of library items.
func (s *Store) ItemCount(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
