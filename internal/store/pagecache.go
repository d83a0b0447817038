package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func pageCacheKey(comicID string, pageIndex int) string {
	return fmt.Sprintf("%s-%d", comicID, pageIndex)
}

// GetPage returns the cached extraction for (comicID, pageIndex), or
// (nil, nil) when the page has not been extracted yet.
func (s *Store) GetPage(ctx context.Context, comicID string, pageIndex int) (*PageEntry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT comic_id, page_index, data, mime_type, cached_at FROM page_cache WHERE cache_key = ?`,
		pageCacheKey(comicID, pageIndex),
	)

	var (
		entry     PageEntry
		mimeType  sql.NullString
		cachedRaw string
	)
	err := row.Scan(&entry.ComicID, &entry.PageIndex, &entry.Data, &mimeType, &cachedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached page: %w", err)
	}
	entry.MIMEType = mimeType.String
	if cachedAt, err := parseTimeString(cachedRaw); err == nil {
		entry.CachedAt = cachedAt
	}
	return &entry, nil
}

// PutPage caches an extracted page. Entries are immutable: a concurrent
// extraction of the same page keeps the first write and drops the rest.
func (s *Store) PutPage(ctx context.Context, entry PageEntry) error {
	if len(entry.Data) == 0 {
		return errors.New("page data is empty")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO page_cache (cache_key, comic_id, page_index, data, mime_type, cached_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		pageCacheKey(entry.ComicID, entry.PageIndex),
		entry.ComicID,
		entry.PageIndex,
		entry.Data,
		nullableString(entry.MIMEType),
		formatTime(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("put cached page: %w", err)
	}
	return nil
}

// PageCount returns how many pages of a comic are cached.
func (s *Store) PageCount(ctx context.Context, comicID string) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM page_cache WHERE comic_id = ?`, comicID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count cached pages: %w", err)
	}
	return count, nil
}
