package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const metadataColumns = "comic_id, current_page, total_pages, last_read, display_filter, record_version"

// GetMetadata fetches progress metadata for a comic. Returns (nil, nil)
// when the comic has never been opened.
func (s *Store) GetMetadata(ctx context.Context, comicID string) (*ComicMetadata, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+metadataColumns+` FROM comic_metadata WHERE comic_id = ?`, comicID)
	meta, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return s.upgradeMetadata(ctx, meta)
}

// SaveProgress records the current reading position, creating the metadata
// row on first use. currentPage must lie in [0, totalPages).
func (s *Store) SaveProgress(ctx context.Context, comicID string, currentPage, totalPages int) error {
	if totalPages <= 0 {
		return fmt.Errorf("total pages must be positive, got %d", totalPages)
	}
	if currentPage < 0 || currentPage >= totalPages {
		return fmt.Errorf("current page %d out of range [0,%d)", currentPage, totalPages)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO comic_metadata (comic_id, current_page, total_pages, last_read, record_version)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(comic_id) DO UPDATE SET
             current_page = excluded.current_page,
             total_pages = excluded.total_pages,
             last_read = excluded.last_read`,
		comicID,
		currentPage,
		totalPages,
		formatTime(time.Now().UTC()),
		metadataRecordVersion,
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// SetDisplayFilter stores the reader's display filter preference for a
// comic that has metadata.
func (s *Store) SetDisplayFilter(ctx context.Context, comicID, filter string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE comic_metadata SET display_filter = ? WHERE comic_id = ?`,
		nullableString(filter),
		comicID,
	)
	if err != nil {
		return fmt.Errorf("set display filter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set display filter: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("metadata for comic %s: %w", comicID, ErrNotFound)
	}
	return nil
}

func scanMetadata(scanner interface{ Scan(dest ...any) error }) (*ComicMetadata, error) {
	var (
		comicID       string
		currentPage   int
		totalPages    int
		lastReadRaw   sql.NullString
		displayFilter sql.NullString
		recordVersion int
	)

	if err := scanner.Scan(
		&comicID,
		&currentPage,
		&totalPages,
		&lastReadRaw,
		&displayFilter,
		&recordVersion,
	); err != nil {
		return nil, err
	}

	meta := &ComicMetadata{
		ComicID:       comicID,
		CurrentPage:   currentPage,
		TotalPages:    totalPages,
		DisplayFilter: displayFilter.String,
		RecordVersion: recordVersion,
	}
	if lastReadRaw.Valid {
		if lastRead, err := parseTimeString(lastReadRaw.String); err == nil {
			meta.LastRead = lastRead
		}
	}
	return meta, nil
}

// upgradeMetadata applies row-level transitions lazily on read. Version 1
// rows predate display_filter; the column default already covers them, so
// the transition just stamps the version.
func (s *Store) upgradeMetadata(ctx context.Context, meta *ComicMetadata) (*ComicMetadata, error) {
	if meta == nil || meta.RecordVersion >= metadataRecordVersion {
		return meta, nil
	}

	meta.RecordVersion = metadataRecordVersion
	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE comic_metadata SET record_version = ? WHERE comic_id = ?`,
		meta.RecordVersion,
		meta.ComicID,
	); err != nil {
		return nil, fmt.Errorf("upgrade metadata record: %w", err)
	}
	return meta, nil
}
