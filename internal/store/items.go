package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const itemColumns = "id, name, content_hash, size, mime_type, thumbnail, created_at, updated_at, record_version"

// InsertItemWithBlob persists the archive bytes and the item row in one
// transaction, so a stored item always resolves to a live blob. The item's
// ID and timestamps are assigned here.
func (s *Store) InsertItemWithBlob(ctx context.Context, item *Item, data []byte) (*Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	if item.ContentHash == "" {
		return nil, errors.New("item content hash is required")
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO blobs (hash, data, ref_count) VALUES (?, ?, 1)
             ON CONFLICT(hash) DO UPDATE SET ref_count = ref_count + 1`,
			item.ContentHash,
			data,
		); err != nil {
			return fmt.Errorf("put blob: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO items (id, name, content_hash, size, mime_type, thumbnail, created_at, updated_at, record_version)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id,
			item.Name,
			item.ContentHash,
			item.Size,
			nullableString(item.MIMEType),
			item.Thumbnail,
			formatTime(now),
			formatTime(now),
			itemRecordVersion,
		); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetItem(ctx, id)
}

// GetItem fetches an item by identifier. Returns (nil, nil) when absent.
func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return s.upgradeItem(ctx, item)
}

// FindItemByHash returns the item referencing a content hash via the
// unique content_hash index. Returns (nil, nil) on a miss; this lookup is
// the ingestion dedup fast path and never scans.
func (s *Store) FindItemByHash(ctx context.Context, hash string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE content_hash = ?`, hash)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by hash: %w", err)
	}
	return s.upgradeItem(ctx, item)
}

// TouchItem bumps updated_at so the item surfaces in recent ordering.
func (s *Store) TouchItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE items SET updated_at = ? WHERE id = ?`,
		formatTime(time.Now().UTC()),
		id,
	)
	if err != nil {
		return fmt.Errorf("touch item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRecent returns up to limit items ordered by updated_at descending.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*Item, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY updated_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		item, err = s.upgradeItem(ctx, item)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id            string
		name          string
		contentHash   string
		size          int64
		mimeType      sql.NullString
		thumbnail     []byte
		createdRaw    string
		updatedRaw    string
		recordVersion int
	)

	if err := scanner.Scan(
		&id,
		&name,
		&contentHash,
		&size,
		&mimeType,
		&thumbnail,
		&createdRaw,
		&updatedRaw,
		&recordVersion,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:            id,
		Name:          name,
		ContentHash:   contentHash,
		Size:          size,
		MIMEType:      mimeType.String,
		Thumbnail:     thumbnail,
		RecordVersion: recordVersion,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

// upgradeItem applies row-level schema transitions lazily on read. Version
// 1 rows predate the mime_type column being populated; version 2 derives
// it from the filename.
func (s *Store) upgradeItem(ctx context.Context, item *Item) (*Item, error) {
	if item == nil || item.RecordVersion >= itemRecordVersion {
		return item, nil
	}

	if item.MIMEType == "" {
		item.MIMEType = ContainerMIME(item.Name)
	}
	item.RecordVersion = itemRecordVersion

	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE items SET mime_type = ?, record_version = ? WHERE id = ?`,
		nullableString(item.MIMEType),
		item.RecordVersion,
		item.ID,
	); err != nil {
		return nil, fmt.Errorf("upgrade item record: %w", err)
	}
	return item, nil
}

// ContainerMIME maps a comic filename to its container MIME type.
func ContainerMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cbz", ".zip":
		return "application/vnd.comicbook+zip"
	case ".cbr", ".rar":
		return "application/vnd.comicbook-rar"
	default:
		return "application/octet-stream"
	}
}
