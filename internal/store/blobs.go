package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PutBlob stores content under its digest: a new row starts at ref_count 1,
// an existing row is incremented. One statement, so concurrent puts of the
// same hash cannot lose an increment.
func (s *Store) PutBlob(ctx context.Context, hash string, data []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO blobs (hash, data, ref_count) VALUES (?, ?, 1)
         ON CONFLICT(hash) DO UPDATE SET ref_count = ref_count + 1`,
		hash,
		data,
	)
	if err != nil {
		return fmt.Errorf("put blob: %w", err)
	}
	return nil
}

// GetBlob returns the bytes stored under hash, or ErrNotFound.
func (s *Store) GetBlob(ctx context.Context, hash string) ([]byte, error) {
	var data []byte
	row := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE hash = ?`, hash)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("blob %s: %w", hash, ErrNotFound)
		}
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return data, nil
}

// ReleaseBlob drops one reference and deletes the row when the count hits
// zero. Releasing an unknown hash is a caller defect and reports
// ErrConsistency.
func (s *Store) ReleaseBlob(ctx context.Context, hash string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return releaseBlobTx(ctx, tx, hash)
	})
}

func releaseBlobTx(ctx context.Context, tx *sql.Tx, hash string) error {
	res, err := tx.ExecContext(ctx, `UPDATE blobs SET ref_count = ref_count - 1 WHERE hash = ? AND ref_count > 0`, hash)
	if err != nil {
		return fmt.Errorf("decrement blob ref: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement blob ref: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("release of unknown or zero-ref blob %s: %w", hash, ErrConsistency)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM blobs WHERE hash = ? AND ref_count = 0`, hash); err != nil {
		return fmt.Errorf("delete drained blob: %w", err)
	}
	return nil
}

// BlobRefCount returns the reference count for hash, or ErrNotFound when no
// row exists.
func (s *Store) BlobRefCount(ctx context.Context, hash string) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT ref_count FROM blobs WHERE hash = ?`, hash)
	if err := row.Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("blob %s: %w", hash, ErrNotFound)
		}
		return 0, fmt.Errorf("blob ref count: %w", err)
	}
	return count, nil
}
