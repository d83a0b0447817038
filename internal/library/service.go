package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"longbox/internal/archive"
	"longbox/internal/config"
	"longbox/internal/hashing"
	"longbox/internal/logging"
	"longbox/internal/store"
	"longbox/internal/thumbnail"
)

// Upload is a raw file handed over by the uploading surface.
type Upload struct {
	Name     string
	Size     int64
	MIMEType string
	Data     []byte
}

// Service coordinates ingestion, reading, and deletion against the store.
type Service struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*archive.Session
}

// New constructs a library service.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:      cfg,
		store:    st,
		logger:   logger.With(logging.FieldComponent, "library"),
		sessions: make(map[string]*archive.Session),
	}
}

// Ingest stores an uploaded comic. Byte-identical content maps onto the
// existing library entry: the dedup lookup runs before any archive parsing
// and a hit returns the existing item with no new persistence.
func (s *Service) Ingest(ctx context.Context, upload Upload) (*store.Item, error) {
	name := strings.TrimSpace(upload.Name)
	if !archive.IsSupported(name) {
		return nil, fmt.Errorf("ingest %q: %w", name, archive.ErrUnsupportedFormat)
	}
	if limit := s.cfg.MaxUploadBytes(); limit > 0 && int64(len(upload.Data)) > limit {
		return nil, fmt.Errorf("ingest %q: %d bytes: %w", name, len(upload.Data), ErrUploadTooLarge)
	}

	hash := hashing.Digest(upload.Data)

	existing, err := s.store.FindItemByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("duplicate upload, reusing item",
			logging.FieldComicID, existing.ID,
			logging.FieldHash, hash,
		)
		return existing, nil
	}

	session, err := archive.Open(name, upload.Data)
	if err != nil {
		return nil, err
	}

	var thumb []byte
	if cover, loadErr := session.LoadPage(0); loadErr != nil {
		s.logger.Warn("cover extraction failed, continuing without thumbnail",
			"name", name, logging.Error(loadErr))
	} else if thumb, err = thumbnail.FromImage(cover.Data, s.cfg.Library.ThumbnailMaxPx); err != nil {
		s.logger.Warn("thumbnail generation failed, continuing without thumbnail",
			"name", name, logging.Error(err))
		thumb = nil
	}

	mimeType := strings.TrimSpace(upload.MIMEType)
	if mimeType == "" {
		mimeType = store.ContainerMIME(name)
	}

	item, err := s.store.InsertItemWithBlob(ctx, &store.Item{
		Name:        name,
		ContentHash: hash,
		Size:        int64(len(upload.Data)),
		MIMEType:    mimeType,
		Thumbnail:   thumb,
	}, upload.Data)
	if err != nil {
		// A concurrent ingest of the same content can win the unique
		// content_hash index; the transaction rolled everything back, so
		// the winner's item is the result.
		if winner, findErr := s.store.FindItemByHash(ctx, hash); findErr == nil && winner != nil {
			s.logger.Info("concurrent duplicate upload, reusing item",
				logging.FieldComicID, winner.ID,
				logging.FieldHash, hash,
			)
			return winner, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.sessions[item.ID] = session
	s.mu.Unlock()

	s.logger.Info("ingested comic",
		logging.FieldComicID, item.ID,
		logging.FieldHash, hash,
		"name", name,
		"pages", session.PageCount(),
		"size", item.Size,
	)
	return item, nil
}

// ListRecent returns up to limit items ordered by most recent activity.
// A non-positive limit falls back to the configured default.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*store.Item, error) {
	if limit <= 0 {
		limit = s.cfg.Library.RecentLimit
	}
	return s.store.ListRecent(ctx, limit)
}

// Item fetches one library entry.
func (s *Service) Item(ctx context.Context, comicID string) (*store.Item, error) {
	item, err := s.store.GetItem(ctx, comicID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("comic %s: %w", comicID, ErrNotFound)
	}
	return item, nil
}

// Delete removes a comic and everything it owns. The blob survives only
// while other items still reference its content.
func (s *Service) Delete(ctx context.Context, comicID string) error {
	s.mu.Lock()
	delete(s.sessions, comicID)
	s.mu.Unlock()

	if err := s.store.DeleteComic(ctx, comicID); err != nil {
		return err
	}
	s.logger.Info("deleted comic", logging.FieldComicID, comicID)
	return nil
}

// SessionCount reports the number of live archive sessions. Sessions pin
// their archive bytes in memory, so the count doubles as a rough memory
// gauge.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close drops all open archive sessions.
func (s *Service) Close() {
	s.mu.Lock()
	s.sessions = make(map[string]*archive.Session)
	s.mu.Unlock()
}
