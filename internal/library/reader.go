package library

import (
	"context"
	"errors"
	"fmt"

	"longbox/internal/archive"
	"longbox/internal/logging"
	"longbox/internal/store"
)

// Page is one rendered-ready page image.
type Page struct {
	Data     []byte
	MIMEType string
}

// GetPage resolves page index of a comic, from the page cache when
// possible and by extraction otherwise. Every successful resolution
// records reading progress, so resuming is a side effect of reading
// rather than an explicit save.
func (s *Service) GetPage(ctx context.Context, comicID string, index int) (Page, error) {
	item, err := s.Item(ctx, comicID)
	if err != nil {
		return Page{}, err
	}

	if entry, err := s.store.GetPage(ctx, comicID, index); err != nil {
		return Page{}, err
	} else if entry != nil {
		total, err := s.totalPages(ctx, item)
		if err != nil {
			return Page{}, err
		}
		s.recordProgress(ctx, comicID, index, total)
		return Page{Data: entry.Data, MIMEType: entry.MIMEType}, nil
	}

	session, err := s.session(ctx, item)
	if err != nil {
		return Page{}, err
	}

	page, err := session.LoadPage(index)
	if err != nil {
		return Page{}, fmt.Errorf("comic %s: %w", comicID, err)
	}

	if err := s.store.PutPage(ctx, store.PageEntry{
		ComicID:   comicID,
		PageIndex: index,
		Data:      page.Data,
		MIMEType:  page.MIME,
	}); err != nil {
		// The cache is an optimization; the extracted page is still good.
		s.logger.Warn("page cache write failed",
			logging.FieldComicID, comicID,
			logging.FieldPage, index,
			logging.Error(err),
		)
	} else {
		s.releaseIfFullyCached(ctx, comicID, session)
	}

	s.recordProgress(ctx, comicID, index, session.PageCount())
	return Page{Data: page.Data, MIMEType: page.MIME}, nil
}

// Progress returns reading metadata for a comic, or nil when it has never
// been opened.
func (s *Service) Progress(ctx context.Context, comicID string) (*store.ComicMetadata, error) {
	return s.store.GetMetadata(ctx, comicID)
}

// SetDisplayFilter stores the reader's display filter for an opened comic.
func (s *Service) SetDisplayFilter(ctx context.Context, comicID, filter string) error {
	return s.store.SetDisplayFilter(ctx, comicID, filter)
}

// session returns the live archive session for an item, reopening it from
// the blob store when the comic was not opened in this process yet.
func (s *Service) session(ctx context.Context, item *store.Item) (*archive.Session, error) {
	s.mu.Lock()
	if session, ok := s.sessions[item.ID]; ok {
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()

	data, err := s.store.GetBlob(ctx, item.ContentHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("comic %s references hash %s with no blob: %w",
				item.ID, item.ContentHash, store.ErrConsistency)
		}
		return nil, err
	}

	session, err := archive.Open(item.Name, data)
	if err != nil {
		return nil, fmt.Errorf("reopen comic %s: %w", item.ID, err)
	}

	s.mu.Lock()
	// A concurrent reopen may have won; keep the first session so page
	// memoization is shared.
	if existing, ok := s.sessions[item.ID]; ok {
		session = existing
	} else {
		s.sessions[item.ID] = session
	}
	s.mu.Unlock()
	return session, nil
}

// releaseIfFullyCached drops a comic's session once every page sits in the
// page cache. The session holds the full archive bytes plus its loaded
// pages, and with the whole comic cached it will never be consulted again.
// A later cache eviction simply reopens it from the blob.
func (s *Service) releaseIfFullyCached(ctx context.Context, comicID string, session *archive.Session) {
	cached, err := s.store.PageCount(ctx, comicID)
	if err != nil || cached < session.PageCount() {
		return
	}
	s.mu.Lock()
	delete(s.sessions, comicID)
	s.mu.Unlock()
	s.logger.Debug("released fully cached session", logging.FieldComicID, comicID)
}

// totalPages resolves the page count for progress updates on a cache hit,
// preferring existing metadata over reopening the archive.
func (s *Service) totalPages(ctx context.Context, item *store.Item) (int, error) {
	meta, err := s.store.GetMetadata(ctx, item.ID)
	if err != nil {
		return 0, err
	}
	if meta != nil && meta.TotalPages > 0 {
		return meta.TotalPages, nil
	}
	session, err := s.session(ctx, item)
	if err != nil {
		return 0, err
	}
	return session.PageCount(), nil
}

func (s *Service) recordProgress(ctx context.Context, comicID string, index, total int) {
	if err := s.store.SaveProgress(ctx, comicID, index, total); err != nil {
		s.logger.Warn("progress update failed",
			logging.FieldComicID, comicID,
			logging.FieldPage, index,
			logging.Error(err),
		)
	}
	if err := s.store.TouchItem(ctx, comicID); err != nil {
		s.logger.Warn("recent-activity bump failed",
			logging.FieldComicID, comicID,
			logging.Error(err),
		)
	}
}
