package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"longbox/internal/api"
	"longbox/internal/config"
	"longbox/internal/library"
	"longbox/internal/logging"
)

// multipartMemoryLimit bounds how much of an upload stays in memory before
// net/http spills the rest to temp files.
const multipartMemoryLimit = 32 << 20

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	library *library.Service

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(cfg.Paths.APIBind),
		logger:  logger,
		daemon:  d,
		library: d.library,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/storage", srv.handleStorage)
	mux.HandleFunc("/api/comics", srv.handleComics)
	mux.HandleFunc("/api/comics/", srv.handleComic)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleStorage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	estimate, err := s.library.StorageEstimate(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StorageView{
		UsedBytes:  estimate.UsedBytes,
		QuotaBytes: estimate.QuotaBytes,
	})
}

func (s *apiServer) handleComics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listComics(w, r)
	case http.MethodPost:
		s.uploadComic(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

func (s *apiServer) listComics(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.library.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ComicListResponse{Items: api.FromItems(items)})
}

func (s *apiServer) uploadComic(w http.ResponseWriter, r *http.Request) {
	// Overhead headroom on top of the configured limit covers the
	// multipart framing; the service enforces the exact byte limit.
	if limit := s.daemon.cfg.MaxUploadBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	}
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit", string(library.KindUploadTooLarge))
			return
		}
		s.writeError(w, http.StatusBadRequest, "expected multipart form upload", "")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, `multipart field "file" is required`, "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read upload", "")
		return
	}

	item, err := s.library.Ingest(r.Context(), library.Upload{
		Name:     header.Filename,
		Size:     header.Size,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.ComicResponse{Item: api.FromItem(item)})
}

// handleComic routes /api/comics/{id}, /api/comics/{id}/pages/{n}, and
// /api/comics/{id}/filter.
func (s *apiServer) handleComic(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/comics/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "comic not found", string(library.KindNotFound))
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.showComic(w, r, id)
		case http.MethodDelete:
			s.deleteComic(w, r, id)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		}
	case len(parts) == 3 && parts[1] == "pages":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil || index < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid page index", "")
			return
		}
		s.servePage(w, r, id, index)
	case len(parts) == 2 && parts[1] == "filter":
		if r.Method != http.MethodPut {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}
		s.setFilter(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "not found", "")
	}
}

func (s *apiServer) showComic(w http.ResponseWriter, r *http.Request, id string) {
	item, err := s.library.Item(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	meta, err := s.library.Progress(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ComicResponse{
		Item:     api.FromItem(item),
		Progress: api.FromMetadata(meta),
	})
}

func (s *apiServer) deleteComic(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.library.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) servePage(w http.ResponseWriter, r *http.Request, id string, index int) {
	page, err := s.library.GetPage(r.Context(), id, index)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if page.MIMEType != "" {
		w.Header().Set("Content-Type", page.MIMEType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(page.Data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := w.Write(page.Data); err != nil {
		s.log().Warn("page write failed", logging.FieldComicID, id, logging.Error(err))
	}
}

func (s *apiServer) setFilter(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		Filter string `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body", "")
		return
	}
	if err := s.library.SetDisplayFilter(r.Context(), id, payload.Filter); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps a library failure onto an HTTP status through its
// classification, keeping internal detail out of client responses.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	kind := library.KindOf(err)
	status := http.StatusInternalServerError
	message := "internal error"

	switch kind {
	case library.KindUnsupportedFormat:
		status, message = http.StatusUnsupportedMediaType, "unsupported comic format"
	case library.KindArchiveOpen:
		status, message = http.StatusUnprocessableEntity, "archive cannot be opened"
	case library.KindEmptyArchive:
		status, message = http.StatusUnprocessableEntity, "archive contains no pages"
	case library.KindExtraction:
		status, message = http.StatusUnprocessableEntity, "page cannot be extracted"
	case library.KindUploadTooLarge:
		status, message = http.StatusRequestEntityTooLarge, "upload exceeds size limit"
	case library.KindNotFound:
		status, message = http.StatusNotFound, "comic not found"
	}

	if status == http.StatusInternalServerError {
		s.log().Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, message, string(kind))
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message, Kind: kind})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.FieldComponent, "api-server")
	}
	return logging.NewNop()
}
