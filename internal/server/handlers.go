package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sjsage522/socialscraper/internal/export"
	"sjsage522/socialscraper/internal/record"
	apperrors "sjsage522/socialscraper/pkg/errors"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

type fetchTikTokRequest struct {
	Username string `json:"username"`
}

type fetchYouTubeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"uptime":   s.now().Sub(s.started).Seconds(),
		"records":  s.store.Len(),
		"capacity": s.store.Capacity(),
	})
}

// POST /api/fetch/tiktok
func (s *Server) handleFetchTikTok(w http.ResponseWriter, r *http.Request) {
	var req fetchTikTokRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	rec, err := s.fetcher.FetchTikTok(r.Context(), req.Username)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"data":     rec.Items,
		"recordId": rec.ID,
	})
}

// POST /api/fetch/youtube
func (s *Server) handleFetchYouTube(w http.ResponseWriter, r *http.Request) {
	var req fetchYouTubeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	rec, err := s.fetcher.FetchYouTube(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var item record.RawItem
	if len(rec.Items) > 0 {
		item = rec.Items[0]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"data":     item,
		"recordId": rec.ID,
	})
}

// GET /api/history?platform=
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.filtered(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(records),
		"data":    records,
	})
}

// GET /api/history/{id}
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rec})
}

// DELETE /api/history/{id}
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.store.Remove(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !removed {
		s.writeError(w, apperrors.NewNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Record deleted"})
}

// DELETE /api/history
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "History cleared"})
}

// GET /api/export/json?platform=
func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "json", "application/json", export.ToJSON)
}

// GET /api/export/csv?platform=
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "csv", "text/csv; charset=utf-8", export.ToCSV)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, format, contentType string, encode func([]record.ScrapedRecord) ([]byte, error)) {
	records, err := s.filtered(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body, err := encode(records)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(format, s.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// filtered lists the records matching the optional platform query parameter
func (s *Server) filtered(r *http.Request) ([]record.ScrapedRecord, error) {
	var platform record.Platform
	if q := r.URL.Query().Get("platform"); q != "" {
		p, err := record.ParsePlatform(q)
		if err != nil {
			return nil, apperrors.NewValidation(err.Error())
		}
		platform = p
	}
	return s.store.List(platform), nil
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && err != io.EOF {
		return apperrors.NewValidation("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a client-safe body. Details of
// server-side failures are logged, never returned.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	errType := apperrors.TypeOf(err)
	code := apperrors.HTTPStatus(errType)

	body := map[string]any{"error": apperrors.PublicMessage(err)}
	if code == http.StatusRequestTimeout {
		body["snapshotId"] = apperrors.JobIDOf(err)
	}

	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("type", string(errType)).Msg("Request failed")
	} else {
		s.log.Debug().Err(err).Int("status", code).Msg("Request rejected")
	}
	writeJSON(w, code, body)
}
