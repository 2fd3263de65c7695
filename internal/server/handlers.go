package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kimberlite-group/matprofile/internal/ingest"
	"github.com/kimberlite-group/matprofile/internal/model"
	"github.com/kimberlite-group/matprofile/internal/store"
)

// maxUploadBytes caps bulk upload size. Code lists are small; anything
// larger is almost certainly the wrong file.
const maxUploadBytes = 10 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type lookupRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	lookup, err := s.svc.Generate(r.Context(), req.Code)
	if err != nil {
		if _, normErr := model.NormalizeCode(req.Code); normErr != nil {
			writeError(w, http.StatusUnprocessableEntity, normErr.Error())
			return
		}
		zap.L().Error("lookup failed", zap.String("code", req.Code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, lookup)
}

type bulkRequest struct {
	Codes []string `json:"codes"`
}

type bulkResponse struct {
	BatchID string         `json:"batch_id"`
	Results []model.Lookup `json:"results"`
}

// handleBulk accepts either a multipart file upload (field "file", CSV or
// XLSX) or a JSON body with a codes array.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	codes, ok := s.readBulkCodes(w, r)
	if !ok {
		return
	}

	batchID, results, err := s.svc.GenerateBulk(r.Context(), codes)
	if err != nil {
		zap.L().Error("bulk profiling failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "bulk profiling failed")
		return
	}

	writeJSON(w, http.StatusOK, bulkResponse{BatchID: batchID, Results: results})
}

// readBulkCodes extracts the code list from the request, writing the error
// response itself when the upload is unusable.
func (s *Server) readBulkCodes(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return nil, false
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return nil, false
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read upload")
			return nil, false
		}

		codes, err := ingest.ReadCodes(data, header.Filename, s.maxCodes)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return nil, false
		}
		return codes, true
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if len(req.Codes) == 0 {
		writeError(w, http.StatusBadRequest, "codes is required")
		return nil, false
	}
	if s.maxCodes > 0 && len(req.Codes) > s.maxCodes {
		writeError(w, http.StatusUnprocessableEntity, "too many codes")
		return nil, false
	}
	return req.Codes, true
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter := store.LookupFilter{
		Source:  model.Source(r.URL.Query().Get("source")),
		Code:    r.URL.Query().Get("code"),
		BatchID: r.URL.Query().Get("batch_id"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}

	lookups, err := s.store.ListLookups(r.Context(), filter)
	if err != nil {
		zap.L().Error("history query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	if lookups == nil {
		lookups = []model.Lookup{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"lookups": lookups})
}

// handleGetProfile returns the cached profile for a code. Profiles enter the
// cache through lookups; a miss here is a 404, not a generation trigger.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	code, err := model.NormalizeCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p, err := s.store.GetCachedProfile(r.Context(), code)
	if err != nil {
		zap.L().Error("profile read failed", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "profile read failed")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "no profile for "+code)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
