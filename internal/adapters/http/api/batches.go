package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/podium/internal/adapters/extraction"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
)

// Multipart form fields of a batch upload.
const (
	fieldImages       = "images"
	fieldMaxTeams     = "max_teams"
	fieldScoring      = "scoring"
	fieldLastModified = "last_modified" // unix milliseconds, one per image
)

type submitResponse struct {
	SessionID string         `json:"session_id"`
	Status    service.Status `json:"status"`
}

// BatchHandler accepts screenshot uploads.
type BatchHandler struct {
	deps           Dependencies
	maxUploadBytes int64
	logger         logger.Logger
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps Dependencies, maxUploadBytes int64, l logger.Logger) *BatchHandler {
	return &BatchHandler{deps: deps, maxUploadBytes: maxUploadBytes, logger: l}
}

// HandleSubmit handles POST /v1/competitions/{competitionID}/batches.
func (h *BatchHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req, err := h.parse(r)
	if err != nil {
		writeFailure(w, err)
		return
	}

	sess, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		h.logger.Warn(r.Context(), "batch rejected", logger.String("competition", req.CompetitionID), logger.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{SessionID: sess.ID, Status: sess.Status})
}

func (h *BatchHandler) parse(r *http.Request) (service.BatchRequest, error) {
	req := service.BatchRequest{CompetitionID: chi.URLParam(r, "competitionID")}

	if raw := strings.TrimSpace(r.FormValue(fieldMaxTeams)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %s: %w", ErrBadRequest, fieldMaxTeams, err)
		}
		req.MaxTeams = n
	}

	if raw := strings.TrimSpace(r.FormValue(fieldScoring)); raw != "" {
		var rules scoring.Rules
		if err := json.Unmarshal([]byte(raw), &rules); err != nil {
			return req, fmt.Errorf("%w: %s: %w", ErrBadRequest, fieldScoring, err)
		}
		if len(rules.PlacementPoints) == 0 {
			return req, fmt.Errorf("%w: %s: placementPoints is empty", ErrBadRequest, fieldScoring)
		}
		req.Rules = &rules
	}

	files := r.MultipartForm.File[fieldImages]
	if len(files) == 0 {
		return req, fmt.Errorf("%w: no %s uploaded", ErrBadRequest, fieldImages)
	}
	stamps := r.MultipartForm.Value[fieldLastModified]
	for i, fh := range files {
		img, err := readImage(fh)
		if err != nil {
			return req, err
		}
		if i < len(stamps) {
			ms, err := strconv.ParseInt(stamps[i], 10, 64)
			if err != nil {
				return req, fmt.Errorf("%w: %s[%d]: %w", ErrBadRequest, fieldLastModified, i, err)
			}
			img.ModTime = time.UnixMilli(ms).UTC()
		}
		req.Images = append(req.Images, img)
	}
	return req, nil
}

func readImage(fh *multipart.FileHeader) (extraction.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return extraction.Image{}, fmt.Errorf("%w: open %s: %w", ErrBadRequest, fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return extraction.Image{}, fmt.Errorf("%w: read %s: %w", ErrBadRequest, fh.Filename, err)
	}
	mime := fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return extraction.Image{
		Name:     fh.Filename,
		Size:     fh.Size,
		MIMEType: mime,
		Data:     data,
	}, nil
}
