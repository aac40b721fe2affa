package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reviewpulse/internal/app"
	"reviewpulse/internal/domain"
)

type Handlers struct {
	Client   domain.AnalysisClient
	Browse   *app.BrowseService
	Dash     *app.DashboardService
	PageSize int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/analyses", h.analyzeReview)
	s.mux.Post("/v1/analyses/batch", h.uploadBatch)
	s.mux.Get("/v1/analyses/{id}", h.fullAnalysis)
	s.mux.Get("/v1/reviews", h.listReviews)
	s.mux.Get("/v1/dashboard", h.dashboard)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) analyzeReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected JSON with text and source")
		return
	}

	p, err := app.NewPipeline(h.Client)
	if err != nil {
		log.Error().Err(err).Msg("pipeline construction failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	out, err := p.Run(r.Context(), req.Text, req.Source)
	if err != nil {
		if errors.Is(err, app.ErrEmptyReview) {
			writeProblem(w, http.StatusUnprocessableEntity, "Empty Review", "review text must not be empty")
			return
		}
		var se *app.StageError
		if errors.As(err, &se) {
			// cause stays in the logs only
			log.Warn().Str("run_id", p.RunID()).Str("stage", se.Stage).Err(se).Msg("analysis failed")
			writeProblem(w, http.StatusBadGateway, "Analysis Failed", se.UserMessage())
			return
		}
		log.Error().Err(err).Msg("analysis failed")
		writeProblem(w, http.StatusBadGateway, "Analysis Failed", "An error occurred while analyzing the review. Please try again.")
		return
	}

	w.Header().Set("Location", "/v1/analyses/"+strconv.FormatInt(out.Review.ID, 10))
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) uploadBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Upload", "expected multipart form with a file field")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Upload", "file field is required")
		return
	}
	defer f.Close()

	rc, err := app.UploadBatch(r.Context(), h.Client, hdr.Filename, f)
	if err != nil {
		if errors.Is(err, app.ErrNotCSV) {
			writeProblem(w, http.StatusUnprocessableEntity, "Unsupported File Type", "only CSV files are supported")
			return
		}
		log.Warn().Err(err).Msg("batch upload failed")
		writeProblem(w, http.StatusBadGateway, "Upload Failed", "An error occurred while uploading the file. Please try again.")
		return
	}
	writeJSON(w, http.StatusAccepted, rc)
}

func (h *Handlers) fullAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	out, err := h.Browse.FullAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "analysis not found")
			return
		}
		log.Warn().Int64("review_id", id).Err(err).Msg("full analysis fetch failed")
		writeProblem(w, http.StatusBadGateway, "Analysis Unavailable", "could not load the analysis")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if ps := q.Get("page"); ps != "" {
		p, err := strconv.Atoi(ps)
		if err != nil || p < 1 {
			writeProblem(w, http.StatusBadRequest, "Invalid page", "page must be a positive integer")
			return
		}
		page = p
	}
	size := h.PageSize
	if ss := q.Get("size"); ss != "" {
		s, err := strconv.Atoi(ss)
		if err != nil || s <= 0 || s > 100 {
			writeProblem(w, http.StatusBadRequest, "Invalid size", "size must be an integer between 1 and 100")
			return
		}
		size = s
	}

	query := app.Query{Text: q.Get("q")}
	if s := q.Get("sentiment"); s != "" {
		label, err := domain.ParseLabel(s)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid sentiment", "sentiment must be positive, neutral or negative")
			return
		}
		query.Label = &label
	}

	pg, err := h.Browse.LoadPage(r.Context(), page, size)
	if err != nil {
		log.Warn().Err(err).Msg("review page load failed")
		writeProblem(w, http.StatusBadGateway, "Reviews Unavailable", "could not load reviews")
		return
	}
	fp := app.Apply(pg.Items, query, size)

	writeJSON(w, http.StatusOK, struct {
		Items      []domain.EnrichedReview `json:"items"`
		PageCount  int                     `json:"page_count"`
		Generation uint64                  `json:"generation"`
	}{Items: fp.Items, PageCount: fp.PageCount, Generation: pg.Generation})
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Dash.Summary(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("dashboard summary failed")
		writeProblem(w, http.StatusBadGateway, "Dashboard Unavailable", "could not load dashboard data")
		return
	}

	etag, body := calcETagAndBody(sum)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard body")
	}
}
