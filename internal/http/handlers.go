package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Tim1119/school-results-server/internal/repository/models"
	"github.com/Tim1119/school-results-server/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheDuration  = 10 * time.Minute
	defaultRequestTimeout = 10 * time.Second
	batchRequestTimeout   = 60 * time.Second
)

type CacheKeyType string

const (
	cacheKeyGradingScale CacheKeyType = "http:grading_scale"
	cacheKeyGroupRanking CacheKeyType = "http:group_ranking"
)

type Handlers struct {
	results  ResultService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

// NewHandlers initializes the HTTP handlers.
func NewHandlers(results ResultService, cache Cacher, logger *zap.Logger, ttl time.Duration) *Handlers {
	if results == nil {
		panic("nil ResultService provided to NewHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &Handlers{
		results:  results,
		cache:    cache,
		logger:   logger.Named("http-handler"),
		cacheTTL: ttl,
	}
}

// Register mounts all RPC routes on the given router.
func (h *Handlers) Register(r chi.Router) {
	r.Post("/api/generators/{configID}/generate", h.GenerateClassResults)
	r.Post("/api/results/populate", h.PopulateStudentResult)
	r.Post("/api/assessment-criteria", h.CreateAssessmentCriteria)
	r.Get("/api/settings/grading-scale", h.GetGradingScale)
	r.Get("/api/groups/{groupID}/ranking", h.GetGroupRanking)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response failed", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// handleError maps service errors onto HTTP status codes.
func (h *Handlers) handleError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrConfigNotFound):
		h.logger.Info("config not found", zap.String("op", op), zap.Error(err))
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMissingFilters):
		h.logger.Info("missing filters", zap.String("op", op))
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrUnknownCriteria):
		h.logger.Info("unknown criteria", zap.String("op", op), zap.Error(err))
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNoGroupResults):
		h.logger.Info("no group results", zap.String("op", op))
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", op))
	}
}

// POST /api/generators/{configID}/generate
func (h *Handlers) GenerateClassResults(w http.ResponseWriter, r *http.Request) {
	configID := strings.TrimSpace(chi.URLParam(r, "configID"))
	if configID == "" {
		h.writeError(w, http.StatusBadRequest, "configID required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), batchRequestTimeout)
	defer cancel()

	summary, err := h.results.GenerateClassResults(ctx, configID)
	if err != nil {
		h.handleError(w, "GenerateClassResults", err)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

type populateRequest struct {
	Student         string `json:"student"`
	AssessmentGroup string `json:"assessment_group"`
	AcademicYear    string `json:"academic_year"`
	AcademicTerm    string `json:"academic_term"`
}

type populateResponse struct {
	Result  *models.TermResult `json:"result"`
	Notices []string           `json:"notices,omitempty"`
}

// POST /api/results/populate
func (h *Handlers) PopulateStudentResult(w http.ResponseWriter, r *http.Request) {
	var req populateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if req.Student == "" || req.AssessmentGroup == "" || req.AcademicYear == "" || req.AcademicTerm == "" {
		h.writeError(w, http.StatusUnprocessableEntity,
			"student, assessment_group, academic_year and academic_term are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	doc := &models.TermResult{
		Student:         req.Student,
		AssessmentGroup: req.AssessmentGroup,
		AcademicYear:    req.AcademicYear,
		AcademicTerm:    req.AcademicTerm,
	}
	notices, err := h.results.PopulateStudentResult(ctx, doc)
	if err != nil {
		h.handleError(w, "PopulateStudentResult", err)
		return
	}

	h.writeJSON(w, http.StatusOK, populateResponse{Result: doc, Notices: notices})
}

type createCriteriaRequest struct {
	CriteriaName string `json:"criteria_name"`
}

// POST /api/assessment-criteria
func (h *Handlers) CreateAssessmentCriteria(w http.ResponseWriter, r *http.Request) {
	var req createCriteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.CriteriaName) == "" {
		h.writeError(w, http.StatusUnprocessableEntity, "criteria_name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	if err := h.results.CreateAssessmentCriteria(ctx, req.CriteriaName); err != nil {
		h.handleError(w, "CreateAssessmentCriteria", err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// GET /api/settings/grading-scale
func (h *Handlers) GetGradingScale(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	scale, err := FindAndCache(ctx, h.cache, &h.sfGroup, string(cacheKeyGradingScale), h.cacheTTL, h.logger,
		func(fetchCtx context.Context) (service.GradingScaleView, error) {
			return h.results.GetGradingScale(fetchCtx)
		})
	if err != nil {
		h.handleError(w, "GetGradingScale", err)
		return
	}

	h.writeJSON(w, http.StatusOK, scale)
}

// GET /api/groups/{groupID}/ranking
func (h *Handlers) GetGroupRanking(w http.ResponseWriter, r *http.Request) {
	groupID := strings.TrimSpace(chi.URLParam(r, "groupID"))
	if groupID == "" {
		h.writeError(w, http.StatusBadRequest, "groupID required")
		return
	}

	q := r.URL.Query()
	assessmentGroup := q.Get("assessment_group")
	year := q.Get("academic_year")
	term := q.Get("academic_term")
	if assessmentGroup == "" || year == "" || term == "" {
		h.writeError(w, http.StatusUnprocessableEntity,
			"assessment_group, academic_year and academic_term query parameters are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	cacheKey := rankingKey(cacheKeyGroupRanking, groupID, assessmentGroup, year, term)

	ranking, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger,
		func(fetchCtx context.Context) ([]service.RankedStudent, error) {
			return h.results.GetGroupRanking(fetchCtx, groupID, assessmentGroup, year, term)
		})
	if err != nil {
		h.handleError(w, "GetGroupRanking", err)
		return
	}

	h.writeJSON(w, http.StatusOK, ranking)
}

func rankingKey(prefix CacheKeyType, groupID, assessmentGroup, year, term string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", prefix, groupID, assessmentGroup, year, term)
}
