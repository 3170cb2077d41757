package analyses

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/25eliu/ClubApp/internal/clubs"
	"github.com/25eliu/ClubApp/internal/resumes"
	"github.com/25eliu/ClubApp/internal/shared/server/respond"
)

const maxBatchClubs = 25

// ResumeSource resolves a resume ID to its extracted text.
type ResumeSource interface {
	ResumeText(ctx context.Context, resumeID string) (string, error)
}

// ClubSource resolves club names to directory entries.
type ClubSource interface {
	Get(ctx context.Context, name string) (clubs.Club, error)
	ByNames(ctx context.Context, names []string) ([]clubs.Club, error)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc     *Service
	Resumes ResumeSource
	Clubs   ClubSource
	// Throttle, when set, guards the routes that may call the LLM.
	Throttle gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, resumeSrc ResumeSource, clubSrc ClubSource, throttle gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, Resumes: resumeSrc, Clubs: clubSrc, Throttle: throttle}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/analyses", h.guarded(h.analyze)...)
	rg.POST("/resumes/:id/analyses/batch", h.guarded(h.analyzeBatch)...)
	rg.GET("/resumes/:id/analyses", h.listForResume)
	rg.GET("/resumes/:id/analyses/summary", h.summary)
	rg.GET("/resumes/:id/analyses/export", h.export)
	rg.GET("/resumes/:id/analyses/clubs/:club", h.get)
	rg.DELETE("/resumes/:id/analyses", h.deleteForResume)

	rg.GET("/analyses/recent", h.recent)
	rg.GET("/analyses/stats", h.stats)
	rg.DELETE("/analyses/:id", h.delete)
	rg.POST("/analyses/cleanup", h.cleanup)

	rg.GET("/clubs/:name/analyses/summary", h.clubSummary)
}

func (h *Handler) guarded(fn gin.HandlerFunc) []gin.HandlerFunc {
	if h.Throttle == nil {
		return []gin.HandlerFunc{fn}
	}
	return []gin.HandlerFunc{h.Throttle, fn}
}

type analyzeRequest struct {
	ClubName     string `json:"clubName"`
	ForceRefresh bool   `json:"forceRefresh"`
}

func (h *Handler) analyze(c *gin.Context) {
	resumeID := c.Param("id")
	c.Set("resumeId", resumeID)

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.ClubName = strings.TrimSpace(req.ClubName)
	if req.ClubName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "clubName is required", nil)
		return
	}
	c.Set("clubName", req.ClubName)

	text, ok := h.resumeText(c, resumeID)
	if !ok {
		return
	}
	club, err := h.Clubs.Get(c.Request.Context(), req.ClubName)
	if err != nil {
		writeClubError(c, err)
		return
	}

	result, cached, err := h.Svc.analyze(c.Request.Context(), AnalyzeRequest{
		ResumeID:     resumeID,
		ResumeText:   text,
		Club:         club,
		ForceRefresh: req.ForceRefresh,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("analysisCached", cached)

	respond.JSON(c, http.StatusOK, gin.H{
		"resume_id": resumeID,
		"club_name": club.Name,
		"cached":    cached,
		"result":    result,
	})
}

type batchRequest struct {
	ClubNames    []string `json:"clubNames"`
	ForceRefresh bool     `json:"forceRefresh"`
}

func (h *Handler) analyzeBatch(c *gin.Context) {
	resumeID := c.Param("id")
	c.Set("resumeId", resumeID)

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	names := make([]string, 0, len(req.ClubNames))
	for _, n := range req.ClubNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) > maxBatchClubs {
		respond.Error(c, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("at most %d clubs per batch", maxBatchClubs), nil)
		return
	}

	text, ok := h.resumeText(c, resumeID)
	if !ok {
		return
	}
	clubList, err := h.Clubs.ByNames(c.Request.Context(), names)
	if err != nil {
		writeClubError(c, err)
		return
	}

	batch := h.Svc.AnalyzeMany(c.Request.Context(), resumeID, text, clubList, req.ForceRefresh)
	respond.JSON(c, http.StatusOK, batch)
}

func (h *Handler) listForResume(c *gin.Context) {
	resumeID := c.Param("id")
	c.Set("resumeId", resumeID)
	records, err := h.Svc.ListForResume(c.Request.Context(), resumeID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"analyses": records, "count": len(records)})
}

func (h *Handler) summary(c *gin.Context) {
	resumeID := c.Param("id")
	c.Set("resumeId", resumeID)
	summary, err := h.Svc.SummaryForResume(c.Request.Context(), resumeID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, summary)
}

func (h *Handler) export(c *gin.Context) {
	resumeID := c.Param("id")
	c.Set("resumeId", resumeID)
	payload, err := h.Svc.ExportForResume(c.Request.Context(), resumeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="analyses-%s.json"`, sanitizeHeaderValue(resumeID)))
	c.Data(http.StatusOK, "application/json", payload)
}

func (h *Handler) get(c *gin.Context) {
	resumeID := c.Param("id")
	clubName := c.Param("club")
	c.Set("resumeId", resumeID)
	c.Set("clubName", clubName)
	rec, err := h.Svc.Get(c.Request.Context(), resumeID, clubName)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, rec)
}

func (h *Handler) deleteForResume(c *gin.Context) {
	resumeID := c.Param("id")
	c.Set("resumeId", resumeID)
	removed, err := h.Svc.DeleteForResume(c.Request.Context(), resumeID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": removed})
}

func (h *Handler) recent(c *gin.Context) {
	limit := defaultRecentLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be an integer", nil)
			return
		}
		limit = parsed
	}
	records, err := h.Svc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"analyses": records, "count": len(records)})
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Statistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, stats)
}

func (h *Handler) delete(c *gin.Context) {
	removed, err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !removed {
		respond.Error(c, http.StatusNotFound, string(KindNotFound), "analysis not found", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) cleanup(c *gin.Context) {
	days := DefaultCleanupDays
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "days must be a positive integer", nil)
			return
		}
		days = parsed
	}
	removed, err := h.Svc.Cleanup(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"removed": removed, "days": days})
}

func (h *Handler) clubSummary(c *gin.Context) {
	name := c.Param("name")
	c.Set("clubName", name)
	summary, err := h.Svc.ClubSummary(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, summary)
}

func (h *Handler) resumeText(c *gin.Context, resumeID string) (string, bool) {
	text, err := h.Resumes.ResumeText(c.Request.Context(), resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		} else {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resume", nil)
		}
		return "", false
	}
	return text, true
}

func writeClubError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, clubs.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, clubs.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load club", nil)
	}
}

func writeError(c *gin.Context, err error) {
	kind := KindOf(err)
	respond.Error(c, HTTPStatus(kind), string(kind), userMessage(err), nil)
}

func sanitizeHeaderValue(v string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, v)
}
