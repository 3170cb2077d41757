package clubs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/25eliu/ClubApp/internal/shared/server/middleware"
	"github.com/25eliu/ClubApp/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches club and favorite routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/clubs", h.list)
	rg.GET("/clubs/stats", h.stats)
	rg.GET("/clubs/:name", h.get)
	rg.GET("/favorites", h.listFavorites)
	rg.PUT("/favorites/:name", h.addFavorite)
	rg.DELETE("/favorites/:name", h.removeFavorite)
}

func (h *Handler) list(c *gin.Context) {
	clubs, err := h.Svc.List(c.Request.Context(), c.Query("q"), c.Query("friendliness"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list clubs", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"clubs": resolveAll(clubs), "count": len(clubs)})
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load club stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, stats)
}

func (h *Handler) get(c *gin.Context) {
	club, err := h.Svc.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err, "failed to fetch club")
		return
	}
	respond.JSON(c, http.StatusOK, club.Resolved())
}

func (h *Handler) listFavorites(c *gin.Context) {
	clubs, err := h.Svc.ListFavorites(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to list favorites")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"favorites": resolveAll(clubs), "count": len(clubs)})
}

func (h *Handler) addFavorite(c *gin.Context) {
	name := c.Param("name")
	c.Set("clubName", name)
	added, err := h.Svc.AddFavorite(c.Request.Context(), middleware.UserIDFromContext(c), name)
	if err != nil {
		writeError(c, err, "failed to add favorite")
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respond.JSON(c, status, gin.H{"clubName": name, "added": added})
}

func (h *Handler) removeFavorite(c *gin.Context) {
	name := c.Param("name")
	c.Set("clubName", name)
	removed, err := h.Svc.RemoveFavorite(c.Request.Context(), middleware.UserIDFromContext(c), name)
	if err != nil {
		writeError(c, err, "failed to remove favorite")
		return
	}
	if !removed {
		respond.Error(c, http.StatusNotFound, "not_found", "club is not a favorite", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "club not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func resolveAll(clubs []Club) []Club {
	out := make([]Club, 0, len(clubs))
	for _, c := range clubs {
		out = append(out, c.Resolved())
	}
	return out
}
