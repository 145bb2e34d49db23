package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteswipe/internal/app/content"
)

// ContentHandler serves preferences, the subscription, the taxonomy,
// marketing widgets, translation and search.
type ContentHandler struct {
	svc *content.Service
}

// NewContentHandler creates the handler.
func NewContentHandler(svc *content.Service) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// Register mounts the routes on rg.
func (h *ContentHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/preferences", h.Preferences)
	rg.PUT("/preferences", h.SavePreferences)
	rg.GET("/subscription", h.Subscription)
	rg.GET("/categories", h.Categories)
	rg.GET("/category-groups", h.CategoryGroups)
	rg.GET("/marketing", h.Marketing)
	rg.POST("/translate", h.Translate)
	rg.GET("/search", h.Search)
	rg.GET("/search/recent", h.RecentSearches)
	rg.DELETE("/search/recent", h.ClearRecentSearches)
}

// Preferences returns the card personalization.
func (h *ContentHandler) Preferences(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.svc.Preferences(c.Request.Context(), sess))
}

// SavePreferences updates the card personalization.
func (h *ContentHandler) SavePreferences(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.PreferencesRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	prefs, err := h.svc.SavePreferences(c.Request.Context(), sess, req.Domain())
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// Subscription returns the viewer's plan.
func (h *ContentHandler) Subscription(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.svc.Subscription(c.Request.Context(), sess))
}

// Categories lists the taxonomy.
func (h *ContentHandler) Categories(c *gin.Context) {
	var q dto.TaxonomyQuery
	if err := dto.BindQuery(c, &q); err != nil {
		dto.Error(c, err)
		return
	}

	cats, err := h.svc.Categories(c.Request.Context(), q.Onboarding)
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: cats})
}

// CategoryGroups lists the grouped taxonomy.
func (h *ContentHandler) CategoryGroups(c *gin.Context) {
	var q dto.TaxonomyQuery
	if err := dto.BindQuery(c, &q); err != nil {
		dto.Error(c, err)
		return
	}

	groups, err := h.svc.CategoryGroups(c.Request.Context(), q.Onboarding)
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CategoryGroupsResponse{Groups: groups})
}

// Marketing returns the landing stats and reviews.
func (h *ContentHandler) Marketing(c *gin.Context) {
	m, err := h.svc.Marketing(c.Request.Context())
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// Translate translates a quote text.
func (h *ContentHandler) Translate(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.TranslateRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	res, err := h.svc.Translate(c.Request.Context(), sess, req.Input())
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Search pages through the quotes matching q.
func (h *ContentHandler) Search(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.SearchRequest
	if err := dto.BindQuery(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	q, err := req.Query()
	if err != nil {
		dto.Error(c, err)
		return
	}

	page, err := h.svc.Search(c.Request.Context(), sess, q)
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SearchFromPage(q.Term, page))
}

// RecentSearches lists the session's recent terms.
func (h *ContentHandler) RecentSearches(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	recent := sess.RecentSearches().List()
	if recent == nil {
		recent = []string{}
	}

	c.JSON(http.StatusOK, dto.RecentSearchesResponse{Recent: recent})
}

// ClearRecentSearches forgets the session's recent terms.
func (h *ContentHandler) ClearRecentSearches(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	sess.RecentSearches().Clear()
	c.Status(http.StatusNoContent)
}
