package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteswipe/internal/app/session"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// FeedHandler drives the deck of the request's session.
type FeedHandler struct{}

// NewFeedHandler creates the handler.
func NewFeedHandler() *FeedHandler {
	return &FeedHandler{}
}

// Register mounts the routes on rg.
func (h *FeedHandler) Register(rg *gin.RouterGroup) {
	feed := rg.Group("/feed")

	feed.GET("", h.Get)
	feed.PUT("/categories", h.SetCategories)
	feed.POST("/drag/start", h.DragStart)
	feed.POST("/drag/move", h.DragMove)
	feed.POST("/drag/end", h.DragEnd)
	feed.POST("/like", h.Like)
	feed.POST("/dislike", h.Dislike)
	feed.POST("/undo", h.Undo)
	feed.POST("/modal/dismiss", h.DismissModal)
	feed.GET("/liked", h.Liked)
}

// Get returns the deck, loading it on the session's first request.
func (h *FeedHandler) Get(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	st, err := sess.Feed(c.Request.Context())
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeedFromState(st))
}

// SetCategories switches the deck to another category selection.
func (h *FeedHandler) SetCategories(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.CategoriesRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	st, err := sess.SetCategories(c.Request.Context(), domain.CategorySelection(req.Categories))
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeedFromState(st))
}

func (h *FeedHandler) pointer(c *gin.Context, fn func(s *session.Session, x, y float64) session.Action) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.PointerRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ActionFromDomain(fn(sess, *req.X, *req.Y)))
}

func (h *FeedHandler) action(c *gin.Context, fn func(s *session.Session) session.Action) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ActionFromDomain(fn(sess)))
}

// DragStart begins a drag at the pointer position.
func (h *FeedHandler) DragStart(c *gin.Context) {
	h.pointer(c, (*session.Session).DragStart)
}

// DragMove moves the dragged card.
func (h *FeedHandler) DragMove(c *gin.Context) {
	h.pointer(c, (*session.Session).DragMove)
}

// DragEnd releases the card, committing a swipe past the threshold.
func (h *FeedHandler) DragEnd(c *gin.Context) {
	h.action(c, (*session.Session).DragEnd)
}

// Like swipes the current card right.
func (h *FeedHandler) Like(c *gin.Context) {
	h.action(c, (*session.Session).Like)
}

// Dislike swipes the current card left.
func (h *FeedHandler) Dislike(c *gin.Context) {
	h.action(c, (*session.Session).Dislike)
}

// Undo reverts the last swipe.
func (h *FeedHandler) Undo(c *gin.Context) {
	h.action(c, (*session.Session).Undo)
}

// DismissModal closes the auth or promo prompt.
func (h *FeedHandler) DismissModal(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.FeedFromState(sess.DismissModal()))
}

// Liked lists the quotes liked in this session.
func (h *FeedHandler) Liked(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.LikedFromDomain(sess.Liked()))
}
