package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteswipe/internal/app/session"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// Legacy query parameters that name a permalink.
const (
	queryQuote     = "quote"
	queryUserQuote = "user_quote"
)

// PageHandler serves the client routes: the home deck and the quote
// permalinks. Each answers with the deck positioned on the requested card.
type PageHandler struct{}

// NewPageHandler creates the handler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Register mounts the routes on r.
func (h *PageHandler) Register(r gin.IRoutes) {
	r.GET("/", h.Home)
	r.GET("/quote/:id", h.Quote)
	r.GET("/user-quote/:id", h.UserQuote)
}

// Home returns the deck. The query forms ?quote= and ?user_quote= are
// redirected to their path form.
func (h *PageHandler) Home(c *gin.Context) {
	if target, ok := legacyTarget(c.Request.URL.Query()); ok {
		c.Redirect(http.StatusMovedPermanently, target)
		return
	}

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

// Quote opens /quote/:id.
func (h *PageHandler) Quote(c *gin.Context) {
	h.open(c, session.KindQuote)
}

// UserQuote opens /user-quote/:id.
func (h *PageHandler) UserQuote(c *gin.Context) {
	h.open(c, session.KindUserQuote)
}

func (h *PageHandler) open(c *gin.Context, kind string) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		dto.Error(c, domain.NewValidationError("id", "quote id is required"))
		return
	}

	st, err := sess.OpenPermalink(c.Request.Context(), kind, domain.QuoteID(id))
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeedFromState(st))
}

// legacyTarget returns the path form of a ?quote= or ?user_quote= link.
// ?quote= wins when both are present. Other query parameters are kept.
func legacyTarget(q url.Values) (string, bool) {
	for _, p := range []struct{ param, kind string }{
		{queryQuote, session.KindQuote},
		{queryUserQuote, session.KindUserQuote},
	} {
		id := strings.TrimSpace(q.Get(p.param))
		if id == "" {
			continue
		}

		q.Del(queryQuote)
		q.Del(queryUserQuote)

		target := "/" + p.kind + "/" + url.PathEscape(id)
		if rest := q.Encode(); rest != "" {
			target += "?" + rest
		}

		return target, true
	}

	return "", false
}
