package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteswipe/internal/app/session"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
)

// HeaderSessionID carries the viewer session id in both directions.
const HeaderSessionID = "X-Session-ID"

// ContextKeySession is the gin context key of the resolved session.
const ContextKeySession = "session"

// Sessions resolves the viewer session named by X-Session-ID, starting a
// new one when the header is missing or unknown. The id is echoed in the
// response and the request context carries the session viewer.
func Sessions(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		sess, created, err := m.Resolve(ctx, c.GetHeader(HeaderSessionID), VisitorInfo(c))
		if err != nil {
			dto.Abort(c, domain.NewUnavailableError("sessions", err.Error()))
			return
		}

		if created {
			logging.FromContext(ctx).DebugContext(ctx, "session started")
		}

		c.Set(ContextKeySession, sess)
		c.Header(HeaderSessionID, sess.ID())
		c.Request = c.Request.WithContext(sess.Context(ctx))

		c.Next()
	}
}

// SessionFrom returns the session resolved by Sessions.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ContextKeySession)
	if !ok {
		return nil, false
	}

	sess, ok := v.(*session.Session)

	return sess, ok
}

// RequireSignedIn rejects guests with 401.
func RequireSignedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok || !sess.Authenticated() {
			dto.AbortCode(c, dto.CodeUnauthorized, "sign in required")
			return
		}

		c.Next()
	}
}

// VisitorInfo builds the tracking beacon from the request headers.
func VisitorInfo(c *gin.Context) domain.VisitorInfo {
	ua := c.Request.UserAgent()

	lang, _, _ := strings.Cut(c.GetHeader("Accept-Language"), ",")
	lang, _, _ = strings.Cut(lang, ";")

	return domain.VisitorInfo{
		UserAgent: ua,
		Language:  strings.TrimSpace(lang),
		Referrer:  c.Request.Referer(),
		Device:    Device(ua),
	}
}

// Device classifies a user agent as mobile, tablet or desktop.
func Device(ua string) string {
	ua = strings.ToLower(ua)

	switch {
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"),
		strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return "tablet"
	case strings.Contains(ua, "mobi"), strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}
