package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quoteswipe/internal/app/session"
)

var errNoSession = errors.New("no viewer session on request")

// viewer returns the request's session, answering 500 when the session
// middleware did not run.
func viewer(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		dto.Abort(c, errNoSession)
	}

	return sess, ok
}
