package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/gcclean/trash-service/internal/model"
)

// Session exposes the principal of one request as the current user.
type Session struct {
	principal model.Principal
}

func NewSession(principal model.Principal) Session {
	return Session{principal: principal}
}

func (s Session) CurrentUser(context.Context) (uuid.UUID, bool) {
	if s.principal.IsZero() {
		return uuid.Nil, false
	}
	return s.principal.UserID, true
}
