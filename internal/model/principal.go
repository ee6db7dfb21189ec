package model

import "github.com/google/uuid"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
}

func (p Principal) IsZero() bool {
	return p.UserID == uuid.Nil
}
