package model

import "github.com/google/uuid"

// DefaultDepartments are the organizational units used when none are configured.
var DefaultDepartments = []string{"CCS", "CBA", "CHTM", "CEAS", "CAHS", "COE", "CCJE", "CON", "SHS"}

type Profile struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Department string    `json:"department"`
}

func (p Profile) DisplayName() string {
	return p.FirstName + " " + p.LastName
}
