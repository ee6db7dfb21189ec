package model

import "github.com/google/uuid"

// AllDepartments disables the department filter.
const AllDepartments = "all"

type LeaderboardRow struct {
	Rank        int       `json:"rank"`
	Medal       string    `json:"medal"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Department  string    `json:"department"`
	Total       int       `json:"total"`
}

type Leaderboard struct {
	Department string           `json:"department"`
	Rows       []LeaderboardRow `json:"rows"`
	Podium     []LeaderboardRow `json:"podium"`
	Rest       []LeaderboardRow `json:"rest"`
	Skipped    int              `json:"skipped"`
}
