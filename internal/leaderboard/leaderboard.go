// Package leaderboard ranks users by the quantity of trash they collected.
package leaderboard

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/gcclean/trash-service/internal/model"
)

// PodiumSize is the number of rows displayed as medal winners.
const PodiumSize = 3

// Compute sums contributions per owner, joins them with profiles, applies the
// department filter and ranks the result. Profiles without contributions are
// dropped. Ranks are 1-based and contiguous after filtering.
func Compute(contributions []model.Contribution, profiles []model.Profile, department string) model.Leaderboard {
	totals := make(map[uuid.UUID]int, len(contributions))
	for _, c := range contributions {
		totals[c.OwnerID] += c.Quantity
	}

	department = strings.TrimSpace(department)
	if department == "" {
		department = model.AllDepartments
	}

	rows := make([]model.LeaderboardRow, 0, len(totals))
	seen := make(map[uuid.UUID]struct{}, len(profiles))
	for _, p := range profiles {
		total, ok := totals[p.ID]
		if !ok {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		if department != model.AllDepartments && p.Department != department {
			continue
		}
		rows = append(rows, model.LeaderboardRow{
			UserID:      p.ID,
			DisplayName: p.DisplayName(),
			Department:  p.Department,
			Total:       total,
		})
	}

	slices.SortStableFunc(rows, compareRows)
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Medal = Medal(i + 1)
	}

	split := min(PodiumSize, len(rows))
	return model.Leaderboard{
		Department: department,
		Rows:       rows,
		Podium:     rows[:split:split],
		Rest:       rows[split:],
	}
}

// compareRows orders by total descending, then display name and user id ascending.
func compareRows(a, b model.LeaderboardRow) int {
	if c := cmp.Compare(b.Total, a.Total); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DisplayName, b.DisplayName); c != 0 {
		return c
	}
	return cmp.Compare(a.UserID.String(), b.UserID.String())
}

func Medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("#%d", rank)
	}
}
