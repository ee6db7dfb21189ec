package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gcclean/trash-service/internal/model"
)

const summarySheet = "Leaderboard"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes the ranked rows to a summary sheet and, for the unfiltered
// board, one sheet per department keeping the overall ranks.
func (g *Generator) Generate(board model.Leaderboard, generatedAt time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, board, generatedAt); err != nil {
		return nil, err
	}

	if board.Department == model.AllDepartments {
		usedNames := map[string]struct{}{summarySheet: {}}
		for _, department := range departments(board.Rows) {
			sheetName := buildSheetName(department, usedNames)
			usedNames[sheetName] = struct{}{}

			if _, err := file.NewSheet(sheetName); err != nil {
				return nil, err
			}
			if err := g.writeDepartment(file, sheetName, department, board.Rows); err != nil {
				return nil, err
			}
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, board model.Leaderboard, generatedAt time.Time) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Department")
	set("B1", departmentLabel(board.Department))
	set("A2", "Generated at")
	set("B2", formatDateTime(generatedAt))
	set("A3", "Contributors")
	set("B3", len(board.Rows))
	set("A4", "Total collected")
	set("B4", sumTotals(board.Rows))

	writeTable(file, sheet, 6, board.Rows)

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "B", 10)
	_ = file.SetColWidth(sheet, "C", "C", 36)
	_ = file.SetColWidth(sheet, "D", "E", 14)
	return nil
}

func (g *Generator) writeDepartment(file *excelize.File, sheet, department string, rows []model.LeaderboardRow) error {
	filtered := make([]model.LeaderboardRow, 0, len(rows))
	for _, row := range rows {
		if row.Department == department {
			filtered = append(filtered, row)
		}
	}

	_ = file.SetCellValue(sheet, "A1", "Department")
	_ = file.SetCellValue(sheet, "B1", department)
	_ = file.SetCellValue(sheet, "A2", "Total collected")
	_ = file.SetCellValue(sheet, "B2", sumTotals(filtered))

	writeTable(file, sheet, 4, filtered)

	_ = file.SetColWidth(sheet, "A", "B", 10)
	_ = file.SetColWidth(sheet, "C", "C", 36)
	_ = file.SetColWidth(sheet, "D", "E", 14)
	return nil
}

func writeTable(file *excelize.File, sheet string, headerRow int, rows []model.LeaderboardRow) {
	headers := []string{"Rank", "Medal", "Name", "Department", "Total"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = file.SetCellValue(sheet, cell, header)
	}

	for i, row := range rows {
		line := headerRow + 1 + i
		_ = file.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.Rank)
		_ = file.SetCellValue(sheet, fmt.Sprintf("B%d", line), row.Medal)
		_ = file.SetCellValue(sheet, fmt.Sprintf("C%d", line), row.DisplayName)
		_ = file.SetCellValue(sheet, fmt.Sprintf("D%d", line), row.Department)
		_ = file.SetCellValue(sheet, fmt.Sprintf("E%d", line), row.Total)
	}
}

func departments(rows []model.LeaderboardRow) []string {
	seen := map[string]struct{}{}
	result := make([]string, 0)
	for _, row := range rows {
		if _, ok := seen[row.Department]; ok {
			continue
		}
		seen[row.Department] = struct{}{}
		result = append(result, row.Department)
	}
	sort.Strings(result)
	return result
}

func buildSheetName(department string, used map[string]struct{}) string {
	base := sanitizeSheetName(department)
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Unassigned"
	}
	return value
}

func departmentLabel(department string) string {
	if department == "" || department == model.AllDepartments {
		return "All departments"
	}
	return department
}

func sumTotals(rows []model.LeaderboardRow) int {
	total := 0
	for _, row := range rows {
		total += row.Total
	}
	return total
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
