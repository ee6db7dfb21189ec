package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/gcclean/trash-service/internal/model"
)

// Core fonts only cover cp1252, so medals are rendered as words.
var medalNames = map[int]string{1: "Gold", 2: "Silver", 3: "Bronze"}

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(board model.Leaderboard, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "GC-Clean Leaderboard", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Department: %s", departmentLabel(board.Department))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", formatDate(generatedAt)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	colWidths := []float64{18, 24, 78, 30, 30}
	headers := []string{"Rank", "Medal", "Name", "Department", "Total"}

	if len(board.Podium) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Top collectors", "", 1, "L", false, 0, "")
		drawTableRow(pdf, g.fontName, headers, colWidths, true)
		for _, row := range board.Podium {
			drawTableRow(pdf, g.fontName, rowCells(row, tr), colWidths, false)
		}
		pdf.Ln(4)
	}

	if len(board.Rest) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Rankings", "", 1, "L", false, 0, "")
		drawTableRow(pdf, g.fontName, headers, colWidths, true)
		for _, row := range board.Rest {
			drawTableRow(pdf, g.fontName, rowCells(row, tr), colWidths, false)
		}
		pdf.Ln(4)
	}

	if len(board.Rows) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, "No trash has been recorded yet.", "", "L", false)
	}

	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contributors: %d   Total collected: %d", len(board.Rows), sumTotals(board.Rows)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rowCells(row model.LeaderboardRow, tr func(string) string) []string {
	medal, ok := medalNames[row.Rank]
	if !ok {
		medal = "#" + strconv.Itoa(row.Rank)
	}
	return []string{
		strconv.Itoa(row.Rank),
		medal,
		tr(safeValue(row.DisplayName)),
		tr(safeValue(row.Department)),
		strconv.Itoa(row.Total),
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == 0 || i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
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

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
