package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gcclean/trash-service/internal/config"
	"github.com/gcclean/trash-service/internal/leaderboard"
	"github.com/gcclean/trash-service/internal/model"
)

type ContributionStore interface {
	ListContributions(ctx context.Context) ([]model.Row, error)
}

type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]model.Row, error)
}

type ExcelGenerator interface {
	Generate(board model.Leaderboard, generatedAt time.Time) ([]byte, error)
}

type PDFGenerator interface {
	Generate(board model.Leaderboard, generatedAt time.Time) ([]byte, error)
}

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

type LeaderboardService struct {
	trash    ContributionStore
	profiles ProfileLister
	excel    ExcelGenerator
	pdf      PDFGenerator
	cfg      *config.Config
	log      zerolog.Logger
	now      func() time.Time
}

func NewLeaderboardService(
	trash ContributionStore,
	profiles ProfileLister,
	excel ExcelGenerator,
	pdf PDFGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		trash:    trash,
		profiles: profiles,
		excel:    excel,
		pdf:      pdf,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (s *LeaderboardService) Departments() []string {
	return append([]string{}, s.cfg.Trash.Departments...)
}

// Leaderboard ranks every profiled contributor, optionally narrowed to one
// department. Malformed rows from either source are skipped and counted.
func (s *LeaderboardService) Leaderboard(ctx context.Context, department string) (*model.Leaderboard, error) {
	department, err := s.normalizeDepartment(department)
	if err != nil {
		return nil, err
	}

	contributionRows, err := s.trash.ListContributions(ctx)
	if err != nil {
		return nil, err
	}
	profileRows, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	skipped := 0
	contributions := make([]model.Contribution, 0, len(contributionRows))
	for _, row := range contributionRows {
		c, err := model.ParseContribution(row)
		if err != nil {
			skipped++
			s.log.Warn().Err(err).Msg("skipping malformed contribution row")
			continue
		}
		contributions = append(contributions, c)
	}

	profiles := make([]model.Profile, 0, len(profileRows))
	for _, row := range profileRows {
		p, err := model.ParseProfile(row)
		if err != nil {
			skipped++
			s.log.Warn().Err(err).Msg("skipping malformed profile row")
			continue
		}
		profiles = append(profiles, p)
	}

	board := leaderboard.Compute(contributions, profiles, department)
	board.Skipped = skipped
	return &board, nil
}

func (s *LeaderboardService) Export(ctx context.Context, department string, format ExportFormat) (*ExportResult, error) {
	var contentType string
	switch format {
	case ExportXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportPDF:
		contentType = "application/pdf"
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, format)
	}

	board, err := s.Leaderboard(ctx, department)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	var content []byte
	if format == ExportPDF {
		content, err = s.pdf.Generate(*board, generatedAt)
	} else {
		content, err = s.excel.Generate(*board, generatedAt)
	}
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName:    buildFileName(board.Department, generatedAt, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func (s *LeaderboardService) normalizeDepartment(raw string) (string, error) {
	department := strings.TrimSpace(raw)
	if department == "" || strings.EqualFold(department, model.AllDepartments) {
		return model.AllDepartments, nil
	}
	department = strings.ToUpper(department)
	if !s.cfg.HasDepartment(department) {
		return "", fmt.Errorf("%w: unknown department %q", ErrInvalidInput, raw)
	}
	return department, nil
}

func buildFileName(department string, at time.Time, format ExportFormat) string {
	scope := strings.ToLower(sanitizeFileName(department))
	if scope == "" {
		scope = model.AllDepartments
	}
	return fmt.Sprintf("leaderboard-%s-%s.%s", scope, at.Format("20060102"), format)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
