package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gcclean/trash-service/internal/config"
	"github.com/gcclean/trash-service/internal/editor"
	"github.com/gcclean/trash-service/internal/model"
)

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (model.Row, error)
	UpsertProfile(ctx context.Context, profile model.Profile) (model.Row, error)
}

type ProfileService struct {
	store ProfileStore
	cfg   *config.Config
}

func NewProfileService(store ProfileStore, cfg *config.Config) *ProfileService {
	return &ProfileService{store: store, cfg: cfg}
}

type UpdateProfileInput struct {
	Principal  model.Principal
	FirstName  string
	LastName   string
	Department string
}

func (s *ProfileService) Get(ctx context.Context, principal model.Principal) (*model.Profile, error) {
	if principal.IsZero() {
		return nil, editor.ErrUnauthenticated
	}
	row, err := s.store.GetProfile(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	profile, err := model.ParseProfile(row)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", principal.UserID, err)
	}
	return &profile, nil
}

func (s *ProfileService) Update(ctx context.Context, input UpdateProfileInput) (*model.Profile, error) {
	if input.Principal.IsZero() {
		return nil, editor.ErrUnauthenticated
	}

	profile := model.Profile{
		ID:         input.Principal.UserID,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Department: strings.ToUpper(strings.TrimSpace(input.Department)),
	}
	if profile.FirstName == "" || profile.LastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name are required", ErrInvalidInput)
	}
	if !s.cfg.HasDepartment(profile.Department) {
		return nil, fmt.Errorf("%w: unknown department %q", ErrInvalidInput, input.Department)
	}

	row, err := s.store.UpsertProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	saved, err := model.ParseProfile(row)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile.ID, err)
	}
	return &saved, nil
}
