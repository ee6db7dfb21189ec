package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcclean/trash-service/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]model.Row, error) {
	var rows []map[string]interface{}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, department
		FROM profiles
		ORDER BY last_name ASC, first_name ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toRows(rows), nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id uuid.UUID) (model.Row, error) {
	row := map[string]interface{}{}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, department
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, fmt.Errorf("%w: profile %s", model.ErrNotFound, id)
	}
	return model.Row(row), nil
}

func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile model.Profile) (model.Row, error) {
	row := map[string]interface{}{}
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO profiles (id, first_name, last_name, department)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			department = EXCLUDED.department,
			updated_at = NOW()
		RETURNING id, first_name, last_name, department
	`, profile.ID, profile.FirstName, profile.LastName, profile.Department).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, fmt.Errorf("upsert profile: no row returned")
	}
	return model.Row(row), nil
}
